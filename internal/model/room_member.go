package model

import "time"

// 房间内权限等级
const (
	AccessAdmin   = "admin"
	AccessManager = "manager"
	AccessUser    = "user"
)

var accessRank = map[string]int{
	AccessUser:    1,
	AccessManager: 2,
	AccessAdmin:   3,
}

// AccessRank 未知等级返回 0
func AccessRank(level string) int {
	return accessRank[level]
}

// IsValidAccessLevel 校验权限等级
func IsValidAccessLevel(level string) bool {
	return accessRank[level] > 0
}

// RoomMember 房间成员
// (room_uuid, user_uuid) 与 (room_uuid, nickname) 均唯一
type RoomMember struct {
	ID          uint      `gorm:"primarykey"`
	RoomUuid    string    `gorm:"column:room_uuid;type:char(20);not null;uniqueIndex:idx_room_user;uniqueIndex:idx_room_nickname;comment:房间ID"`
	UserUuid    string    `gorm:"column:user_uuid;type:char(20);not null;uniqueIndex:idx_room_user;index;comment:用户ID"`
	Nickname    string    `gorm:"column:nickname;type:varchar(20);not null;uniqueIndex:idx_room_nickname;comment:房内昵称"`
	AccessLevel string    `gorm:"column:access_level;type:varchar(10);not null;default:user;index;comment:admin/manager/user"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time
}

func (RoomMember) TableName() string {
	return "room_member"
}

// AtLeast 当前等级不低于 level
func (m *RoomMember) AtLeast(level string) bool {
	return AccessRank(m.AccessLevel) >= AccessRank(level)
}
