package model

import "time"

// RoomInvitation 待处理的入房邀请，接受或拒绝后直接删除
type RoomInvitation struct {
	ID          int64     `gorm:"primarykey;autoIncrement:false;comment:雪花ID"`
	RoomUuid    string    `gorm:"column:room_uuid;type:char(20);not null;uniqueIndex:idx_room_invited;comment:房间ID"`
	InviterUuid string    `gorm:"column:inviter_uuid;type:char(20);not null;comment:邀请人"`
	InvitedUuid string    `gorm:"column:invited_uuid;type:char(20);not null;uniqueIndex:idx_room_invited;index;comment:被邀请人"`
	InviteTime  time.Time `gorm:"column:invite_time;autoCreateTime"`
}

func (RoomInvitation) TableName() string {
	return "room_invitation"
}
