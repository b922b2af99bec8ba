package model

import "time"

// RoomBlock 房间封禁记录，(room_uuid, blocked_uuid) 唯一
type RoomBlock struct {
	ID          uint      `gorm:"primarykey"`
	RoomUuid    string    `gorm:"column:room_uuid;type:char(20);not null;uniqueIndex:idx_room_blocked;comment:房间ID"`
	BlockedUuid string    `gorm:"column:blocked_uuid;type:char(20);not null;uniqueIndex:idx_room_blocked;comment:被封禁用户"`
	ManagerUuid string    `gorm:"column:manager_uuid;type:char(20);not null;comment:执行封禁的管理者"`
	Reason      string    `gorm:"column:reason;type:varchar(50);not null;comment:封禁原因"`
	BlockTime   time.Time `gorm:"column:block_time;autoCreateTime"`
}

func (RoomBlock) TableName() string {
	return "room_block"
}
