package model

import "time"

// RoomRecord 房间操作记录，只追加
type RoomRecord struct {
	ID         uint      `gorm:"primarykey"`
	RoomUuid   string    `gorm:"column:room_uuid;type:char(20);not null;index;comment:房间ID"`
	Recording  string    `gorm:"column:recording;type:varchar(100);not null;comment:记录内容"`
	RecordTime time.Time `gorm:"column:record_time;autoCreateTime"`
}

func (RoomRecord) TableName() string {
	return "room_record"
}
