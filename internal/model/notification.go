package model

import "time"

// 通知状态
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification 用户通知
type Notification struct {
	ID          int64     `gorm:"primarykey;autoIncrement:false;comment:雪花ID"`
	UserUuid    string    `gorm:"column:user_uuid;type:char(20);not null;index;comment:接收者"`
	Message     string    `gorm:"column:message;type:varchar(100);not null"`
	Status      string    `gorm:"column:status;type:varchar(10);not null;default:unread"`
	CreatedTime time.Time `gorm:"column:created_time;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notification"
}
