package repository

import (
	"chatroom_server/internal/model"

	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知 Repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *model.Notification) error {
	if err := r.db.Create(n).Error; err != nil {
		return wrapDBErrorf(err, "创建通知 user_uuid=%s", n.UserUuid)
	}
	return nil
}

func (r *notificationRepository) FindByUser(userUuid string) ([]model.Notification, error) {
	var list []model.Notification
	if err := r.db.Where("user_uuid = ?", userUuid).Order("created_time DESC, id DESC").Find(&list).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询通知 user_uuid=%s", userUuid)
	}
	return list, nil
}

func (r *notificationRepository) FindByIdAndUser(id int64, userUuid string) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.Where("id = ? AND user_uuid = ?", id, userUuid).First(&n).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询通知 id=%d", id)
	}
	return &n, nil
}

func (r *notificationRepository) MarkRead(id int64) error {
	if err := r.db.Model(&model.Notification{}).Where("id = ?", id).Update("status", model.NotificationRead).Error; err != nil {
		return wrapDBErrorf(err, "标记通知已读 id=%d", id)
	}
	return nil
}

func (r *notificationRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.Notification{}, "id = ?", id).Error; err != nil {
		return wrapDBErrorf(err, "删除通知 id=%d", id)
	}
	return nil
}
