package user

import (
	"context"

	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"

	"go.uber.org/zap"
)

var errNotificationMissing = errorx.New(errorx.CodeBadRequest, "通知不存在")

// ListNotifications 当前用户的通知，最新的在前
func (u *userInfoService) ListNotifications(ctx context.Context, actor model.ActingUser) ([]respond.NotificationRespond, error) {
	list, err := u.repos.Notification.FindByUser(actor.Uuid)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	rsp := make([]respond.NotificationRespond, 0, len(list))
	for _, n := range list {
		rsp = append(rsp, respond.NotificationRespond{
			Id:          n.ID,
			Message:     n.Message,
			Status:      n.Status,
			CreatedTime: n.CreatedTime.Format(constants.TIME_LAYOUT),
		})
	}
	return rsp, nil
}

// findNotification 只能操作自己的通知
func (u *userInfoService) findNotification(actor model.ActingUser, id int64) (*model.Notification, error) {
	n, err := u.repos.Notification.FindByIdAndUser(id, actor.Uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errNotificationMissing
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}
	return n, nil
}

// DeleteNotification 删除通知
func (u *userInfoService) DeleteNotification(ctx context.Context, actor model.ActingUser, id int64) error {
	if _, err := u.findNotification(actor, id); err != nil {
		return err
	}
	if err := u.repos.Notification.Delete(id); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// ReadNotification 标记为已读
func (u *userInfoService) ReadNotification(ctx context.Context, actor model.ActingUser, id int64) error {
	n, err := u.findNotification(actor, id)
	if err != nil {
		return err
	}
	if n.Status == model.NotificationRead {
		return errorx.New(errorx.CodeBadRequest, "通知已读")
	}
	if err := u.repos.Notification.MarkRead(id); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}
