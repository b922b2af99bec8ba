package memory

import (
	"chatroom_server/internal/model"
)

type notificationRepo struct{ s *conn }

func (r *notificationRepo) Create(n *model.Notification) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.notifications[n.ID]; ok {
			return conflict("创建通知 id=%d", n.ID)
		}
		if n.Status == "" {
			n.Status = model.NotificationUnread
		}
		if n.CreatedTime.IsZero() {
			n.CreatedTime = r.s.now()
		}
		t.notifications[n.ID] = *n
		return nil
	})
}

// FindByUser 雪花 ID 递增，倒序即为最新在前
func (r *notificationRepo) FindByUser(userUuid string) ([]model.Notification, error) {
	var out []model.Notification
	r.s.read(func(t *tables) {
		out = sortedValues(t.notifications, func(n model.Notification) bool { return n.UserUuid == userUuid })
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *notificationRepo) FindByIdAndUser(id int64, userUuid string) (*model.Notification, error) {
	var found *model.Notification
	r.s.read(func(t *tables) {
		if n, ok := t.notifications[id]; ok && n.UserUuid == userUuid {
			found = &n
		}
	})
	if found == nil {
		return nil, notFound("查询通知 id=%d", id)
	}
	return found, nil
}

func (r *notificationRepo) MarkRead(id int64) error {
	return r.s.write(func(t *tables) error {
		if n, ok := t.notifications[id]; ok {
			n.Status = model.NotificationRead
			t.notifications[id] = n
		}
		return nil
	})
}

func (r *notificationRepo) Delete(id int64) error {
	return r.s.write(func(t *tables) error {
		delete(t.notifications, id)
		return nil
	})
}
