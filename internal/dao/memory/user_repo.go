package memory

import (
	"chatroom_server/internal/model"
)

type userRepo struct{ s *conn }

func (r *userRepo) findBy(match func(u model.UserInfo) bool) (*model.UserInfo, bool) {
	var found *model.UserInfo
	r.s.read(func(t *tables) {
		for _, u := range t.users {
			if match(u) {
				u := u
				found = &u
				return
			}
		}
	})
	return found, found != nil
}

func (r *userRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	if u, ok := r.findBy(func(u model.UserInfo) bool { return u.Uuid == uuid }); ok {
		return u, nil
	}
	return nil, notFound("查询用户 uuid=%s", uuid)
}

func (r *userRepo) FindByUsername(username string) (*model.UserInfo, error) {
	if u, ok := r.findBy(func(u model.UserInfo) bool { return u.Username == username }); ok {
		return u, nil
	}
	return nil, notFound("查询用户 username=%s", username)
}

func (r *userRepo) FindByEmail(email string) (*model.UserInfo, error) {
	if u, ok := r.findBy(func(u model.UserInfo) bool { return u.Email == email }); ok {
		return u, nil
	}
	return nil, notFound("查询用户 email=%s", email)
}

func (r *userRepo) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	want := make(map[string]struct{}, len(uuids))
	for _, id := range uuids {
		want[id] = struct{}{}
	}
	var users []model.UserInfo
	r.s.read(func(t *tables) {
		users = sortedValues(t.users, func(u model.UserInfo) bool {
			_, ok := want[u.Uuid]
			return ok
		})
	})
	return users, nil
}

// uniqueViolation 检查 uuid / email / username 唯一索引
func uniqueViolation(t *tables, u *model.UserInfo) bool {
	for id, other := range t.users {
		if id == u.ID {
			continue
		}
		if other.Uuid == u.Uuid || other.Email == u.Email || other.Username == u.Username {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(user *model.UserInfo) error {
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	return r.s.write(func(t *tables) error {
		if uniqueViolation(t, user) {
			return conflict("创建用户 email=%s", user.Email)
		}
		user.ID = t.id()
		now := r.s.now()
		user.CreatedAt, user.UpdatedAt = now, now
		t.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) Update(user *model.UserInfo) error {
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	return r.s.write(func(t *tables) error {
		if _, ok := t.users[user.ID]; !ok {
			return notFound("更新用户 uuid=%s", user.Uuid)
		}
		if uniqueViolation(t, user) {
			return conflict("更新用户信息 email=%s", user.Email)
		}
		user.UpdatedAt = r.s.now()
		t.users[user.ID] = *user
		return nil
	})
}
