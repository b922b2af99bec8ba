package memory

import (
	"sort"

	"chatroom_server/internal/model"
)

type roomRepo struct{ s *conn }

func (r *roomRepo) find(match func(model.Room) bool) *model.Room {
	var found *model.Room
	r.s.read(func(t *tables) {
		for _, room := range t.rooms {
			if match(room) {
				room := room
				found = &room
				return
			}
		}
	})
	return found
}

func (r *roomRepo) FindByUuid(uuid string) (*model.Room, error) {
	if room := r.find(func(m model.Room) bool { return m.Uuid == uuid }); room != nil {
		return room, nil
	}
	return nil, notFound("查询房间 uuid=%s", uuid)
}

// LockByUuid 事务已由 txMu 串行化，这里等同于普通查询
func (r *roomRepo) LockByUuid(uuid string) (*model.Room, error) {
	return r.FindByUuid(uuid)
}

func (r *roomRepo) FindByTitle(title string) (*model.Room, error) {
	if room := r.find(func(m model.Room) bool { return m.Title == title }); room != nil {
		return room, nil
	}
	return nil, notFound("查询房间 title=%s", title)
}

func (r *roomRepo) FindAll() ([]model.Room, error) {
	return r.FindByUuids(nil)
}

// FindByUuids uuids 为 nil 时返回全部房间
func (r *roomRepo) FindByUuids(uuids []string) ([]model.Room, error) {
	var want map[string]struct{}
	if uuids != nil {
		want = make(map[string]struct{}, len(uuids))
		for _, id := range uuids {
			want[id] = struct{}{}
		}
	}
	var rooms []model.Room
	r.s.read(func(t *tables) {
		rooms = sortedValues(t.rooms, func(m model.Room) bool {
			if want == nil {
				return true
			}
			_, ok := want[m.Uuid]
			return ok
		})
	})
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
	return rooms, nil
}

func (r *roomRepo) Create(room *model.Room) error {
	return r.s.write(func(t *tables) error {
		for _, other := range t.rooms {
			if other.Uuid == room.Uuid || other.Title == room.Title {
				return conflict("创建房间 title=%s", room.Title)
			}
		}
		room.ID = t.id()
		now := r.s.now()
		if room.CreatedAt.IsZero() {
			room.CreatedAt = now
		}
		room.UpdatedAt = now
		t.rooms[room.ID] = *room
		return nil
	})
}

func (r *roomRepo) Update(room *model.Room) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.rooms[room.ID]; !ok {
			return notFound("更新房间 uuid=%s", room.Uuid)
		}
		for id, other := range t.rooms {
			if id != room.ID && other.Title == room.Title {
				return conflict("更新房间 title=%s", room.Title)
			}
		}
		room.UpdatedAt = r.s.now()
		t.rooms[room.ID] = *room
		return nil
	})
}

func (r *roomRepo) Delete(uuid string) error {
	return r.s.write(func(t *tables) error {
		for id, room := range t.rooms {
			if room.Uuid == uuid {
				delete(t.rooms, id)
			}
		}
		return nil
	})
}

type memberRepo struct{ s *conn }

func (r *memberRepo) list(keep func(model.RoomMember) bool) []model.RoomMember {
	var out []model.RoomMember
	r.s.read(func(t *tables) {
		out = sortedValues(t.members, keep)
	})
	return out
}

func (r *memberRepo) Find(roomUuid, userUuid string) (*model.RoomMember, error) {
	found := r.list(func(m model.RoomMember) bool { return m.RoomUuid == roomUuid && m.UserUuid == userUuid })
	if len(found) == 0 {
		return nil, notFound("查询房间成员 room_uuid=%s user_uuid=%s", roomUuid, userUuid)
	}
	return &found[0], nil
}

func (r *memberRepo) FindByNickname(roomUuid, nickname string) (*model.RoomMember, error) {
	found := r.list(func(m model.RoomMember) bool { return m.RoomUuid == roomUuid && m.Nickname == nickname })
	if len(found) == 0 {
		return nil, notFound("查询房间昵称 room_uuid=%s nickname=%s", roomUuid, nickname)
	}
	return &found[0], nil
}

func (r *memberRepo) FindByRoom(roomUuid string) ([]model.RoomMember, error) {
	return r.list(func(m model.RoomMember) bool { return m.RoomUuid == roomUuid }), nil
}

func (r *memberRepo) FindByUser(userUuid string) ([]model.RoomMember, error) {
	return r.list(func(m model.RoomMember) bool { return m.UserUuid == userUuid }), nil
}

func (r *memberRepo) FindRoomUuidsByUser(userUuid, level string) ([]string, error) {
	members := r.list(func(m model.RoomMember) bool {
		return m.UserUuid == userUuid && (level == "" || m.AccessLevel == level)
	})
	uuids := make([]string, 0, len(members))
	for _, m := range members {
		uuids = append(uuids, m.RoomUuid)
	}
	return uuids, nil
}

func (r *memberRepo) CountByRoom(roomUuid string) (int64, error) {
	return int64(len(r.list(func(m model.RoomMember) bool { return m.RoomUuid == roomUuid }))), nil
}

func (r *memberRepo) CountByRoomAndLevel(roomUuid, level string) (int64, error) {
	return int64(len(r.list(func(m model.RoomMember) bool {
		return m.RoomUuid == roomUuid && m.AccessLevel == level
	}))), nil
}

func (r *memberRepo) CountByUserAndLevel(userUuid, level string) (int64, error) {
	return int64(len(r.list(func(m model.RoomMember) bool {
		return m.UserUuid == userUuid && m.AccessLevel == level
	}))), nil
}

// Create 同时校验 (room, user) 与 (room, nickname) 两个唯一索引
func (r *memberRepo) Create(member *model.RoomMember) error {
	return r.s.write(func(t *tables) error {
		for _, other := range t.members {
			if other.RoomUuid != member.RoomUuid {
				continue
			}
			if other.UserUuid == member.UserUuid || other.Nickname == member.Nickname {
				return conflict("创建房间成员 room_uuid=%s user_uuid=%s", member.RoomUuid, member.UserUuid)
			}
		}
		member.ID = t.id()
		now := r.s.now()
		member.CreatedAt, member.UpdatedAt = now, now
		t.members[member.ID] = *member
		return nil
	})
}

func (r *memberRepo) UpdateAccessLevel(roomUuid, userUuid, level string) error {
	return r.s.write(func(t *tables) error {
		for id, m := range t.members {
			if m.RoomUuid == roomUuid && m.UserUuid == userUuid {
				m.AccessLevel = level
				m.UpdatedAt = r.s.now()
				t.members[id] = m
			}
		}
		return nil
	})
}

func (r *memberRepo) Delete(roomUuid, userUuid string) error {
	return r.s.write(func(t *tables) error {
		for id, m := range t.members {
			if m.RoomUuid == roomUuid && m.UserUuid == userUuid {
				delete(t.members, id)
			}
		}
		return nil
	})
}

func (r *memberRepo) DeleteByRoom(roomUuid string) error {
	return r.s.write(func(t *tables) error {
		for id, m := range t.members {
			if m.RoomUuid == roomUuid {
				delete(t.members, id)
			}
		}
		return nil
	})
}

type blockRepo struct{ s *conn }

func (r *blockRepo) Find(roomUuid, blockedUuid string) (*model.RoomBlock, error) {
	var found *model.RoomBlock
	r.s.read(func(t *tables) {
		for _, b := range t.blocks {
			if b.RoomUuid == roomUuid && b.BlockedUuid == blockedUuid {
				b := b
				found = &b
				return
			}
		}
	})
	if found == nil {
		return nil, notFound("查询封禁 room_uuid=%s blocked_uuid=%s", roomUuid, blockedUuid)
	}
	return found, nil
}

func (r *blockRepo) FindByRoom(roomUuid string) ([]model.RoomBlock, error) {
	var out []model.RoomBlock
	r.s.read(func(t *tables) {
		out = sortedValues(t.blocks, func(b model.RoomBlock) bool { return b.RoomUuid == roomUuid })
	})
	return out, nil
}

func (r *blockRepo) Create(block *model.RoomBlock) error {
	return r.s.write(func(t *tables) error {
		for _, other := range t.blocks {
			if other.RoomUuid == block.RoomUuid && other.BlockedUuid == block.BlockedUuid {
				return conflict("创建封禁 room_uuid=%s blocked_uuid=%s", block.RoomUuid, block.BlockedUuid)
			}
		}
		block.ID = t.id()
		if block.BlockTime.IsZero() {
			block.BlockTime = r.s.now()
		}
		t.blocks[block.ID] = *block
		return nil
	})
}

func (r *blockRepo) Delete(roomUuid, blockedUuid string) error {
	return r.s.write(func(t *tables) error {
		for id, b := range t.blocks {
			if b.RoomUuid == roomUuid && b.BlockedUuid == blockedUuid {
				delete(t.blocks, id)
			}
		}
		return nil
	})
}

func (r *blockRepo) DeleteByRoom(roomUuid string) error {
	return r.s.write(func(t *tables) error {
		for id, b := range t.blocks {
			if b.RoomUuid == roomUuid {
				delete(t.blocks, id)
			}
		}
		return nil
	})
}

type invitationRepo struct{ s *conn }

func (r *invitationRepo) FindById(id int64) (*model.RoomInvitation, error) {
	var found *model.RoomInvitation
	r.s.read(func(t *tables) {
		if inv, ok := t.invitations[id]; ok {
			found = &inv
		}
	})
	if found == nil {
		return nil, notFound("查询邀请 id=%d", id)
	}
	return found, nil
}

func (r *invitationRepo) FindByRoomAndInvited(roomUuid, invitedUuid string) (*model.RoomInvitation, error) {
	found := r.list(func(inv model.RoomInvitation) bool {
		return inv.RoomUuid == roomUuid && inv.InvitedUuid == invitedUuid
	})
	if len(found) == 0 {
		return nil, notFound("查询邀请 room_uuid=%s invited_uuid=%s", roomUuid, invitedUuid)
	}
	return &found[0], nil
}

func (r *invitationRepo) list(keep func(model.RoomInvitation) bool) []model.RoomInvitation {
	var out []model.RoomInvitation
	r.s.read(func(t *tables) {
		out = sortedValues(t.invitations, keep)
	})
	return out
}

func (r *invitationRepo) FindByRoom(roomUuid string) ([]model.RoomInvitation, error) {
	return r.list(func(inv model.RoomInvitation) bool { return inv.RoomUuid == roomUuid }), nil
}

func (r *invitationRepo) FindByInvited(invitedUuid string) ([]model.RoomInvitation, error) {
	return r.list(func(inv model.RoomInvitation) bool { return inv.InvitedUuid == invitedUuid }), nil
}

func (r *invitationRepo) Create(inv *model.RoomInvitation) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.invitations[inv.ID]; ok {
			return conflict("创建邀请 id=%d", inv.ID)
		}
		for _, other := range t.invitations {
			if other.RoomUuid == inv.RoomUuid && other.InvitedUuid == inv.InvitedUuid {
				return conflict("创建邀请 room_uuid=%s invited_uuid=%s", inv.RoomUuid, inv.InvitedUuid)
			}
		}
		if inv.InviteTime.IsZero() {
			inv.InviteTime = r.s.now()
		}
		t.invitations[inv.ID] = *inv
		return nil
	})
}

func (r *invitationRepo) Delete(id int64) error {
	return r.s.write(func(t *tables) error {
		delete(t.invitations, id)
		return nil
	})
}

func (r *invitationRepo) DeleteByRoom(roomUuid string) error {
	return r.s.write(func(t *tables) error {
		for id, inv := range t.invitations {
			if inv.RoomUuid == roomUuid {
				delete(t.invitations, id)
			}
		}
		return nil
	})
}

type recordRepo struct{ s *conn }

func (r *recordRepo) Create(record *model.RoomRecord) error {
	return r.s.write(func(t *tables) error {
		record.ID = t.id()
		if record.RecordTime.IsZero() {
			record.RecordTime = r.s.now()
		}
		t.records[record.ID] = *record
		return nil
	})
}

// FindByRoom 按写入顺序倒序
func (r *recordRepo) FindByRoom(roomUuid string) ([]model.RoomRecord, error) {
	var out []model.RoomRecord
	r.s.read(func(t *tables) {
		out = sortedValues(t.records, func(rec model.RoomRecord) bool { return rec.RoomUuid == roomUuid })
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *recordRepo) DeleteByRoom(roomUuid string) error {
	return r.s.write(func(t *tables) error {
		for id, rec := range t.records {
			if rec.RoomUuid == roomUuid {
				delete(t.records, id)
			}
		}
		return nil
	})
}
