package room

import (
	"context"
	"strings"
	"unicode/utf8"

	"chatroom_server/internal/dao/mysql/repository"
	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/random"
)

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n == 0 || n > constants.TITLE_MAX_LEN {
		return "", errorx.Newf(errorx.CodeInvalidParam, "房间名称长度需为 1-%d 个字符", constants.TITLE_MAX_LEN)
	}
	return title, nil
}

func validIntroduction(intro string) error {
	if utf8.RuneCountInString(intro) > constants.INTRODUCTION_MAX_LEN {
		return errorx.Newf(errorx.CodeInvalidParam, "房间简介不能超过 %d 个字符", constants.INTRODUCTION_MAX_LEN)
	}
	return nil
}

func validPeopleLimit(limit int) error {
	if limit < 0 {
		return errorx.New(errorx.CodeInvalidParam, "人数上限不能为负数")
	}
	return nil
}

// CreateRoom 创建房间，创建者以房主身份加入
// 课程房间的房主固定为系统账号，创建者成为管理者
func (s *Service) CreateRoom(ctx context.Context, actor model.ActingUser, req request.CreateRoomRequest) (*respond.RoomRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	title, err := validTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := validIntroduction(req.Introduction); err != nil {
		return nil, err
	}
	if err := validPeopleLimit(req.PeopleLimit); err != nil {
		return nil, err
	}
	nickname, err := validNickname(req.Nickname)
	if err != nil {
		return nil, err
	}
	roomType := req.RoomType
	if roomType == "" {
		roomType = model.RoomTypePublic
	}
	if !model.IsValidRoomType(roomType) {
		return nil, errorx.New(errorx.CodeInvalidParam, "未知的房间类型")
	}
	category := req.RoomCategory
	if category == "" {
		category = model.RoomCategoryCourse
	}
	image, ok := model.CategoryImage(category)
	if !ok {
		return nil, errorx.New(errorx.CodeInvalidParam, "未知的房间分类")
	}
	if req.ImageUrl != "" {
		image = req.ImageUrl
	}

	room := &model.Room{
		Uuid:         random.NewRoomUuid(),
		Title:        title,
		Introduction: req.Introduction,
		RoomType:     roomType,
		RoomCategory: category,
		PeopleLimit:  req.PeopleLimit,
		ImageUrl:     image,
		ValidTime:    req.ValidTime,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		count, err := tx.Member.CountByUserAndLevel(actor.Uuid, model.AccessAdmin)
		if err != nil {
			return storeErr(err, "")
		}
		if count >= int64(s.conf.MaxAdminRooms) {
			return errorx.New(errorx.CodeBadRequest, "已达到创建房间上限")
		}
		if _, err := tx.Room.FindByTitle(title); err == nil {
			return errorx.New(errorx.CodeConflict, "房间名称已存在")
		} else if !errorx.IsNotFound(err) {
			return storeErr(err, "")
		}
		if err := tx.Room.Create(room); err != nil {
			return storeErr(err, "房间名称已存在")
		}

		members, err := s.founders(tx, actor, room, nickname)
		if err != nil {
			return err
		}
		for i := range members {
			if err := tx.Member.Create(&members[i]); err != nil {
				return storeErr(err, "昵称已存在")
			}
		}
		return appendRecord(tx, room.Uuid, who(&members[len(members)-1], actor.Username)+" 创建了房间")
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUserJoined(ctx, room.Uuid, actor.Uuid)
	rsp := toRoomRespond(room)
	return &rsp, nil
}

// founders 创建房间时的初始成员，创建者排在最后
func (s *Service) founders(tx *repository.Repositories, actor model.ActingUser, room *model.Room, nickname string) ([]model.RoomMember, error) {
	creator := model.RoomMember{RoomUuid: room.Uuid, UserUuid: actor.Uuid, Nickname: nickname, AccessLevel: model.AccessAdmin}
	if room.RoomType != model.RoomTypeCourse || actor.Username == s.conf.SystemAccount {
		return []model.RoomMember{creator}, nil
	}

	system, err := tx.User.FindByUsername(s.conf.SystemAccount)
	if err != nil {
		return nil, lookupErr(err, errorx.New(errorx.CodeBadRequest, "系统账号不存在，无法创建课程讨论房间"))
	}
	if nickname == system.Username {
		return nil, errNickTaken
	}
	creator.AccessLevel = model.AccessManager
	owner := model.RoomMember{RoomUuid: room.Uuid, UserUuid: system.Uuid, Nickname: system.Username, AccessLevel: model.AccessAdmin}
	return []model.RoomMember{owner, creator}, nil
}

// ListRooms 所有房间，按创建时间升序
func (s *Service) ListRooms(ctx context.Context) ([]respond.RoomRespond, error) {
	rooms, err := s.repos.Room.FindAll()
	if err != nil {
		return nil, storeErr(err, "")
	}
	rsp := make([]respond.RoomRespond, 0, len(rooms))
	for i := range rooms {
		rsp = append(rsp, toRoomRespond(&rooms[i]))
	}
	return rsp, nil
}

// GetRoom 房间详情，优先读缓存
func (s *Service) GetRoom(ctx context.Context, actor model.ActingUser, roomId string) (*respond.RoomRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	key := constants.ROOM_INFO_PREFIX + roomId
	var cached respond.RoomRespond
	ver, hit := s.cacheGet(ctx, roomId, key, &cached)
	if hit {
		return &cached, nil
	}

	room, err := s.findRoom(roomId)
	if err != nil {
		return nil, err
	}
	rsp := toRoomRespond(room)
	s.cacheSet(key, ver, rsp)
	return &rsp, nil
}

// UpdateRoom 修改房间设置，需要管理者以上权限
func (s *Service) UpdateRoom(ctx context.Context, actor model.ActingUser, roomId string, req request.UpdateRoomRequest) (*respond.RoomRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	var title string
	if req.Title != nil {
		t, err := validTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		title = t
	}
	if req.Introduction != nil {
		if err := validIntroduction(*req.Introduction); err != nil {
			return nil, err
		}
	}
	if req.PeopleLimit != nil {
		if err := validPeopleLimit(*req.PeopleLimit); err != nil {
			return nil, err
		}
	}
	if req.RoomType != nil && !model.IsValidRoomType(*req.RoomType) {
		return nil, errorx.New(errorx.CodeInvalidParam, "未知的房间类型")
	}
	if req.RoomCategory != nil {
		if _, ok := model.CategoryImage(*req.RoomCategory); !ok {
			return nil, errorx.New(errorx.CodeInvalidParam, "未知的房间分类")
		}
	}

	var updated *model.Room
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, me, err := guard(tx, actor, roomId, model.AccessManager)
		if err != nil {
			return err
		}
		if req.Title != nil && title != room.Title {
			if other, err := tx.Room.FindByTitle(title); err == nil && other.Uuid != room.Uuid {
				return errorx.New(errorx.CodeConflict, "房间名称已存在")
			} else if err != nil && !errorx.IsNotFound(err) {
				return storeErr(err, "")
			}
			room.Title = title
		}
		if req.Introduction != nil {
			room.Introduction = *req.Introduction
		}
		if req.RoomType != nil {
			room.RoomType = *req.RoomType
		}
		if req.RoomCategory != nil {
			room.RoomCategory = *req.RoomCategory
		}
		if req.PeopleLimit != nil {
			room.PeopleLimit = *req.PeopleLimit
		}
		if req.ImageUrl != nil {
			room.ImageUrl = *req.ImageUrl
		}
		if req.ValidTime != nil {
			room.ValidTime = req.ValidTime
		}
		if err := tx.Room.Update(room); err != nil {
			return storeErr(err, "房间名称已存在")
		}
		updated = room
		return appendRecord(tx, roomId, who(me, actor.Username)+" 修改了房间设置")
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, roomId, notify.AspectProfile)
	rsp := toRoomRespond(updated)
	return &rsp, nil
}

// DeleteRoom 删除房间及其成员、封禁、邀请、记录，仅房主可操作
// 课程讨论房间不能删除
func (s *Service) DeleteRoom(ctx context.Context, actor model.ActingUser, roomId string) error {
	if err := requireVerified(actor); err != nil {
		return err
	}

	var (
		title   string
		members []model.RoomMember
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, _, err := guard(tx, actor, roomId, model.AccessAdmin)
		if err != nil {
			return err
		}
		if room.RoomType == model.RoomTypeCourse {
			return errorx.New(errorx.CodeBadRequest, "课程讨论房间无法被删除")
		}
		title = room.Title
		if members, err = tx.Member.FindByRoom(roomId); err != nil {
			return storeErr(err, "")
		}
		for _, del := range []func(string) error{
			tx.Member.DeleteByRoom,
			tx.Block.DeleteByRoom,
			tx.Invitation.DeleteByRoom,
			tx.Record.DeleteByRoom,
			tx.Room.Delete,
		} {
			if err := del(roomId); err != nil {
				return storeErr(err, "")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, m := range members {
		if m.UserUuid == actor.Uuid {
			continue
		}
		s.notifier.CreateNotification(ctx, m.UserUuid, "房间「"+title+"」被房主删除了。")
	}
	s.afterCommit(ctx, roomId, notify.AspectDeleteRoom)
	return nil
}

// TypeChoices 房间类型选项
func (s *Service) TypeChoices() []model.Choice {
	return model.RoomTypeChoices
}

// CategoryChoices 房间分类选项
func (s *Service) CategoryChoices() []model.Choice {
	return model.RoomCategoryChoices
}

// ListMyRooms 当前用户所在的房间
func (s *Service) ListMyRooms(ctx context.Context, actor model.ActingUser) ([]respond.RoomRespond, error) {
	return s.roomsOf(actor, "")
}

// ListMyAdminRooms 当前用户担任房主的房间
func (s *Service) ListMyAdminRooms(ctx context.Context, actor model.ActingUser) ([]respond.RoomRespond, error) {
	return s.roomsOf(actor, model.AccessAdmin)
}

func (s *Service) roomsOf(actor model.ActingUser, level string) ([]respond.RoomRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	ids, err := s.repos.Member.FindRoomUuidsByUser(actor.Uuid, level)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if len(ids) == 0 {
		return []respond.RoomRespond{}, nil
	}
	rooms, err := s.repos.Room.FindByUuids(ids)
	if err != nil {
		return nil, storeErr(err, "")
	}
	rsp := make([]respond.RoomRespond, 0, len(rooms))
	for i := range rooms {
		rsp = append(rsp, toRoomRespond(&rooms[i]))
	}
	return rsp, nil
}
