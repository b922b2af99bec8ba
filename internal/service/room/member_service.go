package room

import (
	"context"
	"errors"
	"sort"

	"chatroom_server/internal/dao/mysql/repository"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"

	"go.uber.org/zap"
)

// JoinRoom 直接加入房间，私密房间只能通过邀请进入
func (s *Service) JoinRoom(ctx context.Context, actor model.ActingUser, roomId, nickname string) (*respond.MemberRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}

	var member *model.RoomMember
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, err := tx.Room.LockByUuid(roomId)
		if err != nil {
			return lookupErr(err, errRoomMissing)
		}
		member, err = admitMember(tx, room, actor.Uuid, nickname, func() error {
			if room.RoomType == model.RoomTypePrivate {
				return errorx.New(errorx.CodeForbidden, "此为私密房间，无法直接进入")
			}
			return nil
		})
		if err != nil {
			return err
		}
		return appendRecord(tx, roomId, who(member, actor.Username)+" 加入了房间")
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUserJoined(ctx, roomId, actor.Uuid)
	s.afterCommit(ctx, roomId, notify.AspectMemberList)
	rsp := toMemberRespond(member, actor.Username)
	return &rsp, nil
}

// LeaveRoom 离开房间，房主需先转让房主身份
func (s *Service) LeaveRoom(ctx context.Context, actor model.ActingUser, roomId string) error {
	if err := requireVerified(actor); err != nil {
		return err
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		_, me, err := guard(tx, actor, roomId, "")
		if err != nil {
			return err
		}
		if me.AccessLevel == model.AccessAdmin {
			return errorx.New(errorx.CodeBadRequest, "你是房主，无法离开房间")
		}
		if err := tx.Member.Delete(roomId, actor.Uuid); err != nil {
			return storeErr(err, "")
		}
		return appendRecord(tx, roomId, who(me, actor.Username)+" 离开了房间")
	})
	if err != nil {
		return err
	}

	s.notifier.NotifyUserLeft(ctx, roomId, actor.Uuid)
	s.afterCommit(ctx, roomId, notify.AspectMemberList)
	return nil
}

// ListMembers 房间成员，按房主、管理者、一般成员排序
func (s *Service) ListMembers(ctx context.Context, roomId string) ([]respond.MemberRespond, error) {
	key := constants.ROOM_MEMBERS_PREFIX + roomId
	var cached []respond.MemberRespond
	ver, hit := s.cacheGet(ctx, roomId, key, &cached)
	if hit {
		return cached, nil
	}

	if _, err := s.findRoom(roomId); err != nil {
		return nil, err
	}
	members, err := s.repos.Member.FindByRoom(roomId)
	if err != nil {
		return nil, storeErr(err, "")
	}
	sort.SliceStable(members, func(i, j int) bool {
		return model.AccessRank(members[i].AccessLevel) > model.AccessRank(members[j].AccessLevel)
	})

	uuids := make([]string, 0, len(members))
	for _, m := range members {
		uuids = append(uuids, m.UserUuid)
	}
	names, err := s.usernames(uuids)
	if err != nil {
		return nil, err
	}
	rsp := make([]respond.MemberRespond, 0, len(members))
	for i := range members {
		rsp = append(rsp, toMemberRespond(&members[i], names[members[i].UserUuid]))
	}
	s.cacheSet(key, ver, rsp)
	return rsp, nil
}

// GetMember 单个成员信息
func (s *Service) GetMember(ctx context.Context, actor model.ActingUser, roomId, userId string) (*respond.MemberRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	if _, err := s.findRoom(roomId); err != nil {
		return nil, err
	}
	member, err := s.repos.Member.Find(roomId, userId)
	if err != nil {
		return nil, lookupErr(err, errorx.New(errorx.CodeNotFound, "此用户不在房间内"))
	}
	names, err := s.usernames([]string{userId})
	if err != nil {
		return nil, err
	}
	rsp := toMemberRespond(member, names[userId])
	return &rsp, nil
}

// RemoveUser 将一般成员移出房间
func (s *Service) RemoveUser(ctx context.Context, actor model.ActingUser, roomId, targetId string) error {
	if err := requireVerified(actor); err != nil {
		return err
	}

	var title string
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, me, err := guard(tx, actor, roomId, model.AccessManager)
		if err != nil {
			return err
		}
		target, err := tx.Member.Find(roomId, targetId)
		if err != nil {
			return lookupErr(err, errTargetOut)
		}
		if target.AccessLevel != model.AccessUser {
			return errorx.New(errorx.CodeForbidden, "只能移出一般成员")
		}
		if err := tx.Member.Delete(roomId, targetId); err != nil {
			return storeErr(err, "")
		}
		title = room.Title
		return appendRecord(tx, roomId, who(me, actor.Username)+" 移出了 "+target.Nickname)
	})
	if err != nil {
		return err
	}

	s.notifier.CreateNotification(ctx, targetId, "你被 "+actor.Username+" 移出了房间「"+title+"」")
	s.notifier.NotifyUserLeft(ctx, roomId, targetId)
	s.afterCommit(ctx, roomId, notify.AspectMemberList)
	return nil
}

var levelDisplay = map[string]string{
	model.AccessManager: "管理者",
	model.AccessUser:    "一般成员",
}

// SetAccessLevel 批量设置成员等级，仅房主可操作
// 每一项在独立事务中执行，失败项以 "error: 原因" 的形式返回，不影响其他项
func (s *Service) SetAccessLevel(ctx context.Context, actor model.ActingUser, roomId string, levels map[string]string) (map[string]string, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		_, _, err := guard(tx, actor, roomId, model.AccessAdmin)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 按用户 ID 排序保证执行顺序稳定
	targets := make([]string, 0, len(levels))
	for target := range levels {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	result := make(map[string]string, len(levels))
	changed := false
	for _, target := range targets {
		level := levels[target]
		var title string
		err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			room, me, err := guard(tx, actor, roomId, model.AccessAdmin)
			if err != nil {
				return err
			}
			if msg := entryError(actor.Uuid, target, level); msg != "" {
				return errorx.New(errorx.CodeBadRequest, msg)
			}
			member, err := tx.Member.Find(roomId, target)
			if err != nil {
				return lookupErr(err, errorx.New(errorx.CodeBadRequest, "此用户不在房间内"))
			}
			if err := tx.Member.UpdateAccessLevel(roomId, target, level); err != nil {
				return storeErr(err, "")
			}
			title = room.Title
			return appendRecord(tx, roomId, who(me, actor.Username)+" 将 "+member.Nickname+" 设为"+levelDisplay[level])
		})
		if err != nil {
			if errorx.GetCode(err) == errorx.CodeServerBusy {
				zap.L().Error("set access level", zap.String("room", roomId), zap.String("target", target), zap.Error(err))
			}
			result[target] = "error: " + errMsg(err)
			continue
		}
		result[target] = level
		changed = true
		s.notifier.CreateNotification(ctx, target, "你被「"+title+"」的房主设为"+levelDisplay[level]+"。")
	}

	if changed {
		s.afterCommit(ctx, roomId, notify.AspectMemberList)
	}
	return result, nil
}

// entryError 不需要查询存储即可判定的失败项
func entryError(actorId, target, level string) string {
	switch {
	case level == model.AccessAdmin:
		return "无法设置房主，请使用转让房主"
	case target == actorId:
		return "无法修改自己的等级"
	case !model.IsValidAccessLevel(level):
		return "未知的权限等级"
	}
	return ""
}

func errMsg(err error) string {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	return err.Error()
}

// TransferAdmin 将房主身份转让给房间成员，原房主降为管理者
func (s *Service) TransferAdmin(ctx context.Context, actor model.ActingUser, roomId, targetId string) error {
	if err := requireVerified(actor); err != nil {
		return err
	}

	var title string
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, _, err := guard(tx, actor, roomId, model.AccessAdmin)
		if err != nil {
			return err
		}
		if targetId == actor.Uuid {
			return errorx.New(errorx.CodeBadRequest, "你已经是房主")
		}
		target, err := tx.Member.Find(roomId, targetId)
		if err != nil {
			return lookupErr(err, errTargetOut)
		}
		if err := tx.Member.UpdateAccessLevel(roomId, actor.Uuid, model.AccessManager); err != nil {
			return storeErr(err, "")
		}
		if err := tx.Member.UpdateAccessLevel(roomId, targetId, model.AccessAdmin); err != nil {
			return storeErr(err, "")
		}
		admins, err := tx.Member.CountByRoomAndLevel(roomId, model.AccessAdmin)
		if err != nil {
			return storeErr(err, "")
		}
		if admins != 1 {
			zap.L().Error("room admin count broken", zap.String("room", roomId), zap.Int64("admins", admins))
			return errorx.ErrServerBusy
		}
		title = room.Title
		names, err := tx.User.FindByUuids([]string{targetId})
		if err != nil {
			return storeErr(err, "")
		}
		username := ""
		if len(names) > 0 {
			username = names[0].Username
		}
		return appendRecord(tx, roomId, who(target, username)+" 被升为房主")
	})
	if err != nil {
		return err
	}

	s.notifier.CreateNotification(ctx, targetId, "你被升为「"+title+"」的房主")
	s.afterCommit(ctx, roomId, notify.AspectMemberList)
	return nil
}
