package room

import (
	"context"
	"strings"
	"unicode/utf8"

	"chatroom_server/internal/dao/mysql/repository"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
)

var errUserMissing = errorx.New(errorx.CodeNotFound, "用户不存在")

// BlockUser 封禁一般成员，同时将其移出房间
func (s *Service) BlockUser(ctx context.Context, actor model.ActingUser, roomId, targetId, reason string) error {
	if err := requireVerified(actor); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n == 0 || n > constants.REASON_MAX_LEN {
		return errorx.Newf(errorx.CodeInvalidParam, "封禁原因长度需为 1-%d 个字符", constants.REASON_MAX_LEN)
	}

	var title string
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, me, err := guard(tx, actor, roomId, model.AccessManager)
		if err != nil {
			return err
		}
		if targetId == actor.Uuid {
			return errorx.New(errorx.CodeBadRequest, "不能封禁自己")
		}
		user, err := tx.User.FindByUuid(targetId)
		if err != nil {
			return lookupErr(err, errUserMissing)
		}
		if _, err := tx.Block.Find(roomId, targetId); err == nil {
			return errorx.New(errorx.CodeConflict, "此用户已经被封禁")
		} else if !errorx.IsNotFound(err) {
			return storeErr(err, "")
		}
		target, err := tx.Member.Find(roomId, targetId)
		if err != nil {
			return lookupErr(err, errTargetOut)
		}
		if target.AccessLevel != model.AccessUser {
			return errorx.New(errorx.CodeForbidden, "只能封禁一般成员")
		}

		if err := tx.Member.Delete(roomId, targetId); err != nil {
			return storeErr(err, "")
		}
		block := &model.RoomBlock{RoomUuid: roomId, BlockedUuid: targetId, ManagerUuid: actor.Uuid, Reason: reason}
		if err := tx.Block.Create(block); err != nil {
			return storeErr(err, "此用户已经被封禁")
		}
		title = room.Title
		return appendRecord(tx, roomId, who(me, actor.Username)+" 封禁了 "+user.Username)
	})
	if err != nil {
		return err
	}

	s.notifier.CreateNotification(ctx, targetId, "你被 "+actor.Username+" 禁止进入房间「"+title+"」，原因："+reason)
	s.notifier.NotifyUserLeft(ctx, roomId, targetId)
	s.afterCommit(ctx, roomId, notify.AspectMemberList, notify.AspectBlockList)
	return nil
}

// UnblockUser 解除封禁，解封后不会自动加入房间
func (s *Service) UnblockUser(ctx context.Context, actor model.ActingUser, roomId, targetId string) error {
	if err := requireVerified(actor); err != nil {
		return err
	}

	var title string
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, me, err := guard(tx, actor, roomId, model.AccessManager)
		if err != nil {
			return err
		}
		user, err := tx.User.FindByUuid(targetId)
		if err != nil {
			return lookupErr(err, errUserMissing)
		}
		if _, err := tx.Block.Find(roomId, targetId); err != nil {
			return lookupErr(err, errorx.New(errorx.CodeBadRequest, "此用户尚未被封禁"))
		}
		if err := tx.Block.Delete(roomId, targetId); err != nil {
			return storeErr(err, "")
		}
		title = room.Title
		return appendRecord(tx, roomId, who(me, actor.Username)+" 解封了 "+user.Username)
	})
	if err != nil {
		return err
	}

	s.notifier.CreateNotification(ctx, targetId, actor.Username+" 将你从房间「"+title+"」解封了")
	s.afterCommit(ctx, roomId, notify.AspectBlockList)
	return nil
}

// ListBlocks 房间封禁列表，仅房间成员可见
func (s *Service) ListBlocks(ctx context.Context, actor model.ActingUser, roomId string) ([]respond.BlockRespond, error) {
	if _, err := s.findRoom(roomId); err != nil {
		return nil, err
	}
	if err := s.requireMember(roomId, actor.Uuid); err != nil {
		return nil, err
	}
	blocks, err := s.repos.Block.FindByRoom(roomId)
	if err != nil {
		return nil, storeErr(err, "")
	}
	uuids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		uuids = append(uuids, b.BlockedUuid)
	}
	names, err := s.usernames(uuids)
	if err != nil {
		return nil, err
	}
	rsp := make([]respond.BlockRespond, 0, len(blocks))
	for _, b := range blocks {
		rsp = append(rsp, respond.BlockRespond{
			UserId:    b.BlockedUuid,
			Username:  names[b.BlockedUuid],
			ManagerId: b.ManagerUuid,
			Reason:    b.Reason,
			BlockTime: b.BlockTime.Format(constants.TIME_LAYOUT),
		})
	}
	return rsp, nil
}
