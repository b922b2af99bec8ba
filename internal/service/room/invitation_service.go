package room

import (
	"context"
	"errors"

	"chatroom_server/internal/dao/mysql/repository"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

var (
	errNotYourInvite = errorx.New(errorx.CodeBadRequest, "此邀请不是给你的")
	errRoomGone      = errorx.New(errorx.CodeBadRequest, "房间已被删除")
)

// InviteUser 按用户名邀请用户进入房间，需要管理者以上权限
func (s *Service) InviteUser(ctx context.Context, actor model.ActingUser, roomId, username string) (*respond.InvitationRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}

	var (
		title      string
		invitation *model.RoomInvitation
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		room, me, err := guard(tx, actor, roomId, model.AccessManager)
		if err != nil {
			return err
		}
		user, err := tx.User.FindByUsername(username)
		if err != nil {
			return lookupErr(err, errorx.New(errorx.CodeBadRequest, "用户不存在"))
		}
		if _, err := tx.Member.Find(roomId, user.Uuid); err == nil {
			return errorx.New(errorx.CodeConflict, "用户已在房间内")
		} else if !errorx.IsNotFound(err) {
			return storeErr(err, "")
		}
		if _, err := tx.Block.Find(roomId, user.Uuid); err == nil {
			return errorx.New(errorx.CodeForbidden, "用户已被封禁，无法邀请")
		} else if !errorx.IsNotFound(err) {
			return storeErr(err, "")
		}
		if _, err := tx.Invitation.FindByRoomAndInvited(roomId, user.Uuid); err == nil {
			return errorx.New(errorx.CodeConflict, "用户已被邀请")
		} else if !errorx.IsNotFound(err) {
			return storeErr(err, "")
		}
		count, err := tx.Member.CountByRoom(roomId)
		if err != nil {
			return storeErr(err, "")
		}
		if room.IsFull(count) {
			return errorx.New(errorx.CodeConflict, "房间已满，无法再邀请")
		}

		invitation = &model.RoomInvitation{
			ID:          snowflake.GenerateID(),
			RoomUuid:    roomId,
			InviterUuid: actor.Uuid,
			InvitedUuid: user.Uuid,
		}
		if err := tx.Invitation.Create(invitation); err != nil {
			return storeErr(err, "用户已被邀请")
		}
		title = room.Title
		return appendRecord(tx, roomId, who(me, actor.Username)+" 邀请了 "+user.Username+" 进入房间")
	})
	if err != nil {
		return nil, err
	}

	s.notifier.CreateNotification(ctx, invitation.InvitedUuid, "你被邀请进入房间「"+title+"」")
	s.afterCommit(ctx, roomId, notify.AspectInviteList)
	rsp := toInvitationRespond(invitation, title)
	return &rsp, nil
}

// AcceptInvite 接受邀请并加入房间
// 房间已不存在时删除这条邀请并返回错误
func (s *Service) AcceptInvite(ctx context.Context, actor model.ActingUser, inviteId int64, nickname string) (*respond.MemberRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}

	var (
		roomId string
		member *model.RoomMember
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		invitation, err := tx.Invitation.FindById(inviteId)
		if err != nil {
			return lookupErr(err, errNotYourInvite)
		}
		if invitation.InvitedUuid != actor.Uuid {
			return errNotYourInvite
		}
		roomId = invitation.RoomUuid
		room, err := tx.Room.LockByUuid(roomId)
		if err != nil {
			return lookupErr(err, errRoomGone)
		}
		if member, err = admitMember(tx, room, actor.Uuid, nickname, nil); err != nil {
			return err
		}
		if err := tx.Invitation.Delete(inviteId); err != nil {
			return storeErr(err, "")
		}
		return appendRecord(tx, roomId, who(member, actor.Username)+" 接受邀请进入了房间")
	})
	if errors.Is(err, errRoomGone) {
		if delErr := s.repos.Invitation.Delete(inviteId); delErr != nil && !errorx.IsNotFound(delErr) {
			zap.L().Error("delete orphan invitation", zap.Int64("invite", inviteId), zap.Error(delErr))
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUserJoined(ctx, roomId, actor.Uuid)
	s.afterCommit(ctx, roomId, notify.AspectMemberList, notify.AspectInviteList)
	rsp := toMemberRespond(member, actor.Username)
	return &rsp, nil
}

// RejectInvite 拒绝邀请
func (s *Service) RejectInvite(ctx context.Context, actor model.ActingUser, inviteId int64) error {
	if err := requireVerified(actor); err != nil {
		return err
	}

	var roomId string
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		invitation, err := tx.Invitation.FindById(inviteId)
		if err != nil {
			return lookupErr(err, errNotYourInvite)
		}
		if invitation.InvitedUuid != actor.Uuid {
			return errNotYourInvite
		}
		if err := tx.Invitation.Delete(inviteId); err != nil {
			return storeErr(err, "")
		}
		if _, err := tx.Room.LockByUuid(invitation.RoomUuid); err != nil {
			if errorx.IsNotFound(err) {
				return nil
			}
			return storeErr(err, "")
		}
		roomId = invitation.RoomUuid
		return appendRecord(tx, roomId, actor.Username+" 拒绝了房间的邀请")
	})
	if err != nil {
		return err
	}

	if roomId != "" {
		s.afterCommit(ctx, roomId, notify.AspectInviteList)
	}
	return nil
}

// ListRoomInvitations 房间内待处理的邀请，仅房间成员可见
func (s *Service) ListRoomInvitations(ctx context.Context, actor model.ActingUser, roomId string) ([]respond.InvitationRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	room, err := s.findRoom(roomId)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(roomId, actor.Uuid); err != nil {
		return nil, err
	}
	invitations, err := s.repos.Invitation.FindByRoom(roomId)
	if err != nil {
		return nil, storeErr(err, "")
	}
	rsp := make([]respond.InvitationRespond, 0, len(invitations))
	for i := range invitations {
		rsp = append(rsp, toInvitationRespond(&invitations[i], room.Title))
	}
	return rsp, nil
}

// ListMyInvitations 当前用户收到的邀请
func (s *Service) ListMyInvitations(ctx context.Context, actor model.ActingUser) ([]respond.InvitationRespond, error) {
	if err := requireVerified(actor); err != nil {
		return nil, err
	}
	invitations, err := s.repos.Invitation.FindByInvited(actor.Uuid)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if len(invitations) == 0 {
		return []respond.InvitationRespond{}, nil
	}

	roomIds := make([]string, 0, len(invitations))
	for _, inv := range invitations {
		roomIds = append(roomIds, inv.RoomUuid)
	}
	rooms, err := s.repos.Room.FindByUuids(roomIds)
	if err != nil {
		return nil, storeErr(err, "")
	}
	titles := make(map[string]string, len(rooms))
	for _, r := range rooms {
		titles[r.Uuid] = r.Title
	}

	rsp := make([]respond.InvitationRespond, 0, len(invitations))
	for i := range invitations {
		rsp = append(rsp, toInvitationRespond(&invitations[i], titles[invitations[i].RoomUuid]))
	}
	return rsp, nil
}

func toInvitationRespond(inv *model.RoomInvitation, title string) respond.InvitationRespond {
	return respond.InvitationRespond{
		InviteId:   inv.ID,
		RoomId:     inv.RoomUuid,
		RoomTitle:  title,
		InviterId:  inv.InviterUuid,
		InvitedId:  inv.InvitedUuid,
		InviteTime: inv.InviteTime.Format(constants.TIME_LAYOUT),
	}
}
