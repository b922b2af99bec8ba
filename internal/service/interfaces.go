// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
package service

import (
	"context"

	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/model"
)

// RoomService 房间业务接口
// 成员、封禁、邀请、权限等所有写操作都在房间行锁下完成
type RoomService interface {
	CreateRoom(ctx context.Context, actor model.ActingUser, req request.CreateRoomRequest) (*respond.RoomRespond, error)
	ListRooms(ctx context.Context) ([]respond.RoomRespond, error)
	GetRoom(ctx context.Context, actor model.ActingUser, roomId string) (*respond.RoomRespond, error)
	UpdateRoom(ctx context.Context, actor model.ActingUser, roomId string, req request.UpdateRoomRequest) (*respond.RoomRespond, error)
	DeleteRoom(ctx context.Context, actor model.ActingUser, roomId string) error
	TypeChoices() []model.Choice
	CategoryChoices() []model.Choice
	ListMyRooms(ctx context.Context, actor model.ActingUser) ([]respond.RoomRespond, error)
	ListMyAdminRooms(ctx context.Context, actor model.ActingUser) ([]respond.RoomRespond, error)

	JoinRoom(ctx context.Context, actor model.ActingUser, roomId, nickname string) (*respond.MemberRespond, error)
	LeaveRoom(ctx context.Context, actor model.ActingUser, roomId string) error
	ListMembers(ctx context.Context, roomId string) ([]respond.MemberRespond, error)
	GetMember(ctx context.Context, actor model.ActingUser, roomId, userId string) (*respond.MemberRespond, error)
	RemoveUser(ctx context.Context, actor model.ActingUser, roomId, targetId string) error
	// SetAccessLevel 返回每个目标用户的结果：成功为新等级，失败为 "error: 原因"
	SetAccessLevel(ctx context.Context, actor model.ActingUser, roomId string, levels map[string]string) (map[string]string, error)
	TransferAdmin(ctx context.Context, actor model.ActingUser, roomId, targetId string) error

	BlockUser(ctx context.Context, actor model.ActingUser, roomId, targetId, reason string) error
	UnblockUser(ctx context.Context, actor model.ActingUser, roomId, targetId string) error
	ListBlocks(ctx context.Context, actor model.ActingUser, roomId string) ([]respond.BlockRespond, error)

	InviteUser(ctx context.Context, actor model.ActingUser, roomId, username string) (*respond.InvitationRespond, error)
	AcceptInvite(ctx context.Context, actor model.ActingUser, inviteId int64, nickname string) (*respond.MemberRespond, error)
	RejectInvite(ctx context.Context, actor model.ActingUser, inviteId int64) error
	ListRoomInvitations(ctx context.Context, actor model.ActingUser, roomId string) ([]respond.InvitationRespond, error)
	ListMyInvitations(ctx context.Context, actor model.ActingUser) ([]respond.InvitationRespond, error)

	ListRecords(ctx context.Context, actor model.ActingUser, roomId string) ([]respond.RecordRespond, error)
}

// UserService 用户业务接口
// 处理注册、登录、资料、邮箱验证、密码重置与站内通知
type UserService interface {
	// Register 邮箱注册
	Register(ctx context.Context, req request.RegisterRequest) (*respond.UserRespond, error)
	// Login 邮箱密码登录
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	GetMyID(actor model.ActingUser) string
	GetUser(ctx context.Context, uuid string) (*respond.UserRespond, error)
	UpdateUser(ctx context.Context, actor model.ActingUser, uuid string, req request.UpdateUserRequest) (*respond.UserRespond, error)
	ChangePassword(ctx context.Context, actor model.ActingUser, uuid string, req request.ChangePasswordRequest) error
	SendVerifyMail(ctx context.Context, actor model.ActingUser) error
	VerifyEmail(ctx context.Context, token string) error
	ForgetPassword(ctx context.Context, req request.ForgetPasswordRequest) error
	ResetPassword(ctx context.Context, req request.ResetPasswordRequest) error

	ListNotifications(ctx context.Context, actor model.ActingUser) ([]respond.NotificationRespond, error)
	DeleteNotification(ctx context.Context, actor model.ActingUser, id int64) error
	ReadNotification(ctx context.Context, actor model.ActingUser, id int64) error

	// ResolveActor 中间件使用，将 token 中的用户 ID 解析为 ActingUser
	ResolveActor(ctx context.Context, uuid string) (model.ActingUser, error)
}

// AuthService 认证业务接口
type AuthService interface {
	ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error)
	Refresh(ctx context.Context, refreshToken string) (*respond.TokenRespond, error)
}
