// Package handler 提供 HTTP 请求处理器
// 本文件处理房间、成员、封禁、记录相关的 API 请求
package handler

import (
	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/infrastructure/middleware"
	"chatroom_server/internal/service"
	"chatroom_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// RoomHandler 房间请求处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建房间处理器实例
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// ListRooms 房间列表
// GET /room/
func (h *RoomHandler) ListRooms(c *gin.Context) {
	data, err := h.roomSvc.ListRooms(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CreateRoom 创建房间
// POST /room/
// 请求体: request.CreateRoomRequest
// 响应: 201 respond.RoomRespond
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.roomSvc.CreateRoom(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// GetRoom 房间详情
// GET /room/:room_id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	data, err := h.roomSvc.GetRoom(c.Request.Context(), middleware.Actor(c), c.Param("room_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateRoom 修改房间设置
// PUT /room/:room_id
// 请求体: request.UpdateRoomRequest
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	var req request.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.roomSvc.UpdateRoom(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteRoom 删除房间
// DELETE /room/:room_id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	if err := h.roomSvc.DeleteRoom(c.Request.Context(), middleware.Actor(c), c.Param("room_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// TypeChoices 房间类型选项
// GET /room_type_choices/
func (h *RoomHandler) TypeChoices(c *gin.Context) {
	HandleSuccess(c, h.roomSvc.TypeChoices())
}

// CategoryChoices 房间分类选项
// GET /room_category_choices/
func (h *RoomHandler) CategoryChoices(c *gin.Context) {
	HandleSuccess(c, h.roomSvc.CategoryChoices())
}

// ListMyRooms 我加入的房间
// GET /user_room/
func (h *RoomHandler) ListMyRooms(c *gin.Context) {
	data, err := h.roomSvc.ListMyRooms(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMyAdminRooms 我担任房主的房间
// GET /user_admin_room/
func (h *RoomHandler) ListMyAdminRooms(c *gin.Context) {
	data, err := h.roomSvc.ListMyAdminRooms(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// JoinRoom 加入房间
// POST /room/:room_id/join_room
// 请求体: request.JoinRoomRequest
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req request.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.roomSvc.JoinRoom(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), req.Nickname)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// LeaveRoom 离开房间
// DELETE /room/:room_id/leave_room
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	if err := h.roomSvc.LeaveRoom(c.Request.Context(), middleware.Actor(c), c.Param("room_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// ListMembers 成员列表
// GET /room/:room_id/member_list
func (h *RoomHandler) ListMembers(c *gin.Context) {
	data, err := h.roomSvc.ListMembers(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMember 成员详情
// GET /room/:room_id/member/:user_id
func (h *RoomHandler) GetMember(c *gin.Context) {
	data, err := h.roomSvc.GetMember(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), c.Param("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveUser 移出成员
// DELETE /room/:room_id/remove/:user_id
func (h *RoomHandler) RemoveUser(c *gin.Context) {
	if err := h.roomSvc.RemoveUser(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), c.Param("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// SetAccessLevel 批量修改成员等级
// PUT /room/:room_id/set_access_level
// 请求体: {"<user_id>": "manager" | "user", ...}
// 响应: 每个用户的结果，失败项为 "error: 原因"
func (h *RoomHandler) SetAccessLevel(c *gin.Context) {
	var req request.SetAccessLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if len(req) == 0 {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "请至少指定一个用户"))
		return
	}
	data, err := h.roomSvc.SetAccessLevel(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// TransferAdmin 转让房主
// PUT /room/:room_id/transfer_admin/:user_id
func (h *RoomHandler) TransferAdmin(c *gin.Context) {
	if err := h.roomSvc.TransferAdmin(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), c.Param("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// ListBlocks 封禁列表
// GET /room/:room_id/block_list
func (h *RoomHandler) ListBlocks(c *gin.Context) {
	data, err := h.roomSvc.ListBlocks(c.Request.Context(), middleware.Actor(c), c.Param("room_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// BlockUser 封禁成员
// POST /room/:room_id/block/:user_id
// 请求体: request.BlockUserRequest
func (h *RoomHandler) BlockUser(c *gin.Context) {
	var req request.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.BlockUser(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), c.Param("user_id"), req.Reason); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// UnblockUser 解除封禁
// DELETE /room/:room_id/unblock/:user_id
func (h *RoomHandler) UnblockUser(c *gin.Context) {
	if err := h.roomSvc.UnblockUser(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), c.Param("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// InviteUser 邀请用户
// POST /room/:room_id/invite/:username
func (h *RoomHandler) InviteUser(c *gin.Context) {
	data, err := h.roomSvc.InviteUser(c.Request.Context(), middleware.Actor(c), c.Param("room_id"), c.Param("username"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// ListRoomInvitations 房间内待处理的邀请
// GET /room/:room_id/invitation_list
func (h *RoomHandler) ListRoomInvitations(c *gin.Context) {
	data, err := h.roomSvc.ListRoomInvitations(c.Request.Context(), middleware.Actor(c), c.Param("room_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListRecords 房间操作记录
// GET /room/:room_id/record_list
func (h *RoomHandler) ListRecords(c *gin.Context) {
	data, err := h.roomSvc.ListRecords(c.Request.Context(), middleware.Actor(c), c.Param("room_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
