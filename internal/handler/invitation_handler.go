package handler

import (
	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/infrastructure/middleware"
	"chatroom_server/internal/service"

	"github.com/gin-gonic/gin"
)

// InvitationHandler 被邀请者视角的邀请处理
type InvitationHandler struct {
	roomSvc service.RoomService
}

func NewInvitationHandler(roomSvc service.RoomService) *InvitationHandler {
	return &InvitationHandler{roomSvc: roomSvc}
}

// ListMine 我收到的邀请
// GET /invitation/
func (h *InvitationHandler) ListMine(c *gin.Context) {
	data, err := h.roomSvc.ListMyInvitations(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Accept 接受邀请，需要填写房内昵称
// POST /invitation/:invite_id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	id, ok := parseID(c, "invite_id")
	if !ok {
		return
	}
	var req request.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.roomSvc.AcceptInvite(c.Request.Context(), middleware.Actor(c), id, req.Nickname)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Reject 拒绝邀请
// DELETE /invitation/:invite_id/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	id, ok := parseID(c, "invite_id")
	if !ok {
		return
	}
	if err := h.roomSvc.RejectInvite(c.Request.Context(), middleware.Actor(c), id); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}
