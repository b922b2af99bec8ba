package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterInvitationRoutes 注册被邀请者处理邀请的路由（需要认证）
func (rt *Router) RegisterInvitationRoutes(rg *gin.RouterGroup) {
	invitationGroup := rg.Group("/invitation")
	{
		invitationGroup.GET("/", rt.handlers.Invitation.ListMine)
		invitationGroup.POST("/:invite_id/accept", rt.handlers.Invitation.Accept)
		invitationGroup.DELETE("/:invite_id/reject", rt.handlers.Invitation.Reject)
	}
}
