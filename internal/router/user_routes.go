package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/get_id", rt.handlers.User.GetMyID)
		userGroup.GET("/send_verify_mail", rt.handlers.User.SendVerifyMail)

		// ===== 站内通知 =====
		userGroup.GET("/notification", rt.handlers.User.ListNotifications)
		userGroup.DELETE("/notification/:notify_id", rt.handlers.User.DeleteNotification)
		userGroup.PUT("/read_notification/:notify_id", rt.handlers.User.ReadNotification)

		// ===== 个人资料 =====
		userGroup.GET("/:user_id", rt.handlers.User.GetUser)
		userGroup.PUT("/:user_id", rt.handlers.User.UpdateUser)
		userGroup.PUT("/:user_id/change_password", rt.handlers.User.ChangePassword)
	}
}
