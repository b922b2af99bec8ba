// Package handler 提供 HTTP 请求处理器
// 本文件处理用户、邮箱验证、密码与通知相关的 API 请求
package handler

import (
	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/infrastructure/middleware"
	"chatroom_server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
// 通过构造函数注入 UserService
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register 用户注册
// POST /user/register
// 请求体: request.RegisterRequest
// 响应: 201 respond.UserRespond
func (h *UserHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Register(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// Login 邮箱密码登录
// POST /user/login
// 响应: respond.LoginRespond (用户信息 + JWT Token)
func (h *UserHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMyID 当前用户 ID
// GET /user/get_id
func (h *UserHandler) GetMyID(c *gin.Context) {
	HandleSuccess(c, gin.H{"user_id": h.userSvc.GetMyID(middleware.Actor(c))})
}

// GetUser 用户信息
// GET /user/:user_id
func (h *UserHandler) GetUser(c *gin.Context) {
	data, err := h.userSvc.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateUser 修改个人资料
// PUT /user/:user_id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req request.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.UpdateUser(c.Request.Context(), middleware.Actor(c), c.Param("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ChangePassword 修改密码
// PUT /user/:user_id/change_password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req request.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.userSvc.ChangePassword(c.Request.Context(), middleware.Actor(c), c.Param("user_id"), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// SendVerifyMail 重新发送验证邮件
// GET /user/send_verify_mail
func (h *UserHandler) SendVerifyMail(c *gin.Context) {
	if err := h.userSvc.SendVerifyMail(c.Request.Context(), middleware.Actor(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// VerifyEmail 邮件中的验证链接
// GET /user/verify_email?token=
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	if err := h.userSvc.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ForgetPassword 发送重置密码邮件
// POST /user/forget_password
func (h *UserHandler) ForgetPassword(c *gin.Context) {
	var req request.ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.userSvc.ForgetPassword(c.Request.Context(), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ResetPassword 通过邮件 token 重置密码
// POST /user/password_reset
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req request.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.userSvc.ResetPassword(c.Request.Context(), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListNotifications 我的通知
// GET /user/notification
func (h *UserHandler) ListNotifications(c *gin.Context) {
	data, err := h.userSvc.ListNotifications(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteNotification 删除通知
// DELETE /user/notification/:notify_id
func (h *UserHandler) DeleteNotification(c *gin.Context) {
	id, ok := parseID(c, "notify_id")
	if !ok {
		return
	}
	if err := h.userSvc.DeleteNotification(c.Request.Context(), middleware.Actor(c), id); err != nil {
		HandleError(c, err)
		return
	}
	HandleNoContent(c)
}

// ReadNotification 标记通知已读
// PUT /user/read_notification/:notify_id
func (h *UserHandler) ReadNotification(c *gin.Context) {
	id, ok := parseID(c, "notify_id")
	if !ok {
		return
	}
	if err := h.userSvc.ReadNotification(c.Request.Context(), middleware.Actor(c), id); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
