// Package router 提供 HTTP 路由注册
// 本文件定义房间相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoomRoutes 注册房间相关路由（需要认证）
// 包括房间管理、成员管理、封禁、邀请与操作记录
func (rt *Router) RegisterRoomRoutes(rg *gin.RouterGroup) {
	room := rt.handlers.Room

	rg.GET("/user_room/", room.ListMyRooms)
	rg.GET("/user_admin_room/", room.ListMyAdminRooms)
	rg.GET("/room_type_choices/", room.TypeChoices)
	rg.GET("/room_category_choices/", room.CategoryChoices)

	roomGroup := rg.Group("/room")
	{
		// ===== 房间基本操作 =====
		roomGroup.GET("/", room.ListRooms)
		roomGroup.POST("/", room.CreateRoom)
		roomGroup.GET("/:room_id", room.GetRoom)
		roomGroup.PUT("/:room_id", room.UpdateRoom)
		roomGroup.DELETE("/:room_id", room.DeleteRoom)

		// ===== 成员 =====
		roomGroup.GET("/:room_id/member_list", room.ListMembers)
		roomGroup.GET("/:room_id/member/:user_id", room.GetMember)
		roomGroup.POST("/:room_id/join_room", room.JoinRoom)
		roomGroup.DELETE("/:room_id/leave_room", room.LeaveRoom)
		roomGroup.DELETE("/:room_id/remove/:user_id", room.RemoveUser)
		roomGroup.PUT("/:room_id/set_access_level", room.SetAccessLevel)
		roomGroup.PUT("/:room_id/transfer_admin/:user_id", room.TransferAdmin)

		// ===== 封禁 =====
		roomGroup.GET("/:room_id/block_list", room.ListBlocks)
		roomGroup.POST("/:room_id/block/:user_id", room.BlockUser)
		roomGroup.DELETE("/:room_id/unblock/:user_id", room.UnblockUser)

		// ===== 邀请与记录 =====
		roomGroup.POST("/:room_id/invite/:username", room.InviteUser)
		roomGroup.GET("/:room_id/invitation_list", room.ListRoomInvitations)
		roomGroup.GET("/:room_id/record_list", room.ListRecords)
	}
}
