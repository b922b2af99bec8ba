package request

import "time"

// CreateRoomRequest 创建房间请求
// 使用位置:
//   - internal/handler/room_handler.go: CreateRoom
//   - internal/service/room/room_service.go: CreateRoom
type CreateRoomRequest struct {
	Title        string     `json:"title" binding:"required,max=20"`
	Introduction string     `json:"introduction" binding:"max=200"`
	RoomType     string     `json:"room_type" binding:"omitempty,oneof=public private course"`
	RoomCategory string     `json:"room_category" binding:"omitempty,oneof=course eating hiking"`
	PeopleLimit  int        `json:"people_limit" binding:"gte=0"`
	ImageUrl     string     `json:"image_url" binding:"omitempty,max=255"`
	ValidTime    *time.Time `json:"valid_time"`
	Nickname     string     `json:"nickname" binding:"required,max=20"`
}

// UpdateRoomRequest 修改房间设置，只更新非 nil 字段
type UpdateRoomRequest struct {
	Title        *string    `json:"title" binding:"omitempty,min=1,max=20"`
	Introduction *string    `json:"introduction" binding:"omitempty,max=200"`
	RoomType     *string    `json:"room_type" binding:"omitempty,oneof=public private course"`
	RoomCategory *string    `json:"room_category" binding:"omitempty,oneof=course eating hiking"`
	PeopleLimit  *int       `json:"people_limit" binding:"omitempty,gte=0"`
	ImageUrl     *string    `json:"image_url" binding:"omitempty,max=255"`
	ValidTime    *time.Time `json:"valid_time"`
}

// JoinRoomRequest 加入房间 / 接受邀请时填写房内昵称
type JoinRoomRequest struct {
	Nickname string `json:"nickname" binding:"required,max=20"`
}

// BlockUserRequest 封禁用户请求
type BlockUserRequest struct {
	Reason string `json:"reason" binding:"required,max=50"`
}

// SetAccessLevelRequest 批量修改权限，key 为用户 ID，value 为目标等级
type SetAccessLevelRequest map[string]string
