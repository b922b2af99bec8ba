// Package notify 负责房间状态变化后的外部推送与站内通知
// 所有推送都在事务提交之后异步执行，失败只记录日志
package notify

import "strings"

// 房间变化的方面
const (
	AspectMemberList = "member_list"
	AspectBlockList  = "block_list"
	AspectInviteList = "invite_list"
	AspectProfile    = "profile"
	AspectDeleteRoom = "delete_room"
)

// 事件类型
const (
	KindRoomUpdate = "room_update"
	KindUserJoined = "user_joined"
	KindUserLeft   = "user_left"
	KindUserPing   = "user_ping" // 提醒用户拉取新通知
)

// Event 推送给实时服务的事件
type Event struct {
	Kind     string `json:"kind"`
	RoomUuid string `json:"room_uuid,omitempty"`
	UserUuid string `json:"user_uuid,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Key 分区键，房间事件按房间分区，用户事件按用户分区
func (e Event) Key() string {
	if e.RoomUuid != "" {
		return e.RoomUuid
	}
	return e.UserUuid
}

// JoinAspects 多个变化方面以逗号拼接
func JoinAspects(aspects []string) string {
	return strings.Join(aspects, ",")
}
