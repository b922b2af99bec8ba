package respond

// RoomRespond 房间信息，同时作为 room_info_ 缓存内容
// 使用位置:
//   - internal/service/room: GetRoom, ListRooms, CreateRoom, UpdateRoom
type RoomRespond struct {
	RoomId       string `json:"room_id"`
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	CreateTime   string `json:"create_time"`
	ValidTime    string `json:"valid_time,omitempty"`
	RoomType     string `json:"room_type"`
	RoomCategory string `json:"room_category"`
	PeopleLimit  int    `json:"people_limit"`
	ImageUrl     string `json:"image_url"`
}

// MemberRespond 房间成员
type MemberRespond struct {
	UserId      string `json:"user_id"`
	Username    string `json:"username"`
	Nickname    string `json:"nickname"`
	AccessLevel string `json:"access_level"`
	JoinTime    string `json:"join_time"`
}

// BlockRespond 封禁记录
type BlockRespond struct {
	UserId    string `json:"user_id"`
	Username  string `json:"username"`
	ManagerId string `json:"manager_id"`
	Reason    string `json:"reason"`
	BlockTime string `json:"block_time"`
}

// InvitationRespond 入房邀请，ID 以字符串输出避免前端精度丢失
type InvitationRespond struct {
	InviteId   int64  `json:"invite_id,string"`
	RoomId     string `json:"room_id"`
	RoomTitle  string `json:"room_title"`
	InviterId  string `json:"inviter_id"`
	InvitedId  string `json:"invited_id"`
	InviteTime string `json:"invite_time"`
}

// RecordRespond 房间操作记录
type RecordRespond struct {
	Recording  string `json:"recording"`
	RecordTime string `json:"record_time"`
}
