package model

import "time"

// 房间类型
const (
	RoomTypePublic  = "public"
	RoomTypePrivate = "private"
	RoomTypeCourse  = "course"
)

// 房间分类
const (
	RoomCategoryCourse = "course"
	RoomCategoryEating = "eating"
	RoomCategoryHiking = "hiking"
)

// Choice 下拉选项
type Choice struct {
	Value    string `json:"value"`
	Display  string `json:"display"`
	ImageUrl string `json:"url,omitempty"`
}

// RoomTypeChoices 房间类型选项，顺序即展示顺序
var RoomTypeChoices = []Choice{
	{Value: RoomTypePublic, Display: "公开房间"},
	{Value: RoomTypePrivate, Display: "私密房间"},
	{Value: RoomTypeCourse, Display: "课程讨论房间"},
}

// RoomCategoryChoices 房间分类选项及默认封面
var RoomCategoryChoices = []Choice{
	{Value: RoomCategoryCourse, Display: "课程讨论", ImageUrl: "https://i.imgur.com/GIiSOLM.jpg"},
	{Value: RoomCategoryEating, Display: "吃饭", ImageUrl: "https://i.imgur.com/kN4J0UL.jpg"},
	{Value: RoomCategoryHiking, Display: "爬山", ImageUrl: "https://i.imgur.com/17SSeJb.png"},
}

// IsValidRoomType 校验房间类型
func IsValidRoomType(t string) bool {
	for _, c := range RoomTypeChoices {
		if c.Value == t {
			return true
		}
	}
	return false
}

// CategoryImage 返回分类默认封面，未知分类返回空串
func CategoryImage(category string) (string, bool) {
	for _, c := range RoomCategoryChoices {
		if c.Value == category {
			return c.ImageUrl, true
		}
	}
	return "", false
}

// Room 房间
// 成员、封禁、邀请、记录都挂在 room_uuid 上，删除房间时在同一事务内级联删除
type Room struct {
	ID           uint       `gorm:"primarykey"`
	Uuid         string     `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:房间唯一id"`
	Title        string     `gorm:"column:title;uniqueIndex;type:varchar(20);not null;comment:房间名称"`
	Introduction string     `gorm:"column:introduction;type:varchar(200);comment:简介"`
	RoomType     string     `gorm:"column:room_type;type:varchar(10);default:public;not null;comment:public/private/course"`
	RoomCategory string     `gorm:"column:room_category;type:varchar(20);default:course;not null;comment:分类"`
	PeopleLimit  int        `gorm:"column:people_limit;default:0;not null;comment:人数上限，0为不限"`
	ImageUrl     string     `gorm:"column:image_url;type:varchar(255);comment:封面"`
	ValidTime    *time.Time `gorm:"column:valid_time;comment:有效期"`
	CreatedAt    time.Time  `gorm:"column:created_at;index"`
	UpdatedAt    time.Time
}

func (Room) TableName() string {
	return "room"
}

// IsFull 人数已达上限
func (r *Room) IsFull(memberCount int64) bool {
	return r.PeopleLimit != 0 && int64(r.PeopleLimit) <= memberCount
}
