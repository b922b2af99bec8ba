// Package repository 提供数据访问层的具体实现
// 本文件实现 RoomMemberRepository 接口，处理房间成员相关的数据库操作
package repository

import (
	"chatroom_server/internal/model"

	"gorm.io/gorm"
)

// roomMemberRepository RoomMemberRepository 接口的实现
type roomMemberRepository struct {
	db *gorm.DB
}

// NewRoomMemberRepository 创建 RoomMemberRepository 实例
func NewRoomMemberRepository(db *gorm.DB) RoomMemberRepository {
	return &roomMemberRepository{db: db}
}

// Find 根据房间和用户查找成员关系
// 用于检查用户是否已在房间中
func (r *roomMemberRepository) Find(roomUuid, userUuid string) (*model.RoomMember, error) {
	var member model.RoomMember
	if err := r.db.Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间成员 room_uuid=%s user_uuid=%s", roomUuid, userUuid)
	}
	return &member, nil
}

// FindByNickname 根据房内昵称查找成员
func (r *roomMemberRepository) FindByNickname(roomUuid, nickname string) (*model.RoomMember, error) {
	var member model.RoomMember
	if err := r.db.Where("room_uuid = ? AND nickname = ?", roomUuid, nickname).First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间昵称 room_uuid=%s nickname=%s", roomUuid, nickname)
	}
	return &member, nil
}

// FindByRoom 根据房间查找所有成员
func (r *roomMemberRepository) FindByRoom(roomUuid string) ([]model.RoomMember, error) {
	var members []model.RoomMember
	if err := r.db.Where("room_uuid = ?", roomUuid).Order("id ASC").Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间成员 room_uuid=%s", roomUuid)
	}
	return members, nil
}

// FindByUser 查找用户在所有房间的成员记录
func (r *roomMemberRepository) FindByUser(userUuid string) ([]model.RoomMember, error) {
	var members []model.RoomMember
	if err := r.db.Where("user_uuid = ?", userUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在房间 user_uuid=%s", userUuid)
	}
	return members, nil
}

// FindRoomUuidsByUser 获取用户所在房间的 UUID
// Pluck: 只获取指定字段的值
func (r *roomMemberRepository) FindRoomUuidsByUser(userUuid, level string) ([]string, error) {
	var uuids []string
	query := r.db.Model(&model.RoomMember{}).Where("user_uuid = ?", userUuid)
	if level != "" {
		query = query.Where("access_level = ?", level)
	}
	if err := query.Pluck("room_uuid", &uuids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户房间ID user_uuid=%s", userUuid)
	}
	return uuids, nil
}

func (r *roomMemberRepository) CountByRoom(roomUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.RoomMember{}).Where("room_uuid = ?", roomUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计房间人数 room_uuid=%s", roomUuid)
	}
	return count, nil
}

func (r *roomMemberRepository) CountByRoomAndLevel(roomUuid, level string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.RoomMember{}).
		Where("room_uuid = ? AND access_level = ?", roomUuid, level).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计房间 %s 等级人数 room_uuid=%s", level, roomUuid)
	}
	return count, nil
}

func (r *roomMemberRepository) CountByUserAndLevel(userUuid, level string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.RoomMember{}).
		Where("user_uuid = ? AND access_level = ?", userUuid, level).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计用户 %s 房间数 user_uuid=%s", level, userUuid)
	}
	return count, nil
}

// Create 添加房间成员
// (room_uuid, user_uuid) 或 (room_uuid, nickname) 冲突时返回 Conflict
func (r *roomMemberRepository) Create(member *model.RoomMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBErrorf(err, "创建房间成员 room_uuid=%s user_uuid=%s", member.RoomUuid, member.UserUuid)
	}
	return nil
}

// UpdateAccessLevel 修改成员权限等级
func (r *roomMemberRepository) UpdateAccessLevel(roomUuid, userUuid, level string) error {
	if err := r.db.Model(&model.RoomMember{}).
		Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).
		Update("access_level", level).Error; err != nil {
		return wrapDBErrorf(err, "更新成员等级 room_uuid=%s user_uuid=%s", roomUuid, userUuid)
	}
	return nil
}

// Delete 删除单个成员
func (r *roomMemberRepository) Delete(roomUuid, userUuid string) error {
	if err := r.db.Where("room_uuid = ? AND user_uuid = ?", roomUuid, userUuid).Delete(&model.RoomMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除房间成员 room_uuid=%s user_uuid=%s", roomUuid, userUuid)
	}
	return nil
}

// DeleteByRoom 删除房间的所有成员
// 用于删除房间时清理成员数据
func (r *roomMemberRepository) DeleteByRoom(roomUuid string) error {
	if err := r.db.Where("room_uuid = ?", roomUuid).Delete(&model.RoomMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除房间所有成员 room_uuid=%s", roomUuid)
	}
	return nil
}
