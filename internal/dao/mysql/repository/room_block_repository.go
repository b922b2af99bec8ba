package repository

import (
	"chatroom_server/internal/model"

	"gorm.io/gorm"
)

type roomBlockRepository struct {
	db *gorm.DB
}

// NewRoomBlockRepository 创建封禁 Repository
func NewRoomBlockRepository(db *gorm.DB) RoomBlockRepository {
	return &roomBlockRepository{db: db}
}

func (r *roomBlockRepository) Find(roomUuid, blockedUuid string) (*model.RoomBlock, error) {
	var block model.RoomBlock
	if err := r.db.Where("room_uuid = ? AND blocked_uuid = ?", roomUuid, blockedUuid).First(&block).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询封禁 room_uuid=%s blocked_uuid=%s", roomUuid, blockedUuid)
	}
	return &block, nil
}

func (r *roomBlockRepository) FindByRoom(roomUuid string) ([]model.RoomBlock, error) {
	var blocks []model.RoomBlock
	if err := r.db.Where("room_uuid = ?", roomUuid).Order("id ASC").Find(&blocks).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询封禁列表 room_uuid=%s", roomUuid)
	}
	return blocks, nil
}

func (r *roomBlockRepository) Create(block *model.RoomBlock) error {
	if err := r.db.Create(block).Error; err != nil {
		return wrapDBErrorf(err, "创建封禁 room_uuid=%s blocked_uuid=%s", block.RoomUuid, block.BlockedUuid)
	}
	return nil
}

func (r *roomBlockRepository) Delete(roomUuid, blockedUuid string) error {
	if err := r.db.Where("room_uuid = ? AND blocked_uuid = ?", roomUuid, blockedUuid).Delete(&model.RoomBlock{}).Error; err != nil {
		return wrapDBErrorf(err, "删除封禁 room_uuid=%s blocked_uuid=%s", roomUuid, blockedUuid)
	}
	return nil
}

func (r *roomBlockRepository) DeleteByRoom(roomUuid string) error {
	if err := r.db.Where("room_uuid = ?", roomUuid).Delete(&model.RoomBlock{}).Error; err != nil {
		return wrapDBErrorf(err, "删除房间所有封禁 room_uuid=%s", roomUuid)
	}
	return nil
}
