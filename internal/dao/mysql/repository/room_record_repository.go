package repository

import (
	"chatroom_server/internal/model"

	"gorm.io/gorm"
)

type roomRecordRepository struct {
	db *gorm.DB
}

// NewRoomRecordRepository 创建房间记录 Repository
func NewRoomRecordRepository(db *gorm.DB) RoomRecordRepository {
	return &roomRecordRepository{db: db}
}

func (r *roomRecordRepository) Create(record *model.RoomRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return wrapDBErrorf(err, "写入房间记录 room_uuid=%s", record.RoomUuid)
	}
	return nil
}

func (r *roomRecordRepository) FindByRoom(roomUuid string) ([]model.RoomRecord, error) {
	var records []model.RoomRecord
	if err := r.db.Where("room_uuid = ?", roomUuid).Order("record_time DESC, id DESC").Find(&records).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间记录 room_uuid=%s", roomUuid)
	}
	return records, nil
}

func (r *roomRecordRepository) DeleteByRoom(roomUuid string) error {
	if err := r.db.Where("room_uuid = ?", roomUuid).Delete(&model.RoomRecord{}).Error; err != nil {
		return wrapDBErrorf(err, "删除房间记录 room_uuid=%s", roomUuid)
	}
	return nil
}
