package repository

import (
	"chatroom_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间 Repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) FindByUuid(uuid string) (*model.Room, error) {
	var room model.Room
	if err := r.db.First(&room, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间 uuid=%s", uuid)
	}
	return &room, nil
}

// LockByUuid 行锁，只在事务内有效
func (r *roomRepository) LockByUuid(uuid string) (*model.Room, error) {
	var room model.Room
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "锁定房间 uuid=%s", uuid)
	}
	return &room, nil
}

func (r *roomRepository) FindByTitle(title string) (*model.Room, error) {
	var room model.Room
	if err := r.db.First(&room, "title = ?", title).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间 title=%s", title)
	}
	return &room, nil
}

func (r *roomRepository) FindAll() ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.Order("created_at ASC, id ASC").Find(&rooms).Error; err != nil {
		return nil, wrapDBError(err, "查询所有房间")
	}
	return rooms, nil
}

func (r *roomRepository) FindByUuids(uuids []string) ([]model.Room, error) {
	var rooms []model.Room
	if len(uuids) == 0 {
		return rooms, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Order("created_at ASC, id ASC").Find(&rooms).Error; err != nil {
		return nil, wrapDBError(err, "批量查询房间")
	}
	return rooms, nil
}

func (r *roomRepository) Create(room *model.Room) error {
	if err := r.db.Create(room).Error; err != nil {
		return wrapDBErrorf(err, "创建房间 title=%s", room.Title)
	}
	return nil
}

func (r *roomRepository) Update(room *model.Room) error {
	if err := r.db.Save(room).Error; err != nil {
		return wrapDBErrorf(err, "更新房间 uuid=%s", room.Uuid)
	}
	return nil
}

func (r *roomRepository) Delete(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Room{}).Error; err != nil {
		return wrapDBErrorf(err, "删除房间 uuid=%s", uuid)
	}
	return nil
}
