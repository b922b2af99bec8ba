package repository

import (
	"chatroom_server/internal/model"

	"gorm.io/gorm"
)

type roomInvitationRepository struct {
	db *gorm.DB
}

// NewRoomInvitationRepository 创建邀请 Repository
func NewRoomInvitationRepository(db *gorm.DB) RoomInvitationRepository {
	return &roomInvitationRepository{db: db}
}

func (r *roomInvitationRepository) FindById(id int64) (*model.RoomInvitation, error) {
	var inv model.RoomInvitation
	if err := r.db.First(&inv, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询邀请 id=%d", id)
	}
	return &inv, nil
}

func (r *roomInvitationRepository) FindByRoomAndInvited(roomUuid, invitedUuid string) (*model.RoomInvitation, error) {
	var inv model.RoomInvitation
	if err := r.db.Where("room_uuid = ? AND invited_uuid = ?", roomUuid, invitedUuid).First(&inv).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询邀请 room_uuid=%s invited_uuid=%s", roomUuid, invitedUuid)
	}
	return &inv, nil
}

func (r *roomInvitationRepository) FindByRoom(roomUuid string) ([]model.RoomInvitation, error) {
	var invs []model.RoomInvitation
	if err := r.db.Where("room_uuid = ?", roomUuid).Order("invite_time ASC").Find(&invs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间邀请 room_uuid=%s", roomUuid)
	}
	return invs, nil
}

func (r *roomInvitationRepository) FindByInvited(invitedUuid string) ([]model.RoomInvitation, error) {
	var invs []model.RoomInvitation
	if err := r.db.Where("invited_uuid = ?", invitedUuid).Order("invite_time ASC").Find(&invs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询我的邀请 invited_uuid=%s", invitedUuid)
	}
	return invs, nil
}

func (r *roomInvitationRepository) Create(inv *model.RoomInvitation) error {
	if err := r.db.Create(inv).Error; err != nil {
		return wrapDBErrorf(err, "创建邀请 room_uuid=%s invited_uuid=%s", inv.RoomUuid, inv.InvitedUuid)
	}
	return nil
}

func (r *roomInvitationRepository) Delete(id int64) error {
	if err := r.db.Delete(&model.RoomInvitation{}, "id = ?", id).Error; err != nil {
		return wrapDBErrorf(err, "删除邀请 id=%d", id)
	}
	return nil
}

func (r *roomInvitationRepository) DeleteByRoom(roomUuid string) error {
	if err := r.db.Where("room_uuid = ?", roomUuid).Delete(&model.RoomInvitation{}).Error; err != nil {
		return wrapDBErrorf(err, "删除房间所有邀请 room_uuid=%s", roomUuid)
	}
	return nil
}
