package repository

import (
	"context"

	"chatroom_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByUsername 根据用户名查找用户（邀请入房使用）
	FindByUsername(username string) (*model.UserInfo, error)
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
	Create(user *model.UserInfo) error
	Update(user *model.UserInfo) error
}

// RoomRepository 房间数据访问接口
type RoomRepository interface {
	FindByUuid(uuid string) (*model.Room, error)
	// LockByUuid 在事务内以 SELECT ... FOR UPDATE 锁定房间行
	// 同一房间的所有写操作都先获取该锁，检查与写入之间不会被并发请求插入
	LockByUuid(uuid string) (*model.Room, error)
	FindByTitle(title string) (*model.Room, error)
	// FindAll 按创建时间升序返回所有房间
	FindAll() ([]model.Room, error)
	FindByUuids(uuids []string) ([]model.Room, error)
	Create(room *model.Room) error
	Update(room *model.Room) error
	Delete(uuid string) error
}

// RoomMemberRepository 房间成员数据访问接口
type RoomMemberRepository interface {
	// Find 查找 (room, user) 成员关系
	Find(roomUuid, userUuid string) (*model.RoomMember, error)
	// FindByNickname 查找房内昵称的持有者
	FindByNickname(roomUuid, nickname string) (*model.RoomMember, error)
	FindByRoom(roomUuid string) ([]model.RoomMember, error)
	FindByUser(userUuid string) ([]model.RoomMember, error)
	// FindRoomUuidsByUser 用户所在房间，level 为空表示不限等级
	FindRoomUuidsByUser(userUuid, level string) ([]string, error)
	CountByRoom(roomUuid string) (int64, error)
	CountByRoomAndLevel(roomUuid, level string) (int64, error)
	// CountByUserAndLevel 统计用户以某等级所在的房间数
	CountByUserAndLevel(userUuid, level string) (int64, error)
	Create(member *model.RoomMember) error
	UpdateAccessLevel(roomUuid, userUuid, level string) error
	Delete(roomUuid, userUuid string) error
	DeleteByRoom(roomUuid string) error
}

// RoomBlockRepository 房间封禁数据访问接口
type RoomBlockRepository interface {
	Find(roomUuid, blockedUuid string) (*model.RoomBlock, error)
	FindByRoom(roomUuid string) ([]model.RoomBlock, error)
	Create(block *model.RoomBlock) error
	Delete(roomUuid, blockedUuid string) error
	DeleteByRoom(roomUuid string) error
}

// RoomInvitationRepository 入房邀请数据访问接口
type RoomInvitationRepository interface {
	FindById(id int64) (*model.RoomInvitation, error)
	FindByRoomAndInvited(roomUuid, invitedUuid string) (*model.RoomInvitation, error)
	FindByRoom(roomUuid string) ([]model.RoomInvitation, error)
	FindByInvited(invitedUuid string) ([]model.RoomInvitation, error)
	Create(invitation *model.RoomInvitation) error
	Delete(id int64) error
	DeleteByRoom(roomUuid string) error
}

// RoomRecordRepository 房间操作记录，只追加
type RoomRecordRepository interface {
	Create(record *model.RoomRecord) error
	// FindByRoom 按时间倒序返回房间记录
	FindByRoom(roomUuid string) ([]model.RoomRecord, error)
	DeleteByRoom(roomUuid string) error
}

// NotificationRepository 用户通知数据访问接口
type NotificationRepository interface {
	Create(n *model.Notification) error
	// FindByUser 按时间倒序返回用户通知
	FindByUser(userUuid string) ([]model.Notification, error)
	FindByIdAndUser(id int64, userUuid string) (*model.Notification, error)
	MarkRead(id int64) error
	Delete(id int64) error
}

// ==================== Repository 聚合 ====================

// TxFunc 事务执行器，在一个事务内调用 fn，fn 返回错误时整体回滚
type TxFunc func(ctx context.Context, fn func(txRepos *Repositories) error) error

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	tx           TxFunc
	User         UserRepository
	Room         RoomRepository
	Member       RoomMemberRepository
	Block        RoomBlockRepository
	Invitation   RoomInvitationRepository
	Record       RoomRecordRepository
	Notification NotificationRepository
}

// NewRepositories 创建基于 GORM 的 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	repos := &Repositories{
		User:         NewUserRepository(db),
		Room:         NewRoomRepository(db),
		Member:       NewRoomMemberRepository(db),
		Block:        NewRoomBlockRepository(db),
		Invitation:   NewRoomInvitationRepository(db),
		Record:       NewRoomRecordRepository(db),
		Notification: NewNotificationRepository(db),
	}
	repos.tx = func(ctx context.Context, fn func(txRepos *Repositories) error) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// 使用事务 db 创建新的 Repositories 实例
			return fn(NewRepositories(tx))
		})
	}
	return repos
}

// WithTx 替换事务执行器，供非 SQL 存储实现复用聚合结构
func (r *Repositories) WithTx(tx TxFunc) *Repositories {
	r.tx = tx
	return r
}

// Transaction 在事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	if r.tx == nil {
		return fn(r)
	}
	return r.tx(ctx, fn)
}
