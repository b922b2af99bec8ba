// Package memory 提供进程内的 Repository 实现
// 用于单元测试以及 mainConfig.storage = "memory" 的单机运行
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatroom_server/internal/dao/mysql/repository"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/errorx"

	"gorm.io/gorm"
)

// tables 所有表数据
type tables struct {
	nextID        uint
	users         map[uint]model.UserInfo
	rooms         map[uint]model.Room
	members       map[uint]model.RoomMember
	blocks        map[uint]model.RoomBlock
	invitations   map[int64]model.RoomInvitation
	records       map[uint]model.RoomRecord
	notifications map[int64]model.Notification
}

func newTables() *tables {
	return &tables{
		users:         make(map[uint]model.UserInfo),
		rooms:         make(map[uint]model.Room),
		members:       make(map[uint]model.RoomMember),
		blocks:        make(map[uint]model.RoomBlock),
		invitations:   make(map[int64]model.RoomInvitation),
		records:       make(map[uint]model.RoomRecord),
		notifications: make(map[int64]model.Notification),
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (t *tables) clone() *tables {
	return &tables{
		nextID:        t.nextID,
		users:         cloneMap(t.users),
		rooms:         cloneMap(t.rooms),
		members:       cloneMap(t.members),
		blocks:        cloneMap(t.blocks),
		invitations:   cloneMap(t.invitations),
		records:       cloneMap(t.records),
		notifications: cloneMap(t.notifications),
	}
}

func (t *tables) id() uint {
	t.nextID++
	return t.nextID
}

// Store 进程内存储
// mu 保护数据读写，txMu 串行化事务，效果等同于对所有房间加行锁
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *tables
	now  func() time.Time
}

// New 创建空的内存存储
func New() *Store {
	return &Store{data: newTables(), now: time.Now}
}

// Repositories 返回基于本存储的 Repository 聚合
func (s *Store) Repositories() *repository.Repositories {
	repos := s.repositories(nil)
	return repos.WithTx(s.transaction)
}

func (s *Store) repositories(undo *undoLog) *repository.Repositories {
	c := &conn{store: s, undo: undo}
	return &repository.Repositories{
		User:         &userRepo{c},
		Room:         &roomRepo{c},
		Member:       &memberRepo{c},
		Block:        &blockRepo{c},
		Invitation:   &invitationRepo{c},
		Record:       &recordRepo{c},
		Notification: &notificationRepo{c},
	}
}

// transaction fn 出错时按逆序撤销本事务写入的行，事务外的并发写入不受影响
// 嵌套调用加入外层事务
func (s *Store) transaction(ctx context.Context, fn func(txRepos *repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return errorx.Wrap(err, errorx.CodeDBError, "事务已取消")
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := &undoLog{}
	txRepos := s.repositories(undo)
	txRepos.WithTx(func(_ context.Context, inner func(*repository.Repositories) error) error {
		return inner(txRepos)
	})

	if err := fn(txRepos); err != nil {
		s.mu.Lock()
		undo.rollback(s.data)
		s.mu.Unlock()
		return err
	}
	return nil
}

// undoLog 事务内每次写入前的行值
type undoLog struct {
	ops []func(t *tables)
}

func (u *undoLog) rollback(t *tables) {
	for i := len(u.ops) - 1; i >= 0; i-- {
		u.ops[i](t)
	}
	u.ops = nil
}

// record 对比写入前后的表，记录还原被改动行所需的操作
func (u *undoLog) record(before, after *tables) {
	u.ops = append(u.ops, diffRows(before.users, after.users, func(t *tables) map[uint]model.UserInfo { return t.users })...)
	u.ops = append(u.ops, diffRows(before.rooms, after.rooms, func(t *tables) map[uint]model.Room { return t.rooms })...)
	u.ops = append(u.ops, diffRows(before.members, after.members, func(t *tables) map[uint]model.RoomMember { return t.members })...)
	u.ops = append(u.ops, diffRows(before.blocks, after.blocks, func(t *tables) map[uint]model.RoomBlock { return t.blocks })...)
	u.ops = append(u.ops, diffRows(before.invitations, after.invitations, func(t *tables) map[int64]model.RoomInvitation { return t.invitations })...)
	u.ops = append(u.ops, diffRows(before.records, after.records, func(t *tables) map[uint]model.RoomRecord { return t.records })...)
	u.ops = append(u.ops, diffRows(before.notifications, after.notifications, func(t *tables) map[int64]model.Notification { return t.notifications })...)
}

func diffRows[K comparable, V comparable](before, after map[K]V, table func(t *tables) map[K]V) []func(t *tables) {
	var ops []func(t *tables)
	for k, old := range before {
		k, old := k, old
		if cur, ok := after[k]; !ok || cur != old {
			ops = append(ops, func(t *tables) { table(t)[k] = old })
		}
	}
	for k := range after {
		k := k
		if _, ok := before[k]; !ok {
			ops = append(ops, func(t *tables) { delete(table(t), k) })
		}
	}
	return ops
}

// conn Repository 访问存储的句柄，事务内的句柄带 undo
type conn struct {
	store *Store
	undo  *undoLog
}

func (c *conn) now() time.Time {
	return c.store.now()
}

func (c *conn) read(fn func(t *tables)) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	fn(c.store.data)
}

func (c *conn) write(fn func(t *tables) error) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.undo == nil {
		return fn(c.store.data)
	}
	before := c.store.data.clone()
	err := fn(c.store.data)
	c.undo.record(before, c.store.data)
	return err
}

func notFound(format string, args ...any) error {
	return errorx.Wrapf(gorm.ErrRecordNotFound, errorx.CodeNotFound, format, args...)
}

func conflict(format string, args ...any) error {
	return errorx.Wrapf(gorm.ErrDuplicatedKey, errorx.CodeConflict, format, args...)
}

// sortedValues 按 key 升序返回满足条件的记录
func sortedValues[K uint | int64, V any](m map[K]V, keep func(V) bool) []V {
	keys := make([]K, 0, len(m))
	for k, v := range m {
		if keep(v) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
