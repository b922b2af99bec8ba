// Package room 实现房间成员与权限控制
// 所有写操作在同一事务内完成：锁定房间行、校验、写入、追加一条房间记录
// 通知与缓存失效在事务提交后异步执行
package room

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"chatroom_server/internal/dao/mysql/repository"
	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Config 房间策略
type Config struct {
	SystemAccount string // 课程房间房主的用户名
	MaxAdminRooms int    // 单个用户担任房主的房间上限
}

// Service 房间业务逻辑实现
// 通过构造函数注入 Repository、Cache 与 Notifier
type Service struct {
	repos    *repository.Repositories
	cache    myredis.AsyncCacheService
	notifier notify.Notifier
	conf     Config
}

// NewRoomService 构造函数，注入所有依赖
func NewRoomService(repos *repository.Repositories, cache myredis.AsyncCacheService, notifier notify.Notifier, conf Config) *Service {
	if conf.MaxAdminRooms <= 0 {
		conf.MaxAdminRooms = constants.MAX_ADMIN_ROOMS
	}
	if conf.SystemAccount == "" {
		conf.SystemAccount = "admin"
	}
	return &Service{repos: repos, cache: cache, notifier: notifier, conf: conf}
}

var (
	errNotVerified = errorx.New(errorx.CodeForbidden, "请先完成邮箱验证")
	errRoomMissing = errorx.New(errorx.CodeNotFound, "房间不存在")
	errNotInRoom   = errorx.New(errorx.CodeBadRequest, "你不在房间内")
	errNoPower     = errorx.New(errorx.CodeForbidden, "你没有执行此操作的权限")
	errTargetOut   = errorx.New(errorx.CodeBadRequest, "此用户不在房间内")
	errNickTaken   = errorx.New(errorx.CodeConflict, "昵称已存在")
	errRoomFull    = errorx.New(errorx.CodeConflict, "房间已满")
)

func requireVerified(actor model.ActingUser) error {
	if !actor.IsVerified {
		return errNotVerified
	}
	return nil
}

// storeErr 数据层错误：唯一键冲突转为带提示的 Conflict，其余记录日志后返回服务繁忙
func storeErr(err error, conflictMsg string) error {
	if errorx.IsConflict(err) {
		return errorx.Wrap(err, errorx.CodeConflict, conflictMsg)
	}
	zap.L().Error("room store error", zap.Error(err))
	return errorx.Wrap(err, errorx.CodeServerBusy, errorx.ErrServerBusy.Msg)
}

// lookupErr 未找到时返回 missing，其余同 storeErr
func lookupErr(err error, missing error) error {
	if errorx.IsNotFound(err) {
		return missing
	}
	return storeErr(err, "")
}

// guard 事务内的通用前置检查，顺序固定：
// 房间存在（并加锁）、操作者是成员、操作者等级不低于 minLevel
func guard(tx *repository.Repositories, actor model.ActingUser, roomId, minLevel string) (*model.Room, *model.RoomMember, error) {
	room, err := tx.Room.LockByUuid(roomId)
	if err != nil {
		return nil, nil, lookupErr(err, errRoomMissing)
	}
	me, err := tx.Member.Find(roomId, actor.Uuid)
	if err != nil {
		return nil, nil, lookupErr(err, errNotInRoom)
	}
	if minLevel != "" && !me.AtLeast(minLevel) {
		return nil, nil, errNoPower
	}
	return room, me, nil
}

// findRoom 只读检查房间存在
func (s *Service) findRoom(roomId string) (*model.Room, error) {
	room, err := s.repos.Room.FindByUuid(roomId)
	if err != nil {
		return nil, lookupErr(err, errRoomMissing)
	}
	return room, nil
}

// requireMember 只读检查调用者是房间成员
func (s *Service) requireMember(roomId, userUuid string) error {
	if _, err := s.repos.Member.Find(roomId, userUuid); err != nil {
		return lookupErr(err, errNotInRoom)
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// appendRecord 追加一条房间记录，超长截断
func appendRecord(tx *repository.Repositories, roomId, text string) error {
	rec := &model.RoomRecord{RoomUuid: roomId, Recording: truncate(text, constants.RECORD_MAX_LEN)}
	if err := tx.Record.Create(rec); err != nil {
		return storeErr(err, "")
	}
	return nil
}

func who(m *model.RoomMember, username string) string {
	return m.Nickname + "(" + username + ")"
}

// validNickname 房内昵称 1-20 个字符
func validNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	n := utf8.RuneCountInString(nickname)
	if n == 0 || n > constants.NICKNAME_MAX_LEN {
		return "", errorx.Newf(errorx.CodeInvalidParam, "昵称长度需为 1-%d 个字符", constants.NICKNAME_MAX_LEN)
	}
	return nickname, nil
}

// admitMember 加入房间与接受邀请共用的检查与写入
// 顺序：已是成员、被封禁、已满，然后由 extra 追加检查，最后校验昵称
func admitMember(tx *repository.Repositories, room *model.Room, userUuid, rawNickname string, extra func() error) (*model.RoomMember, error) {
	if _, err := tx.Member.Find(room.Uuid, userUuid); err == nil {
		return nil, errorx.New(errorx.CodeConflict, "你已在房间内")
	} else if !errorx.IsNotFound(err) {
		return nil, storeErr(err, "")
	}
	if _, err := tx.Block.Find(room.Uuid, userUuid); err == nil {
		return nil, errorx.New(errorx.CodeForbidden, "你被此房间封禁，无法进入")
	} else if !errorx.IsNotFound(err) {
		return nil, storeErr(err, "")
	}
	count, err := tx.Member.CountByRoom(room.Uuid)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if room.IsFull(count) {
		return nil, errRoomFull
	}
	if extra != nil {
		if err := extra(); err != nil {
			return nil, err
		}
	}
	nickname, err := validNickname(rawNickname)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Member.FindByNickname(room.Uuid, nickname); err == nil {
		return nil, errNickTaken
	} else if !errorx.IsNotFound(err) {
		return nil, storeErr(err, "")
	}

	member := &model.RoomMember{
		RoomUuid:    room.Uuid,
		UserUuid:    userUuid,
		Nickname:    nickname,
		AccessLevel: model.AccessUser,
	}
	if err := tx.Member.Create(member); err != nil {
		return nil, storeErr(err, "你已在房间内或昵称已存在")
	}
	return member, nil
}

// afterCommit 事务提交后失效相关缓存并推送房间变化
// 先同步更换房间缓存版本，之后任何带旧版本的回写都不会再被读到
func (s *Service) afterCommit(ctx context.Context, roomId string, aspects ...string) {
	keys := make([]string, 0, 2)
	for _, a := range aspects {
		switch a {
		case notify.AspectMemberList:
			keys = append(keys, constants.ROOM_MEMBERS_PREFIX+roomId)
		case notify.AspectProfile, notify.AspectDeleteRoom:
			keys = append(keys, constants.ROOM_INFO_PREFIX+roomId, constants.ROOM_MEMBERS_PREFIX+roomId)
		}
	}
	if len(keys) > 0 {
		verKey := constants.ROOM_VERSION_PREFIX + roomId
		ver := strconv.FormatInt(snowflake.GenerateID(), 10)
		if err := s.cache.Set(context.WithoutCancel(ctx), verKey, ver, constants.ROOM_VERSION_TTL); err != nil {
			zap.L().Error("bump room cache version", zap.String("key", verKey), zap.Error(err))
		}
		s.cache.SubmitTask(func() {
			for _, key := range keys {
				if err := s.cache.Delete(context.Background(), key); err != nil {
					zap.L().Error("invalidate room cache", zap.String("key", key), zap.Error(err))
				}
			}
		})
	}
	s.notifier.NotifyRoomUpdate(ctx, roomId, aspects...)
}

// cacheEntry 缓存内容及写入时的房间版本
type cacheEntry struct {
	Version string          `json:"v"`
	Data    json.RawMessage `json:"d"`
}

// cacheGet 读取房间缓存
// 返回当前房间版本，未命中时调用方以该版本回写；版本不一致的条目视为未命中
func (s *Service) cacheGet(ctx context.Context, roomId, key string, v any) (string, bool) {
	ver, err := s.cache.Get(ctx, constants.ROOM_VERSION_PREFIX+roomId)
	if err != nil {
		zap.L().Warn("room cache version", zap.String("room", roomId), zap.Error(err))
		return "", false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("room cache get", zap.String("key", key), zap.Error(err))
		return ver, false
	}
	if raw == "" {
		return ver, false
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		zap.L().Warn("room cache unmarshal", zap.String("key", key), zap.Error(err))
		return ver, false
	}
	if entry.Version != ver {
		return ver, false
	}
	if err := json.Unmarshal(entry.Data, v); err != nil {
		zap.L().Warn("room cache unmarshal", zap.String("key", key), zap.Error(err))
		return ver, false
	}
	return ver, true
}

// cacheSet 异步回写缓存，ver 为读库之前取到的房间版本
func (s *Service) cacheSet(key, ver string, v any) {
	s.cache.SubmitTask(func() {
		data, err := json.Marshal(v)
		if err != nil {
			zap.L().Error("room cache marshal", zap.Error(err))
			return
		}
		raw, err := json.Marshal(cacheEntry{Version: ver, Data: data})
		if err != nil {
			zap.L().Error("room cache marshal", zap.Error(err))
			return
		}
		if err := s.cache.Set(context.Background(), key, string(raw), constants.ROOM_CACHE_TTL); err != nil {
			zap.L().Error("room cache set", zap.String("key", key), zap.Error(err))
		}
	})
}

func toRoomRespond(r *model.Room) respond.RoomRespond {
	rsp := respond.RoomRespond{
		RoomId:       r.Uuid,
		Title:        r.Title,
		Introduction: r.Introduction,
		CreateTime:   r.CreatedAt.Format(constants.TIME_LAYOUT),
		RoomType:     r.RoomType,
		RoomCategory: r.RoomCategory,
		PeopleLimit:  r.PeopleLimit,
		ImageUrl:     r.ImageUrl,
	}
	if r.ValidTime != nil {
		rsp.ValidTime = r.ValidTime.Format(constants.TIME_LAYOUT)
	}
	return rsp
}

func toMemberRespond(m *model.RoomMember, username string) respond.MemberRespond {
	return respond.MemberRespond{
		UserId:      m.UserUuid,
		Username:    username,
		Nickname:    m.Nickname,
		AccessLevel: m.AccessLevel,
		JoinTime:    m.CreatedAt.Format(constants.TIME_LAYOUT),
	}
}

// usernames 批量查询用户名
func (s *Service) usernames(uuids []string) (map[string]string, error) {
	users, err := s.repos.User.FindByUuids(uuids)
	if err != nil {
		return nil, storeErr(err, "")
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.Uuid] = u.Username
	}
	return names, nil
}
