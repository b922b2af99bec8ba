package room

import (
	"context"
	"sync"
	"testing"

	"chatroom_server/internal/dao/memory"
	"chatroom_server/internal/dao/mysql/repository"
	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/dto/respond"
	"chatroom_server/internal/infrastructure/notify"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotifier 记录事务提交后发出的所有副作用
type fakeNotifier struct {
	mu            sync.Mutex
	notifications map[string][]string
	updates       []string
	joined        []string
	left          []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notifications: make(map[string][]string)}
}

func (f *fakeNotifier) CreateNotification(_ context.Context, userUuid, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications[userUuid] = append(f.notifications[userUuid], message)
}

func (f *fakeNotifier) NotifyRoomUpdate(_ context.Context, roomUuid string, aspects ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, roomUuid+":"+notify.JoinAspects(aspects))
}

func (f *fakeNotifier) NotifyUserJoined(_ context.Context, _, userUuid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, userUuid)
}

func (f *fakeNotifier) NotifyUserLeft(_ context.Context, _, userUuid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, userUuid)
}

type fixture struct {
	svc      *Service
	repos    *repository.Repositories
	notifier *fakeNotifier
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.New().Repositories()
	notifier := newFakeNotifier()
	// 无 worker 的本地缓存，异步任务同步执行
	cache := myredis.NewLocalCache(0, 0)
	return &fixture{
		svc:      NewRoomService(repos, cache, notifier, Config{SystemAccount: "admin", MaxAdminRooms: 50}),
		repos:    repos,
		notifier: notifier,
		ctx:      context.Background(),
	}
}

func (f *fixture) user(t *testing.T, uuid, username string) model.ActingUser {
	t.Helper()
	u := &model.UserInfo{Uuid: uuid, Email: username + "@example.com", IsVerify: true, IsActive: true}
	require.NoError(t, f.repos.User.Create(u))
	return u.Actor()
}

func (f *fixture) room(t *testing.T, owner model.ActingUser, title string, mutate func(*request.CreateRoomRequest)) string {
	t.Helper()
	req := request.CreateRoomRequest{Title: title, Nickname: owner.Username, RoomType: model.RoomTypePublic, RoomCategory: model.RoomCategoryEating}
	if mutate != nil {
		mutate(&req)
	}
	rsp, err := f.svc.CreateRoom(f.ctx, owner, req)
	require.NoError(t, err)
	return rsp.RoomId
}

func (f *fixture) join(t *testing.T, u model.ActingUser, roomId string) {
	t.Helper()
	_, err := f.svc.JoinRoom(f.ctx, u, roomId, u.Username)
	require.NoError(t, err)
}

func (f *fixture) level(t *testing.T, roomId, userId string) string {
	t.Helper()
	m, err := f.repos.Member.Find(roomId, userId)
	require.NoError(t, err)
	return m.AccessLevel
}

func (f *fixture) assertSingleAdmin(t *testing.T, roomId string) {
	t.Helper()
	n, err := f.repos.Member.CountByRoomAndLevel(roomId, model.AccessAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func (f *fixture) records(t *testing.T, roomId string) int {
	t.Helper()
	recs, err := f.repos.Record.FindByRoom(roomId)
	require.NoError(t, err)
	return len(recs)
}

func assertCode(t *testing.T, code int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errorx.GetCode(err), err.Error())
}

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")

	rsp, err := f.svc.CreateRoom(f.ctx, alice, request.CreateRoomRequest{Title: "  R1 ", Nickname: "al"})
	require.NoError(t, err)
	assert.Equal(t, "R1", rsp.Title)
	assert.Equal(t, model.RoomTypePublic, rsp.RoomType)
	assert.Equal(t, model.RoomCategoryCourse, rsp.RoomCategory)
	img, _ := model.CategoryImage(model.RoomCategoryCourse)
	assert.Equal(t, img, rsp.ImageUrl)

	assert.Equal(t, model.AccessAdmin, f.level(t, rsp.RoomId, alice.Uuid))
	assert.Equal(t, 1, f.records(t, rsp.RoomId))

	_, err = f.svc.CreateRoom(f.ctx, alice, request.CreateRoomRequest{Title: "R1", Nickname: "al"})
	assertCode(t, errorx.CodeConflict, err)
}

func TestCreateRoomValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")

	unverified := alice
	unverified.IsVerified = false
	_, err := f.svc.CreateRoom(f.ctx, unverified, request.CreateRoomRequest{Title: "R1", Nickname: "al"})
	assertCode(t, errorx.CodeForbidden, err)

	cases := []request.CreateRoomRequest{
		{Title: "", Nickname: "al"},
		{Title: "一二三四五六七八九十一二三四五六七八九十一", Nickname: "al"},
		{Title: "R1", Nickname: ""},
		{Title: "R1", Nickname: "al", PeopleLimit: -1},
		{Title: "R1", Nickname: "al", RoomType: "secret"},
		{Title: "R1", Nickname: "al", RoomCategory: "sleeping"},
	}
	for _, req := range cases {
		_, err := f.svc.CreateRoom(f.ctx, alice, req)
		assertCode(t, errorx.CodeInvalidParam, err)
	}
}

func TestCreateRoomAdminLimit(t *testing.T) {
	f := newFixture(t)
	f.svc.conf.MaxAdminRooms = 2
	alice := f.user(t, "U1", "alice")
	f.room(t, alice, "R1", nil)
	f.room(t, alice, "R2", nil)

	_, err := f.svc.CreateRoom(f.ctx, alice, request.CreateRoomRequest{Title: "R3", Nickname: "al"})
	assertCode(t, errorx.CodeBadRequest, err)
}

func TestCreateCourseRoom(t *testing.T) {
	f := newFixture(t)
	system := f.user(t, "U0", "admin")
	alice := f.user(t, "U1", "alice")

	roomId := f.room(t, alice, "course", func(r *request.CreateRoomRequest) { r.RoomType = model.RoomTypeCourse })
	assert.Equal(t, model.AccessAdmin, f.level(t, roomId, system.Uuid))
	assert.Equal(t, model.AccessManager, f.level(t, roomId, alice.Uuid))
	f.assertSingleAdmin(t, roomId)

	// 系统账号自己创建时直接成为房主
	own := f.room(t, system, "course2", func(r *request.CreateRoomRequest) { r.RoomType = model.RoomTypeCourse })
	assert.Equal(t, model.AccessAdmin, f.level(t, own, system.Uuid))

	err := f.svc.DeleteRoom(f.ctx, system, roomId)
	assertCode(t, errorx.CodeBadRequest, err)
}

func TestJoinLeaveRoundTrip(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)

	before, _ := f.repos.Member.CountByRoom(roomId)
	f.join(t, bob, roomId)
	require.NoError(t, f.svc.LeaveRoom(f.ctx, bob, roomId))
	after, _ := f.repos.Member.CountByRoom(roomId)
	assert.Equal(t, before, after)
	assert.Equal(t, 3, f.records(t, roomId))
	assert.Contains(t, f.notifier.joined, bob.Uuid)
	assert.Contains(t, f.notifier.left, bob.Uuid)

	err := f.svc.LeaveRoom(f.ctx, alice, roomId)
	assertCode(t, errorx.CodeBadRequest, err)
	err = f.svc.LeaveRoom(f.ctx, bob, roomId)
	assertCode(t, errorx.CodeBadRequest, err)
}

func TestJoinRoomFailures(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	carol := f.user(t, "U3", "carol")
	roomId := f.room(t, alice, "R1", nil)
	private := f.room(t, alice, "R2", func(r *request.CreateRoomRequest) { r.RoomType = model.RoomTypePrivate })

	_, err := f.svc.JoinRoom(f.ctx, bob, "missing", "bob")
	assertCode(t, errorx.CodeNotFound, err)

	_, err = f.svc.JoinRoom(f.ctx, alice, roomId, "x")
	assertCode(t, errorx.CodeConflict, err)

	_, err = f.svc.JoinRoom(f.ctx, bob, private, "bob")
	assertCode(t, errorx.CodeForbidden, err)

	_, err = f.svc.JoinRoom(f.ctx, bob, roomId, "")
	assertCode(t, errorx.CodeInvalidParam, err)

	_, err = f.svc.JoinRoom(f.ctx, bob, roomId, "alice")
	assertCode(t, errorx.CodeConflict, err)

	f.join(t, bob, roomId)
	require.NoError(t, f.svc.BlockUser(f.ctx, alice, roomId, bob.Uuid, "spam"))
	_, err = f.svc.JoinRoom(f.ctx, bob, roomId, "bob")
	assertCode(t, errorx.CodeForbidden, err)

	unverified := carol
	unverified.IsVerified = false
	_, err = f.svc.JoinRoom(f.ctx, unverified, roomId, "carol")
	assertCode(t, errorx.CodeForbidden, err)
}

func TestJoinFullRoom(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	carol := f.user(t, "U3", "carol")
	roomId := f.room(t, alice, "R1", func(r *request.CreateRoomRequest) { r.PeopleLimit = 2 })

	f.join(t, bob, roomId)
	_, err := f.svc.JoinRoom(f.ctx, carol, roomId, "carol")
	assertCode(t, errorx.CodeConflict, err)
}

func TestJoinRoomLimitOne(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	// 房主计入人数
	roomId := f.room(t, alice, "R1", func(r *request.CreateRoomRequest) { r.PeopleLimit = 1 })

	_, err := f.svc.JoinRoom(f.ctx, bob, roomId, "bob")
	assertCode(t, errorx.CodeConflict, err)
	_, err = f.repos.Member.Find(roomId, bob.Uuid)
	assert.True(t, errorx.IsNotFound(err))

	_, err = f.svc.InviteUser(f.ctx, alice, roomId, bob.Username)
	assertCode(t, errorx.CodeConflict, err)
}

func TestConcurrentDuplicateJoin(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.JoinRoom(f.ctx, bob, roomId, "bob")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, errorx.CodeConflict, errorx.GetCode(err))
	}
	assert.Equal(t, 1, ok)
	count, _ := f.repos.Member.CountByRoom(roomId)
	assert.EqualValues(t, 2, count)
}

func TestBlockUser(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	manager := f.user(t, "U3", "mgr")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)
	f.join(t, manager, roomId)
	_, err := f.svc.SetAccessLevel(f.ctx, alice, roomId, map[string]string{manager.Uuid: model.AccessManager})
	require.NoError(t, err)

	require.NoError(t, f.svc.BlockUser(f.ctx, manager, roomId, bob.Uuid, "spam"))
	_, err = f.repos.Member.Find(roomId, bob.Uuid)
	assert.True(t, errorx.IsNotFound(err))
	block, err := f.repos.Block.Find(roomId, bob.Uuid)
	require.NoError(t, err)
	assert.Equal(t, manager.Uuid, block.ManagerUuid)
	assert.Len(t, f.notifier.notifications[bob.Uuid], 1)
	assert.Contains(t, f.notifier.left, bob.Uuid)

	err = f.svc.BlockUser(f.ctx, manager, roomId, bob.Uuid, "again")
	assertCode(t, errorx.CodeConflict, err)

	// 房主封禁管理者被拒绝
	err = f.svc.BlockUser(f.ctx, alice, roomId, manager.Uuid, "nope")
	assertCode(t, errorx.CodeForbidden, err)
	assert.Equal(t, model.AccessManager, f.level(t, roomId, manager.Uuid))

	err = f.svc.BlockUser(f.ctx, alice, roomId, alice.Uuid, "self")
	assertCode(t, errorx.CodeBadRequest, err)
	err = f.svc.BlockUser(f.ctx, alice, roomId, "nobody", "x")
	assertCode(t, errorx.CodeNotFound, err)
	err = f.svc.BlockUser(f.ctx, alice, roomId, bob.Uuid, "")
	assertCode(t, errorx.CodeInvalidParam, err)
}

func TestBlockRequiresManager(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	carol := f.user(t, "U3", "carol")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)

	err := f.svc.BlockUser(f.ctx, bob, roomId, alice.Uuid, "x")
	assertCode(t, errorx.CodeForbidden, err)
	err = f.svc.BlockUser(f.ctx, carol, roomId, bob.Uuid, "x")
	assertCode(t, errorx.CodeBadRequest, err)

	// 非成员不能被封禁
	err = f.svc.BlockUser(f.ctx, alice, roomId, carol.Uuid, "x")
	assertCode(t, errorx.CodeBadRequest, err)
}

func TestUnblockUser(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)
	require.NoError(t, f.svc.BlockUser(f.ctx, alice, roomId, bob.Uuid, "spam"))

	require.NoError(t, f.svc.UnblockUser(f.ctx, alice, roomId, bob.Uuid))
	_, err := f.repos.Block.Find(roomId, bob.Uuid)
	assert.True(t, errorx.IsNotFound(err))
	_, err = f.repos.Member.Find(roomId, bob.Uuid)
	assert.True(t, errorx.IsNotFound(err))

	err = f.svc.UnblockUser(f.ctx, alice, roomId, bob.Uuid)
	assertCode(t, errorx.CodeBadRequest, err)
	err = f.svc.UnblockUser(f.ctx, alice, roomId, "nobody")
	assertCode(t, errorx.CodeNotFound, err)

	f.join(t, bob, roomId)
}

func TestRemoveUser(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	manager := f.user(t, "U3", "mgr")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)
	f.join(t, manager, roomId)
	_, err := f.svc.SetAccessLevel(f.ctx, alice, roomId, map[string]string{manager.Uuid: model.AccessManager})
	require.NoError(t, err)

	err = f.svc.RemoveUser(f.ctx, manager, roomId, alice.Uuid)
	assertCode(t, errorx.CodeForbidden, err)
	assert.Equal(t, model.AccessAdmin, f.level(t, roomId, alice.Uuid))

	require.NoError(t, f.svc.RemoveUser(f.ctx, manager, roomId, bob.Uuid))
	_, err = f.repos.Member.Find(roomId, bob.Uuid)
	assert.True(t, errorx.IsNotFound(err))

	err = f.svc.RemoveUser(f.ctx, manager, roomId, bob.Uuid)
	assertCode(t, errorx.CodeBadRequest, err)
	f.assertSingleAdmin(t, roomId)

	// 房主也只能移出一般成员
	err = f.svc.RemoveUser(f.ctx, alice, roomId, manager.Uuid)
	assertCode(t, errorx.CodeForbidden, err)
	assert.Equal(t, model.AccessManager, f.level(t, roomId, manager.Uuid))
	f.notifier.mu.Lock()
	assert.NotContains(t, f.notifier.left, manager.Uuid)
	f.notifier.mu.Unlock()
}

func TestSetAccessLevel(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	carol := f.user(t, "U3", "carol")
	dave := f.user(t, "U4", "dave")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)
	f.join(t, carol, roomId)

	result, err := f.svc.SetAccessLevel(f.ctx, alice, roomId, map[string]string{
		bob.Uuid:   model.AccessManager,
		carol.Uuid: model.AccessAdmin,
		alice.Uuid: model.AccessUser,
		dave.Uuid:  model.AccessManager,
		"U5":       "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccessManager, result[bob.Uuid])
	for _, id := range []string{carol.Uuid, alice.Uuid, dave.Uuid, "U5"} {
		assert.Contains(t, result[id], "error: ", id)
	}
	assert.Equal(t, model.AccessManager, f.level(t, roomId, bob.Uuid))
	assert.Equal(t, model.AccessUser, f.level(t, roomId, carol.Uuid))
	f.assertSingleAdmin(t, roomId)

	_, err = f.svc.SetAccessLevel(f.ctx, bob, roomId, map[string]string{carol.Uuid: model.AccessManager})
	assertCode(t, errorx.CodeForbidden, err)
}

func TestTransferAdminRoundTrip(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	carol := f.user(t, "U3", "carol")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)
	f.join(t, carol, roomId)

	require.NoError(t, f.svc.TransferAdmin(f.ctx, alice, roomId, bob.Uuid))
	assert.Equal(t, model.AccessManager, f.level(t, roomId, alice.Uuid))
	assert.Equal(t, model.AccessAdmin, f.level(t, roomId, bob.Uuid))
	f.assertSingleAdmin(t, roomId)

	require.NoError(t, f.svc.TransferAdmin(f.ctx, bob, roomId, alice.Uuid))
	assert.Equal(t, model.AccessAdmin, f.level(t, roomId, alice.Uuid))
	// 原房主转让后降为管理者，而非恢复原等级
	assert.Equal(t, model.AccessManager, f.level(t, roomId, bob.Uuid))
	f.assertSingleAdmin(t, roomId)

	err := f.svc.TransferAdmin(f.ctx, alice, roomId, alice.Uuid)
	assertCode(t, errorx.CodeBadRequest, err)
	err = f.svc.TransferAdmin(f.ctx, alice, roomId, "nobody")
	assertCode(t, errorx.CodeBadRequest, err)
	err = f.svc.TransferAdmin(f.ctx, carol, roomId, carol.Uuid)
	assertCode(t, errorx.CodeForbidden, err)
}

func TestInviteFlow(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", func(r *request.CreateRoomRequest) { r.RoomType = model.RoomTypePrivate })

	inv, err := f.svc.InviteUser(f.ctx, alice, roomId, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.Uuid, inv.InvitedId)
	assert.Equal(t, "R1", inv.RoomTitle)

	_, err = f.svc.InviteUser(f.ctx, alice, roomId, "bob")
	assertCode(t, errorx.CodeConflict, err)
	_, err = f.svc.InviteUser(f.ctx, alice, roomId, "ghost")
	assertCode(t, errorx.CodeBadRequest, err)

	mine, err := f.svc.ListMyInvitations(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = f.svc.AcceptInvite(f.ctx, alice, inv.InviteId, "x")
	assertCode(t, errorx.CodeBadRequest, err)

	member, err := f.svc.AcceptInvite(f.ctx, bob, inv.InviteId, "bobby")
	require.NoError(t, err)
	assert.Equal(t, model.AccessUser, member.AccessLevel)
	_, err = f.repos.Invitation.FindById(inv.InviteId)
	assert.True(t, errorx.IsNotFound(err))

	_, err = f.svc.InviteUser(f.ctx, alice, roomId, "bob")
	assertCode(t, errorx.CodeConflict, err)
	_, err = f.svc.InviteUser(f.ctx, bob, roomId, "alice")
	assertCode(t, errorx.CodeForbidden, err)
}

func TestInviteBlockedUser(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)
	require.NoError(t, f.svc.BlockUser(f.ctx, alice, roomId, bob.Uuid, "spam"))

	_, err := f.svc.InviteUser(f.ctx, alice, roomId, "bob")
	assertCode(t, errorx.CodeForbidden, err)
}

func TestRejectInvite(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)
	inv, err := f.svc.InviteUser(f.ctx, alice, roomId, "bob")
	require.NoError(t, err)

	assertCode(t, errorx.CodeBadRequest, f.svc.RejectInvite(f.ctx, alice, inv.InviteId))
	require.NoError(t, f.svc.RejectInvite(f.ctx, bob, inv.InviteId))
	assertCode(t, errorx.CodeBadRequest, f.svc.RejectInvite(f.ctx, bob, inv.InviteId))

	_, err = f.repos.Member.Find(roomId, bob.Uuid)
	assert.True(t, errorx.IsNotFound(err))
}

func TestAcceptInviteForDeletedRoom(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)
	inv, err := f.svc.InviteUser(f.ctx, alice, roomId, "bob")
	require.NoError(t, err)

	// 直接删除房间行，留下孤立的邀请
	require.NoError(t, f.repos.Room.Delete(roomId))

	_, err = f.svc.AcceptInvite(f.ctx, bob, inv.InviteId, "bob")
	assertCode(t, errorx.CodeBadRequest, err)
	_, err = f.repos.Member.Find(roomId, bob.Uuid)
	assert.True(t, errorx.IsNotFound(err))
	_, err = f.repos.Invitation.FindById(inv.InviteId)
	assert.True(t, errorx.IsNotFound(err))
}

func TestDeleteRoomCascades(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	carol := f.user(t, "U3", "carol")
	dave := f.user(t, "U4", "dave")
	roomId := f.room(t, alice, "R1", nil)
	f.join(t, bob, roomId)
	f.join(t, carol, roomId)
	require.NoError(t, f.svc.BlockUser(f.ctx, alice, roomId, carol.Uuid, "spam"))
	_, err := f.svc.InviteUser(f.ctx, alice, roomId, "dave")
	require.NoError(t, err)

	assertCode(t, errorx.CodeForbidden, f.svc.DeleteRoom(f.ctx, bob, roomId))
	require.NoError(t, f.svc.DeleteRoom(f.ctx, alice, roomId))

	_, err = f.repos.Room.FindByUuid(roomId)
	assert.True(t, errorx.IsNotFound(err))
	count, _ := f.repos.Member.CountByRoom(roomId)
	assert.Zero(t, count)
	blocks, _ := f.repos.Block.FindByRoom(roomId)
	assert.Empty(t, blocks)
	invs, _ := f.repos.Invitation.FindByInvited(dave.Uuid)
	assert.Empty(t, invs)
	assert.Zero(t, f.records(t, roomId))
	assert.Contains(t, f.notifier.notifications[bob.Uuid], "房间「R1」被房主删除了。")
	assert.Contains(t, f.notifier.updates, roomId+":"+notify.AspectDeleteRoom)

	_, err = f.svc.GetRoom(f.ctx, alice, roomId)
	assertCode(t, errorx.CodeNotFound, err)
}

func TestUpdateRoom(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)
	f.room(t, alice, "R2", nil)
	f.join(t, bob, roomId)

	// 先读一次写入缓存
	got, err := f.svc.GetRoom(f.ctx, alice, roomId)
	require.NoError(t, err)
	assert.Equal(t, "R1", got.Title)

	title := "R1-new"
	limit := 10
	rsp, err := f.svc.UpdateRoom(f.ctx, alice, roomId, request.UpdateRoomRequest{Title: &title, PeopleLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, title, rsp.Title)
	assert.Equal(t, 10, rsp.PeopleLimit)

	got, err = f.svc.GetRoom(f.ctx, alice, roomId)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)

	taken := "R2"
	_, err = f.svc.UpdateRoom(f.ctx, alice, roomId, request.UpdateRoomRequest{Title: &taken})
	assertCode(t, errorx.CodeConflict, err)
	_, err = f.svc.UpdateRoom(f.ctx, bob, roomId, request.UpdateRoomRequest{Title: &title})
	assertCode(t, errorx.CodeForbidden, err)
}

// pause 第一次读库之后停住，模拟读库与回写缓存之间被并发修改
type pause struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newPause() *pause {
	return &pause{entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *pause) hold() {
	p.once.Do(func() {
		close(p.entered)
		<-p.release
	})
}

type slowRooms struct {
	repository.RoomRepository
	*pause
}

func (r *slowRooms) FindByUuid(uuid string) (*model.Room, error) {
	room, err := r.RoomRepository.FindByUuid(uuid)
	r.hold()
	return room, err
}

type slowMembers struct {
	repository.RoomMemberRepository
	*pause
}

func (r *slowMembers) FindByRoom(roomUuid string) ([]model.RoomMember, error) {
	members, err := r.RoomMemberRepository.FindByRoom(roomUuid)
	r.hold()
	return members, err
}

func TestGetRoomIgnoresStaleRefill(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	roomId := f.room(t, alice, "R1", nil)

	rooms := &slowRooms{RoomRepository: f.repos.Room, pause: newPause()}
	wrapped := *f.repos
	wrapped.Room = rooms
	svc := NewRoomService(&wrapped, myredis.NewLocalCache(0, 0), f.notifier, Config{SystemAccount: "admin", MaxAdminRooms: 50})

	done := make(chan *respond.RoomRespond, 1)
	go func() {
		got, err := svc.GetRoom(f.ctx, alice, roomId)
		assert.NoError(t, err)
		done <- got
	}()
	<-rooms.entered

	title := "R1-renamed"
	_, err := svc.UpdateRoom(f.ctx, alice, roomId, request.UpdateRoomRequest{Title: &title})
	require.NoError(t, err)

	close(rooms.release)
	stale := <-done
	require.NotNil(t, stale)
	assert.Equal(t, "R1", stale.Title)

	got, err := svc.GetRoom(f.ctx, alice, roomId)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
}

func TestListMembersIgnoresStaleRefill(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	roomId := f.room(t, alice, "R1", nil)

	members := &slowMembers{RoomMemberRepository: f.repos.Member, pause: newPause()}
	wrapped := *f.repos
	wrapped.Member = members
	svc := NewRoomService(&wrapped, myredis.NewLocalCache(0, 0), f.notifier, Config{SystemAccount: "admin", MaxAdminRooms: 50})

	done := make(chan []respond.MemberRespond, 1)
	go func() {
		got, err := svc.ListMembers(f.ctx, roomId)
		assert.NoError(t, err)
		done <- got
	}()
	<-members.entered

	_, err := svc.JoinRoom(f.ctx, bob, roomId, "bob")
	require.NoError(t, err)

	close(members.release)
	assert.Len(t, <-done, 1)

	got, err := svc.ListMembers(f.ctx, roomId)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	bob := f.user(t, "U2", "bob")
	carol := f.user(t, "U3", "carol")
	r1 := f.room(t, alice, "R1", nil)
	r2 := f.room(t, bob, "R2", nil)
	f.join(t, bob, r1)
	f.join(t, carol, r1)
	_, err := f.svc.SetAccessLevel(f.ctx, alice, r1, map[string]string{carol.Uuid: model.AccessManager})
	require.NoError(t, err)

	members, err := f.svc.ListMembers(f.ctx, r1)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"alice", "carol", "bob"}, []string{members[0].Username, members[1].Username, members[2].Username})

	mine, err := f.svc.ListMyRooms(f.ctx, bob)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	admin, err := f.svc.ListMyAdminRooms(f.ctx, bob)
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, r2, admin[0].RoomId)

	all, err := f.svc.ListRooms(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	records, err := f.svc.ListRecords(f.ctx, alice, r1)
	require.NoError(t, err)
	assert.Contains(t, records[0].Recording, "设为管理者")

	_, err = f.svc.ListRecords(f.ctx, alice, r2)
	assertCode(t, errorx.CodeBadRequest, err)
	_, err = f.svc.ListBlocks(f.ctx, carol, r2)
	assertCode(t, errorx.CodeBadRequest, err)
	_, err = f.svc.ListMembers(f.ctx, "missing")
	assertCode(t, errorx.CodeNotFound, err)

	m, err := f.svc.GetMember(f.ctx, alice, r1, carol.Uuid)
	require.NoError(t, err)
	assert.Equal(t, model.AccessManager, m.AccessLevel)
	_, err = f.svc.GetMember(f.ctx, alice, r2, carol.Uuid)
	assertCode(t, errorx.CodeNotFound, err)

	assert.Len(t, f.svc.TypeChoices(), 3)
	assert.Len(t, f.svc.CategoryChoices(), 3)
}

func TestRecordTruncated(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "U1", "alice")
	roomId := f.room(t, alice, "R1", func(r *request.CreateRoomRequest) { r.Nickname = "一二三四五六七八九十一二三四五六七八九十" })

	long := ""
	for i := 0; i < 60; i++ {
		long += "长"
	}
	require.NoError(t, f.repos.Transaction(f.ctx, func(tx *repository.Repositories) error {
		return appendRecord(tx, roomId, long+long)
	}))
	recs, err := f.svc.ListRecords(f.ctx, alice, roomId)
	require.NoError(t, err)
	assert.Equal(t, 100, len([]rune(recs[0].Recording)))
}
