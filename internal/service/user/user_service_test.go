package user

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"chatroom_server/internal/dao/memory"
	"chatroom_server/internal/dao/mysql/repository"
	myredis "chatroom_server/internal/dao/redis"
	"chatroom_server/internal/dto/request"
	"chatroom_server/internal/infrastructure/mailer"
	"chatroom_server/internal/model"
	"chatroom_server/pkg/constants"
	"chatroom_server/pkg/errorx"
	"chatroom_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *userInfoService
	repos *repository.Repositories
	cache *myredis.LocalCache
	mails []mailer.Mail
	ctx   context.Context
}

func newFixture(t *testing.T, conf Config) *fixture {
	t.Helper()
	jwt.Init("test-secret", 15, 24)
	f := &fixture{
		repos: memory.New().Repositories(),
		cache: myredis.NewLocalCache(0, 0),
		ctx:   context.Background(),
	}
	if conf.VerifyLinkBase == "" {
		conf.VerifyLinkBase = "https://chat.example.com/verify"
	}
	if conf.ResetLinkBase == "" {
		conf.ResetLinkBase = "https://chat.example.com/reset"
	}
	f.svc = NewUserService(f.repos, f.cache, mailer.NewLogMailer(func(m mailer.Mail) { f.mails = append(f.mails, m) }), conf)
	return f
}

// lastToken 取出最后一封邮件里的 token
func (f *fixture) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.mails)
	body := f.mails[len(f.mails)-1].Body
	i := strings.Index(body, "http")
	require.GreaterOrEqual(t, i, 0)
	link, err := url.Parse(body[i:])
	require.NoError(t, err)
	return link.Query().Get("token")
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	rsp, err := f.svc.Register(f.ctx, request.RegisterRequest{Email: email, Password: "password1", Password2: "password1", Nickname: "nick"})
	require.NoError(t, err)
	return rsp.Uuid
}

func TestRegister(t *testing.T) {
	f := newFixture(t, Config{})
	rsp, err := f.svc.Register(f.ctx, request.RegisterRequest{Email: "alice@example.com", Password: "password1", Password2: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", rsp.Username)
	assert.False(t, rsp.IsVerify)

	stored, err := f.repos.User.FindByUuid(rsp.Uuid)
	require.NoError(t, err)
	assert.NotEqual(t, "password1", stored.Password)
	assert.True(t, stored.CheckPassword("password1"))

	require.Len(t, f.mails, 1)
	assert.Equal(t, "alice@example.com", f.mails[0].To)

	_, err = f.svc.Register(f.ctx, request.RegisterRequest{Email: "alice@example.com", Password: "password1", Password2: "password1"})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))
	assertMsg(t, "该邮箱已被注册", err)
	// 不同域名但用户名相同
	_, err = f.svc.Register(f.ctx, request.RegisterRequest{Email: "alice@other.org", Password: "password1", Password2: "password1"})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))
	assertMsg(t, "用户名已存在", err)
	_, err = f.svc.Register(f.ctx, request.RegisterRequest{Email: "bob@example.com", Password: "password1", Password2: "password2"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func assertMsg(t *testing.T, msg string, err error) {
	t.Helper()
	var ce *errorx.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, msg, ce.Msg)
}

// racyUsers 第一次按用户名查找时漏掉已有用户，模拟并发注册绕过预检
type racyUsers struct {
	repository.UserRepository
	missed bool
}

func (r *racyUsers) FindByUsername(username string) (*model.UserInfo, error) {
	if !r.missed {
		r.missed = true
		return nil, errorx.Wrap(gorm.ErrRecordNotFound, errorx.CodeNotFound, "用户不存在")
	}
	return r.UserRepository.FindByUsername(username)
}

func TestRegisterUsernameConflictOnInsert(t *testing.T) {
	f := newFixture(t, Config{})
	f.register(t, "alice@example.com")
	f.repos.User = &racyUsers{UserRepository: f.repos.User}

	_, err := f.svc.Register(f.ctx, request.RegisterRequest{Email: "alice@other.org", Password: "password1", Password2: "password1"})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))
	assertMsg(t, "用户名已存在", err)
}

func TestUpdateUserUsernameConflictOnSave(t *testing.T) {
	f := newFixture(t, Config{})
	alice := f.register(t, "alice@example.com")
	f.register(t, "bob@example.com")
	actor := model.ActingUser{Uuid: alice, Username: "alice", IsVerified: true}

	_, err := f.svc.UpdateUser(f.ctx, actor, alice, request.UpdateUserRequest{Email: "bob@other.org"})
	assertMsg(t, "用户名已存在", err)

	f.repos.User = &racyUsers{UserRepository: f.repos.User}
	_, err = f.svc.UpdateUser(f.ctx, actor, alice, request.UpdateUserRequest{Email: "bob@other.org"})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))
	assertMsg(t, "用户名已存在", err)
}

func TestRegisterEmailDomain(t *testing.T) {
	f := newFixture(t, Config{AllowedEmailDomain: "school.edu"})
	_, err := f.svc.Register(f.ctx, request.RegisterRequest{Email: "alice@example.com", Password: "password1", Password2: "password1"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	f.register(t, "alice@School.edu")
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t, Config{})
	uuid := f.register(t, "alice@example.com")
	token := f.lastToken(t)

	require.NoError(t, f.svc.VerifyEmail(f.ctx, token))
	user, err := f.repos.User.FindByUuid(uuid)
	require.NoError(t, err)
	assert.True(t, user.IsVerify)

	err = f.svc.VerifyEmail(f.ctx, token)
	assert.Equal(t, errorx.CodeBadRequest, errorx.GetCode(err))

	err = f.svc.SendVerifyMail(f.ctx, user.Actor())
	assert.Equal(t, errorx.CodeBadRequest, errorx.GetCode(err))
}

func TestLoginStoresTokenID(t *testing.T) {
	f := newFixture(t, Config{})
	uuid := f.register(t, "alice@example.com")

	_, err := f.svc.Login(f.ctx, request.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	assert.Equal(t, errorx.CodeInvalidPassword, errorx.GetCode(err))
	_, err = f.svc.Login(f.ctx, request.LoginRequest{Email: "ghost@example.com", Password: "password1"})
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))

	rsp, err := f.svc.Login(f.ctx, request.LoginRequest{Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	claims, err := jwt.ParseTokenOfKind(rsp.RefreshToken, jwt.SubjectRefreshToken)
	require.NoError(t, err)

	stored, err := f.cache.Get(f.ctx, constants.USER_TOKEN_PREFIX+uuid)
	require.NoError(t, err)
	assert.Equal(t, claims.TokenID, stored)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t, Config{})
	alice := f.register(t, "alice@example.com")
	f.register(t, "bob@example.com")
	actor := model.ActingUser{Uuid: alice, Username: "alice", IsVerified: true}

	_, err := f.svc.UpdateUser(f.ctx, actor, "someone-else", request.UpdateUserRequest{Nickname: "x"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = f.svc.UpdateUser(f.ctx, actor, alice, request.UpdateUserRequest{Email: "bob@example.com"})
	assert.Equal(t, errorx.CodeUserExist, errorx.GetCode(err))

	sent := len(f.mails)
	rsp, err := f.svc.UpdateUser(f.ctx, actor, alice, request.UpdateUserRequest{Email: "alice2@example.com", Department: "CS"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", rsp.Username)
	assert.Equal(t, "CS", rsp.Department)
	assert.False(t, rsp.IsVerify)
	assert.Len(t, f.mails, sent+1)
}

func TestChangeAndResetPassword(t *testing.T) {
	f := newFixture(t, Config{})
	uuid := f.register(t, "alice@example.com")
	actor := model.ActingUser{Uuid: uuid, Username: "alice"}

	err := f.svc.ChangePassword(f.ctx, actor, uuid, request.ChangePasswordRequest{OldPassword: "bad", Password: "password2", Password2: "password2"})
	assert.Equal(t, errorx.CodeInvalidPassword, errorx.GetCode(err))
	require.NoError(t, f.svc.ChangePassword(f.ctx, actor, uuid, request.ChangePasswordRequest{OldPassword: "password1", Password: "password2", Password2: "password2"}))
	_, err = f.svc.Login(f.ctx, request.LoginRequest{Email: "alice@example.com", Password: "password2"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgetPassword(f.ctx, request.ForgetPasswordRequest{Email: "alice@example.com"}))
	token := f.lastToken(t)
	require.NoError(t, f.svc.ResetPassword(f.ctx, request.ResetPasswordRequest{Token: token, Password: "password3", Password2: "password3"}))
	_, err = f.svc.Login(f.ctx, request.LoginRequest{Email: "alice@example.com", Password: "password3"})
	require.NoError(t, err)

	err = f.svc.ResetPassword(f.ctx, request.ResetPasswordRequest{Token: token, Password: "password4", Password2: "password4"})
	assert.Equal(t, errorx.CodeBadRequest, errorx.GetCode(err))

	err = f.svc.ForgetPassword(f.ctx, request.ForgetPasswordRequest{Email: "ghost@example.com"})
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))
}

func TestNotifications(t *testing.T) {
	f := newFixture(t, Config{})
	actor := model.ActingUser{Uuid: "U1"}
	require.NoError(t, f.repos.Notification.Create(&model.Notification{ID: 1, UserUuid: "U1", Message: "first"}))
	require.NoError(t, f.repos.Notification.Create(&model.Notification{ID: 2, UserUuid: "U1", Message: "second"}))
	require.NoError(t, f.repos.Notification.Create(&model.Notification{ID: 3, UserUuid: "U2", Message: "other"}))

	list, err := f.svc.ListNotifications(f.ctx, actor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)
	assert.Equal(t, model.NotificationUnread, list[0].Status)

	require.NoError(t, f.svc.ReadNotification(f.ctx, actor, 1))
	assert.Equal(t, errorx.CodeBadRequest, errorx.GetCode(f.svc.ReadNotification(f.ctx, actor, 1)))

	assert.Equal(t, errorx.CodeBadRequest, errorx.GetCode(f.svc.DeleteNotification(f.ctx, actor, 3)))
	require.NoError(t, f.svc.DeleteNotification(f.ctx, actor, 2))
	assert.Equal(t, errorx.CodeBadRequest, errorx.GetCode(f.svc.DeleteNotification(f.ctx, actor, 2)))
}

func TestResolveActor(t *testing.T) {
	f := newFixture(t, Config{})
	uuid := f.register(t, "alice@example.com")

	actor, err := f.svc.ResolveActor(f.ctx, uuid)
	require.NoError(t, err)
	assert.Equal(t, model.ActingUser{Uuid: uuid, Username: "alice", IsVerified: false}, actor)

	_, err = f.svc.ResolveActor(f.ctx, "missing")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}
