// Package model 定义数据库实体模型
package model

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息
// Username 取邮箱 @ 之前的部分，邀请入房时按 Username 查找
type UserInfo struct {
	gorm.Model

	Uuid       string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`
	Email      string `gorm:"column:email;uniqueIndex;type:varchar(100);not null;comment:邮箱"`
	Username   string `gorm:"column:username;uniqueIndex;type:varchar(64);not null;comment:用户名"`
	FirstName  string `gorm:"column:first_name;type:varchar(20)"`
	LastName   string `gorm:"column:last_name;type:varchar(20)"`
	Nickname   string `gorm:"column:nickname;type:varchar(20)"`
	Department string `gorm:"column:department;type:varchar(30)"`
	Password   string `gorm:"column:password;type:varchar(100);not null;comment:bcrypt 哈希"`
	IsVerify   bool   `gorm:"column:is_verify;not null;default:false;comment:邮箱是否已验证"`
	IsActive   bool   `gorm:"column:is_active;not null;default:true"`

	// RawPassword 明文密码，不入库，在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

func (UserInfo) TableName() string {
	return "user_info"
}

// UsernameFromEmail 取邮箱本地部分作为用户名
func UsernameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// BeforeSave 加密 RawPassword 并同步用户名
func (u *UserInfo) BeforeSave(tx *gorm.DB) error {
	u.Username = UsernameFromEmail(u.Email)
	return u.HashRawPassword()
}

// HashRawPassword 将明文密码加密写入 Password
func (u *UserInfo) HashRawPassword() error {
	if u.RawPassword == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	u.RawPassword = ""
	return nil
}

// CheckPassword 校验密码是否正确
func (u *UserInfo) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}
