// Package mysql 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"chatroom_server/internal/config"
	"chatroom_server/internal/dao/mysql/repository"
	"chatroom_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Models 需要迁移的全部表
var Models = []any{
	&model.UserInfo{},
	&model.Room{},
	&model.RoomMember{},
	&model.RoomBlock{},
	&model.RoomInvitation{},
	&model.RoomRecord{},
	&model.Notification{},
}

// DSN 构建 MySQL 连接字符串
// 格式：user:password@tcp(host:port)/database?params
func DSN(conf config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)
}

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 从配置读取 MySQL 连接信息
//  2. 使用 GORM 建立数据库连接，开启错误翻译以识别唯一键冲突
//  3. 执行 AutoMigrate 自动迁移表结构
//  4. 创建并返回 Repository 实例
func Init() *repository.Repositories {
	conf := config.GetConfig()

	db, err := gorm.Open(mysqldriver.Open(DSN(conf.MysqlConfig)), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		zap.L().Fatal("连接 MySQL 失败", zap.Error(err))
	}

	// 不会删除已有字段或数据
	if err = db.AutoMigrate(Models...); err != nil {
		zap.L().Fatal("迁移表结构失败", zap.Error(err))
	}

	return repository.NewRepositories(db)
}
