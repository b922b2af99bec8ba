// Package mailer 提供邮件发送能力
// 邮件实际投递由外部服务完成，这里只定义接口和日志实现
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Mailer 邮件服务接口
type Mailer interface {
	// SendVerifyMail 发送邮箱验证邮件
	SendVerifyMail(ctx context.Context, to, link string) error
	// SendResetMail 发送密码重置邮件
	SendResetMail(ctx context.Context, to, link string) error
}

// Mail 一封已发送的邮件
type Mail struct {
	To      string
	Subject string
	Body    string
}

// LogMailer 将邮件写入日志，sent 回调供测试读取邮件内容
type LogMailer struct {
	sent func(Mail)
}

// NewLogMailer 创建日志邮件实现，sent 可为 nil
func NewLogMailer(sent func(Mail)) *LogMailer {
	return &LogMailer{sent: sent}
}

func (m *LogMailer) deliver(mail Mail) {
	zap.L().Info("【MockMail】",
		zap.String("to", mail.To),
		zap.String("subject", mail.Subject),
		zap.String("body", mail.Body))
	if m.sent != nil {
		m.sent(mail)
	}
}

func (m *LogMailer) SendVerifyMail(_ context.Context, to, link string) error {
	m.deliver(Mail{
		To:      to,
		Subject: "邮箱验证",
		Body:    fmt.Sprintf("请在 24 小时内点击以下链接完成邮箱验证：%s", link),
	})
	return nil
}

func (m *LogMailer) SendResetMail(_ context.Context, to, link string) error {
	m.deliver(Mail{
		To:      to,
		Subject: "重置密码",
		Body:    fmt.Sprintf("请在 30 分钟内点击以下链接重置密码：%s", link),
	})
	return nil
}

var _ Mailer = (*LogMailer)(nil)
