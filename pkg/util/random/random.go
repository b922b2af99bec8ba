package random

import (
	"crypto/rand"
	"math/big"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetNowAndLenRandomString 生成带日期前缀的随机字符串（用于 UUID）
// 格式: YYMMDD + 字母数字混合，示例: 241230AbCdE12345
func GetNowAndLenRandomString(length int) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return time.Now().Format("060102") + string(result)
}

// NewRoomUuid 房间 ID，R 开头，共 20 位
func NewRoomUuid() string {
	return "R" + GetNowAndLenRandomString(13)
}

// NewUserUuid 用户 ID，U 开头，共 20 位
func NewUserUuid() string {
	return "U" + GetNowAndLenRandomString(13)
}

// NewToken 生成邮件验证、密码重置用的一次性 token
func NewToken() (string, error) {
	return gonanoid.Generate(charset, 32)
}
