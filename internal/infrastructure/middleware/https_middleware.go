package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 将 HTTP 请求重定向到 HTTPS，并附加安全响应头
// mainConfig.tlsRedirect 为 true 时启用
func TlsHandler(host string, port int, isDev bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:          true,
		SSLHost:              host + ":" + strconv.Itoa(port),
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:        isDev,
		STSSeconds:           31536000,
		STSIncludeSubdomains: true,
	})

	return func(c *gin.Context) {
		// 发生重定向时 Process 已写入响应并返回 error
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			zap.L().Debug("TLS redirect", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
