package constants

import "time"

const (
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
	MAX_ADMIN_ROOMS            = 50  // 单个用户可担任房主的房间上限
	ROOM_CACHE_TTL             = 10 * time.Minute
	ROOM_VERSION_TTL           = 2 * ROOM_CACHE_TTL // 需长于缓存条目
	VERIFY_TOKEN_TTL           = 24 * time.Hour
	RESET_TOKEN_TTL            = 30 * time.Minute
	NOTIFY_HTTP_TIMEOUT        = 5 * time.Second

	TITLE_MAX_LEN        = 20
	INTRODUCTION_MAX_LEN = 200
	NICKNAME_MAX_LEN     = 20
	REASON_MAX_LEN       = 50
	RECORD_MAX_LEN       = 100
	MESSAGE_MAX_LEN      = 100
)

// Redis key 前缀
const (
	USER_TOKEN_PREFIX   = "user_token:"
	VERIFY_TOKEN_PREFIX = "verify_email_"
	RESET_TOKEN_PREFIX  = "password_reset_"
	ROOM_INFO_PREFIX    = "room_info_"
	ROOM_MEMBERS_PREFIX = "room_members_"
	ROOM_VERSION_PREFIX = "room_ver_"
)

// TIME_LAYOUT 响应中的时间格式
const TIME_LAYOUT = "2006-01-02 15:04:05"
