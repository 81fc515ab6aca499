package protocol

import (
	"fmt"
	"time"
)

// 服务器侧时间戳有两种线上表示：ISO 8601 字符串（*UTC 字段）
// 与 Unix 毫秒整数（Value.timestampValue）。本文件统一两者的转换。

const isoFormat = "2006-01-02T15:04:05.000Z"

// ParseISOString 解析服务器下发的 ISO 8601 时间字符串（统一转为 UTC）
func ParseISOString(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("protocol: parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatISOString 按服务器接受的毫秒精度 ISO 8601 格式序列化时间
func FormatISOString(t time.Time) string {
	return t.UTC().Format(isoFormat)
}

// FromUnixMillis 将 Unix 毫秒时间戳转为 UTC time.Time
func FromUnixMillis(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}

// ToUnixMillis 将 time.Time 转为 Unix 毫秒时间戳
func ToUnixMillis(t time.Time) int64 {
	return t.UnixMilli()
}
