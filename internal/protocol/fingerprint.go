package protocol

import (
	"strconv"
	"time"

	"dramaboxcore/pkg/model"
)

// TimestampMS 毫秒时间戳字符串，随请求与指纹一起下发
func TimestampMS(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// LocalTime local-time 头格式。历史客户端取 UTC 墙钟时间再固定拼 +0700，
// 此处保持逐字节一致
func LocalTime(now time.Time) string {
	return now.UTC().Format("2006-01-02 15:04:05") + " +0700"
}

// Fingerprint 待签名串：时间戳标记 + 请求体 + 设备字段，特权调用再拼 bearer。
// 拼接顺序是上游校验的一部分，不可调整
func Fingerprint(ts string, body []byte, d model.DeviceIdentity, bearer string) string {
	return "timestamp=" + ts + string(body) + d.DeviceID + d.AndroidID + bearer
}
