package protocol

import (
	"net/http"

	"dramaboxcore/pkg/model"
)

// 上游要求的固定头部值，来自安卓客户端抓包
const (
	packageName = "com.storymatrix.drama"
	userAgent   = "okhttp/4.10.0"
	contentType = "application/json; charset=UTF-8"
)

// Profile 一组接口族的固定头部集合；bootstrap 与内容接口抓包自不同客户端版本
type Profile struct {
	Version      string
	P            string
	CID          string
	MCHID        string
	MBID         string
	MCC          string // 为空时不下发
	InstanceID   string
	VN           string
	ActiveTime   string
	AFIDFallback string // 设备未带 afid 时的兜底值
}

// Bootstrap ap001/bootstrap 使用的头部集合
var Bootstrap = Profile{
	Version:      "470",
	P:            "48",
	CID:          "DRA1000042",
	MCHID:        "",
	MBID:         "",
	InstanceID:   "5dbedc0fe1ddcfc92df24899086b7162",
	VN:           "4.7.0",
	ActiveTime:   "8087",
	AFIDFallback: "1763133344993-5454297816326183284",
}

// Content classify/search/batch 使用的头部集合
var Content = Profile{
	Version:      "481",
	P:            "49",
	CID:          "DBDASEO1000000",
	MCHID:        "DBDASEO1000000",
	MBID:         "0",
	MCC:          "302",
	InstanceID:   "fa4ffcd60028854da3aff4d3c2e43cc8",
	VN:           "4.8.1",
	ActiveTime:   "9452",
	AFIDFallback: "1763622503350-3593841370232011433",
}

// Lang 语言头取值：in/id 归一为 in，其余回落 en
func Lang(locale string) string {
	if locale == "in" || locale == "id" {
		return "in"
	}
	return "en"
}

// LangPassthrough classify 专用：in/id 归一为 in，其余透传 locale
func LangPassthrough(locale string) string {
	if locale == "in" || locale == "id" {
		return "in"
	}
	return locale
}

// Headers 组装一次请求的完整头部；bearer 为空时不带 tn
func Headers(p Profile, d model.DeviceIdentity, lang, ts, localTime, sn, bearer string) http.Header {
	afid := d.AFID
	if afid == "" {
		afid = p.AFIDFallback
	}

	h := http.Header{}
	h.Set("version", p.Version)
	h.Set("package-name", packageName)
	h.Set("p", p.P)
	h.Set("cid", p.CID)
	h.Set("apn", "2")
	h.Set("country-code", "ID")
	h.Set("mchid", p.MCHID)
	h.Set("mbid", p.MBID)
	h.Set("tz", "-420")
	h.Set("language", lang)
	if p.MCC != "" {
		h.Set("mcc", p.MCC)
	}
	h.Set("locale", "en_ID")
	h.Set("is_root", "1")
	h.Set("device-id", d.DeviceID)
	h.Set("nchid", "DRA1000042")
	h.Set("instanceid", p.InstanceID)
	h.Set("md", "23127PN0CC")
	h.Set("store-source", "store_google")
	h.Set("mf", "XIAOMI")
	h.Set("device-score", "75")
	h.Set("local-time", localTime)
	h.Set("time-zone", "+0700")
	h.Set("brand", "Xiaomi")
	h.Set("lat", "0")
	h.Set("is_emulator", "1")
	h.Set("current-language", lang)
	h.Set("ov", "12")
	h.Set("userid", "337251730")
	h.Set("afid", afid)
	h.Set("android-id", d.AndroidID)
	h.Set("srn", "1440x2560")
	h.Set("ins", ts)
	h.Set("is_vpn", "1")
	h.Set("build", "Build/W528JS")
	h.Set("pline", "ANDROID")
	h.Set("vn", p.VN)
	h.Set("over-flow", "new-fly")
	if bearer != "" {
		h.Set("tn", bearer)
	}
	h.Set("sn", sn)
	h.Set("active-time", p.ActiveTime)
	h.Set("content-type", contentType)
	h.Set("accept-encoding", "gzip")
	h.Set("user-agent", userAgent)
	return h
}
