package protocol

import (
	"testing"
	"time"

	"dramaboxcore/pkg/model"

	"github.com/stretchr/testify/assert"
)

var testDevice = model.DeviceIdentity{
	DeviceID:  "dev-1",
	AndroidID: "and-1",
	AFID:      "af-1",
}

func TestTimestampMS(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "1700000000123", TimestampMS(now))
}

func TestLocalTimeUsesUTCWallClock(t *testing.T) {
	// 取 UTC 墙钟再拼固定时区后缀，与安卓客户端逐字节一致
	loc := time.FixedZone("WIB", 7*3600)
	now := time.Date(2026, 1, 2, 10, 4, 5, 0, loc)
	assert.Equal(t, "2026-01-02 03:04:05 +0700", LocalTime(now))
}

func TestFingerprintComposition(t *testing.T) {
	body := []byte(`{"a":1}`)
	assert.Equal(t,
		"timestamp=123"+`{"a":1}`+"dev-1and-1",
		Fingerprint("123", body, testDevice, ""))
	assert.Equal(t,
		"timestamp=123"+`{"a":1}`+"dev-1and-1Bearer tok",
		Fingerprint("123", body, testDevice, "Bearer tok"))
}

func TestLang(t *testing.T) {
	assert.Equal(t, "in", Lang("in"))
	assert.Equal(t, "in", Lang("id"))
	assert.Equal(t, "en", Lang("fr"))
	assert.Equal(t, "en", Lang(""))
}

func TestLangPassthrough(t *testing.T) {
	assert.Equal(t, "in", LangPassthrough("id"))
	assert.Equal(t, "fr", LangPassthrough("fr"))
}

func TestHeadersBearerControlsTN(t *testing.T) {
	h := Headers(Content, testDevice, "in", "123", "lt", "sig", "")
	assert.Empty(t, h.Get("tn"))

	h = Headers(Content, testDevice, "in", "123", "lt", "sig", "Bearer tok")
	assert.Equal(t, "Bearer tok", h.Get("tn"))
}

func TestHeadersProfileValues(t *testing.T) {
	h := Headers(Bootstrap, testDevice, "in", "123", "lt", "sig", "")
	assert.Equal(t, "470", h.Get("version"))
	assert.Equal(t, "DRA1000042", h.Get("cid"))
	assert.Empty(t, h.Get("mcc"), "bootstrap profile carries no mcc")
	assert.Equal(t, "dev-1", h.Get("device-id"))
	assert.Equal(t, "and-1", h.Get("android-id"))
	assert.Equal(t, "af-1", h.Get("afid"))
	assert.Equal(t, "sig", h.Get("sn"))
	assert.Equal(t, "123", h.Get("ins"))

	h = Headers(Content, testDevice, "en", "456", "lt", "sig", "")
	assert.Equal(t, "481", h.Get("version"))
	assert.Equal(t, "302", h.Get("mcc"))
	assert.Equal(t, "DBDASEO1000000", h.Get("mchid"))
	assert.Equal(t, "en", h.Get("language"))
	assert.Equal(t, "en", h.Get("current-language"))
}

func TestHeadersAFIDFallback(t *testing.T) {
	d := model.DeviceIdentity{DeviceID: "dev-1", AndroidID: "and-1"}
	h := Headers(Content, d, "in", "123", "lt", "sig", "")
	assert.Equal(t, Content.AFIDFallback, h.Get("afid"))
}
