package token

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dramaboxcore/internal/sign"
	"dramaboxcore/internal/storage"
	"dramaboxcore/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var testDevice = model.DeviceIdentity{DeviceID: "dev-1", AndroidID: "and-1"}

// upstream 同时扮演签名代理与握手接口
type upstream struct {
	signCalls      int32
	bootstrapCalls int32
	bootstrapBody  string
	signedFP       string
	tokenValue     string
	failBootstrap  bool
	delay          time.Duration // 拉长握手窗口，供并发合并测试用
}

func (u *upstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/dramabox/sign":
			atomic.AddInt32(&u.signCalls, 1)
			b, _ := io.ReadAll(r.Body)
			u.signedFP = gjson.GetBytes(b, "data").String()
			w.Write([]byte(`{"status":"ok","data":"sig-1"}`))
		case strings.HasSuffix(r.URL.Path, "/ap001/bootstrap"):
			atomic.AddInt32(&u.bootstrapCalls, 1)
			time.Sleep(u.delay)
			b, _ := io.ReadAll(r.Body)
			u.bootstrapBody = string(b)
			if u.failBootstrap {
				w.Write([]byte(`{"data":{}}`))
				return
			}
			w.Write([]byte(`{"data":{"user":{"token":"` + u.tokenValue + `","uid":"u-9"}}}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func newManager(t *testing.T, u *upstream) (*Manager, *storage.Memory, string) {
	t.Helper()
	srv := httptest.NewServer(u.handler())
	t.Cleanup(srv.Close)
	store := storage.NewMemory()
	m := New(store, sign.New(srv.Client(), nil), srv.Client(), nil)
	return m, store, srv.URL
}

func TestGetBootstrapsAndCaches(t *testing.T) {
	ctx := context.Background()
	u := &upstream{tokenValue: "tok-1"}
	m, store, base := newManager(t, u)

	got, err := m.Get(ctx, base, "in", testDevice, false)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", got.Token)
	assert.Equal(t, "u-9", got.UID)
	assert.Equal(t, got.CreatedAt+tokenTTL.Milliseconds(), got.ExpiresAt)
	assert.True(t, store.Has(storage.KeyToken))

	// 指纹不含 bearer，由固定握手体 + 设备字段构成
	assert.True(t, strings.HasPrefix(u.signedFP, "timestamp="))
	assert.True(t, strings.HasSuffix(u.signedFP, bootstrapBody+"dev-1and-1"))
	assert.Equal(t, bootstrapBody, u.bootstrapBody)
}

func TestGetCachedTokenSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	u := &upstream{tokenValue: "tok-1"}
	m, store, base := newManager(t, u)

	now := time.Now().UnixMilli()
	cached := model.SessionToken{Token: "Bearer cached", UID: "u-1", CreatedAt: now, ExpiresAt: now + 60_000}
	b, _ := json.Marshal(cached)
	require.NoError(t, store.Set(ctx, storage.KeyToken, string(b), time.Minute))

	got, err := m.Get(ctx, base, "in", testDevice, false)
	require.NoError(t, err)
	assert.Equal(t, "Bearer cached", got.Token)
	assert.Zero(t, atomic.LoadInt32(&u.signCalls))
	assert.Zero(t, atomic.LoadInt32(&u.bootstrapCalls))
}

func TestGetExpiredTokenTriggersBootstrap(t *testing.T) {
	ctx := context.Background()
	u := &upstream{tokenValue: "tok-new"}
	m, store, base := newManager(t, u)

	stale := model.SessionToken{Token: "Bearer stale", CreatedAt: 1, ExpiresAt: 2}
	b, _ := json.Marshal(stale)
	require.NoError(t, store.Set(ctx, storage.KeyToken, string(b), time.Minute))

	got, err := m.Get(ctx, base, "in", testDevice, false)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-new", got.Token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&u.bootstrapCalls))
}

func TestGetForceNewBypassesCache(t *testing.T) {
	ctx := context.Background()
	u := &upstream{tokenValue: "tok-new"}
	m, store, base := newManager(t, u)

	now := time.Now().UnixMilli()
	cached := model.SessionToken{Token: "Bearer cached", CreatedAt: now, ExpiresAt: now + 60_000}
	b, _ := json.Marshal(cached)
	require.NoError(t, store.Set(ctx, storage.KeyToken, string(b), time.Minute))

	got, err := m.Get(ctx, base, "in", testDevice, true)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-new", got.Token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&u.bootstrapCalls))
}

func TestGetBootstrapWithoutToken(t *testing.T) {
	u := &upstream{failBootstrap: true}
	m, _, base := newManager(t, u)

	_, err := m.Get(context.Background(), base, "in", testDevice, false)
	var be *BootstrapError
	require.ErrorAs(t, err, &be)
}

func TestGetConcurrentMissesShareOneHandshake(t *testing.T) {
	ctx := context.Background()
	u := &upstream{tokenValue: "tok-1", delay: 50 * time.Millisecond}
	m, _, base := newManager(t, u)

	// 冷启动下 N 路并发未命中要合并成一次握手；
	// 晚到者要么加入在飞的握手，要么命中其落库结果
	const n = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	tokens := make([]model.SessionToken, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			tokens[i], errs[i] = m.Get(ctx, base, "in", testDevice, false)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "Bearer tok-1", tokens[i].Token)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&u.bootstrapCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&u.signCalls))
}

func TestInvalidateDeletesCache(t *testing.T) {
	ctx := context.Background()
	u := &upstream{tokenValue: "tok-1"}
	m, store, base := newManager(t, u)

	_, err := m.Get(ctx, base, "in", testDevice, false)
	require.NoError(t, err)
	require.True(t, store.Has(storage.KeyToken))

	require.NoError(t, m.Invalidate(ctx))
	assert.False(t, store.Has(storage.KeyToken))
}
