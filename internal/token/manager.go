package token

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dramaboxcore/internal/logger"
	"dramaboxcore/internal/protocol"
	"dramaboxcore/internal/sign"
	"dramaboxcore/internal/storage"
	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	tokenTTL      = 6 * time.Hour
	bootstrapPath = "/api/proxy.php/drama-box/ap001/bootstrap"

	// bootstrap 请求体固定不变，序列化字节参与指纹
	bootstrapBody = `{"distinctId":"b2043e4b5ee0e9a0","scene":null}`
)

// BootstrapError 握手响应缺少令牌
type BootstrapError struct {
	Raw string
}

func (e *BootstrapError) Error() string {
	return "token: bootstrap returned no token: " + e.Raw
}

// Manager 会话令牌生命周期管理。唯一允许创建新会话的组件；
// 并发未命中通过 singleflight 合并为一次握手
type Manager struct {
	store  storage.Store
	signer *sign.Client
	httpc  *http.Client
	log    logger.Logger
	flight singleflight.Group
}

// New 创建令牌管理器
func New(store storage.Store, signer *sign.Client, httpc *http.Client, l logger.Logger) *Manager {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Manager{store: store, signer: signer, httpc: httpc, log: l}
}

// Get 获取会话令牌。forceNew 为 false 时优先返回缓存中未过期的令牌
func (m *Manager) Get(ctx context.Context, base, locale string, d model.DeviceIdentity, forceNew bool) (model.SessionToken, error) {
	if !forceNew {
		if saved, ok, err := m.store.Get(ctx, storage.KeyToken); err == nil && ok {
			var t model.SessionToken
			if json.Unmarshal([]byte(saved), &t) == nil && t.Alive(time.Now().UnixMilli()) {
				return t, nil
			}
		}
	}

	v, err, _ := m.flight.Do(storage.KeyToken, func() (any, error) {
		return m.bootstrap(ctx, base, locale, d)
	})
	if err != nil {
		return model.SessionToken{}, err
	}
	return v.(model.SessionToken), nil
}

// Invalidate 删除缓存令牌；鉴权失败后必须先调用再重试
func (m *Manager) Invalidate(ctx context.Context) error {
	return m.store.Delete(ctx, storage.KeyToken)
}

// bootstrap 执行 ap001/bootstrap 握手并缓存结果
func (m *Manager) bootstrap(ctx context.Context, base, locale string, d model.DeviceIdentity) (model.SessionToken, error) {
	now := time.Now()
	ts := protocol.TimestampMS(now)
	body := []byte(bootstrapBody)

	sn, err := m.signer.Sign(ctx, base, protocol.Fingerprint(ts, body, d, ""))
	if err != nil {
		return model.SessionToken{}, err
	}

	url := strings.TrimRight(base, "/") + bootstrapPath + "?timestamp=" + ts
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return model.SessionToken{}, err
	}
	req.Header = protocol.Headers(protocol.Bootstrap, d, protocol.Lang(locale), ts, protocol.LocalTime(now), sn, "")

	resp, err := m.httpc.Do(req)
	if err != nil {
		return model.SessionToken{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.SessionToken{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.SessionToken{}, &BootstrapError{Raw: "http " + strconv.Itoa(resp.StatusCode) + ": " + string(raw)}
	}

	user := gjson.GetBytes(raw, "data.user")
	if user.Get("token").String() == "" {
		return model.SessionToken{}, &BootstrapError{Raw: string(raw)}
	}

	nowMS := now.UnixMilli()
	t := model.SessionToken{
		Token:     "Bearer " + user.Get("token").String(),
		UID:       user.Get("uid").String(),
		CreatedAt: nowMS,
		ExpiresAt: nowMS + tokenTTL.Milliseconds(),
	}

	b, _ := json.Marshal(t)
	if err := m.store.Set(ctx, storage.KeyToken, string(b), tokenTTL); err != nil {
		return model.SessionToken{}, err
	}
	m.log.Info("会话令牌已刷新", "uid", t.UID, "expiresAt", t.ExpiresAt)
	return t, nil
}
