package content

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"dramaboxcore/internal/device"
	"dramaboxcore/internal/logger"
	"dramaboxcore/internal/protocol"
	"dramaboxcore/internal/sign"
	"dramaboxcore/internal/token"
	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
)

// Orchestrator 内容查询编排器：构造签名请求，统一执行
// “鉴权失败作废令牌后重试一次”策略
type Orchestrator struct {
	base       string
	webficBase string
	locale     string
	devices    *device.Provisioner
	tokens     *token.Manager
	signer     *sign.Client
	httpc      *http.Client
	log        logger.Logger
}

// Config 配置选项
type Config struct {
	Base       string
	WebficBase string
	Locale     string
	Devices    *device.Provisioner
	Tokens     *token.Manager
	Signer     *sign.Client
	HTTPClient *http.Client
	Logger     logger.Logger
}

// New 创建编排器
func New(cfg Config) *Orchestrator {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	l := cfg.Logger
	if l == nil {
		l = logger.NewNop()
	}
	return &Orchestrator{
		base:       strings.TrimRight(cfg.Base, "/"),
		webficBase: strings.TrimRight(cfg.WebficBase, "/"),
		locale:     cfg.Locale,
		devices:    cfg.Devices,
		tokens:     cfg.Tokens,
		signer:     cfg.Signer,
		httpc:      httpc,
		log:        l,
	}
}

// signedCall 特权调用组合子。每次尝试重新取时间戳、指纹与签名；
// 遇到 403 或业务失败指示时先作废缓存令牌，再强刷令牌重试，最多一次
func (o *Orchestrator) signedCall(ctx context.Context, op, path, lang string, body []byte) (gjson.Result, error) {
	d, err := o.devices.Get(ctx)
	if err != nil {
		return gjson.Result{}, err
	}

	allowRetry := true
	forceNew := false
	for {
		t, err := o.tokens.Get(ctx, o.base, o.locale, d, forceNew)
		if err != nil {
			return gjson.Result{}, err
		}

		status, raw, err := o.post(ctx, path, lang, d, t.Token, body)
		if err != nil {
			return gjson.Result{}, err
		}

		if status == http.StatusForbidden {
			_ = o.tokens.Invalidate(ctx)
			if allowRetry {
				o.log.Warn("接口返回 403，作废令牌后重试", "op", op)
				allowRetry, forceNew = false, true
				continue
			}
			return gjson.Result{}, &AuthError{Op: op}
		}

		// 非法 JSON 按空对象处理，走业务失败分支
		j := gjson.ParseBytes(raw)
		if !succeeded(j) {
			_ = o.tokens.Invalidate(ctx)
			if allowRetry {
				o.log.Warn("接口业务失败，作废令牌后重试", "op", op, "body", truncate(raw))
				allowRetry, forceNew = false, true
				continue
			}
			return gjson.Result{}, &RequestError{Op: op, Raw: string(raw)}
		}
		return j, nil
	}
}

// post 发起一次带签名与令牌头的请求，返回状态码与原始响应
func (o *Orchestrator) post(ctx context.Context, path, lang string, d model.DeviceIdentity, bearer string, body []byte) (int, []byte, error) {
	now := time.Now()
	ts := protocol.TimestampMS(now)

	sn, err := o.signer.Sign(ctx, o.base, protocol.Fingerprint(ts, body, d, bearer))
	if err != nil {
		return 0, nil, err
	}

	url := o.base + path + "?timestamp=" + ts
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header = protocol.Headers(protocol.Content, d, lang, ts, protocol.LocalTime(now), sn, bearer)

	resp, err := o.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

// succeeded 成功指示：status 为数字 0，或 success 为 true
func succeeded(j gjson.Result) bool {
	if st := j.Get("status"); st.Exists() && st.Type == gjson.Number && st.Int() == 0 {
		return true
	}
	return j.Get("success").Type == gjson.True
}

func truncate(b []byte) string {
	const max = 512
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}

// fallbackTitle 无标题剧目的兜底文案，按语言给出
func (o *Orchestrator) fallbackTitle() string {
	if o.locale == "in" || o.locale == "id" {
		return "Tanpa Judul"
	}
	return "Untitled"
}
