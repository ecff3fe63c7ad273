package sign

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"dramaboxcore/internal/logger"

	"github.com/tidwall/gjson"
)

// 签名代理的固定相对路径
const signPath = "/dramabox/sign"

// SignError 签名服务返回非 ok，Raw 保留原始响应用于排障
type SignError struct {
	Raw string
}

func (e *SignError) Error() string {
	return "sign: unexpected response: " + e.Raw
}

// Client 远端签名代理客户端。指纹串换签名，单次使用，不做重试，
// 重试语义由调用方统一处理
type Client struct {
	httpc *http.Client
	log   logger.Logger
}

// New 创建签名客户端
func New(httpc *http.Client, l logger.Logger) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Client{httpc: httpc, log: l}
}

// Sign 将指纹串提交签名代理，返回不透明签名
func (c *Client) Sign(ctx context.Context, base, fingerprint string) (string, error) {
	body, err := json.Marshal(map[string]string{"data": fingerprint})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(base, "/") + signPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	j := gjson.ParseBytes(raw)
	if j.Get("status").String() != "ok" || j.Get("data").String() == "" {
		c.log.Warn("签名服务返回异常", "status", resp.StatusCode, "body", string(raw))
		return "", &SignError{Raw: string(raw)}
	}
	return j.Get("data").String(), nil
}
