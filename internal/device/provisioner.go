package device

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"dramaboxcore/internal/logger"
	"dramaboxcore/internal/storage"
	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
)

// 设备指纹缓存 30 天；除显式 Reset 外不会失效
const deviceTTL = 30 * 24 * time.Hour

// ProvisionError 设备生成接口不可达或返回残缺
type ProvisionError struct {
	Raw string
	Err error
}

func (e *ProvisionError) Error() string {
	if e.Err != nil {
		return "device: provisioning failed: " + e.Err.Error()
	}
	return "device: invalid response: " + e.Raw
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// Provisioner 设备指纹提供者：缓存命中直接返回，否则调生成接口并落库
type Provisioner struct {
	endpoint string
	store    storage.Store
	httpc    *http.Client
	log      logger.Logger
}

// New 创建设备指纹提供者
func New(endpoint string, store storage.Store, httpc *http.Client, l logger.Logger) *Provisioner {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Provisioner{endpoint: endpoint, store: store, httpc: httpc, log: l}
}

// Get 获取设备指纹；缓存未命中时访问生成接口，成功后写缓存
func (p *Provisioner) Get(ctx context.Context) (model.DeviceIdentity, error) {
	if saved, ok, err := p.store.Get(ctx, storage.KeyDevice); err == nil && ok {
		var d model.DeviceIdentity
		if json.Unmarshal([]byte(saved), &d) == nil && d.Valid() {
			return d, nil
		}
	}

	d, err := p.provision(ctx)
	if err != nil {
		return model.DeviceIdentity{}, err
	}

	b, _ := json.Marshal(d)
	if err := p.store.Set(ctx, storage.KeyDevice, string(b), deviceTTL); err != nil {
		return model.DeviceIdentity{}, err
	}
	p.log.Info("设备指纹已生成并缓存", "deviceId", d.DeviceID)
	return d, nil
}

// Reset 清除缓存的设备指纹，仅显式调用时触发
func (p *Provisioner) Reset(ctx context.Context) error {
	return p.store.Delete(ctx, storage.KeyDevice)
}

func (p *Provisioner) provision(ctx context.Context) (model.DeviceIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return model.DeviceIdentity{}, &ProvisionError{Err: err}
	}
	resp, err := p.httpc.Do(req)
	if err != nil {
		return model.DeviceIdentity{}, &ProvisionError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.DeviceIdentity{}, &ProvisionError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return model.DeviceIdentity{}, &ProvisionError{Raw: string(raw)}
	}

	// 接口历史上存在连字符与下划线两套字段命名，这里都接受
	j := gjson.ParseBytes(raw)
	d := model.DeviceIdentity{
		DeviceID:  firstString(j, "device-id", "device_id"),
		AndroidID: firstString(j, "android-id", "android_id"),
		AFID:      j.Get("afid").String(),
	}
	if !d.Valid() {
		return model.DeviceIdentity{}, &ProvisionError{Raw: string(raw)}
	}
	return d, nil
}

func firstString(j gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := j.Get(k).String(); v != "" {
			return v
		}
	}
	return ""
}
