package api

import (
	"context"

	"dramaboxcore/internal/config"
	"dramaboxcore/internal/logger"
	"dramaboxcore/internal/service"
	"dramaboxcore/pkg/model"
)

// Service 服务接口
type Service interface {
	// Device 获取（必要时生成）设备指纹
	Device(ctx context.Context) (model.DeviceIdentity, error)

	// ResetDevice 清除缓存的设备指纹
	ResetDevice(ctx context.Context) error

	// Token 获取会话令牌，forceNew 时强制重新握手
	Token(ctx context.Context, forceNew bool) (model.SessionToken, error)

	// Classify 按 feed 编号拉取剧目列表
	Classify(ctx context.Context, feedCode string, pageSize int) ([]model.BookRecord, error)

	// Search 关键词搜索
	Search(ctx context.Context, keyword string, pageNo, pageSize int) (model.SearchResult, error)

	// LoadBatch 加载单集元数据与 CDN 清单
	LoadBatch(ctx context.Context, opts model.BatchOptions) (model.BatchResult, error)

	// DetailWithRecommend 详情 + 推荐查询
	DetailWithRecommend(ctx context.Context, bookID string) (model.DetailResult, error)

	// StreamChapters 流页面合并数据
	StreamChapters(ctx context.Context, bookID string) (model.StreamResult, error)

	// ResolveVideoURL 从单集记录解析可播放地址，空串表示不可播放
	ResolveVideoURL(ch model.ChapterRecord) string

	// Slugify 标题转 URL 片段
	Slugify(title string) string

	// DramaURL 详情页路径
	DramaURL(bookID, title string) string

	// StreamURL 播放页路径
	StreamURL(bookID, title string, episode int) string
}

// NewService 创建并返回服务接口实现
func NewService(cfg *config.Config, l logger.Logger) (Service, error) {
	return service.New(cfg, l)
}
