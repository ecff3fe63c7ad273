package service

import (
	"context"
	"net/http"
	"strconv"

	"dramaboxcore/internal/config"
	"dramaboxcore/internal/content"
	"dramaboxcore/internal/device"
	"dramaboxcore/internal/logger"
	"dramaboxcore/internal/sign"
	"dramaboxcore/internal/slug"
	"dramaboxcore/internal/storage"
	"dramaboxcore/internal/token"
	"dramaboxcore/internal/video"
	"dramaboxcore/pkg/model"
)

// Service 组装各组件，实现 pkg/api 暴露的门面
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	store   storage.Store
	devices *device.Provisioner
	tokens  *token.Manager
	orch    *content.Orchestrator
}

// New 打开 sqlite 缓存并完成全部装配
func New(cfg *config.Config, l logger.Logger) (*Service, error) {
	if l == nil {
		l = logger.NewNop()
	}
	store, err := storage.OpenSqlite(cfg.Sqlite.Dsn, cfg.Sqlite.Prefix, l)
	if err != nil {
		return nil, err
	}
	return NewWithStore(cfg, l, store), nil
}

// NewWithStore 用外部注入的存储装配，测试场景注入内存实现
func NewWithStore(cfg *config.Config, l logger.Logger, store storage.Store) *Service {
	if l == nil {
		l = logger.NewNop()
	}
	httpc := &http.Client{Timeout: cfg.Timeout()}
	signer := sign.New(httpc, l)
	devices := device.New(cfg.API.DeviceEndpoint, store, httpc, l)
	tokens := token.New(store, signer, httpc, l)
	orch := content.New(content.Config{
		Base:       cfg.API.Base,
		WebficBase: cfg.API.WebficBase,
		Locale:     cfg.API.Locale,
		Devices:    devices,
		Tokens:     tokens,
		Signer:     signer,
		HTTPClient: httpc,
		Logger:     l,
	})
	return &Service{cfg: cfg, log: l, store: store, devices: devices, tokens: tokens, orch: orch}
}

// Device 获取设备指纹
func (s *Service) Device(ctx context.Context) (model.DeviceIdentity, error) {
	return s.devices.Get(ctx)
}

// ResetDevice 清除缓存的设备指纹
func (s *Service) ResetDevice(ctx context.Context) error {
	return s.devices.Reset(ctx)
}

// Token 获取会话令牌
func (s *Service) Token(ctx context.Context, forceNew bool) (model.SessionToken, error) {
	d, err := s.devices.Get(ctx)
	if err != nil {
		return model.SessionToken{}, err
	}
	return s.tokens.Get(ctx, s.cfg.API.Base, s.cfg.API.Locale, d, forceNew)
}

// Classify 按 feed 编号拉取剧目列表
func (s *Service) Classify(ctx context.Context, feedCode string, pageSize int) ([]model.BookRecord, error) {
	return s.orch.Classify(ctx, feedCode, pageSize)
}

// Search 关键词搜索
func (s *Service) Search(ctx context.Context, keyword string, pageNo, pageSize int) (model.SearchResult, error) {
	return s.orch.Search(ctx, keyword, pageNo, pageSize)
}

// LoadBatch 加载单集元数据与 CDN 清单
func (s *Service) LoadBatch(ctx context.Context, opts model.BatchOptions) (model.BatchResult, error) {
	return s.orch.LoadBatch(ctx, opts)
}

// DetailWithRecommend 详情 + 推荐查询
func (s *Service) DetailWithRecommend(ctx context.Context, bookID string) (model.DetailResult, error) {
	return s.orch.DetailWithRecommend(ctx, bookID)
}

// ResolveVideoURL 从单集记录解析可播放地址，空串表示不可播放
func (s *Service) ResolveVideoURL(ch model.ChapterRecord) string {
	return video.Resolve(ch)
}

// Slugify 标题转 URL 片段
func (s *Service) Slugify(title string) string {
	return slug.Slugify(title)
}

// DramaURL 详情页路径
func (s *Service) DramaURL(bookID, title string) string {
	return slug.DramaURL(s.cfg.API.Locale, bookID, title, s.defaultLocale())
}

// StreamURL 播放页路径
func (s *Service) StreamURL(bookID, title string, episode int) string {
	return slug.StreamURL(s.cfg.API.Locale, bookID, title, episode, s.defaultLocale())
}

// defaultLocale 站点默认语言不进入路径前缀
func (s *Service) defaultLocale() bool {
	return s.cfg.API.Locale == "in" || s.cfg.API.Locale == "id"
}

// StreamChapters 流页面数据合并：封面/标题/总集数来自详情，
// 视频清单来自批量加载；批量加载失败时降级为仅详情数据
func (s *Service) StreamChapters(ctx context.Context, bookID string) (model.StreamResult, error) {
	detail, err := s.orch.DetailWithRecommend(ctx, bookID)
	if err != nil {
		return model.StreamResult{}, err
	}

	totalEps := detail.Book.ChapterCount
	if totalEps < len(detail.Chapters) {
		totalEps = len(detail.Chapters)
	}

	var batchChapters []model.ChapterRecord
	if batch, err := s.orch.LoadBatch(ctx, model.BatchOptions{BookID: bookID}); err != nil {
		s.log.Warn("批量加载失败，流页面降级为仅详情数据", "bookId", bookID, "error", err)
	} else {
		batchChapters = batch.Chapters
	}

	batchMap := make(map[int]model.ChapterRecord, len(batchChapters))
	for i, b := range batchChapters {
		ep := b.Num
		if ep <= 0 {
			ep = i + 1
		}
		batchMap[ep] = b
	}

	chapters := make([]model.ChapterRecord, 0, totalEps)
	episodes := make(map[int]model.ChapterRecord, totalEps)
	for ep := 1; ep <= totalEps; ep++ {
		var wf model.ChapterRecord
		if ep-1 < len(detail.Chapters) {
			wf = detail.Chapters[ep-1]
		}
		b, hasBatch := batchMap[ep]

		name := wf.Name
		if name == "" {
			name = "Episode " + strconv.Itoa(ep)
		}
		cover := wf.Cover
		if cover == "" {
			cover = detail.Book.Cover
		}
		if cover == "" {
			cover = "https://via.placeholder.com/100x135?text=EP+" + strconv.Itoa(ep)
		}

		// 视频地址批量加载优先，webfic 兜底
		urlBatch := ""
		if hasBatch {
			urlBatch = video.Resolve(b)
		}
		mp4 := urlBatch
		if mp4 == "" {
			mp4 = video.Resolve(wf)
		}
		m3u8 := b.M3U8URL
		if m3u8 == "" {
			m3u8 = wf.M3U8URL
		}

		merged := model.ChapterRecord{
			ID:        firstNonEmpty(b.ID, wf.ID),
			Index:     ep - 1,
			Num:       ep,
			Name:      name,
			Cover:     cover,
			MP4:       mp4,
			M3U8URL:   m3u8,
			Duration:  maxInt64(b.Duration, wf.Duration),
			Unlock:    b.Unlock || wf.Unlock,
			RawWebfic: wf.Raw,
			RawBatch:  b.Raw,
		}
		if hasBatch {
			merged.Raw = b.Raw
		} else {
			merged.Raw = wf.Raw
		}

		chapters = append(chapters, merged)
		episodes[ep] = merged
	}

	return model.StreamResult{
		Book:     detail.Book,
		Chapters: chapters,
		Episodes: episodes,
		Related:  detail.Related,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
