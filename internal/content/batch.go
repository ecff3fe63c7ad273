package content

import (
	"context"
	"errors"

	"dramaboxcore/internal/protocol"
	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const batchPath = "/api/proxy.php/drama-box/chapterv2/batch/load"

// 批量加载缺省的播放来源标识，来自安卓端发现页
const (
	defaultPlaySource     = "discover_175_rec"
	defaultPlaySourceName = "首页发现_Untukmu_推荐列表"
)

// ErrBookIDRequired bookId 为空
var ErrBookIDRequired = errors.New("content: bookId required")

// LoadBatch 按 1 基集数加载单集元数据与 CDN 清单。
// 鉴权重试与其余特权调用共用 signedCall，一次逻辑调用最多重试一次
func (o *Orchestrator) LoadBatch(ctx context.Context, opts model.BatchOptions) (model.BatchResult, error) {
	if opts.BookID == "" {
		return model.BatchResult{}, ErrBookIDRequired
	}
	index := opts.Index
	if index < 1 {
		index = 1
	}
	playSource := opts.CurrencyPlaySource
	if playSource == "" {
		playSource = defaultPlaySource
	}
	playSourceName := opts.CurrencyPlaySourceName
	if playSourceName == "" {
		playSourceName = defaultPlaySourceName
	}

	// 键序参与指纹校验，用 sjson 按固定顺序写入
	body := []byte(`{}`)
	body, _ = sjson.SetBytes(body, "boundaryIndex", 0)
	body, _ = sjson.SetBytes(body, "index", index)
	body, _ = sjson.SetBytes(body, "currencyPlaySource", playSource)
	body, _ = sjson.SetBytes(body, "currencyPlaySourceName", playSourceName)
	body, _ = sjson.SetBytes(body, "preLoad", opts.PreLoad)
	body, _ = sjson.SetBytes(body, "rid", opts.RID)
	body, _ = sjson.SetBytes(body, "pullCid", opts.PullCID)
	body, _ = sjson.SetBytes(body, "loadDirection", 1)
	body, _ = sjson.SetBytes(body, "startUpKey", opts.StartUpKey)
	body, _ = sjson.SetBytes(body, "bookId", opts.BookID)

	j, err := o.signedCall(ctx, "batch", batchPath, protocol.Lang(o.locale), body)
	if err != nil {
		return model.BatchResult{}, err
	}

	data := j.Get("data")
	list := firstArray(data, "list", "chapterList", "chapters")

	chapters := make([]model.ChapterRecord, 0, len(list.Array()))
	pos := 0
	list.ForEach(func(_, r gjson.Result) bool {
		chapters = append(chapters, chapterFromJSON(r, pos))
		pos++
		return true
	})

	res := model.BatchResult{
		Book:     bookFromJSON(data.Get("book"), o.fallbackTitle()),
		Chapters: chapters,
		Related:  o.relatedFrom(data, "recommends", "recommendBooks", "recommendList"),
	}
	return res, nil
}

// relatedFrom 从候选键里取推荐列表并归一化
func (o *Orchestrator) relatedFrom(data gjson.Result, keys ...string) []model.BookRecord {
	list := firstArray(data, keys...)
	out := make([]model.BookRecord, 0, len(list.Array()))
	list.ForEach(func(_, r gjson.Result) bool {
		b := bookFromJSON(r, o.fallbackTitle())
		if b.Cover == "" {
			b.Cover = "https://via.placeholder.com/240x400?text=No+Image"
		}
		out = append(out, b)
		return true
	})
	return out
}
