package model

import "encoding/json"

// DeviceIdentity 设备指纹，按安装维度生成一次后保持稳定
type DeviceIdentity struct {
	DeviceID  string `json:"deviceId"`
	AndroidID string `json:"androidId"`
	AFID      string `json:"afid"`
}

// Valid 判断设备指纹是否结构完整
func (d DeviceIdentity) Valid() bool {
	return d.DeviceID != "" && d.AndroidID != ""
}

// SessionToken 会话令牌，bootstrap 握手换取，6 小时有效
type SessionToken struct {
	Token     string `json:"token"` // 带 "Bearer " 前缀
	UID       string `json:"uid,omitempty"`
	CreatedAt int64  `json:"createdAt"` // 毫秒时间戳
	ExpiresAt int64  `json:"expiresAt"` // 毫秒时间戳
}

// Alive 判断令牌在给定时刻（毫秒）是否仍然有效
func (t SessionToken) Alive(nowMS int64) bool {
	return t.Token != "" && nowMS < t.ExpiresAt
}

// Corner 角标信息（名称 + 内联颜色）
type Corner struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// BookRecord 剧目记录，上游透传结构，仅归一化标识与数量字段
type BookRecord struct {
	BookID       string          `json:"bookId"`
	BookName     string          `json:"bookName"`
	Cover        string          `json:"cover"`
	ChapterCount int             `json:"chapterCount"`
	Labels       []string        `json:"labels,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	TypeTwoNames []string        `json:"typeTwoNames,omitempty"`
	Corner       *Corner         `json:"corner,omitempty"`
	Raw          json.RawMessage `json:"raw,omitempty"`
}

// ChapterRecord 单集记录，Raw 保留上游原始 CDN 清单供解析
type ChapterRecord struct {
	ID       string          `json:"id"`
	Index    int             `json:"index"` // 上游 0 基索引
	Num      int             `json:"num"`   // 1 基集数
	Name     string          `json:"name"`
	Cover    string          `json:"cover"`
	M3U8URL  string          `json:"m3u8Url,omitempty"`
	MP4      string          `json:"mp4,omitempty"`
	Duration int64           `json:"duration,omitempty"`
	Unlock   bool            `json:"unlock"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	// 流合并场景下分别保留两路上游的原始载荷
	RawWebfic json.RawMessage `json:"rawWebfic,omitempty"`
	RawBatch  json.RawMessage `json:"rawBatch,omitempty"`
}

// SearchResult 搜索结果页
type SearchResult struct {
	Items  []BookRecord `json:"items"`
	IsMore bool         `json:"isMore"`
	Total  int          `json:"total"`
}

// BatchOptions chapterv2/batch/load 请求参数
type BatchOptions struct {
	BookID                 string `json:"bookId"`
	Index                  int    `json:"index"` // 1 基集数，<1 时按 1 处理
	CurrencyPlaySource     string `json:"currencyPlaySource,omitempty"`
	CurrencyPlaySourceName string `json:"currencyPlaySourceName,omitempty"`
	PreLoad                bool   `json:"preLoad"`
	RID                    string `json:"rid,omitempty"`
	PullCID                string `json:"pullCid,omitempty"`
	StartUpKey             string `json:"startUpKey,omitempty"`
}

// BatchResult 批量加载结果
type BatchResult struct {
	Book     BookRecord      `json:"book"`
	Chapters []ChapterRecord `json:"chapters"`
	Related  []BookRecord    `json:"related"`
}

// DetailResult 详情 + 推荐结果
type DetailResult struct {
	Book     BookRecord      `json:"book"`
	Chapters []ChapterRecord `json:"chapters"`
	Related  []BookRecord    `json:"related"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// StreamResult 流页面合并结果：详情提供封面标题，批量加载提供视频清单
type StreamResult struct {
	Book     BookRecord            `json:"book"`
	Chapters []ChapterRecord       `json:"chapters"`
	Episodes map[int]ChapterRecord `json:"episodeMap"`
	Related  []BookRecord          `json:"related"`
}
