package video

import (
	"regexp"
	"sort"
	"strings"

	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// Candidate 解析过程中由 CDN 条目派生出的候选源，选定后即丢弃
type Candidate struct {
	URL          string
	Quality      int
	IsDefault    bool
	IsVIP        bool
	IsCDNDefault bool
	Domain       string
}

// extractor 单条解析规则；命中返回非空地址
type extractor func(ch model.ChapterRecord) string

// 解析优先级自上而下，第一个命中的规则即为结果
var chain = []extractor{
	fromDirectFields,
	fromCDNList,
	fromChapterVideo,
	fromSourceLists,
	fromWebficFallback,
}

// Resolve 从单集记录解析可播放地址。解析不到返回空串，从不报错；
// 调用方需把空串当作“不可播放”处理
func Resolve(ch model.ChapterRecord) string {
	for _, ex := range chain {
		if u := ex(ch); u != "" {
			return u
		}
	}
	return ""
}

// fromDirectFields 记录自身的直连字段
func fromDirectFields(ch model.ChapterRecord) string {
	if ch.MP4 != "" {
		return ch.MP4
	}
	if ch.M3U8URL != "" {
		return ch.M3U8URL
	}
	r := gjson.ParseBytes(ch.Raw)
	for _, k := range []string{"mp4", "m3u8Url", "playUrl", "videoUrl", "mediaUrl", "url"} {
		if v := r.Get(k); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// fromCDNList CDN 候选列表。批量加载的原始载荷优先于合并载荷
func fromCDNList(ch model.ChapterRecord) string {
	batch := ch.RawBatch
	if len(batch) == 0 {
		batch = ch.Raw
	}
	cdnList := gjson.GetBytes(batch, "cdnList")
	if !cdnList.IsArray() || len(cdnList.Array()) == 0 {
		return ""
	}

	cdn := pickCDN(cdnList.Array())
	paths := cdn.Get("videoPathList")
	if !paths.IsArray() || len(paths.Array()) == 0 {
		return ""
	}
	slots := paths.Array()

	// 槽位约定：0 为 HLS，1 为逐进式；两者都在时偏向逐进式。
	// 该顺序来自线上观察，已由测试钉死
	mp4Entry := slots[0]
	if len(slots) > 1 {
		mp4Entry = slots[1]
	}
	mp4Path := extractPath(mp4Entry)
	m3u8Path := extractPath(slots[0])

	if mp4Path != "" && absoluteURL.MatchString(mp4Path) {
		return mp4Path
	}
	if m3u8Path != "" && absoluteURL.MatchString(m3u8Path) {
		return m3u8Path
	}

	domain := cdn.Get("cdnDomain").String()
	if domain == "" {
		return ""
	}
	if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	if mp4Path != "" {
		return joinURL(domain, mp4Path)
	}
	if m3u8Path != "" {
		return joinURL(domain, m3u8Path)
	}
	return ""
}

// pickCDN 候选打分：非 VIP 优先，其次 isDefault 标记，再按清晰度降序，
// 最后保持列表原序
func pickCDN(entries []gjson.Result) gjson.Result {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := cdnScore(entries[idx[a]]), cdnScore(entries[idx[b]])
		if ca.IsVIP != cb.IsVIP {
			return !ca.IsVIP
		}
		if ca.IsCDNDefault != cb.IsCDNDefault {
			return ca.IsCDNDefault
		}
		return ca.Quality > cb.Quality
	})
	return entries[idx[0]]
}

func cdnScore(e gjson.Result) Candidate {
	return Candidate{
		Quality:      int(e.Get("quality").Int()),
		IsVIP:        e.Get("isVip").Int() == 1 || e.Get("isVip").Type == gjson.True,
		IsCDNDefault: e.Get("isDefault").Int() == 1 || e.Get("isDefault").Type == gjson.True,
		Domain:       e.Get("cdnDomain").String(),
	}
}

// extractPath videoPathList 槽位既可能是字符串也可能是对象
func extractPath(e gjson.Result) string {
	switch {
	case e.Type == gjson.String:
		return e.String()
	case e.IsObject():
		for _, k := range []string{"videoPath", "path", "url", "playUrl", "videoUrl"} {
			if v := e.Get(k); v.String() != "" {
				return v.String()
			}
		}
	}
	return ""
}

func fromChapterVideo(ch model.ChapterRecord) string {
	v := gjson.GetBytes(ch.Raw, "chapterVideo")
	if !v.IsObject() {
		return ""
	}
	for _, k := range []string{"mp4", "m3u8Url", "videoUrl", "playUrl"} {
		if s := v.Get(k); s.Type == gjson.String && s.String() != "" {
			return s.String()
		}
	}
	return ""
}

func fromSourceLists(ch model.ChapterRecord) string {
	r := gjson.ParseBytes(ch.Raw)
	for _, key := range []string{"sourceList", "sources"} {
		list := r.Get(key)
		if !list.IsArray() || len(list.Array()) == 0 {
			continue
		}
		s := list.Array()[0]
		for _, k := range []string{"mp4", "m3u8Url", "videoUrl", "playUrl", "url"} {
			if v := s.Get(k); v.String() != "" {
				return v.String()
			}
		}
	}
	return ""
}

// fromWebficFallback 备用上游的原始载荷，兜底检查
func fromWebficFallback(ch model.ChapterRecord) string {
	if len(ch.RawWebfic) == 0 {
		return ""
	}
	wf := gjson.ParseBytes(ch.RawWebfic)
	for _, k := range []string{"mp4", "m3u8Url", "playUrl", "videoUrl"} {
		if v := wf.Get(k); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// joinURL 相对路径与 CDN 域名之间保证恰好一个斜杠
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
