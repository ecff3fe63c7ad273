package content

import (
	"encoding/json"
	"strconv"

	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
)

// 上游在不同接口族间字段命名并不一致，映射集中在这一层处理

func bookFromJSON(r gjson.Result, fallbackTitle string) model.BookRecord {
	b := model.BookRecord{
		BookID:       firstStr(r, "bookId", "id"),
		BookName:     firstStr(r, "bookName", "title", "name"),
		Cover:        firstStr(r, "cover", "coverWap", "poster", "image"),
		ChapterCount: int(firstNum(r, "chapterCount", "totalEpisode", "episodes")),
		Labels:       strList(r.Get("labels")),
		Tags:         strList(r.Get("tags")),
		TypeTwoNames: strList(r.Get("typeTwoNames")),
		Raw:          rawOf(r),
	}
	if b.BookName == "" {
		b.BookName = fallbackTitle
	}
	if c := r.Get("corner"); c.IsObject() {
		b.Corner = &model.Corner{
			Name:  c.Get("name").String(),
			Color: c.Get("color").String(),
		}
	}
	return b
}

// chapterFromJSON 归一化单集记录；pos 为数组位置，上游缺 index 时兜底
func chapterFromJSON(r gjson.Result, pos int) model.ChapterRecord {
	idx := pos
	if v := r.Get("index"); v.Type == gjson.Number {
		idx = int(v.Int())
	} else if v := r.Get("chapterIndex"); v.Type == gjson.Number {
		idx = int(v.Int())
	}
	num := idx + 1

	name := r.Get("name").String()
	if name == "" {
		name = "Episode " + strconv.Itoa(num)
	}

	return model.ChapterRecord{
		ID:       firstStr(r, "id", "chapterId"),
		Index:    idx,
		Num:      num,
		Name:     name,
		Cover:    r.Get("cover").String(),
		M3U8URL:  r.Get("m3u8Url").String(),
		MP4:      r.Get("mp4").String(),
		Duration: r.Get("duration").Int(),
		Unlock:   r.Get("unlock").Bool(),
		Raw:      rawOf(r),
	}
}

func firstStr(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func firstNum(r gjson.Result, keys ...string) int64 {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Int() != 0 {
			return v.Int()
		}
	}
	return 0
}

func firstArray(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.IsArray() {
			return v
		}
	}
	return gjson.Result{}
}

func strList(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	v.ForEach(func(_, e gjson.Result) bool {
		out = append(out, e.String())
		return true
	})
	return out
}

func rawOf(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}
