package content

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
)

const detailPath = "/webfic/book/detail/v2"

// DetailWithRecommend 详情 + 推荐查询。走独立主机，不签名不带令牌
func (o *Orchestrator) DetailWithRecommend(ctx context.Context, bookID string) (model.DetailResult, error) {
	if bookID == "" {
		return model.DetailResult{}, ErrBookIDRequired
	}

	// webfic 侧语言只认 in，不认 id
	lang := o.locale
	if lang == "id" {
		lang = "in"
	}

	u := o.webficBase + detailPath +
		"?id=" + url.QueryEscape(bookID) +
		"&language=" + url.QueryEscape(lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.DetailResult{}, err
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return model.DetailResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.DetailResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return model.DetailResult{}, &RequestError{Op: "detail", Raw: "http " + strconv.Itoa(resp.StatusCode) + ": " + string(raw)}
	}

	j := gjson.ParseBytes(raw)
	data := j.Get("data")
	book := data.Get("book")

	chapterList := firstArray(book, "chapterList")
	if !chapterList.IsArray() {
		chapterList = firstArray(data, "chapterList")
	}

	chapters := make([]model.ChapterRecord, 0, len(chapterList.Array()))
	pos := 0
	chapterList.ForEach(func(_, r gjson.Result) bool {
		ch := chapterFromJSON(r, pos)
		if ch.Cover == "" {
			ch.Cover = firstStr(book, "cover", "bookCover")
		}
		pos++
		chapters = append(chapters, ch)
		return true
	})

	b := bookFromJSON(book, o.fallbackTitle())
	if b.ChapterCount == 0 {
		b.ChapterCount = len(chapters)
	}

	return model.DetailResult{
		Book:     b,
		Chapters: chapters,
		Related:  o.relatedFrom(data, "recommends", "recommendBooks", "recommendList", "recommend"),
		Raw:      rawOf(j),
	}, nil
}
