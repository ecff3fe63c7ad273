package content

import (
	"context"
	"strings"

	"dramaboxcore/internal/protocol"
	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const searchPath = "/api/proxy.php/drama-box/search/search"

// Search 关键词搜索。空关键词直接短路返回空结果，不发起任何网络请求
func (o *Orchestrator) Search(ctx context.Context, keyword string, pageNo, pageSize int) (model.SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if pageNo < 1 {
		pageNo = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if keyword == "" {
		return model.SearchResult{Items: []model.BookRecord{}}, nil
	}

	// 键序参与指纹校验，用 sjson 按固定顺序写入
	body := []byte(`{}`)
	body, _ = sjson.SetBytes(body, "keyword", keyword)
	body, _ = sjson.SetBytes(body, "searchSource", "搜索按钮")
	body, _ = sjson.SetBytes(body, "pageNo", pageNo)
	body, _ = sjson.SetBytes(body, "pageSize", pageSize)
	body, _ = sjson.SetBytes(body, "from", "search_sug")

	j, err := o.signedCall(ctx, "search", searchPath, protocol.Lang(o.locale), body)
	if err != nil {
		return model.SearchResult{}, err
	}

	data := j.Get("data")
	list := firstArray(data, "list", "searchList", "items")

	items := make([]model.BookRecord, 0, len(list.Array()))
	list.ForEach(func(_, r gjson.Result) bool {
		items = append(items, bookFromJSON(r, o.fallbackTitle()))
		return true
	})

	total := len(items)
	if v := data.Get("totalSize"); v.Exists() {
		total = int(v.Int())
	} else if v := data.Get("total"); v.Exists() {
		total = int(v.Int())
	}

	var isMore bool
	if v := data.Get("isMore"); v.Exists() {
		isMore = v.Int() == 1 || v.Type == gjson.True
	} else if v := data.Get("totalSize"); v.Exists() {
		isMore = int(v.Int()) > pageNo*pageSize
	}

	return model.SearchResult{Items: items, IsMore: isMore, Total: total}, nil
}
