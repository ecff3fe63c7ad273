package content

import (
	"context"
	"encoding/json"

	"dramaboxcore/internal/protocol"
	"dramaboxcore/pkg/model"

	"github.com/tidwall/gjson"
)

const classifyPath = "/api/proxy.php/drama-box/he001/classify"

type typeEntry struct {
	Type  int    `json:"type"`
	Value string `json:"value"`
}

type classifyBody struct {
	TypeList   []typeEntry `json:"typeList"`
	ShowLabels bool        `json:"showLabels"`
	PageNo     int         `json:"pageNo"`
	PageSize   int         `json:"pageSize"`
}

// Classify 按 feed 编号拉取剧目列表（热门/最新/趋势等），服务端分页。
// typeList 固定五槽：地区/题材/配音/排序占位，feed 选择器始终在末位
func (o *Orchestrator) Classify(ctx context.Context, feedCode string, pageSize int) ([]model.BookRecord, error) {
	body, err := json.Marshal(classifyBody{
		TypeList: []typeEntry{
			{Type: 1, Value: ""},
			{Type: 2, Value: ""},
			{Type: 4, Value: ""},
			{Type: 4, Value: ""},
			{Type: 5, Value: feedCode},
		},
		ShowLabels: false,
		PageNo:     1,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, err
	}

	j, err := o.signedCall(ctx, "classify", classifyPath, protocol.LangPassthrough(o.locale), body)
	if err != nil {
		return nil, err
	}

	records := j.Get("data.classifyBookList.records")
	out := make([]model.BookRecord, 0, len(records.Array()))
	records.ForEach(func(_, r gjson.Result) bool {
		out = append(out, bookFromJSON(r, o.fallbackTitle()))
		return true
	})
	return out, nil
}
