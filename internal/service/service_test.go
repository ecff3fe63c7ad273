package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dramaboxcore/internal/config"
	"dramaboxcore/internal/storage"
	"dramaboxcore/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestService 起一个同时扮演全部上游的服务端，
// detail 与 batch 响应由调用方传入
func newTestService(t *testing.T, detailJSON, batchJSON string, batchStatus int) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/gen-device":
			w.Write([]byte(`{"device-id":"dev-1","android-id":"and-1"}`))
		case r.URL.Path == "/dramabox/sign":
			w.Write([]byte(`{"status":"ok","data":"sig-1"}`))
		case strings.HasSuffix(r.URL.Path, "/ap001/bootstrap"):
			w.Write([]byte(`{"data":{"user":{"token":"tok-1","uid":"u-1"}}}`))
		case strings.HasSuffix(r.URL.Path, "/chapterv2/batch/load"):
			if batchStatus != 0 {
				w.WriteHeader(batchStatus)
				return
			}
			w.Write([]byte(batchJSON))
		case strings.HasPrefix(r.URL.Path, "/webfic/book/detail"):
			w.Write([]byte(detailJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.API.Base = srv.URL
	cfg.API.WebficBase = srv.URL
	cfg.API.DeviceEndpoint = srv.URL + "/gen-device"
	cfg.API.Locale = "in"
	return NewWithStore(cfg, nil, storage.NewMemory())
}

const streamDetailJSON = `{"data":{
	"book":{"bookId":"b1","bookName":"Alpha","cover":"https://img.x/c.jpg","chapterCount":3,"chapterList":[
		{"index":0,"name":"Pembuka","cover":"https://img.x/ep1.jpg","m3u8Url":"https://wf.x/1.m3u8"},
		{"index":1,"m3u8Url":"https://wf.x/2.m3u8"}
	]},
	"recommends":[{"bookId":"r1","bookName":"Rec","cover":"https://img.x/r.jpg"}]
}}`

const streamBatchJSON = `{"status":0,"data":{
	"book":{"bookId":"b1","bookName":"Alpha"},
	"list":[{"chapterId":"c1","index":0,"name":"Pembuka","duration":95,
		"cdnList":[{"isDefault":1,"cdnDomain":"cdn.x","videoPathList":["v/1.m3u8","v/1.mp4"]}]}]
}}`

func TestStreamChaptersMergesDetailAndBatch(t *testing.T) {
	s := newTestService(t, streamDetailJSON, streamBatchJSON, 0)

	res, err := s.StreamChapters(context.Background(), "b1")
	require.NoError(t, err)

	assert.Equal(t, "Alpha", res.Book.BookName)
	require.Len(t, res.Chapters, 3, "total follows chapterCount")
	require.Len(t, res.Episodes, 3)

	// 第 1 集：视频清单来自批量加载，元数据来自详情
	ep1 := res.Episodes[1]
	assert.Equal(t, "c1", ep1.ID)
	assert.Equal(t, "Pembuka", ep1.Name)
	assert.Equal(t, "https://img.x/ep1.jpg", ep1.Cover)
	assert.Equal(t, "https://cdn.x/v/1.mp4", ep1.MP4)
	assert.Equal(t, int64(95), ep1.Duration)
	assert.NotEmpty(t, ep1.RawBatch)
	assert.NotEmpty(t, ep1.RawWebfic)

	// 第 2 集：批量侧缺失，webfic 兜底
	ep2 := res.Episodes[2]
	assert.Equal(t, "https://wf.x/2.m3u8", ep2.MP4)
	assert.Equal(t, "https://wf.x/2.m3u8", ep2.M3U8URL)
	assert.Equal(t, "https://img.x/c.jpg", ep2.Cover, "falls back to book cover")

	// 第 3 集：两侧都缺，名称占位，封面回落书封
	ep3 := res.Episodes[3]
	assert.Equal(t, "Episode 3", ep3.Name)
	assert.Equal(t, "", ep3.MP4)
	assert.Equal(t, "https://img.x/c.jpg", ep3.Cover)

	require.Len(t, res.Related, 1)
}

func TestStreamChaptersDegradesWhenBatchFails(t *testing.T) {
	s := newTestService(t, streamDetailJSON, "", http.StatusForbidden)

	res, err := s.StreamChapters(context.Background(), "b1")
	require.NoError(t, err, "batch failure must not break the stream page")

	require.Len(t, res.Chapters, 3)
	assert.Equal(t, "https://wf.x/1.m3u8", res.Episodes[1].MP4)
	assert.Empty(t, res.Episodes[1].RawBatch)
}

func TestServiceURLHelpers(t *testing.T) {
	cfg := config.NewConfig()
	cfg.API.Locale = "in"
	s := NewWithStore(cfg, nil, storage.NewMemory())

	assert.Equal(t, "cinta-sang-ceo", s.Slugify("Cinta Sang CEO!"))
	// 站点默认语言不进入路径前缀
	assert.Equal(t, "/drama/cinta-123", s.DramaURL("123", "Cinta"))
	assert.Equal(t, "/stream/cinta-123/ep-2", s.StreamURL("123", "Cinta", 2))

	cfg2 := config.NewConfig()
	cfg2.API.Locale = "en"
	s2 := NewWithStore(cfg2, nil, storage.NewMemory())
	assert.Equal(t, "/en/drama/cinta-123", s2.DramaURL("123", "Cinta"))
	assert.Equal(t, "/en/stream/cinta-123/ep-1", s2.StreamURL("123", "Cinta", 0))
}

func TestServiceResolveVideoURL(t *testing.T) {
	s := &Service{}
	got := s.ResolveVideoURL(model.ChapterRecord{Raw: []byte(`{"mp4":"https://d.x/v.mp4"}`)})
	assert.Equal(t, "https://d.x/v.mp4", got)
}
