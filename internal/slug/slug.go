package slug

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]`)
	asciiKeepRe  = regexp.MustCompile(`[^a-z0-9\s\-]+`)
	alnumRe      = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	urlUnsafeRe  = regexp.MustCompile(`[/?#%]+`)
	dashRe       = regexp.MustCompile(`\-+`)
	edgeDashesRe = regexp.MustCompile(`^\-+|\-+$`)
)

// Slugify 标题转 URL 片段。含拉丁字母数字时走小写 ASCII 模式；
// 全非拉丁标题（阿拉伯/日韩/泰文等）保留原文，只剔除破坏 URL 的字符
func Slugify(s string) string {
	if s == "" {
		return ""
	}
	s = spaceRe.ReplaceAllString(norm.NFKC.String(strings.TrimSpace(s)), " ")
	s = strings.TrimSpace(s)

	asciiOnly := nonASCIIRe.ReplaceAllString(s, "")
	if alnumRe.ReplaceAllString(asciiOnly, "") != "" {
		out := strings.ToLower(asciiOnly)
		out = asciiKeepRe.ReplaceAllString(out, "")
		out = spaceRe.ReplaceAllString(out, "-")
		out = dashRe.ReplaceAllString(out, "-")
		return edgeDashesRe.ReplaceAllString(out, "")
	}

	out := urlUnsafeRe.ReplaceAllString(s, "")
	out = spaceRe.ReplaceAllString(out, "-")
	out = dashRe.ReplaceAllString(out, "-")
	return edgeDashesRe.ReplaceAllString(out, "")
}

// DramaURL 详情页路径；标题无法成 slug 时回落 drama-<id>
func DramaURL(locale, bookID, title string, defaultLocale bool) string {
	s := Slugify(title)
	if s == "" {
		s = "drama-" + bookID
	}
	if defaultLocale {
		return "/drama/" + s + "-" + bookID
	}
	return "/" + locale + "/drama/" + s + "-" + bookID
}

// StreamURL 播放页路径，episode 最小取 1
func StreamURL(locale, bookID, title string, episode int, defaultLocale bool) string {
	id := strings.TrimSpace(bookID)
	if id == "" {
		return "#"
	}
	if episode < 1 {
		episode = 1
	}
	path := "stream/" + Slugify(title) + "-" + id + "/ep-" + strconv.Itoa(episode)
	if defaultLocale {
		return "/" + path
	}
	return "/" + locale + "/" + path
}
