package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleArchiver/internal/domain"
)

var fixedNow = func() time.Time { return time.Date(2031, time.May, 17, 12, 0, 0, 0, time.UTC) }

func newTestParser(opts ...Option) *ArticleParser {
	return NewArticleParser(nil, append([]Option{WithClock(fixedNow)}, opts...)...)
}

const articlePage = `<!DOCTYPE html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="公众号文章">
</head><body>
<h1 class="rich_media_title" id="activity-name">  Heading title </h1>
<em id="publish_time" class="rich_media_meta rich_media_meta_text">2024年3月5日 18:30</em>
<div class="rich_media_content" id="js_content">
  <p>第一段<strong>加粗</strong>结束</p>
  <p><span style="font-size:15px;color:#FF0000;">红色</span></p>
  <p><img data-src="https://mmbiz.qpic.cn/a.png" src="data:image/gif;base64,R0lG"></p>
  <section><img src="https://mmbiz.qpic.cn/b.jpg"></section>
  <p><img src="data:image/png;base64,iVBOR"></p>
  <p>审核丨张三</p>
  <p>编辑后记</p>
  <img data-src="https://mmbiz.qpic.cn/after.png">
</div>
</body></html>`

func TestExtractArticle(t *testing.T) {
	t.Parallel()

	article := newTestParser().Extract(articlePage, "https://mp.weixin.qq.com/s/abc")

	assert.Equal(t, "20240305", article.DateKey())
	assert.Equal(t, "公众号文章", article.Title)
	assert.True(t, article.Truncated)
	assert.Equal(t, []string{"https://mmbiz.qpic.cn/a.png", "https://mmbiz.qpic.cn/b.jpg"}, article.ImageRefs)

	require.Len(t, article.Blocks, 4)
	assert.Equal(t, []domain.Inline{
		{Kind: domain.InlineText, Text: "第一段"},
		{Kind: domain.InlineBold, Text: "加粗"},
		{Kind: domain.InlineText, Text: "结束"},
	}, article.Blocks[0].Inlines)

	require.Len(t, article.Blocks[1].Inlines, 1)
	red := article.Blocks[1].Inlines[0]
	assert.Equal(t, domain.InlineColored, red.Kind)
	assert.Equal(t, "红色", red.Text)
	assert.Contains(t, red.Style, "color:#FF0000")

	// image-only paragraphs stay as placeholder slots
	assert.True(t, article.Blocks[2].Placeholder())
	assert.True(t, article.Blocks[3].Placeholder())

	for _, b := range article.Blocks {
		assert.NotContains(t, b.Text(), "审核")
		assert.NotContains(t, b.Text(), "编辑后记")
	}
}

func TestExtractTruncationSeparators(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"审核丨张三", "审核|张三", "审核｜张三", "责任编辑：李四 审核 | 张三"} {
		page := fmt.Sprintf(`<div id="js_content">
			<p>正文</p><img src="https://img.example/1.jpg">
			<p>%s<img src="https://img.example/sig.jpg"></p>
			<p>尾声</p><img src="https://img.example/2.jpg">
		</div>`, line)

		article := newTestParser().Extract(page, "")
		assert.True(t, article.Truncated, line)
		require.Len(t, article.Blocks, 1, line)
		assert.Equal(t, "正文", article.Blocks[0].Text())
		assert.Equal(t, []string{"https://img.example/1.jpg"}, article.ImageRefs, line)
	}
}

func TestExtractMarkerWithoutSeparatorIsContent(t *testing.T) {
	t.Parallel()

	article := newTestParser().Extract(`<div id="js_content"><p>本文经专家审核</p><p>下一段</p></div>`, "")
	assert.False(t, article.Truncated)
	assert.Len(t, article.Blocks, 2)
}

func TestExtractFallbacks(t *testing.T) {
	t.Parallel()

	article := newTestParser().Extract(`<html><body><div class="other"><p>x</p></div></body></html>`, "")

	assert.Equal(t, "20310517", article.DateKey())
	assert.Equal(t, domain.UntitledSentinel, article.Title)
	assert.Empty(t, article.Blocks)
	assert.Empty(t, article.ImageRefs)
	assert.False(t, article.Truncated)
}

func TestExtractGarbageNeverFails(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "<<<>>>", "\x00\xff\xfe", "<p><span style='color:#zz'>x"} {
		article := newTestParser().Extract(raw, "::not a url")
		assert.NotEmpty(t, article.Title)
		assert.Len(t, article.DateKey(), 8)
	}
}

func TestExtractTitleOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page string
		want string
	}{
		{`<meta property="og:title" content="OG"><h1 class="rich_media_title">H</h1><title>T</title>`, "OG"},
		{`<meta property="og:title" content=" "><h1 class="rich_media_title"> H </h1><title>T</title>`, "H"},
		{`<h1 id="activity-name">A</h1><title>T</title>`, "A"},
		{`<html><head><title> T </title></head></html>`, "T"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, newTestParser().Extract(tc.page, "").Title)
	}
}

func TestExtractDateStrategies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		page string
		want string
	}{
		{"meta text div", `<div class="rich_media_meta_text">原创</div><div class="rich_media_meta_text">2023-11-02</div>`, "20231102"},
		{"meta em", `<em class="rich_media_meta">2022/02/20</em>`, "20220220"},
		{"empty publish_time falls through", `<em id="publish_time"></em><meta property="article:published_time" content="2021-06-07T08:00:00+08:00">`, "20210607"},
		{"script ct", `<em id="publish_time"></em><script>var ct = "1709571600";</script>`, "20240305"},
		{"script createTime", `<script>var createTime = '2020-10-01 12:00';</script>`, "20201001"},
		{"unparseable", `<em id="publish_time">刚刚</em>`, "20310517"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, newTestParser().Extract(tc.page, "").DateKey(), tc.name)
	}
}

func TestExtractImageRefs(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString(`<div class="rich_media_content">`)
	var want []string
	for i := 0; i < 10; i++ {
		if i%3 == 0 {
			fmt.Fprintf(&sb, `<p><img src="data:image/png;base64,%d"></p>`, i)
			continue
		}
		u := fmt.Sprintf("https://img.example/%d.png", i%4)
		want = append(want, u)
		fmt.Fprintf(&sb, `<p>text %d<img data-src="%s"></p>`, i, u)
	}
	sb.WriteString(`</div>`)

	article := newTestParser().Extract(sb.String(), "")
	assert.Equal(t, want, article.ImageRefs)
	assert.Len(t, article.ImageRefs, 10-4)
}

func TestExtractResolvesRelativeImages(t *testing.T) {
	t.Parallel()

	page := `<div id="js_content"><img src="/img/a.jpg"><img data-src="//cdn.example/b.gif"></div>`

	withBase := newTestParser().Extract(page, "https://mp.weixin.qq.com/s/x")
	assert.Equal(t, []string{"https://mp.weixin.qq.com/img/a.jpg", "https://cdn.example/b.gif"}, withBase.ImageRefs)

	noBase := newTestParser().Extract(page, "")
	assert.Equal(t, []string{"/img/a.jpg", "https://cdn.example/b.gif"}, noBase.ImageRefs)
}

func TestDecomposeNestedInlines(t *testing.T) {
	t.Parallel()

	page := `<div id="js_content"><p style="color:#00FF00">绿<span style="background-color:#fff"> 仍绿 </span>` +
		`<strong><span style="color: rgb(1, 2, 3)">粗彩</span></strong>` +
		`<span style="font-weight:700">粗</span><a href="#">链接</a><br>尾</p>` +
		`<h2>小标题</h2></div>`

	article := newTestParser().Extract(page, "")
	require.Len(t, article.Blocks, 2)

	inlines := article.Blocks[0].Inlines
	require.Len(t, inlines, 4)
	assert.Equal(t, domain.InlineColored, inlines[0].Kind)
	assert.Equal(t, "绿 仍绿 ", inlines[0].Text)
	assert.False(t, inlines[0].Bold)

	assert.Equal(t, domain.InlineColored, inlines[1].Kind)
	assert.True(t, inlines[1].Bold)
	assert.Equal(t, "粗彩", inlines[1].Text)

	assert.Equal(t, domain.InlineColored, inlines[2].Kind)
	assert.True(t, inlines[2].Bold)
	assert.Equal(t, "粗", inlines[2].Text)

	assert.Equal(t, domain.InlineColored, inlines[3].Kind)
	assert.Equal(t, "链接尾", inlines[3].Text)

	assert.Equal(t, []domain.Inline{{Kind: domain.InlineBold, Text: "小标题"}}, article.Blocks[1].Inlines)
}

func TestReadabilityFallback(t *testing.T) {
	t.Parallel()

	para := strings.Repeat("This paragraph carries enough prose for the readability scorer to treat it as body text, ", 6)
	page := `<html><head><title>Plain blog</title></head><body>
		<nav><a href="/">Home</a></nav>
		<article><h1>Plain blog</h1><p>` + para + `</p><p>` + para + `</p></article>
		<footer>footer</footer></body></html>`

	without := newTestParser().Extract(page, "https://blog.example/post")
	assert.Empty(t, without.Blocks)

	with := newTestParser(WithReadabilityFallback(true)).Extract(page, "https://blog.example/post")
	require.NotEmpty(t, with.Blocks)
	assert.Contains(t, with.Blocks[len(with.Blocks)-1].Text(), "readability scorer")
}
