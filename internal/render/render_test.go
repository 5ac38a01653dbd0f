package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleArchiver/internal/domain"
)

func text(s string) domain.Inline { return domain.Inline{Kind: domain.InlineText, Text: s} }
func bold(s string) domain.Inline { return domain.Inline{Kind: domain.InlineBold, Text: s} }
func colored(s, style string, b bool) domain.Inline {
	return domain.Inline{Kind: domain.InlineColored, Text: s, Style: style, Bold: b}
}

func block(in ...domain.Inline) domain.Block { return domain.Block{Inlines: in} }

func TestRenderRuns(t *testing.T) {
	t.Parallel()

	r := NewRenderer(domain.DocumentStyle{}, DropEmpty, nil)
	doc := r.Render(domain.Article{
		Title: "T",
		Blocks: []domain.Block{
			block(text("  开头 "), bold(" 粗 "), colored(" 红 ", "color:#FF0000", false)),
			block(colored("蓝粗", "font-size:14px; color:#0000ffcc", true)),
		},
	})

	assert.Equal(t, "T", doc.Title)
	assert.Equal(t, DefaultStyle(), doc.Style)
	assert.Zero(t, doc.Style.SpaceAfterPt)
	require.Len(t, doc.Paragraphs, 2)

	assert.Equal(t, []domain.Run{
		{Text: "开头"},
		{Text: "粗", Bold: true},
		{Text: "红", Color: &domain.RGB{R: 255}},
	}, doc.Paragraphs[0].Runs)

	blue := doc.Paragraphs[1].Runs[0]
	assert.True(t, blue.Bold)
	require.NotNil(t, blue.Color)
	assert.Equal(t, domain.RGB{B: 255}, *blue.Color)
}

func TestRenderDropsEmptyParagraphs(t *testing.T) {
	t.Parallel()

	r := NewRenderer(domain.DocumentStyle{}, DropEmpty, nil)
	doc := r.Render(domain.Article{Blocks: []domain.Block{
		block(text("   ")),
		block(),
		block(text("a")),
		block(text("\n\t"), bold(" ")),
		block(text("　")),
		block(text("b")),
	}})

	require.Len(t, doc.Paragraphs, 2)
	for _, p := range doc.Paragraphs {
		assert.False(t, p.Blank())
	}
}

func TestRenderCollapsePolicyKeepsOneBlank(t *testing.T) {
	t.Parallel()

	r := NewRenderer(domain.DocumentStyle{}, CollapseEmpty, nil)
	doc := r.Render(domain.Article{Blocks: []domain.Block{
		block(text("a")),
		block(),
		block(text(" ")),
		block(),
		block(text("b")),
		block(),
	}})

	var texts []string
	for _, p := range doc.Paragraphs {
		texts = append(texts, p.Text())
	}
	assert.Equal(t, []string{"a", "", "b", ""}, texts)
}

func TestRenderSkipsMalformedParagraph(t *testing.T) {
	t.Parallel()

	r := NewRenderer(domain.DocumentStyle{}, DropEmpty, nil)
	doc := r.Render(domain.Article{Blocks: []domain.Block{
		block(text("before")),
		block(text("lost"), colored("short", "color:#FFF", false)),
		block(colored("bad", "color:#12345", true)),
		block(text("after")),
	}})

	require.Len(t, doc.Paragraphs, 2)
	assert.Equal(t, "before", doc.Paragraphs[0].Text())
	assert.Equal(t, "after", doc.Paragraphs[1].Text())
}

func TestRenderCustomStyle(t *testing.T) {
	t.Parallel()

	style := domain.DocumentStyle{FontFace: "Noto Serif CJK SC", FontSizePt: 10.5}
	doc := NewRenderer(style, "", nil).Render(domain.Article{})
	assert.Equal(t, style, doc.Style)
	assert.Empty(t, doc.Paragraphs)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DropEmpty, p)

	p, err = ParsePolicy(" Collapse ")
	require.NoError(t, err)
	assert.Equal(t, CollapseEmpty, p)

	_, err = ParsePolicy("keep-all")
	assert.Error(t, err)
}

func TestRenderKeepsTextOfUnreadableRGB(t *testing.T) {
	t.Parallel()

	r := NewRenderer(domain.DocumentStyle{}, DropEmpty, nil)
	doc := r.Render(domain.Article{Blocks: []domain.Block{
		block(text("重要内容 "), colored("红色", "color: rgb(255 0 0)", false)),
		block(colored("变量", "color:rgb(var(--accent))", true)),
		block(text("下一段")),
	}})

	require.Len(t, doc.Paragraphs, 3)
	assert.Equal(t, []domain.Run{
		{Text: "重要内容"},
		{Text: "红色", Color: &domain.RGB{R: 255}},
	}, doc.Paragraphs[0].Runs)
	assert.Equal(t, []domain.Run{{Text: "变量", Bold: true}}, doc.Paragraphs[1].Runs)
	assert.Equal(t, "下一段", doc.Paragraphs[2].Text())
}

func TestStyleColor(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.RGB{
		"color:#FF0000":                  {R: 255},
		"color:#ff0000":                  {R: 255},
		"COLOR: #123456;":                {R: 0x12, G: 0x34, B: 0x56},
		"color: rgb(1, 2, 3)":            {R: 1, G: 2, B: 3},
		"color:rgba(10,20,30,0.5)":       {R: 10, G: 20, B: 30},
		"color: rgb(255 0 0)":            {R: 255},
		"color:rgb(255 0 0 / 50%)":       {R: 255},
		"color:rgb(100%, 0%, 50%)":       {R: 255, B: 128},
		"color:rgb(300,-5,0)":            {R: 255},
		"background:#000;color:#00ff00;": {G: 255},
	}
	for style, want := range cases {
		got, err := styleColor(style)
		require.NoError(t, err, style)
		require.NotNil(t, got, style)
		assert.Equal(t, want, *got, style)
	}

	for _, uncolored := range []string{"color:rgb(1,2)", "color:rgb(a, b, c)", "color:rgb(var(--x))"} {
		got, err := styleColor(uncolored)
		require.NoError(t, err, uncolored)
		assert.Nil(t, got, uncolored)
	}

	for _, bad := range []string{"color:#FFF", "color:#GG0000", "background-color:#FF0000"} {
		_, err := styleColor(bad)
		assert.Error(t, err, bad)
	}
}
