package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`a\b/c:d*e?f"g<h>i|j`: "abcdefghij",
		"普通标题":                "普通标题",
		"":                    "",
		`???`:                 "",
		"keep - dash.txt":     "keep - dash.txt",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestSanitizeFilenameIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`title: part 1 / "draft"`,
		"e|́ composed after strip",
		`<<>>||\\//`,
		"全角｜竖线不在非法集合中",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		assert.Equal(t, once, SanitizeFilename(once), "input %q", in)
		assert.NotContains(t, once, "|")
		assert.NotContains(t, once, "/")
	}
}

func TestFolderName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "20240305_T", FolderName("20240305", "T"))
	assert.Equal(t, "20240305_ab", FolderName("20240305", "a/b"))
}

func TestDateKeyAndValidity(t *testing.T) {
	t.Parallel()

	d := Date{Year: 2024, Month: 3, Day: 5}
	assert.Equal(t, "20240305", d.Key())
	assert.True(t, d.Valid())
	assert.False(t, Date{Year: 2023, Month: 2, Day: 29}.Valid())
	assert.False(t, Date{Year: 2024, Month: 13, Day: 1}.Valid())

	got := DateFromTime(time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "20251231", got.Key())
}

func TestBlockPlaceholder(t *testing.T) {
	t.Parallel()

	empty := Block{Inlines: []Inline{{Kind: InlineText, Text: "  \n\t"}}}
	require.True(t, empty.Placeholder())
	require.True(t, Block{}.Placeholder())

	full := Block{Inlines: []Inline{
		{Kind: InlineText, Text: "hello "},
		{Kind: InlineBold, Text: "world"},
	}}
	require.False(t, full.Placeholder())
	require.Equal(t, "hello world", full.Text())
}

func TestRGBHex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FF0000", RGB{R: 255}.Hex())
	assert.Equal(t, "0A1B2C", RGB{R: 0x0a, G: 0x1b, B: 0x2c}.Hex())
}
