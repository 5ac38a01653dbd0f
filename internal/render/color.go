package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"ArticleArchiver/internal/domain"
)

// styleColor decodes the color declaration of an inline style. Hex values
// need at least six digits; only the first six are used. An rgb() value that
// cannot be read yields a nil color and no error, so the run keeps its text.
func styleColor(style string) (*domain.RGB, error) {
	v, ok := domain.ColorValue(style)
	if !ok {
		return nil, fmt.Errorf("no color in style %q", style)
	}
	if strings.HasPrefix(v, "#") {
		c, err := hexColor(v[1:])
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	if c, ok := rgbColor(v); ok {
		return &c, nil
	}
	return nil, nil
}

func hexColor(digits string) (domain.RGB, error) {
	if len(digits) < 6 {
		return domain.RGB{}, fmt.Errorf("color #%s: want 6 hex digits", digits)
	}
	var c [3]uint8
	for i := range c {
		n, err := strconv.ParseUint(digits[i*2:i*2+2], 16, 8)
		if err != nil {
			return domain.RGB{}, fmt.Errorf("color #%s: %w", digits, err)
		}
		c[i] = uint8(n)
	}
	return domain.RGB{R: c[0], G: c[1], B: c[2]}, nil
}

// rgbColor decodes rgb()/rgba() in comma or space separated form. Components
// may be numbers or percentages and are clamped to 0-255; alpha is ignored.
func rgbColor(v string) (domain.RGB, bool) {
	open := strings.IndexByte(v, '(')
	end := strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return domain.RGB{}, false
	}
	inner := v[open+1 : end]
	if slash := strings.IndexByte(inner, '/'); slash >= 0 {
		inner = inner[:slash]
	}
	parts := strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(parts) < 3 {
		return domain.RGB{}, false
	}
	var c [3]uint8
	for i := range c {
		n, ok := rgbComponent(parts[i])
		if !ok {
			return domain.RGB{}, false
		}
		c[i] = n
	}
	return domain.RGB{R: c[0], G: c[1], B: c[2]}, true
}

func rgbComponent(s string) (uint8, bool) {
	percent := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	if percent {
		f = f * 255 / 100
	}
	return uint8(math.Round(max(0, min(255, f)))), true
}
