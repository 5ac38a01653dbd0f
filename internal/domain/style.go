package domain

import "regexp"

var (
	colorDecl      = regexp.MustCompile(`(?i)(?:^|[;\s])color\s*:\s*(#[0-9a-f]+|rgba?\([^)]*\))`)
	fontWeightBold = regexp.MustCompile(`(?i)(?:^|[;\s])font-weight\s*:\s*(bold|bolder|[6-9]00)`)
)

// ColorValue returns the value of the color declaration in an inline style,
// either "#" followed by hex digits or an rgb()/rgba() expression.
// background-color is not a match.
func ColorValue(style string) (string, bool) {
	m := colorDecl.FindStringSubmatch(style)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// BoldStyle reports whether an inline style declares a bold font weight.
func BoldStyle(style string) bool {
	return fontWeightBold.MatchString(style)
}
