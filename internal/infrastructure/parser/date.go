package parser

import (
	"regexp"
	"strconv"
	"time"

	"ArticleArchiver/internal/domain"
)

// datePatterns are tried in priority order; groups 1-3 are year, month, day.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})年\s*(\d{1,2})月\s*(\d{1,2})日(?:\s*(\d{1,2}):(\d{2}))?`),
	regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
	regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`),
}

// anyDate is a cheap pre-filter for elements that might carry a date.
var anyDate = regexp.MustCompile(`\d{4}(?:年\s*\d{1,2}月|[-/]\d{1,2}[-/])`)

// chinaTime is the zone WeChat publishes timestamps in.
var chinaTime = time.FixedZone("CST", 8*60*60)

// parseDate returns the first calendar-valid date found by the patterns.
func parseDate(text string) (domain.Date, bool) {
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			d := domain.Date{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
			// Impossible dates such as 2024年13月5日 are skipped rather than
			// copied into the key, so the next match or the current date wins.
			if d.Valid() {
				return d, true
			}
		}
	}
	return domain.Date{}, false
}

// ParseDate returns the YYYYMMDD key for text, or the date of now when no
// supported pattern matches.
func ParseDate(text string, now time.Time) string {
	if d, ok := parseDate(text); ok {
		return d.Key()
	}
	return domain.DateFromTime(now).Key()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// unixDate renders a unix-seconds string as a parseable date in China time.
func unixDate(sec string) (string, bool) {
	n, err := strconv.ParseInt(sec, 10, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return time.Unix(n, 0).In(chinaTime).Format("2006-01-02"), true
}
