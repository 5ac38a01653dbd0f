package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const illegalFilenameChars = `\/:*?"<>|`

// SanitizeFilename removes characters that are illegal in file names on
// common filesystems. The result is NFC-normalised; the function is idempotent.
func SanitizeFilename(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return -1
		}
		return r
	}, name)
	return norm.NFC.String(stripped)
}

// FolderName builds the archive folder name for a date key and title.
func FolderName(dateKey, title string) string {
	return dateKey + "_" + SanitizeFilename(title)
}
