package api

import (
	"fmt"
	"regexp"
)

// unsafeFilenameChars matches everything outside the ASCII word class and the
// ECMAScript whitespace set. RE2's \s only covers ASCII whitespace, so the
// Unicode spaces are listed explicitly.
var unsafeFilenameChars = regexp.MustCompile(`[^\w\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`)

const fallbackFilename = "video"

// SanitizeFilename replaces every rune that is neither a word character nor
// whitespace with an underscore, one for one.
func SanitizeFilename(title string) string {
	stem := unsafeFilenameChars.ReplaceAllString(title, "_")
	if stem == "" {
		return fallbackFilename
	}
	return stem
}

// contentDisposition builds the attachment header for an mp4 download
func contentDisposition(stem string) string {
	return fmt.Sprintf(`attachment; filename="%s.mp4"`, stem)
}
