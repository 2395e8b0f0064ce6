package business

import (
	"fmt"
	"strings"
	"time"

	"github.com/patt509/YT-Downloader/internal/domain/download/consts"
)

// IsAcceptedLink reports whether text contains one of the accepted host patterns
func IsAcceptedLink(text string) bool {
	for _, host := range consts.AcceptedHosts {
		if strings.Contains(text, host) {
			return true
		}
	}
	return false
}

// IsMusicLink reports whether the link points at YouTube Music
func IsMusicLink(link string) bool {
	return strings.Contains(link, consts.MusicHost)
}

// ExtractLink returns the first token of text matching an accepted host, or
// the trimmed text when the link is not separated by whitespace.
func ExtractLink(text string) string {
	for _, field := range strings.Fields(text) {
		if IsAcceptedLink(field) {
			return field
		}
	}
	return strings.TrimSpace(text)
}

// FormatClock formats d as mm:ss; minutes are not wrapped into hours
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatLimit formats a limit in words, e.g. "10 minutes" or "90 seconds"
func FormatLimit(d time.Duration) string {
	total := int(d / time.Second)
	switch {
	case total == 60:
		return "1 minute"
	case total%60 == 0:
		return fmt.Sprintf("%d minutes", total/60)
	default:
		return fmt.Sprintf("%d seconds", total)
	}
}

// SanitizeFilename makes a resolved title usable as an upload file name
func SanitizeFilename(title string) string {
	safe := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/:*?"<>|`, r) || r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(title))

	if safe == "" {
		return "download"
	}

	const maxRunes = 120
	if runes := []rune(safe); len(runes) > maxRunes {
		safe = strings.TrimSpace(string(runes[:maxRunes]))
	}

	return safe
}
