package downloader

import "strings"

const (
	// FallbackArtistSegment is used for the artist path segment when
	// sanitization leaves nothing behind.
	FallbackArtistSegment = "Unknown_Artist"
	// FallbackTitleSegment is the title-position counterpart.
	FallbackTitleSegment = "Unknown"
)

// Slashes become underscores, the colon becomes a dash, the rest of the
// illegal set is dropped.
var segmentReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// Sanitize maps an arbitrary string to a filesystem-safe path segment. A
// single trailing period is stripped (disallowed as a trailing character on
// some filesystems). An empty result yields the fallback.
func Sanitize(name, fallback string) string {
	s := segmentReplacer.Replace(name)
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
