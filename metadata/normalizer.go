package metadata

import (
	"regexp"
	"strings"
)

// featPattern matches "(feat. Name)", "ft. Name" or "featuring Name" up to
// the next closing bracket or end of string. The token must open the string
// or follow whitespace/an opening bracket, so "ft." ending an ordinary word
// does not fire. One bracket level only, no balancing.
var featPattern = regexp.MustCompile(`(?i)(?:^|\s|[(\[])\s*(?:feat\.|ft\.|featuring)\s+([^)\]]+)[)\]]?`)

// junkPatterns are promotional/quality annotations that carry no metadata.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[(\[]\s*official\s+(?:music\s+)?(?:video|audio)\s*[)\]]`),
	regexp.MustCompile(`(?i)[(\[]\s*(?:lyrics?|video|audio|official|visualizer)\s*[)\]]`),
	regexp.MustCompile(`(?i)[(\[]\s*(?:hd|hq|4k)\s*[)\]]`),
	regexp.MustCompile(`(?i)\b(?:4k|hd)\b`),
}

var (
	collabToken  = regexp.MustCompile(`(?i)\s+x\s+`)
	artistSplit  = regexp.MustCompile(`\s*[,&]\s*`)
	extraSpacing = regexp.MustCompile(`\s{2,}`)
)

// Normalize derives an artist list and a clean song title from a channel
// name and a raw video title. It is pure and total: the worst case yields
// ([UnknownArtist], rawTitle).
func Normalize(channel, rawTitle string) (artists []string, cleanTitle string) {
	primary := channel
	title := rawTitle
	if before, after, found := strings.Cut(rawTitle, " - "); found {
		primary = before
		title = after
	}

	// Featured artists are extracted before any stripping so the pattern
	// sees the unmodified text.
	var featured []string
	for _, match := range featPattern.FindAllStringSubmatch(title, -1) {
		featured = append(featured, match[1])
	}

	title = featPattern.ReplaceAllString(title, " ")
	for _, junk := range junkPatterns {
		title = junk.ReplaceAllString(title, " ")
	}
	title = strings.TrimSpace(extraSpacing.ReplaceAllString(title, " "))
	if title == "" {
		title = strings.TrimSpace(rawTitle)
	}
	if title == "" {
		title = UnknownTitle
	}

	primary = collabToken.ReplaceAllString(primary, " & ")
	seen := map[string]bool{}
	groups := append([]string{primary}, featured...)
	for _, group := range groups {
		for _, name := range artistSplit.Split(group, -1) {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			artists = append(artists, name)
		}
	}
	if len(artists) == 0 {
		artists = []string{UnknownArtist}
	}

	return artists, title
}
