package metadata

// Source tells which resolver produced a proposal.
type Source string

const (
	SourceRuleBased  Source = "rule-based"
	SourceAIAssisted Source = "ai-assisted"
)

const (
	UnknownArtist = "Unknown Artist"
	UnknownTitle  = "Unknown"
)

// Proposal is a fully resolved, not-yet-finalized metadata record for a
// track. Artists is never empty and keeps the primary artist first; Title is
// never empty. Year may be empty.
type Proposal struct {
	Artists []string `json:"artists"`
	Title   string   `json:"title"`
	Album   string   `json:"album"`
	Year    string   `json:"year"`
	Genre   string   `json:"genre"`
	Source  Source   `json:"source"`
}

// Overrides carries caller-supplied field values. A nil/empty field means
// "not provided"; anything else replaces the resolved value as-is, without
// validation or re-cleaning.
type Overrides struct {
	Artists []string `json:"artists"`
	Title   string   `json:"title"`
	Album   string   `json:"album"`
	Year    string   `json:"year"`
}
