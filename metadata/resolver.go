package metadata

import (
	"context"
	"strings"
)

// aiResolver is what Resolver needs from the AI layer; kept narrow so tests
// can stub it.
type aiResolver interface {
	Resolve(ctx context.Context, rawTitle, channel string) (Proposal, error)
}

// Resolver composes the AI resolver and the rule-based normalizer under a
// fixed precedence: AI first, rules on any AI error, manual overrides last
// and always authoritative.
type Resolver struct {
	ai aiResolver
}

func NewResolver(ai *AIResolver) *Resolver {
	if ai == nil {
		return &Resolver{}
	}
	return &Resolver{ai: ai}
}

// Propose resolves metadata for a title/channel pair. It never fails: AI
// unavailability or failure silently degrades to the rule-based path, and
// empty required fields are substituted with sentinels.
func (r *Resolver) Propose(ctx context.Context, channel, rawTitle string, overrides Overrides) Proposal {
	var prop Proposal
	ok := false
	if r.ai != nil {
		if p, err := r.ai.Resolve(ctx, rawTitle, channel); err == nil && usable(p) {
			prop, ok = p, true
		}
	}
	if !ok {
		artists, title := Normalize(channel, rawTitle)
		prop = Proposal{
			Artists: artists,
			Title:   title,
			Source:  SourceRuleBased,
		}
	}

	// Sentinel substitution applies to resolver output only; manual values
	// below are authoritative and pass through untouched.
	prop = finalize(prop)

	if len(overrides.Artists) > 0 {
		prop.Artists = overrides.Artists
	}
	if overrides.Title != "" {
		prop.Title = overrides.Title
	}
	if overrides.Album != "" {
		prop.Album = overrides.Album
	}
	if overrides.Year != "" {
		prop.Year = overrides.Year
	}

	return prop
}

// usable rejects AI answers that are structurally valid but empty.
func usable(p Proposal) bool {
	return strings.TrimSpace(p.Title) != "" && len(p.Artists) > 0
}

// finalize enforces the proposal invariants: a non-empty artist list and a
// non-empty title, whatever the resolvers produced.
func finalize(p Proposal) Proposal {
	artists := p.Artists[:0:0]
	for _, a := range p.Artists {
		if a = strings.TrimSpace(a); a != "" {
			artists = append(artists, a)
		}
	}
	if len(artists) == 0 {
		artists = []string{UnknownArtist}
	}
	p.Artists = artists

	if strings.TrimSpace(p.Title) == "" {
		p.Title = UnknownTitle
	}
	return p
}
