package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in       string
		fallback string
		want     string
	}{
		{"AC/DC", FallbackArtistSegment, "AC_DC"},
		{`Bad:Name*?`, FallbackArtistSegment, "Bad-Name"},
		{"", FallbackArtistSegment, "Unknown_Artist"},
		{"", FallbackTitleSegment, "Unknown"},
		{`back\slash`, FallbackArtistSegment, "back_slash"},
		{`"Quoted" <Title>`, FallbackTitleSegment, "Quoted Title"},
		{"pipe|char", FallbackTitleSegment, "pipechar"},
		{"  padded  ", FallbackTitleSegment, "padded"},
		{"Vol. 2.", FallbackTitleSegment, "Vol. 2"},
		{"***", FallbackArtistSegment, "Unknown_Artist"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.fallback))
		})
	}
}

func TestSanitizeStripsOneTrailingPeriodOnly(t *testing.T) {
	assert.Equal(t, "Name.", Sanitize("Name..", FallbackTitleSegment))
}
