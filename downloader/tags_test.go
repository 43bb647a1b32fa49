package downloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"api.melodex/metadata"
)

func TestID3TaggerWritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))

	meta := metadata.Proposal{
		Artists: []string{"Martin Garrix", "Macklemore"},
		Title:   "Summer Days",
		Album:   "Summer Days",
		Year:    "2019",
		Genre:   "Music",
	}
	require.NoError(t, ID3Tagger{}.Write(path, meta))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Summer Days", tag.Title())
	assert.Equal(t, "Martin Garrix, Macklemore", tag.Artist())
	assert.Equal(t, "Summer Days", tag.Album())
	assert.Equal(t, "Music", tag.Genre())
	assert.Equal(t, "2019", tag.Year())
	assert.Equal(t, "2019", tag.GetTextFrame("TORY").Text)
}

func TestID3TaggerSkipsEmptyOptionalFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))

	meta := metadata.Proposal{
		Artists: []string{"Artist"},
		Title:   "Song",
	}
	require.NoError(t, ID3Tagger{}.Write(path, meta))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Empty(t, tag.Year())
	assert.Empty(t, tag.GetTextFrame("TORY").Text)
}
