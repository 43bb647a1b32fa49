package downloader

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"

	"api.melodex/metadata"
)

// ID3Tagger persists a metadata proposal into the file's ID3v2.3 container,
// creating one if the file has none.
type ID3Tagger struct{}

func (ID3Tagger) Write(path string, meta metadata.Proposal) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("id3 open error: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetTitle(meta.Title)
	tag.SetArtist(strings.Join(meta.Artists, ", "))
	tag.SetAlbum(meta.Album)
	if meta.Genre != "" {
		tag.SetGenre(meta.Genre)
	}
	if meta.Year != "" {
		tag.SetYear(meta.Year)
		// Original release year alongside the release year frame.
		tag.AddTextFrame("TORY", id3v2.EncodingUTF8, meta.Year)
	}

	return tag.Save()
}
