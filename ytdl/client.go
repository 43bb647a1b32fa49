// Package ytdl wraps the yt-dlp binary (via github.com/lrstanley/go-ytdlp)
// behind the three operations the pipeline needs: search, info-only probe and
// audio download. All defaults for missing info fields live here, not in the
// callers.
package ytdl

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/lrstanley/go-ytdlp"
)

// UnknownGenre is substituted when the probe exposes no category.
const UnknownGenre = "Unknown"

// VideoCandidate is one search result, scoped to a single search response.
type VideoCandidate struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Uploader        string `json:"uploader"`
	URL             string `json:"url"`
	Thumbnail       string `json:"thumbnail,omitempty"`
	DurationSeconds int    `json:"duration,omitempty"`
}

// VideoInfo is the info-only view of a single video used for metadata
// resolution.
type VideoInfo struct {
	Title      string
	Uploader   string
	Categories []string
}

// Genre maps the video category list to a tag genre.
func (v VideoInfo) Genre() string {
	for _, c := range v.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return UnknownGenre
}

type Client struct {
	FFmpegLocation string
	SearchLimit    int
}

func New(ffmpegLocation string, searchLimit int) *Client {
	if searchLimit < 1 {
		searchLimit = 1
	}
	return &Client{FFmpegLocation: ffmpegLocation, SearchLimit: searchLimit}
}

// Search resolves a free-text query to candidate videos, best match first.
func (c *Client) Search(ctx context.Context, query string) ([]VideoCandidate, error) {
	cmd := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoWarnings().
		DefaultSearch(fmt.Sprintf("ytsearch%d", c.SearchLimit))

	res, err := cmd.Run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	info, err := parseInfo([]byte(res.Stdout))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	candidates := make([]VideoCandidate, 0, len(info.Entries))
	for _, entry := range info.Entries {
		candidates = append(candidates, entry.candidate())
	}
	rankCandidates(query, candidates)
	return candidates, nil
}

// Probe fetches video attributes without downloading anything.
func (c *Client) Probe(ctx context.Context, url string) (VideoInfo, error) {
	cmd := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoWarnings().
		NoPlaylist()

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("probe %s: %w", url, err)
	}

	info, err := parseInfo([]byte(res.Stdout))
	if err != nil {
		return VideoInfo{}, fmt.Errorf("probe %s: %w", url, err)
	}
	return info.videoInfo(), nil
}

// Download fetches the URL's best audio and post-processes it into a tagged
// mp3 at the location the output template resolves to.
func (c *Client) Download(ctx context.Context, url, outputTemplate string) error {
	cmd := ytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("320K").
		EmbedThumbnail().
		EmbedMetadata().
		NoPlaylist().
		NoWarnings().
		ForceOverwrites().
		Output(outputTemplate)

	if c.FFmpegLocation != "" {
		cmd = cmd.FFmpegLocation(c.FFmpegLocation)
	}

	if _, err := cmd.Run(ctx, url); err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return nil
}

// rankCandidates orders results by edit distance between the query and
// "uploader - title".
func rankCandidates(query string, candidates []VideoCandidate) {
	q := strings.ToLower(query)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidateDistance(q, candidates[i]) < candidateDistance(q, candidates[j])
	})
}

func candidateDistance(query string, c VideoCandidate) int {
	label := strings.ToLower(fmt.Sprintf("%s - %s", c.Uploader, c.Title))
	return levenshtein.ComputeDistance(query, label)
}

// rawInfo mirrors the slice of yt-dlp's info JSON we care about. Fields are
// routinely absent; categories sometimes arrive as a bare string.
type rawInfo struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Uploader   string     `json:"uploader"`
	Channel    string     `json:"channel"`
	WebpageURL string     `json:"webpage_url"`
	URL        string     `json:"url"`
	Thumbnail  string     `json:"thumbnail"`
	Duration   float64    `json:"duration"`
	Categories stringList `json:"categories"`
	Entries    []rawInfo  `json:"entries"`
}

type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = stringList{single}
	return nil
}

func parseInfo(raw []byte) (rawInfo, error) {
	var info rawInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return rawInfo{}, fmt.Errorf("parse info json: %w", err)
	}
	return info, nil
}

func (r rawInfo) candidate() VideoCandidate {
	url := r.WebpageURL
	if url == "" {
		url = r.URL
	}
	return VideoCandidate{
		ID:              r.ID,
		Title:           r.Title,
		Uploader:        r.uploader(),
		URL:             url,
		Thumbnail:       r.Thumbnail,
		DurationSeconds: int(r.Duration),
	}
}

func (r rawInfo) videoInfo() VideoInfo {
	return VideoInfo{
		Title:      r.Title,
		Uploader:   r.uploader(),
		Categories: r.Categories,
	}
}

func (r rawInfo) uploader() string {
	if r.Uploader != "" {
		return r.Uploader
	}
	return r.Channel
}
