package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable means no credential is configured; callers fall back to the
// rule-based parser without any network call having been made.
var ErrUnavailable = errors.New("ai resolver unavailable: no api key configured")

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	aiTimeout       = 10 * time.Second

	systemPrompt = "You are a music metadata parser. Given a video title and its channel name, " +
		"identify the song. Respond with a strict JSON object with exactly these keys: " +
		"\"artist\" (list of artist names, primary first), \"title\", \"album\", \"year\". " +
		"Use an empty string for anything you cannot determine. No other text."
)

// AIResolver asks a chat-completion service to derive structured tagging
// metadata from a noisy title/channel pair.
type AIResolver struct {
	APIKey   string
	Model    string
	Endpoint string
	Client   *http.Client
}

func NewAIResolver(apiKey, model string) *AIResolver {
	return &AIResolver{
		APIKey:   apiKey,
		Model:    model,
		Endpoint: defaultEndpoint,
		Client:   &http.Client{Timeout: aiTimeout},
	}
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// aiProposal tolerates the service returning a bare string where the artist
// list is expected, and a number where the year string is expected.
type aiProposal struct {
	Artist artistList      `json:"artist"`
	Title  string          `json:"title"`
	Album  string          `json:"album"`
	Year   json.RawMessage `json:"year"`
}

type artistList []string

func (a *artistList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*a = artistList{single}
	return nil
}

// Resolve issues one completion call. Transport errors, non-2xx statuses and
// undecodable answers all surface as an error the caller treats as "fall back
// to the rule-based parser"; nothing here is fatal.
func (r *AIResolver) Resolve(ctx context.Context, rawTitle, channel string) (Proposal, error) {
	if r.APIKey == "" {
		return Proposal{}, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: r.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Video title: %q\nChannel: %q", rawTitle, channel)},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return Proposal{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Proposal{}, err
	}
	req.Header.Set("Authorization", "Bearer "+r.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return Proposal{}, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Proposal{}, fmt.Errorf("completion status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return Proposal{}, fmt.Errorf("decode completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Proposal{}, errors.New("completion returned no choices")
	}

	var parsed aiProposal
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &parsed); err != nil {
		return Proposal{}, fmt.Errorf("decode proposal: %w", err)
	}

	prop := Proposal{
		Artists: parsed.Artist,
		Title:   strings.TrimSpace(parsed.Title),
		Album:   strings.TrimSpace(parsed.Album),
		Year:    yearString(parsed.Year),
		Source:  SourceAIAssisted,
	}
	if genericAlbum(prop.Album) {
		// Policy: no generic album labels; default album name = song title.
		prop.Album = prop.Title
	}
	return prop, nil
}

func genericAlbum(album string) bool {
	switch strings.ToLower(strings.TrimSpace(album)) {
	case "", "single", "unknown", "unknown album":
		return true
	}
	return false
}

func yearString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return fmt.Sprintf("%d", n)
	}
	return ""
}
