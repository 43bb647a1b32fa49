package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"api.melodex/config"
	"api.melodex/downloader"
	"api.melodex/metadata"
	"api.melodex/ytdl"
)

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Found   bool                  `json:"found"`
	Results []ytdl.VideoCandidate `json:"results,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type analyzeRequest struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
}

type downloadRequest struct {
	URL string `json:"url"`
	metadata.Overrides
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()

	client := ytdl.New(cfg.FFmpegLocation, cfg.SearchLimit)
	resolver := metadata.NewResolver(metadata.NewAIResolver(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	orchestrator := downloader.NewOrchestrator(
		cfg.DownloadDir,
		resolver,
		client,
		downloader.ID3Tagger{},
		app.Logger(),
		cfg.MaxConcurrent,
		cfg.JobTimeout,
	)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Make sure the yt-dlp binary the adapter shells out to exists.
		if _, err := ytdlp.Install(context.Background(), nil); err != nil {
			app.Logger().Warn("yt-dlp install failed, relying on PATH", "error", err)
		}

		se.Router.POST("/search", func(e *core.RequestEvent) error {
			var payload searchRequest
			if err := e.BindBody(&payload); err != nil || payload.Query == "" {
				return e.JSON(http.StatusBadRequest, map[string]any{
					"success": false,
					"message": "No query provided",
				})
			}

			results, err := client.Search(e.Request.Context(), payload.Query)
			if err != nil {
				app.Logger().Error("search failed", "query", payload.Query, "error", err)
				return e.JSON(http.StatusOK, searchResponse{Found: false, Error: err.Error()})
			}

			return e.JSON(http.StatusOK, searchResponse{
				Found:   len(results) > 0,
				Results: results,
			})
		})

		se.Router.POST("/analyze", func(e *core.RequestEvent) error {
			var payload analyzeRequest
			if err := e.BindBody(&payload); err != nil || payload.Title == "" {
				return e.JSON(http.StatusBadRequest, map[string]any{
					"success": false,
					"message": "No title provided",
				})
			}

			proposal := resolver.Propose(e.Request.Context(), payload.Channel, payload.Title, metadata.Overrides{})
			return e.JSON(http.StatusOK, map[string]any{
				"success": true,
				"result":  proposal,
			})
		})

		se.Router.POST("/download", func(e *core.RequestEvent) error {
			var payload downloadRequest
			if err := e.BindBody(&payload); err != nil || payload.URL == "" {
				return e.JSON(http.StatusBadRequest, map[string]any{
					"success": false,
					"message": "No URL provided",
				})
			}

			// Fire-and-forget: success means the job was accepted, not
			// that it completed. Outcomes land in the log trail.
			jobID := orchestrator.Start(payload.URL, payload.Overrides)
			app.Logger().Info("download job accepted", "job", jobID, "url", payload.URL)

			return e.JSON(http.StatusOK, map[string]any{
				"success": true,
				"message": "Download started in background. Check the media folder soon.",
			})
		})

		// Finished tracks are browsable straight from the library root.
		se.Router.GET("/media/{path...}", apis.Static(os.DirFS(cfg.DownloadDir), false))

		return se.Next()
	})

	app.Cron().MustAdd("partial_cleanup", "*/30 * * * *", func() {
		removed, err := downloader.CleanupPartials(cfg.DownloadDir, 24*time.Hour)
		if err != nil {
			app.Logger().Error("partial cleanup failed", "error", err)
			return
		}
		if removed > 0 {
			app.Logger().Info("partial cleanup removed stale artifacts", "count", removed)
		}
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
