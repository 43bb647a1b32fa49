package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"api.melodex/metadata"
	"api.melodex/ytdl"
)

// ErrFileNotProduced means the retrieval tool reported success but the
// expected mp3 never appeared; the job is terminally failed. Alternate
// extensions are not guessed.
var ErrFileNotProduced = errors.New("expected mp3 not produced at target path")

// Phase is the download job state machine.
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseMetadataResolved
	PhaseDownloading
	PhaseTagging
	PhaseVerified
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "queued"
	case PhaseMetadataResolved:
		return "metadata-resolved"
	case PhaseDownloading:
		return "downloading"
	case PhaseTagging:
		return "tagging"
	case PhaseVerified:
		return "verified"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Job tracks a single download request. It lives for the duration of one
// orchestration call and is discarded afterwards; there is no job store.
type Job struct {
	ID         string
	SourceURL  string
	Metadata   metadata.Proposal
	Phase      Phase
	ResultPath string
	Err        error
}

func (j *Job) fail(err error) *Job {
	j.Phase = PhaseFailed
	j.Err = err
	return j
}

// Fetcher is the retrieval collaborator: info-only probing and the actual
// audio download.
type Fetcher interface {
	Probe(ctx context.Context, url string) (ytdl.VideoInfo, error)
	Download(ctx context.Context, url, outputTemplate string) error
}

// Tagger persists a proposal into a finished file.
type Tagger interface {
	Write(path string, meta metadata.Proposal) error
}

// Orchestrator sequences metadata resolution, file acquisition, naming, tag
// writing and verification for one URL at a time. Failures are reported on
// the returned job, never raised past Run.
type Orchestrator struct {
	downloadRoot string
	resolver     *metadata.Resolver
	fetcher      Fetcher
	tagger       Tagger
	log          *slog.Logger

	jobTimeout time.Duration
	sem        chan struct{}

	mu        sync.Mutex
	pathLocks map[string]*pathLock
}

// pathLock is refcounted so entries disappear once the last waiter is gone.
type pathLock struct {
	mu   sync.Mutex
	refs int
}

func NewOrchestrator(downloadRoot string, resolver *metadata.Resolver, fetcher Fetcher, tagger Tagger, log *slog.Logger, maxConcurrent int, jobTimeout time.Duration) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		downloadRoot: downloadRoot,
		resolver:     resolver,
		fetcher:      fetcher,
		tagger:       tagger,
		log:          log,
		jobTimeout:   jobTimeout,
		sem:          make(chan struct{}, maxConcurrent),
	}
}

// Start accepts a job and runs it on its own worker; the caller is not
// blocked on completion and observes the outcome only through logs.
func (o *Orchestrator) Start(url string, overrides metadata.Overrides) string {
	id := uuid.NewString()
	go func() {
		o.sem <- struct{}{}
		defer func() { <-o.sem }()
		defer func() {
			if r := recover(); r != nil {
				o.log.Error("download job panicked", "job", id, "url", url, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), o.jobTimeout)
		defer cancel()

		job := o.run(ctx, id, url, overrides)
		if job.Phase == PhaseVerified {
			o.log.Info("download job finished", "job", job.ID, "url", url, "path", job.ResultPath)
		} else {
			o.log.Error("download job failed", "job", job.ID, "url", url, "error", job.Err)
		}
	}()
	return id
}

// Run executes a job synchronously. Exposed for callers that want the
// terminal job state; Start is the fire-and-forget front.
func (o *Orchestrator) Run(ctx context.Context, url string, overrides metadata.Overrides) *Job {
	return o.run(ctx, uuid.NewString(), url, overrides)
}

func (o *Orchestrator) run(ctx context.Context, id, url string, overrides metadata.Overrides) *Job {
	job := &Job{ID: id, SourceURL: url, Phase: PhaseQueued}

	info, err := o.fetcher.Probe(ctx, url)
	if err != nil {
		return job.fail(fmt.Errorf("probe: %w", err))
	}

	prop := o.resolver.Propose(ctx, info.Uploader, info.Title, overrides)
	prop.Genre = info.Genre()
	job.Metadata = prop
	job.Phase = PhaseMetadataResolved
	o.log.Info("metadata resolved", "job", job.ID, "artists", prop.Artists, "title", prop.Title, "source", prop.Source)

	safeArtist := Sanitize(prop.Artists[0], FallbackArtistSegment)
	safeTitle := Sanitize(prop.Title, FallbackTitleSegment)
	artistDir := filepath.Join(o.downloadRoot, safeArtist)
	if err := os.MkdirAll(artistDir, os.ModePerm); err != nil {
		return job.fail(fmt.Errorf("create artist dir: %w", err))
	}

	base := fmt.Sprintf("%s - %s", safeArtist, safeTitle)
	finalPath := filepath.Join(artistDir, base+".mp3")

	// Concurrent jobs resolving to the same target serialize here.
	unlock := o.lockPath(finalPath)
	defer unlock()

	job.Phase = PhaseDownloading
	// A literal % in the target path must be doubled, it is a template
	// metacharacter for yt-dlp.
	outputTemplate := strings.ReplaceAll(filepath.Join(artistDir, base), "%", "%%") + ".%(ext)s"
	if err := o.fetcher.Download(ctx, url, outputTemplate); err != nil {
		return job.fail(fmt.Errorf("download: %w", err))
	}

	if _, err := os.Stat(finalPath); err != nil {
		return job.fail(fmt.Errorf("%w: %s", ErrFileNotProduced, finalPath))
	}

	job.Phase = PhaseTagging
	if err := o.tagger.Write(finalPath, prop); err != nil {
		// Soft failure: the file is on disk, the job still counts as done.
		o.log.Warn("tag write failed", "job", job.ID, "path", finalPath, "error", err)
	}

	job.ResultPath = finalPath
	job.Phase = PhaseVerified
	return job
}

func (o *Orchestrator) lockPath(path string) func() {
	o.mu.Lock()
	if o.pathLocks == nil {
		o.pathLocks = make(map[string]*pathLock)
	}
	lock, ok := o.pathLocks[path]
	if !ok {
		lock = &pathLock{}
		o.pathLocks[path] = lock
	}
	lock.refs++
	o.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		o.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(o.pathLocks, path)
		}
		o.mu.Unlock()
	}
}
