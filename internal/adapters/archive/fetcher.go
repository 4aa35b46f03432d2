// Package archive downloads and extracts repository snapshots from the DCS archive host.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/door43/catalog-job-handler/internal/domain/model"
)

// Default retry budgets. Corrupt archives are usually the host still building the
// zip, so they always get the full wait.
const (
	DefaultNetworkTries   = 4
	DefaultNetworkBackoff = 4 * time.Second
	DefaultZipTries       = 4
	DefaultZipBackoff     = 5 * time.Second
	DefaultHTTPTimeout    = 2 * time.Minute
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Config configures a Fetcher.
type Config struct {
	NetworkTries   int
	NetworkBackoff time.Duration
	ZipTries       int
	ZipBackoff     time.Duration

	// KeepArchive leaves the downloaded zip in place after extraction (dev mode).
	KeepArchive bool

	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
	Sleep      Sleeper
}

// Fetcher downloads a repository archive with bounded, per-class retries and extracts it.
// It is safe for concurrent use when each call gets its own workDir.
type Fetcher struct {
	networkTries   int
	networkBackoff time.Duration
	zipTries       int
	zipBackoff     time.Duration
	keepArchive    bool

	client *http.Client
	logger *slog.Logger
	sleep  Sleeper
}

// NewFetcher constructs a Fetcher, applying defaults to zero-valued settings.
func NewFetcher(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &Fetcher{
		networkTries:   positiveOr(cfg.NetworkTries, DefaultNetworkTries),
		networkBackoff: durationOr(cfg.NetworkBackoff, DefaultNetworkBackoff),
		zipTries:       positiveOr(cfg.ZipTries, DefaultZipTries),
		zipBackoff:     durationOr(cfg.ZipBackoff, DefaultZipBackoff),
		keepArchive:    cfg.KeepArchive,
		client:         hc,
		logger:         logger.With("component", "archive_fetcher"),
		sleep:          sleep,
	}
}

// Fetch downloads the identity's archive into workDir, extracts it into a fresh
// subdirectory and returns the path of the repository folder inside it.
func (f *Fetcher) Fetch(ctx context.Context, id model.CommitIdentity, workDir string) (string, error) {
	if id.ArchiveURL == nil || *id.ArchiveURL == "" {
		return "", ErrNoArchiveURL
	}
	zipURL := *id.ArchiveURL
	zipPath := filepath.Join(workDir, archiveFileName(zipURL))

	extractDir, err := os.MkdirTemp(workDir, safeName(id.RepoName)+"_")
	if err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}

	f.logger.InfoContext(ctx, "downloading and unzipping repo", "url", zipURL)
	if err := f.downloadAndUnzip(ctx, zipURL, zipPath, extractDir); err != nil {
		return "", err
	}

	if !f.keepArchive {
		if err := os.Remove(zipPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.WarnContext(ctx, "could not remove downloaded archive", "path", zipPath, "error", err)
		}
	}

	return f.locateRepoFolder(ctx, extractDir, id.RepoName), nil
}

func (f *Fetcher) downloadAndUnzip(ctx context.Context, zipURL, zipPath, extractDir string) error {
	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			f.logger.WarnContext(ctx, "retrying archive download", "attempt", attempt, "url", zipURL)
		}

		err := f.try(ctx, zipURL, zipPath, extractDir)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		class := classify(err)
		var limit int
		var wait time.Duration
		switch class {
		case FailureTransientNetwork:
			limit, wait = f.networkTries, f.networkBackoff
		case FailureCorruptArchive:
			limit, wait = f.zipTries, f.zipBackoff
		default:
			return err
		}

		f.logger.ErrorContext(ctx, "archive attempt failed",
			"attempt", attempt,
			"class", class,
			"url", zipURL,
			"error", err,
		)
		if attempt >= limit {
			return &FetchError{Class: class, Attempts: attempt, URL: zipURL, Err: err}
		}
		if err := f.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (f *Fetcher) try(ctx context.Context, zipURL, zipPath, extractDir string) error {
	if err := os.Remove(zipPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale archive: %w", err)
	}
	if err := emptyDir(extractDir); err != nil {
		return fmt.Errorf("clear extraction dir: %w", err)
	}

	err := f.download(ctx, zipURL, zipPath)
	f.logger.DebugContext(ctx, "downloading finished", "url", zipURL)
	if err != nil {
		return err
	}

	err = unzip(zipPath, extractDir)
	f.logger.DebugContext(ctx, "unzipping finished", "path", zipPath)
	return err
}

func (f *Fetcher) download(ctx context.Context, zipURL, zipPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL, nil)
	if err != nil {
		return fmt.Errorf("create archive request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &networkError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &networkError{err: &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        zipURL,
		}}
	}

	out, err := os.OpenFile(zipPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		return &networkError{err: fmt.Errorf("read archive body: %w", copyErr)}
	}
	if closeErr != nil {
		return fmt.Errorf("close archive file: %w", closeErr)
	}
	return nil
}

// locateRepoFolder returns the lowercase repo folder when present. Renamed repos
// produce a differently named folder; a single top-level directory is used instead,
// otherwise the extraction root itself.
func (f *Fetcher) locateRepoFolder(ctx context.Context, extractDir, repoName string) string {
	expected := filepath.Join(extractDir, strings.ToLower(repoName))
	if info, err := os.Stat(expected); err == nil && info.IsDir() {
		return expected
	}

	f.logger.ErrorContext(ctx, "expected repo folder not found in archive",
		"folder", strings.ToLower(repoName),
		"dir", extractDir,
	)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		f.logger.WarnContext(ctx, "could not list extraction dir", "dir", extractDir, "error", err)
		return extractDir
	}

	var dirs []string
	for _, e := range entries {
		f.logger.WarnContext(ctx, "archive top-level entry", "name", e.Name(), "dir", e.IsDir())
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(extractDir, e.Name()))
		}
	}
	if len(dirs) == 1 {
		f.logger.WarnContext(ctx, "assuming the only folder is the repo folder", "folder", dirs[0])
		return dirs[0]
	}

	f.logger.WarnContext(ctx, "using extraction root as repo folder", "dir", extractDir, "candidates", len(dirs))
	return extractDir
}

func archiveFileName(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	name = safeName(name)
	if name == "" || name == "." || name == "_" {
		return "archive.zip"
	}
	return name
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "repo"
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, s)
}

func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func durationOr(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
