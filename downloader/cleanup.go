package downloader

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// staleSuffixes are artifacts yt-dlp leaves behind when a job is interrupted:
// partial downloads, resume control files and not-yet-embedded thumbnails.
var staleSuffixes = []string{".part", ".ytdl", ".webp", ".temp.mp3"}

// CleanupPartials removes stale download artifacts older than maxAge from the
// library root. Returns how many files were removed.
func CleanupPartials(root string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if !stale(path) || info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})

	return removed, err
}

func stale(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range staleSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
