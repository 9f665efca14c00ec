package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"media-calendar/internal/filesystem"
	"media-calendar/internal/logging"
	"media-calendar/internal/mediatypes"
)

// companionResolver pairs Live-Photo videos with their still images. It
// caches one listing per directory for the lifetime of a scan and is safe for
// concurrent use by the extraction workers.
type companionResolver struct {
	retry filesystem.RetryConfig

	mu   sync.Mutex
	dirs map[string]map[string]string // dir -> lowercase name -> on-disk name
}

func newCompanionResolver(retry filesystem.RetryConfig) *companionResolver {
	return &companionResolver{
		retry: retry,
		dirs:  make(map[string]map[string]string),
	}
}

// prime records a listing the walker already read.
func (c *companionResolver) prime(dir string, entries []os.DirEntry) {
	names := namesOf(entries)
	c.mu.Lock()
	c.dirs[dir] = names
	c.mu.Unlock()
}

func (c *companionResolver) listing(dir string) map[string]string {
	c.mu.Lock()
	names, ok := c.dirs[dir]
	c.mu.Unlock()
	if ok {
		return names
	}

	entries, err := filesystem.ReadDirWithRetry(dir, c.retry)
	if err != nil {
		logging.Debug("Companion lookup could not list %s: %v", dir, err)
	}
	names = namesOf(entries)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.dirs[dir]; ok {
		return existing
	}
	c.dirs[dir] = names
	return names
}

func namesOf(entries []os.DirEntry) map[string]string {
	names := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names[strings.ToLower(e.Name())] = e.Name()
	}
	return names
}

// hasPhotoSibling reports whether videoPath is a Live-Photo companion: a .mov
// whose directory holds a still image with the same stem.
func (c *companionResolver) hasPhotoSibling(videoPath string) bool {
	if !mediatypes.IsLivePhotoCandidate(videoPath) {
		return false
	}
	names := c.listing(filepath.Dir(videoPath))
	stem := strings.ToLower(mediatypes.Stem(videoPath))
	for ext := range mediatypes.PhotoExtensions {
		if _, ok := names[stem+ext]; ok {
			return true
		}
	}
	return false
}

// findVideoCompanion returns the on-disk path of photoPath's Live-Photo
// video, or "" if there is none.
func (c *companionResolver) findVideoCompanion(photoPath string) string {
	dir := filepath.Dir(photoPath)
	names := c.listing(dir)
	name, ok := names[strings.ToLower(mediatypes.Stem(photoPath))+mediatypes.LivePhotoExtension]
	if !ok {
		return ""
	}
	return filepath.Join(dir, name)
}
