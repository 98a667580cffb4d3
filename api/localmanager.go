package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aouyang1/labboard/util"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jonboulle/clockwork"
)

const localCheckInterval = 30 * time.Second

// LocalManager watches the slide fragment directory and signals Updated when a fragment
// is added, removed or modified, so the page can be recomposed.
type LocalManager struct {
	path  string
	clock clockwork.Clock

	// name@modtime of every fragment seen in the last scan
	trackedFiles mapset.Set[string]

	Updated chan bool
}

// NewLocalManager watches <contentRoot>/slides.
func NewLocalManager(contentRoot string, clock clockwork.Clock) (*LocalManager, error) {
	if contentRoot == "" {
		return nil, errors.New("no slide content directory provided")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	l := &LocalManager{
		path:    filepath.Join(contentRoot, "slides"),
		clock:   clock,
		Updated: make(chan bool, 1),
	}

	currentFiles, err := l.getCurrentFiles()
	if err != nil {
		slog.Warn("error reading slides directory on initialization", "path", l.path, "error", err)
		return nil, err
	}
	l.trackedFiles = currentFiles

	return l, nil
}

func (l *LocalManager) getCurrentFiles() (mapset.Set[string], error) {
	dirs, err := os.ReadDir(l.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory, %s, %w", l.path, err)
	}

	currentFiles := mapset.NewSet[string]()
	for _, dir := range dirs {
		name := dir.Name()
		if dir.IsDir() || !util.SupportedFragmentExt.Contains(filepath.Ext(name)) {
			continue
		}
		info, err := dir.Info()
		if err != nil {
			continue
		}
		currentFiles.Add(fmt.Sprintf("%s@%d", name, info.ModTime().UnixNano()))
	}
	return currentFiles, nil
}

// scan reports whether the fragments changed since the previous scan.
func (l *LocalManager) scan() bool {
	currentFiles, err := l.getCurrentFiles()
	if err != nil {
		slog.Warn("error reading slides directory", "path", l.path, "error", err)
		return false
	}

	added := currentFiles.Difference(l.trackedFiles)
	removed := l.trackedFiles.Difference(currentFiles)
	l.trackedFiles = currentFiles

	if added.Cardinality() == 0 && removed.Cardinality() == 0 {
		return false
	}
	slog.Info("slide fragments changed", "added", added.ToSlice(), "removed", removed.ToSlice())
	return true
}

func (l *LocalManager) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(localCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if !l.scan() {
				continue
			}
			select {
			case l.Updated <- true:
			default:
				// an update is already pending
			}
		case <-ctx.Done():
			return
		}
	}
}
