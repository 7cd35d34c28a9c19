package job

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Staged files older than this are considered abandoned. Failed
// uploads leave their temp files behind on purpose; the sweep is what
// eventually reclaims them.
const staleAfter = 24 * time.Hour

// SweepHandler removes abandoned files from the local staging
// directory.
type SweepHandler struct {
	uploadDir string
}

func NewSweepHandler(uploadDir string) *SweepHandler {
	return &SweepHandler{uploadDir: uploadDir}
}

func (h *SweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	entries, err := os.ReadDir(h.uploadDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-staleAfter)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(h.uploadDir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Cannot remove stale upload")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Swept stale staged uploads")
	}
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Cannot remove temp file")
	}
}
