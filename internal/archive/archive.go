package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ricardonunez-io/logcopilot/internal/event"
)

// Archive keeps a copy of every raw upload on disk.
type Archive struct {
	dir string
}

type Saved struct {
	FileID string
	Path   string
}

func New(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save writes content to <dir>/<uuid>_<basename of filename>. Invalid UTF-8
// is replaced the same way ingestion does it.
func (a *Archive) Save(filename string, content []byte) (Saved, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return Saved{}, fmt.Errorf("failed to create archive dir: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(a.dir, id+"_"+safeBase(filename))
	if err := os.WriteFile(path, []byte(event.Decode(content)), 0o644); err != nil {
		return Saved{}, fmt.Errorf("failed to archive upload: %w", err)
	}

	return Saved{FileID: id, Path: path}, nil
}

func safeBase(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		return "upload.log"
	}
	return base
}
