package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// MarkupDir writes each fetched page to <dir>/<host>.html, overwriting the
// previous fetch of the same host.
type MarkupDir struct {
	dir    string
	logger *slog.Logger
}

// NewMarkupDir creates dir if needed.
func NewMarkupDir(dir string, logger *slog.Logger) (*MarkupDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create markup dir: %w", err)
	}
	return &MarkupDir{dir: dir, logger: logger.With("component", "markup_dir")}, nil
}

// Path returns the file the markup for t is written to.
func (m *MarkupDir) Path(t types.Target) string {
	name := t.Host()
	if name == "" {
		name = t.Name
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	return filepath.Join(m.dir, name+".html")
}

// SaveMarkup writes markup for t.
func (m *MarkupDir) SaveMarkup(_ context.Context, t types.Target, markup string) error {
	path := m.Path(t)
	if err := writeFileAtomic(path, []byte(markup)); err != nil {
		return err
	}
	m.logger.Debug("markup saved", "site", t.Name, "path", path, "bytes", len(markup))
	return nil
}
