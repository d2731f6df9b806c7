package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// Storage is the interface for all report export backends.
type Storage interface {
	// Store persists one finished report.
	Store(ctx context.Context, report *types.Report) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New builds the backends listed in cfg.Type. It returns nil, nil when
// export is disabled.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	var backends []Storage
	closeAll := func() {
		for _, b := range backends {
			_ = b.Close()
		}
	}

	for _, typ := range config.StorageTypes(cfg.Type) {
		var (
			b   Storage
			err error
		)
		switch typ {
		case "none":
			continue
		case "json", "jsonl", "yaml", "csv":
			b, err = NewFileStorage(typ, pathFor(cfg.OutputPath, typ), logger)
		case "mongodb":
			b, err = NewMongoStorage(cfg.MongoURI, cfg.MongoDB, cfg.MongoColl, logger)
		default:
			err = fmt.Errorf("unsupported storage type: %s", typ)
		}
		if err != nil {
			closeAll()
			return nil, err
		}
		backends = append(backends, b)
	}

	switch len(backends) {
	case 0:
		return nil, nil
	case 1:
		return backends[0], nil
	default:
		return NewMultiStorage(backends, logger), nil
	}
}

// pathFor swaps the extension of the configured output path for typ, so one
// output_path serves several file formats.
func pathFor(outputPath, typ string) string {
	if outputPath == "" {
		outputPath = filepath.Join("output", "report.json")
	}
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "." + typ
}

// storeError tags err with the backend that produced it.
func storeError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var se *types.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &types.StorageError{Backend: backend, Err: err}
}
