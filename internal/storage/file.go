package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

// runRecord is a report with its run metadata, for formats that accumulate runs.
type runRecord struct {
	RunID      string             `json:"run_id"      yaml:"run_id"`
	StartedAt  time.Time          `json:"started_at"  yaml:"started_at"`
	FinishedAt time.Time          `json:"finished_at" yaml:"finished_at"`
	OK         bool               `json:"ok"          yaml:"ok"`
	Count      int                `json:"count"       yaml:"count"`
	Results    []types.SiteResult `json:"results"     yaml:"results"`
}

func newRunRecord(r *types.Report) runRecord {
	return runRecord{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		OK:         r.OK,
		Count:      r.Count,
		Results:    r.Results,
	}
}

func ensureDir(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

// --- JSON Storage ---

// JSONStorage writes the latest report document to a file, replacing the
// previous run's document.
type JSONStorage struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}
	return &JSONStorage{
		path:   outputPath,
		logger: logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(_ context.Context, report *types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := report.JSON(true)
	if err != nil {
		return storeError(s.Name(), fmt.Errorf("encode JSON: %w", err))
	}
	if err := writeFileAtomic(s.path, append(data, '\n')); err != nil {
		return storeError(s.Name(), err)
	}
	s.logger.Info("JSON written", "path", s.path, "sites", report.Count, "run_id", report.RunID)
	return nil
}

func (s *JSONStorage) Close() error { return nil }

// --- JSONL Storage ---

// JSONLStorage appends one JSON object per run.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage opens outputPath for appending.
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(_ context.Context, report *types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(newRunRecord(report)); err != nil {
		return storeError(s.Name(), fmt.Errorf("encode JSONL: %w", err))
	}
	s.count++
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "runs", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// --- YAML Storage ---

// YAMLStorage writes the latest report, with run metadata, as YAML.
type YAMLStorage struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewYAMLStorage creates a new YAML file storage.
func NewYAMLStorage(outputPath string, logger *slog.Logger) (*YAMLStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}
	return &YAMLStorage{
		path:   outputPath,
		logger: logger.With("component", "yaml_storage"),
	}, nil
}

func (s *YAMLStorage) Name() string { return "yaml" }

func (s *YAMLStorage) Store(_ context.Context, report *types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(newRunRecord(report))
	if err != nil {
		return storeError(s.Name(), fmt.Errorf("encode YAML: %w", err))
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return storeError(s.Name(), err)
	}
	s.logger.Info("YAML written", "path", s.path, "sites", report.Count, "run_id", report.RunID)
	return nil
}

func (s *YAMLStorage) Close() error { return nil }

// --- CSV Storage ---

var csvHeader = []string{"run_id", "site", "url", "ok", "error", "title", "link", "content"}

// CSVStorage appends one row per headline; failed sites get a single row
// with empty headline columns.
type CSVStorage struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVStorage opens outputPath for appending, writing the header row to a new file.
func NewCSVStorage(outputPath string, logger *slog.Logger) (*CSVStorage, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	s := &CSVStorage{
		path:   outputPath,
		file:   f,
		writer: csv.NewWriter(f),
		logger: logger.With("component", "csv_storage"),
	}

	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		if err := s.writer.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write CSV header: %w", err)
		}
		s.writer.Flush()
	}
	return s, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(_ context.Context, report *types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range report.Results {
		site := []string{report.RunID, res.Site, res.URL, fmt.Sprint(res.OK), res.Error}
		if len(res.Items) == 0 {
			if err := s.writer.Write(append(site, "", "", "")); err != nil {
				return storeError(s.Name(), fmt.Errorf("write CSV row: %w", err))
			}
			continue
		}
		for _, item := range res.Items {
			row := append(append([]string{}, site...), item.Title, item.Link, item.Content)
			if err := s.writer.Write(row); err != nil {
				return storeError(s.Name(), fmt.Errorf("write CSV row: %w", err))
			}
			s.count++
		}
	}

	s.writer.Flush()
	return storeError(s.Name(), s.writer.Error())
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "items", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// NewFileStorage creates the appropriate file-based storage by type.
func NewFileStorage(storageType, outputPath string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(outputPath, logger)
	case "jsonl":
		return NewJSONLStorage(outputPath, logger)
	case "yaml":
		return NewYAMLStorage(outputPath, logger)
	case "csv":
		return NewCSVStorage(outputPath, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// writeFileAtomic writes data to a temp file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
