package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/okian/ewi/internal/adapters/codec"
	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/pkg/logger"
	"github.com/okian/ewi/pkg/metrics"
)

const (
	defaultExtension = ".txt"
	dirPerm          = 0o755
	filePerm         = 0o644
)

// FileStore keeps each employee history in <dir>/<id><ext> using the text codec.
type FileStore struct {
	dir    string
	ext    string
	atomic bool
	log    logger.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		dir:    dir,
		ext:    defaultExtension,
		atomic: true,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return s, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the history file path for id.
func (s *FileStore) Path(id model.EmployeeID) (string, error) {
	code := id.Formal()
	if code == "" || code == "." || code == ".." || strings.HasPrefix(code, ".") ||
		strings.ContainsAny(code, `/\`) || strings.ContainsRune(code, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, code)
	}
	return filepath.Join(s.dir, code+s.ext), nil
}

// Load reads and decodes the history for id.
func (s *FileStore) Load(ctx context.Context, id model.EmployeeID) (rec *employee.Record, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "load", id, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	rec, err = codec.ImportFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if !rec.Who().ID.Equal(id) {
		return nil, fmt.Errorf("%w: %s holds %s", ErrIDMismatch, path, rec.Who().ID)
	}
	return rec, nil
}

// Save encodes rec to its history file.
func (s *FileStore) Save(ctx context.Context, rec *employee.Record) (err error) {
	id := rec.Who().ID
	start := time.Now()
	defer func() { s.observe(ctx, "save", id, start, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(id)
	if err != nil {
		return err
	}
	if !s.atomic {
		return codec.ExportFile(path, rec)
	}
	return s.saveAtomic(path, rec)
}

// saveAtomic writes to .<id>.<uuid>.tmp in the same directory, syncs, then renames.
func (s *FileStore) saveAtomic(path string, rec *employee.Record) (err error) {
	tmp := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", rec.Who().ID.Formal(), uuid.NewString()))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	if err = codec.Encode(w, rec); err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Exists reports whether a history file is present for id.
func (s *FileStore) Exists(ctx context.Context, id model.EmployeeID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.Path(id)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// List returns stored IDs matching pattern, in file name order.
func (s *FileStore) List(ctx context.Context, pattern string) (ids []model.EmployeeID, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "list", model.EmployeeID{}, start, err) }()

	if pattern == "" {
		pattern = "*"
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBadPattern, pattern, err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.ext) {
			continue
		}
		code := strings.TrimSuffix(name, s.ext)
		if code == "" || !g.Match(code) {
			continue
		}
		ids = append(ids, model.NewEmployeeID(code))
	}
	return ids, nil
}

// Delete removes the history file for id.
func (s *FileStore) Delete(ctx context.Context, id model.EmployeeID) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "delete", id, start, err) }()

	path, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *FileStore) observe(ctx context.Context, op string, id model.EmployeeID, start time.Time, err error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordStoreOperation(op, err, ms)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error(ctx, "store operation failed",
			logger.String("op", op), logger.String("employee", id.Formal()), logger.Error(err))
		return
	}
	s.log.Debug(ctx, "store operation", logger.String("op", op),
		logger.String("employee", id.Formal()), logger.Float64("latency_ms", ms))
}
