package jsonrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mockserver/internal/core/domain"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dolmen-go/contextio"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/gofrs/flock"
	"github.com/gofrs/uuid/v5"
)

const (
	defaultFilePermissions = os.FileMode(0644)
	lockRetryDelay         = 50 * time.Millisecond
	lockSuffix             = ".lock"
	tempSuffix             = ".tmp"
)

var errLockNotAcquired = errors.New("could not acquire file lock")

// Needs to be exported so other backends and tests can provide one
type Persister interface {
	Load(ctx context.Context) (*domain.Dataset, error)
	Persist(ctx context.Context, ds *domain.Dataset) error
	// Location names the backing store in logs and errors.
	Location() string
}

// FilePersister keeps the whole dataset in a single JSON document.
type FilePersister struct {
	filename string
	fileLock *flock.Flock

	// flock.Flock is not safe for concurrent use within one process
	mu sync.Mutex
}

type noOpPersister struct{}

func (p *noOpPersister) Load(ctx context.Context) (*domain.Dataset, error)   { return domain.NewDataset(), nil }
func (p *noOpPersister) Persist(ctx context.Context, ds *domain.Dataset) error { return nil }
func (p *noOpPersister) Location() string                                     { return "memory" }

func NewNoOpPersister() *noOpPersister {
	return &noOpPersister{}
}

func NewFilePersister(filename string) *FilePersister {
	return &FilePersister{
		filename: filename,
		fileLock: flock.New(filename + lockSuffix),
	}
}

func (fp *FilePersister) Location() string {
	return fp.filename
}

// Load reads and decodes the data file under a shared lock. A missing file is
// reported with an error wrapping fs.ErrNotExist; an empty one is an empty
// dataset.
func (fp *FilePersister) Load(ctx context.Context) (*domain.Dataset, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if _, err := os.Stat(fp.filename); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", fp.filename, err)
	}

	locked, err := fp.fileLock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("error locking %s for reading: %w", fp.filename, err)
	}
	if !locked {
		return nil, fmt.Errorf("error locking %s for reading: %w", fp.filename, errLockNotAcquired)
	}
	defer func() { _ = fp.fileLock.Unlock() }()

	file, err := os.Open(fp.filename)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", fp.filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(contextio.NewReader(ctx, file))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", fp.filename, err)
	}

	ds, err := domain.ParseDataset(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON from %s: %w", fp.filename, err)
	}
	return ds, nil
}

// Persist writes ds to a temporary file next to the target and renames it into
// place, so readers never observe a partially written document.
func (fp *FilePersister) Persist(ctx context.Context, ds *domain.Dataset) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	locked, err := fp.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("error locking %s for writing: %w", fp.filename, err)
	}
	if !locked {
		return fmt.Errorf("error locking %s for writing: %w", fp.filename, errLockNotAcquired)
	}
	defer func() { _ = fp.fileLock.Unlock() }()

	tempID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("error naming temporary file for %s: %w", fp.filename, err)
	}
	tempPath := filepath.Join(filepath.Dir(fp.filename), "."+filepath.Base(fp.filename)+"."+tempID.String()+tempSuffix)

	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultFilePermissions)
	if err != nil {
		return fmt.Errorf("error opening file %s for persistence: %w", tempPath, err)
	}

	opts := json.JoinOptions(jsontext.Multiline(true), jsontext.WithIndent("  "))
	writeErr := json.MarshalWrite(contextio.NewWriter(ctx, file), ds, opts)
	if writeErr == nil {
		writeErr = file.Sync()
	}
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("error writing JSON to file %s: %w", tempPath, writeErr)
	}

	if err := os.Rename(tempPath, fp.filename); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("error replacing %s: %w", fp.filename, err)
	}
	return nil
}
