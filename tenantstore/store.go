package tenantstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/toolgate/observe"
)

// Sentinel errors for tenant storage.
var (
	// ErrInvalidPath indicates a resolved path escaped its tenant
	// namespace. Logged as a potential attack, never silently corrected.
	ErrInvalidPath = errors.New("tenantstore: path escapes tenant namespace")

	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("tenantstore: record not found")

	// ErrEmptyID indicates an empty tenant or record id.
	ErrEmptyID = errors.New("tenantstore: empty identifier")
)

const recordExt = ".json"

// Record is a persisted document: a dictionary of fields with no further
// implicit schema.
type Record map[string]any

// Store is file-backed persistence namespaced by tenant id.
//
// Concurrency: writers to the same tenant are serialized by a per-tenant
// lock; writers to different tenants never block each other. The base
// directory is read-only after construction.
type Store struct {
	base   string
	logger observe.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store rooted at base, creating the directory if needed.
func NewStore(base string, logger observe.Logger) (*Store, error) {
	if base == "" {
		return nil, errors.New("tenantstore: base directory is required")
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("tenantstore: resolve base: %w", err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("tenantstore: create base: %w", err)
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Store{
		base:   abs,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Save atomically persists a record in the tenant's namespace.
func (s *Store) Save(ctx context.Context, tenantID, recordID string, record Record) error {
	path, err := s.recordPath(ctx, tenantID, recordID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("tenantstore: encode record %q: %w", recordID, err)
	}

	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("tenantstore: create namespace: %w", err)
	}

	// Write-then-rename keeps partial writes invisible.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("tenantstore: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("tenantstore: write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("tenantstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("tenantstore: commit record: %w", err)
	}
	return nil
}

// Load retrieves a record. Returns ErrNotFound when absent.
func (s *Store) Load(ctx context.Context, tenantID, recordID string) (Record, error) {
	path, err := s.recordPath(ctx, tenantID, recordID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tenantstore: read record %q (tenant %q): %w", recordID, tenantID, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("tenantstore: decode record %q (tenant %q): %w", recordID, tenantID, err)
	}
	return record, nil
}

// ListAll returns every record in the tenant's namespace, ordered by
// record id.
func (s *Store) ListAll(ctx context.Context, tenantID string) ([]Record, error) {
	dir, err := s.tenantDir(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tenantstore: list tenant %q: %w", tenantID, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	records := make([]Record, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue // deleted concurrently
			}
			return nil, fmt.Errorf("tenantstore: read %q (tenant %q): %w", name, tenantID, err)
		}
		var record Record
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("tenantstore: decode %q (tenant %q): %w", name, tenantID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes a record. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, tenantID, recordID string) error {
	path, err := s.recordPath(ctx, tenantID, recordID)
	if err != nil {
		return err
	}

	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tenantstore: delete record %q (tenant %q): %w", recordID, tenantID, err)
	}
	return nil
}

// Scoped returns a view of the store fixed to one tenant.
func (s *Store) Scoped(tenantID string) *Scoped {
	return &Scoped{store: s, tenantID: tenantID}
}

// tenantLock returns the serialization lock for one tenant namespace.
func (s *Store) tenantLock(tenantID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[tenantID] = lock
	}
	return lock
}

// tenantDir builds and verifies the tenant namespace directory.
func (s *Store) tenantDir(ctx context.Context, tenantID string) (string, error) {
	if tenantID == "" {
		return "", ErrEmptyID
	}
	dir := filepath.Join(s.base, url.PathEscape(tenantID))
	if err := s.verifyInside(ctx, dir, tenantID); err != nil {
		return "", err
	}
	return dir, nil
}

// recordPath builds and verifies the path for one record. Both segments are
// percent-encoded, never raw-concatenated, so traversal sequences survive
// only as literal file names.
func (s *Store) recordPath(ctx context.Context, tenantID, recordID string) (string, error) {
	if tenantID == "" || recordID == "" {
		return "", ErrEmptyID
	}
	path := filepath.Join(s.base, url.PathEscape(tenantID), url.PathEscape(recordID)+recordExt)
	if err := s.verifyInside(ctx, path, tenantID); err != nil {
		return "", err
	}
	return path, nil
}

// verifyInside confirms a resolved path stays under the base directory.
func (s *Store) verifyInside(ctx context.Context, path, tenantID string) error {
	rel, err := filepath.Rel(s.base, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		s.logger.Warn(ctx, "rejected path outside tenant namespace, possible traversal attempt",
			observe.Field{Key: "tenant.id", Value: tenantID})
		return ErrInvalidPath
	}
	return nil
}

// Scoped is a tenant-fixed view of a Store, handed to request contexts so
// call code never names tenants explicitly.
type Scoped struct {
	store    *Store
	tenantID string
}

// TenantID returns the tenant this view is fixed to.
func (s *Scoped) TenantID() string {
	return s.tenantID
}

// Save persists a record for the scoped tenant.
func (s *Scoped) Save(ctx context.Context, recordID string, record Record) error {
	return s.store.Save(ctx, s.tenantID, recordID, record)
}

// Load retrieves a record for the scoped tenant.
func (s *Scoped) Load(ctx context.Context, recordID string) (Record, error) {
	return s.store.Load(ctx, s.tenantID, recordID)
}

// ListAll returns the scoped tenant's records.
func (s *Scoped) ListAll(ctx context.Context) ([]Record, error) {
	return s.store.ListAll(ctx, s.tenantID)
}

// Delete removes a record for the scoped tenant.
func (s *Scoped) Delete(ctx context.Context, recordID string) error {
	return s.store.Delete(ctx, s.tenantID, recordID)
}
