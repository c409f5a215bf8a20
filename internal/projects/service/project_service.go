package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/projecthubv3/projecthub-backend/internal/logging"
	"github.com/projecthubv3/projecthub-backend/internal/projects/catalog"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
	"github.com/projecthubv3/projecthub-backend/internal/projects/query"
)

// Scanner reads the catalog from its source of truth.
type Scanner interface {
	Scan(ctx context.Context) ([]domain.Project, error)
	Read(id string) (*domain.Project, error)
	Remove(id string) error
	Create(in domain.NewProject) (*domain.Project, error)
}

const scanKey = "scan"

// scanTimeout bounds a shared scan, which outlives the request that started it.
const scanTimeout = 2 * time.Minute

// Store is the persistent project index.
type Store interface {
	ReplaceAll(ctx context.Context, projects []domain.Project) error
	ListAll(ctx context.Context) ([]domain.Project, error)
	Upsert(ctx context.Context, p domain.Project) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Cache holds the last snapshot.
type Cache interface {
	Get(ctx context.Context) ([]domain.Project, error)
	Set(ctx context.Context, projects []domain.Project) error
	Invalidate(ctx context.Context) error
}

// ProjectService handles project-related business logic.
// Store and cache are optional; without them every list scans the catalog.
type ProjectService struct {
	scanner Scanner
	store   Store
	cache   Cache
	log     *zap.Logger
	group   singleflight.Group

	// writeMu orders catalog writes against persisting a scan; gen counts
	// the writes so a scan that overlapped one is not persisted.
	writeMu sync.Mutex
	gen     uint64
}

// NewProjectService creates a new project service
func NewProjectService(scanner Scanner, store Store, cache Cache, log *zap.Logger) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{
		scanner: scanner,
		store:   store,
		cache:   cache,
		log:     log,
	}
}

// List returns one page of the catalog for q.
func (s *ProjectService) List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	if err := q.Validate(); err != nil {
		return domain.ListResult{}, err
	}
	all, err := s.snapshot(ctx)
	if err != nil {
		return domain.ListResult{}, err
	}
	return query.Apply(all, q), nil
}

// Get reads a single project straight from the catalog.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if err := catalog.ValidateID(id); err != nil {
		return nil, err
	}
	return s.scanner.Read(id)
}

// Delete removes the project directory and drops it from the index and cache.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	logger := logging.FromContext(ctx, s.log)

	if err := catalog.ValidateID(id); err != nil {
		return err
	}
	if _, err := s.scanner.Read(id); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.scanner.Remove(id); err != nil {
		logger.LogErrorf("delete_project", "remove %s: %v", id, err)
		return fmt.Errorf("remove project %s: %w", id, err)
	}
	s.gen++

	if s.store != nil {
		if _, err := s.store.Delete(ctx, id); err != nil {
			logger.LogWarnf("delete_project", "index delete failed for %s: %v", id, err)
		}
	}
	s.invalidate(ctx)
	s.group.Forget(scanKey)

	logger.LogInfof("delete_project", "deleted project %s", id)
	return nil
}

// Create writes a new project directory, indexes it and drops the stale snapshot.
func (s *ProjectService) Create(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	logger := logging.FromContext(ctx, s.log)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p, err := s.scanner.Create(in)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidProject) && !errors.Is(err, domain.ErrAlreadyExists) {
			logger.LogError("create_project", err)
		}
		return nil, err
	}
	s.gen++

	if s.store != nil {
		if err := s.store.Upsert(ctx, *p); err != nil {
			logger.LogWarnf("create_project", "index write failed for %s: %v", p.ID, err)
		}
	}
	s.invalidate(ctx)
	s.group.Forget(scanKey)

	logger.LogInfof("create_project", "created project %s", p.ID)
	return p, nil
}

// Refresh rescans the catalog and rewrites the index and cache. It returns
// the number of projects found.
func (s *ProjectService) Refresh(ctx context.Context) (int, error) {
	projects, err := s.rescan(ctx)
	if err != nil {
		return 0, err
	}
	return len(projects), nil
}

// snapshot prefers the cache, then the index, then a fresh scan.
func (s *ProjectService) snapshot(ctx context.Context) ([]domain.Project, error) {
	logger := logging.FromContext(ctx, s.log)

	s.writeMu.Lock()
	gen := s.gen
	s.writeMu.Unlock()

	if s.cache != nil {
		projects, err := s.cache.Get(ctx)
		if err == nil {
			return projects, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.LogWarnf("list_projects", "cache read failed: %v", err)
		}
	}

	if s.store != nil {
		projects, err := s.store.ListAll(ctx)
		switch {
		case err != nil:
			logger.LogWarnf("list_projects", "index read failed: %v", err)
		case len(projects) > 0:
			s.writeMu.Lock()
			if gen == s.gen {
				s.fillCache(ctx, projects)
			}
			s.writeMu.Unlock()
			return projects, nil
		}
	}

	return s.rescan(ctx)
}

// rescan collapses concurrent scans into one. The scan runs detached from
// the caller that started it, since other callers may be waiting on it.
func (s *ProjectService) rescan(ctx context.Context) ([]domain.Project, error) {
	v, err, _ := s.group.Do(scanKey, func() (any, error) {
		logger := logging.FromContext(ctx, s.log)

		s.writeMu.Lock()
		gen := s.gen
		s.writeMu.Unlock()

		scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), scanTimeout)
		defer cancel()

		projects, err := s.scanner.Scan(scanCtx)
		if err != nil {
			logger.LogError("scan_catalog", err)
			return nil, fmt.Errorf("scan catalog: %w", err)
		}

		s.persist(scanCtx, gen, projects)
		logger.LogDebugf("scan_catalog", "scanned %d projects", len(projects))
		return projects, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Project), nil
}

// persist writes a scan to the index and cache unless a create or delete
// happened after the scan started.
func (s *ProjectService) persist(ctx context.Context, gen uint64, projects []domain.Project) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if gen != s.gen {
		logging.FromContext(ctx, s.log).LogDebugf("scan_catalog", "catalog changed during scan, not persisting")
		return
	}
	if s.store != nil {
		if err := s.store.ReplaceAll(ctx, projects); err != nil {
			logging.FromContext(ctx, s.log).LogWarnf("scan_catalog", "index write failed: %v", err)
		}
	}
	s.fillCache(ctx, projects)
}

func (s *ProjectService) fillCache(ctx context.Context, projects []domain.Project) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, projects); err != nil {
		logging.FromContext(ctx, s.log).LogWarnf("cache_snapshot", "cache write failed: %v", err)
	}
}

func (s *ProjectService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.FromContext(ctx, s.log).LogWarnf("cache_snapshot", "cache invalidate failed: %v", err)
	}
}
