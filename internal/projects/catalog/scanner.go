// Package catalog reads project directories from disk and turns them into
// domain projects.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

const (
	DirPrefix          = "cvp-"
	GeneratedDir       = "ai-generated"
	SpecFile           = "specification.yaml"
	MarketEnhancedSpec = "specification-market-enhanced-v2.yaml"
	defaultWorkers     = 16
)

// Scanner builds the project catalog from a directory tree.
type Scanner struct {
	root    string
	workers int
	log     *zap.Logger
}

func NewScanner(root string, workers int, log *zap.Logger) *Scanner {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{root: root, workers: workers, log: log}
}

// Root is the directory holding the project folders.
func (s *Scanner) Root() string {
	return s.root
}

// Scan reads every cvp-* directory under the root. Directories that cannot
// be read are skipped; the result is sorted by id.
func (s *Scanner) Scan(ctx context.Context) ([]domain.Project, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read projects dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), DirPrefix) {
			ids = append(ids, e.Name())
		}
	}

	out := make([]*domain.Project, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.read(id)
			if err != nil {
				s.log.Warn("skip project", zap.String("id", id), zap.Error(err))
				return nil
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(out))
	seen := make(map[string]struct{}, len(out))
	for _, p := range out {
		if p == nil {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		projects = append(projects, *p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

// Read loads a single project by id.
func (s *Scanner) Read(id string) (*domain.Project, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(s.root, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s.read(id)
}

// Remove deletes the project directory.
func (s *Scanner) Remove(id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return err
	}
	return os.RemoveAll(dir)
}

func (s *Scanner) read(id string) (*domain.Project, error) {
	gen := filepath.Join(s.root, id, GeneratedDir)
	hasSpec := exists(filepath.Join(gen, SpecFile))
	hasMarket := exists(filepath.Join(gen, MarketEnhancedSpec))

	p := defaults(id, hasSpec, hasMarket)
	if m := s.readMetadata(id); m != nil {
		applyMetadata(p, m)
	}
	if !hasSpec {
		return p, nil
	}

	path := filepath.Join(gen, SpecFile)
	if hasMarket {
		path = filepath.Join(gen, MarketEnhancedSpec)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Debug("spec unreadable, using defaults", zap.String("id", id), zap.Error(err))
		return p, nil
	}
	spec, err := parseSpec(data)
	if err != nil {
		s.log.Debug("spec malformed, using defaults", zap.String("id", id), zap.Error(err))
		return p, nil
	}
	apply(p, spec)
	return p, nil
}

// defaults derives name, type and description from a "cvp-<type>-<n>" id.
func defaults(id string, hasSpec, hasMarket bool) *domain.Project {
	parts := strings.Split(id, "-")
	typ := ""
	number := ""
	if len(parts) >= 2 {
		number = parts[len(parts)-1]
		typ = strings.Join(parts[1:len(parts)-1], "-")
	}
	status := domain.StatusPending
	if hasSpec {
		status = domain.StatusSpecificationReady
	}
	return &domain.Project{
		ID:                id,
		Name:              strings.TrimSpace(strings.ReplaceAll(typ, "-", " ") + " " + number),
		Type:              typ,
		Description:       "Project " + number,
		Status:            status,
		HasSpecification:  hasSpec,
		HasMarketEnhanced: hasMarket,
	}
}

func apply(p *domain.Project, s *specFile) {
	if s.Project.Name != "" {
		p.Name = s.Project.Name
	}
	if s.Project.Description.Text != "" {
		p.Description = s.Project.Description.Text
	}
	if s.Meta.CreatedAt != "" {
		p.CreatedAt = s.Meta.CreatedAt
	}
	if s.Features != nil {
		p.Features = &domain.Features{Core: len(s.Features.Core), Advanced: len(s.Features.Advanced)}
	}
	if s.MarketAnalysis != nil {
		p.Market = &domain.Market{TAM: s.MarketAnalysis.TAM, SAM: s.MarketAnalysis.SAM}
	}
}

// ValidateID accepts only a single clean path element, so that ids taken
// from URLs cannot escape the projects directory.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." ||
		strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") ||
		filepath.Clean(id) != id {
		return domain.ErrInvalidID
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
