// Package controller owns the filter, sort and pagination state of the
// project list and keeps a ListResult in sync with it through debounced,
// token-sequenced fetches.
package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/projecthubv3/projecthub-backend/internal/debounce"
	"github.com/projecthubv3/projecthub-backend/internal/logging"
	"github.com/projecthubv3/projecthub-backend/internal/pager"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

// DefaultTimeout bounds a single fetch, retries included.
const DefaultTimeout = 5 * time.Second

// Lister is the GET /api/projects collaborator.
type Lister interface {
	List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
}

// Deleter removes a project on the server.
type Deleter interface {
	DeleteProject(ctx context.Context, id string) error
}

// Field names a QueryState field accepted by SetFilter.
type Field string

const (
	FieldSearch      Field = "search"
	FieldType        Field = "type"
	FieldStatus      Field = "status"
	FieldHasFeatures Field = "hasFeatures"
	FieldHasMarket   Field = "hasMarket"
	FieldPage        Field = "page"
	FieldPageSize    Field = "pageSize"
	FieldSortBy      Field = "sortBy"
	FieldSortOrder   Field = "sortOrder"
)

var (
	ErrUnknownField = errors.New("unknown query field")
	ErrInvalidValue = errors.New("invalid query value")
	ErrNoDeleter    = errors.New("controller has no deleter")
)

type Options struct {
	Debounce time.Duration
	Timeout  time.Duration
	Initial  *domain.ListQuery
	Deleter  Deleter
	Log      *zap.Logger
}

// View is an immutable snapshot of the controller.
type View struct {
	Query   domain.ListQuery
	Result  domain.ListResult
	Loading bool
	// Err is the last fetch failure; Result still holds the previous data.
	Err    error
	Window pager.Window
	From   int
	To     int
}

type Controller struct {
	lister    Lister
	deleter   Deleter
	debouncer *debounce.Debouncer
	timeout   time.Duration
	log       *zap.Logger

	root     context.Context
	stopRoot context.CancelFunc
	inflight sync.WaitGroup

	mu        sync.Mutex
	state     domain.ListQuery
	result    domain.ListResult
	loading   bool
	lastErr   error
	issued    uint64
	cancel    context.CancelFunc
	observers []func(View)
	closed    bool
}

func New(lister Lister, opt Options) *Controller {
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	state := domain.DefaultQuery()
	if opt.Initial != nil {
		state = *opt.Initial
	}
	root, stop := context.WithCancel(context.Background())

	return &Controller{
		lister:    lister,
		deleter:   opt.Deleter,
		debouncer: debounce.New(opt.Debounce),
		timeout:   opt.Timeout,
		log:       opt.Log,
		root:      root,
		stopRoot:  stop,
		state:     state,
		result:    domain.ListResult{Projects: []domain.Project{}, ProjectTypes: []string{}},
	}
}

// OnChange registers fn to receive a View whenever a fetch is issued, a
// result is applied or a failure is recorded. fn runs outside the lock.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// SetFilter updates one field and schedules a fetch. Search and filter
// fields, and a changed page size, move the page back to 1. A call that
// leaves the state unchanged schedules nothing.
func (c *Controller) SetFilter(field Field, value string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	next, err := apply(c.state, field, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	changed := next != c.state
	c.state = next
	c.mu.Unlock()

	if changed {
		c.schedule()
	}
	return nil
}

// SetPage moves to page n, clamped to [1, totalPages] once totalPages is known.
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	n = max(n, 1)
	if tp := c.result.TotalPages; tp > 0 {
		n = min(n, tp)
	}
	changed := n != c.state.Page
	c.state.Page = n
	c.mu.Unlock()

	if changed {
		c.schedule()
	}
}

func (c *Controller) NextPage() { c.SetPage(c.View().Query.Page + 1) }

func (c *Controller) PrevPage() { c.SetPage(c.View().Query.Page - 1) }

// Refresh schedules a fetch of the current state even if nothing changed.
func (c *Controller) Refresh() {
	c.schedule()
}

// Flush issues the pending fetch now and returns once it has completed.
// It reports whether a fetch was pending.
func (c *Controller) Flush() bool {
	return c.debouncer.Flush()
}

// Remove deletes a project. The row disappears from the current page at
// once; the list is refetched whether or not the delete succeeded.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if c.deleter == nil {
		return ErrNoDeleter
	}

	c.mu.Lock()
	if idx := slices.IndexFunc(c.result.Projects, func(p domain.Project) bool { return p.ID == id }); idx >= 0 {
		res := c.result
		res.Projects = slices.Delete(slices.Clone(res.Projects), idx, idx+1)
		res.Total = max(res.Total-1, 0)
		c.result = res
	}
	view, observers := c.viewLocked(), slices.Clone(c.observers)
	c.mu.Unlock()
	notify(observers, view)

	err := c.deleter.DeleteProject(ctx, id)
	if err != nil {
		logging.FromContext(ctx, c.log).LogError("delete_project", err)
		c.mu.Lock()
		c.lastErr = err
		view, observers = c.viewLocked(), slices.Clone(c.observers)
		c.mu.Unlock()
		notify(observers, view)
	}
	c.schedule()
	return err
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Close stops the debouncer, cancels any in-flight fetch and waits for it
// to return. It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Close()
	c.stopRoot()
	c.inflight.Wait()
}

func (c *Controller) schedule() {
	c.debouncer.Trigger(c.fetchPage)
}

// fetchPage issues one List call for the state as it is now. A newer
// fetch cancels this one and only the latest token may touch the result.
func (c *Controller) fetchPage() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.issued++
	token := c.issued
	q := c.state

	ctx, cancel := context.WithTimeout(c.root, c.timeout)
	ctx = logging.WithRequestID(ctx, uuid.NewString())
	c.cancel = cancel
	c.loading = true
	c.inflight.Add(1)
	view, observers := c.viewLocked(), slices.Clone(c.observers)
	c.mu.Unlock()

	defer c.inflight.Done()
	defer cancel()
	notify(observers, view)

	logger := logging.FromContext(ctx, c.log)
	logger.LogDebugf("fetch_projects", "issuing fetch %d for page %d", token, q.Page)

	res, err := c.lister.List(ctx, q)
	c.complete(ctx, token, q, res, err)
}

func (c *Controller) complete(ctx context.Context, token uint64, q domain.ListQuery, res domain.ListResult, err error) {
	logger := logging.FromContext(ctx, c.log)

	c.mu.Lock()
	if c.closed || token != c.issued {
		latest := c.issued
		c.mu.Unlock()
		logger.LogDebugf("fetch_projects", "discarding stale response %d (latest %d)", token, latest)
		return
	}

	c.loading = false
	c.cancel = nil
	if err != nil {
		c.lastErr = err
		view, observers := c.viewLocked(), slices.Clone(c.observers)
		c.mu.Unlock()
		logger.LogError("fetch_projects", err)
		notify(observers, view)
		return
	}

	c.result = res
	c.lastErr = nil
	// the catalog shrank under the current page
	stepBack := res.TotalPages > 0 && q.Page > res.TotalPages && c.state.Page == q.Page
	if stepBack {
		c.state.Page = res.TotalPages
	}
	view, observers := c.viewLocked(), slices.Clone(c.observers)
	c.mu.Unlock()

	notify(observers, view)
	if stepBack {
		c.schedule()
	}
}

func (c *Controller) viewLocked() View {
	from, to := pager.Range(c.state.Page, c.state.PageSize, c.result.Total)
	return View{
		Query:   c.state,
		Result:  c.result,
		Loading: c.loading,
		Err:     c.lastErr,
		Window:  pager.Compute(c.state.Page, c.result.TotalPages),
		From:    from,
		To:      to,
	}
}

func notify(observers []func(View), v View) {
	for _, fn := range observers {
		fn(v)
	}
}

// apply returns q with field set to value.
func apply(q domain.ListQuery, field Field, value string) (domain.ListQuery, error) {
	invalid := func() (domain.ListQuery, error) {
		return q, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
	}

	switch field {
	case FieldSearch:
		q.Search = value
	case FieldType:
		if value == "" {
			value = domain.TypeAll
		}
		q.Type = value
	case FieldStatus:
		if value != "" && !slices.Contains(domain.Statuses, value) {
			return invalid()
		}
		q.Status = value
	case FieldHasFeatures:
		if !triState(value) {
			return invalid()
		}
		q.HasFeat = value
	case FieldHasMarket:
		if !triState(value) {
			return invalid()
		}
		q.HasMarket = value
	case FieldPage:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return invalid()
		}
		q.Page = n
		return q, nil
	case FieldPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || !slices.Contains(domain.PageSizes, n) {
			return invalid()
		}
		if n == q.PageSize {
			return q, nil
		}
		q.PageSize = n
	case FieldSortBy:
		if !slices.Contains(domain.SortFields, value) {
			return invalid()
		}
		q.SortBy = value
		return q, nil
	case FieldSortOrder:
		if value != domain.SortAsc && value != domain.SortDesc {
			return invalid()
		}
		q.SortOrder = value
		return q, nil
	default:
		return q, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	q.Page = 1
	return q, nil
}

func triState(v string) bool {
	return v == domain.FilterAny || v == domain.FilterYes || v == domain.FilterNo
}
