package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLister struct {
	mu      sync.Mutex
	calls   []domain.ListQuery
	respond func(ctx context.Context, q domain.ListQuery, n int) (domain.ListResult, error)
}

func (f *fakeLister) List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	n := len(f.calls)
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return resultFor(q, 240, fmt.Sprintf("r%d", n)), nil
	}
	return respond(ctx, q, n)
}

func (f *fakeLister) Calls() []domain.ListQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ListQuery(nil), f.calls...)
}

// resultFor builds a page whose every field is tagged with marker so a
// mix of two responses is detectable.
func resultFor(q domain.ListQuery, total int, marker string) domain.ListResult {
	size := q.PageSize
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	totalPages := (total + size - 1) / size
	count := 0
	if q.Page <= totalPages {
		count = min(size, total-(q.Page-1)*size)
	}
	projects := make([]domain.Project, 0, count)
	for i := 0; i < count; i++ {
		projects = append(projects, domain.Project{ID: fmt.Sprintf("cvp-%s-%d", marker, i), Name: marker})
	}
	return domain.ListResult{
		Projects:     projects,
		Total:        total,
		Page:         q.Page,
		Limit:        size,
		TotalPages:   totalPages,
		ProjectTypes: []string{marker},
		Stats:        domain.Stats{Total: total, WithSpecification: len(marker)},
	}
}

func newController(t *testing.T, lister Lister, opt Options) *Controller {
	if opt.Debounce == 0 {
		opt.Debounce = 20 * time.Millisecond
	}
	c := New(lister, opt)
	t.Cleanup(c.Close)
	return c
}

func waitCalls(t *testing.T, l *fakeLister, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(l.Calls()) >= n }, 2*time.Second, 5*time.Millisecond)
}

func TestSetFilter_ResetsPage(t *testing.T) {
	tests := []struct {
		field Field
		value string
	}{
		{FieldSearch, "ledger"},
		{FieldType, "web-app"},
		{FieldStatus, domain.StatusPending},
		{FieldHasFeatures, domain.FilterYes},
		{FieldHasMarket, domain.FilterNo},
		{FieldPageSize, "48"},
		{FieldSearch, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"="+tt.value, func(t *testing.T) {
			for _, start := range []int{1, 2, 7, 40} {
				initial := domain.DefaultQuery()
				initial.Page = start
				c := newController(t, &fakeLister{}, Options{Debounce: time.Hour, Initial: &initial})

				require.NoError(t, c.SetFilter(tt.field, tt.value))
				assert.Equal(t, 1, c.View().Query.Page)
			}
		})
	}
}

func TestSetFilter_SortAndPageKeepPage(t *testing.T) {
	initial := domain.DefaultQuery()
	initial.Page = 4
	c := newController(t, &fakeLister{}, Options{Debounce: time.Hour, Initial: &initial})

	require.NoError(t, c.SetFilter(FieldSortBy, domain.SortByFeatures))
	require.NoError(t, c.SetFilter(FieldSortOrder, domain.SortDesc))
	assert.Equal(t, 4, c.View().Query.Page)

	require.NoError(t, c.SetFilter(FieldPage, "6"))
	assert.Equal(t, 6, c.View().Query.Page)

	require.NoError(t, c.SetFilter(FieldPageSize, strconv.Itoa(domain.DefaultPageSize)))
	assert.Equal(t, 6, c.View().Query.Page, "unchanged page size keeps the page")
}

func TestSetFilter_Rejects(t *testing.T) {
	c := newController(t, &fakeLister{}, Options{Debounce: time.Hour})
	before := c.View().Query

	for _, tc := range []struct {
		field Field
		value string
		want  error
	}{
		{"color", "red", ErrUnknownField},
		{FieldPageSize, "25", ErrInvalidValue},
		{FieldPage, "0", ErrInvalidValue},
		{FieldPage, "two", ErrInvalidValue},
		{FieldSortBy, "stars", ErrInvalidValue},
		{FieldSortOrder, "up", ErrInvalidValue},
		{FieldStatus, "archived", ErrInvalidValue},
		{FieldHasMarket, "maybe", ErrInvalidValue},
	} {
		assert.ErrorIs(t, c.SetFilter(tc.field, tc.value), tc.want, "%s=%s", tc.field, tc.value)
	}
	assert.Equal(t, before, c.View().Query)
	assert.False(t, c.debouncer.Pending())
}

func TestDebounce_CollapsesBurst(t *testing.T) {
	lister := &fakeLister{}
	c := newController(t, lister, Options{Debounce: 60 * time.Millisecond})

	for _, s := range []string{"l", "le", "led", "ledg", "ledge", "ledger"} {
		require.NoError(t, c.SetFilter(FieldSearch, s))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, c.SetFilter(FieldHasFeatures, domain.FilterYes))

	waitCalls(t, lister, 1)
	time.Sleep(150 * time.Millisecond)

	calls := lister.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ledger", calls[0].Search)
	assert.Equal(t, domain.FilterYes, calls[0].HasFeat)
	assert.Equal(t, 1, calls[0].Page)
}

func TestScenario_TypeChangeFromPageThree(t *testing.T) {
	lister := &fakeLister{}
	initial := domain.DefaultQuery()
	initial.Page = 3
	c := newController(t, lister, Options{Debounce: 40 * time.Millisecond, Initial: &initial})

	require.NoError(t, c.SetFilter(FieldType, "web-app"))
	v := c.View()
	assert.Equal(t, 1, v.Query.Page)
	assert.Equal(t, "web-app", v.Query.Type)
	assert.Empty(t, lister.Calls(), "nothing is issued before the quiet period")

	waitCalls(t, lister, 1)
	time.Sleep(100 * time.Millisecond)

	calls := lister.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].Page)
	assert.Equal(t, "web-app", calls[0].Type)
}

func TestFetch_AtomicReplace(t *testing.T) {
	lister := &fakeLister{}
	c := newController(t, lister, Options{Debounce: time.Hour})

	var mu sync.Mutex
	var seen []View
	c.OnChange(func(v View) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	c.Refresh()
	require.True(t, c.Flush())
	first := c.View()
	assert.Equal(t, "r1", first.Result.ProjectTypes[0])

	c.SetPage(2)
	require.True(t, c.Flush())
	second := c.View()

	res := second.Result
	assert.Equal(t, resultFor(domain.ListQuery{Page: 2, PageSize: domain.DefaultPageSize}, 240, "r2"), res)
	for _, p := range res.Projects {
		assert.Equal(t, "r2", p.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, v := range seen {
		marker := v.Result.ProjectTypes
		for _, p := range v.Result.Projects {
			assert.Equal(t, marker, []string{p.Name})
		}
	}
}

func TestFetch_StaleOnFailure(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	lister := &fakeLister{respond: func(ctx context.Context, q domain.ListQuery, n int) (domain.ListResult, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return domain.ListResult{}, errors.New("projects api: unexpected status 502")
		}
		return resultFor(q, 100, "ok"), nil
	}}
	c := newController(t, lister, Options{Debounce: time.Hour})

	c.Refresh()
	c.Flush()
	before := c.View()
	require.NoError(t, before.Err)
	require.Len(t, before.Result.Projects, domain.DefaultPageSize)

	mu.Lock()
	fail = true
	mu.Unlock()

	require.NoError(t, c.SetFilter(FieldSearch, "x"))
	c.Flush()
	after := c.View()

	assert.Error(t, after.Err)
	assert.False(t, after.Loading)
	assert.Equal(t, before.Result, after.Result)
	assert.Equal(t, "x", after.Query.Search)

	mu.Lock()
	fail = false
	mu.Unlock()
	c.Refresh()
	c.Flush()
	assert.NoError(t, c.View().Err, "a later success clears the indicator")
}

func TestFetch_LatestIssuedWins(t *testing.T) {
	release := make(chan struct{})
	firstCtx := make(chan context.Context, 1)
	lister := &fakeLister{respond: func(ctx context.Context, q domain.ListQuery, n int) (domain.ListResult, error) {
		if n == 1 {
			firstCtx <- ctx
			<-release // ignores cancellation on purpose
			return resultFor(q, 50, "slow"), nil
		}
		return resultFor(q, 50, "fast"), nil
	}}
	c := newController(t, lister, Options{Debounce: time.Hour})

	c.Refresh()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Flush()
	}()
	ctx1 := <-firstCtx

	require.NoError(t, c.SetFilter(FieldSearch, "new"))
	c.Flush()
	assert.Equal(t, []string{"fast"}, c.View().Result.ProjectTypes)
	assert.Error(t, ctx1.Err(), "superseded fetch is cancelled")

	close(release)
	<-done

	v := c.View()
	assert.Equal(t, []string{"fast"}, v.Result.ProjectTypes)
	assert.False(t, v.Loading)
}

func TestFetch_Timeout(t *testing.T) {
	lister := &fakeLister{respond: func(ctx context.Context, q domain.ListQuery, n int) (domain.ListResult, error) {
		<-ctx.Done()
		return domain.ListResult{}, ctx.Err()
	}}
	c := newController(t, lister, Options{Debounce: time.Hour, Timeout: 30 * time.Millisecond})

	c.Refresh()
	start := time.Now()
	c.Flush()

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, c.View().Err, context.DeadlineExceeded)
}

func TestSetPage_Clamps(t *testing.T) {
	lister := &fakeLister{}
	c := newController(t, lister, Options{Debounce: time.Hour})

	c.Refresh()
	c.Flush()
	require.Equal(t, 10, c.View().Result.TotalPages)

	c.SetPage(99)
	assert.Equal(t, 10, c.View().Query.Page)
	c.NextPage()
	assert.Equal(t, 10, c.View().Query.Page)

	c.SetPage(-3)
	assert.Equal(t, 1, c.View().Query.Page)
	c.PrevPage()
	assert.Equal(t, 1, c.View().Query.Page)
}

func TestView_Window(t *testing.T) {
	lister := &fakeLister{}
	c := newController(t, lister, Options{Debounce: time.Hour})

	c.Refresh()
	c.Flush()
	v := c.View()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, v.Window.Pages)
	assert.False(t, v.Window.ShowFirst)
	assert.True(t, v.Window.TrailingEllipsis)
	assert.Equal(t, 10, v.Window.Last)
	assert.Equal(t, 1, v.From)
	assert.Equal(t, 24, v.To)

	c.SetPage(7)
	c.Flush()
	v = c.View()
	assert.Equal(t, []int{5, 6, 7, 8, 9}, v.Window.Pages)
	assert.True(t, v.Window.ShowFirst)
	assert.True(t, v.Window.LeadingEllipsis)
	assert.True(t, v.Window.ShowLast)
	assert.False(t, v.Window.TrailingEllipsis)
}

func TestFetch_StepsBackWhenPageVanishes(t *testing.T) {
	var mu sync.Mutex
	total := 240
	lister := &fakeLister{respond: func(ctx context.Context, q domain.ListQuery, n int) (domain.ListResult, error) {
		mu.Lock()
		defer mu.Unlock()
		return resultFor(q, total, "r"), nil
	}}
	c := newController(t, lister, Options{Debounce: time.Hour})

	c.Refresh()
	c.Flush()
	c.SetPage(10)
	c.Flush()

	mu.Lock()
	total = 100
	mu.Unlock()
	c.Refresh()
	c.Flush()

	assert.Equal(t, 5, c.View().Query.Page)
	require.True(t, c.Flush(), "the step back schedules a fetch")
	require.Len(t, lister.Calls(), 4)
	v := c.View()
	assert.Equal(t, 5, v.Result.Page)
	assert.Len(t, v.Result.Projects, 4)
}

type fakeDeleter struct {
	err error
	ids []string
}

func (d *fakeDeleter) DeleteProject(ctx context.Context, id string) error {
	d.ids = append(d.ids, id)
	return d.err
}

func TestRemove(t *testing.T) {
	lister := &fakeLister{}
	deleter := &fakeDeleter{}
	c := newController(t, lister, Options{Deleter: deleter, Debounce: time.Hour})

	c.Refresh()
	c.Flush()
	before := c.View().Result
	target := before.Projects[0].ID

	require.NoError(t, c.Remove(context.Background(), target))
	after := c.View().Result
	assert.Len(t, after.Projects, len(before.Projects)-1)
	assert.Equal(t, before.Total-1, after.Total)
	assert.Equal(t, target, before.Projects[0].ID, "previous result is not mutated")
	assert.Equal(t, []string{target}, deleter.ids)
	assert.True(t, c.debouncer.Pending(), "a refetch is scheduled")

	deleter.err = errors.New("forbidden")
	assert.Error(t, c.Remove(context.Background(), "cvp-other-1"))
	assert.Error(t, c.View().Err)
}

func TestRemove_WithoutDeleter(t *testing.T) {
	c := newController(t, &fakeLister{}, Options{})
	assert.ErrorIs(t, c.Remove(context.Background(), "cvp-a-1"), ErrNoDeleter)
}

func TestClose_CancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	lister := &fakeLister{respond: func(ctx context.Context, q domain.ListQuery, n int) (domain.ListResult, error) {
		close(started)
		<-ctx.Done()
		return domain.ListResult{}, ctx.Err()
	}}
	c := New(lister, Options{Debounce: 5 * time.Millisecond, Timeout: time.Minute})

	c.Refresh()
	<-started

	c.Close()
	c.Close()

	require.NoError(t, c.SetFilter(FieldSearch, "ignored"))
	c.Refresh()
	assert.Len(t, lister.Calls(), 1)
	assert.Equal(t, "", c.View().Query.Search)
}
