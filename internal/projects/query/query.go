// Package query filters, sorts and paginates a catalog snapshot.
package query

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"github.com/projecthubv3/projecthub-backend/internal/pager"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

// Apply runs q against the full snapshot. projectTypes and stats always
// describe the whole snapshot, not the filtered subset.
func Apply(all []domain.Project, q domain.ListQuery) domain.ListResult {
	filtered := Filter(all, q)
	Sort(filtered, q.SortBy, q.SortOrder)

	limit := q.PageSize
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	page := max(q.Page, 1)

	start := min((page-1)*limit, len(filtered))
	end := min(start+limit, len(filtered))
	items := make([]domain.Project, end-start)
	copy(items, filtered[start:end])

	return domain.ListResult{
		Projects:     items,
		Total:        len(filtered),
		Page:         page,
		Limit:        limit,
		TotalPages:   pager.TotalPages(len(filtered), limit),
		ProjectTypes: Types(all),
		Stats:        Summarize(all),
	}
}

// Filter returns the projects matching every active filter in q.
func Filter(all []domain.Project, q domain.ListQuery) []domain.Project {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if q.Type != "" && q.Type != domain.TypeAll && domain.BaseType(p.Type) != q.Type {
			continue
		}
		if !matchesStatus(p, q.Status) {
			continue
		}
		if !matchesTri(q.HasFeat, p.Features.Total() > 0) {
			continue
		}
		if !matchesTri(q.HasMarket, p.Market.Known()) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p domain.Project, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Type), needle) ||
		strings.Contains(strings.ToLower(p.ID), needle)
}

// matchesStatus ignores unknown status values.
func matchesStatus(p domain.Project, status string) bool {
	switch status {
	case domain.StatusSpecificationReady:
		return p.HasSpecification
	case domain.StatusMarketEnhanced:
		return p.HasMarketEnhanced
	case domain.StatusPending:
		return !p.HasSpecification
	default:
		return true
	}
}

func matchesTri(filter string, has bool) bool {
	switch filter {
	case domain.FilterYes:
		return has
	case domain.FilterNo:
		return !has
	default:
		return true
	}
}

// Sort orders projects in place. Unknown fields keep the input order.
func Sort(projects []domain.Project, by, order string) {
	compare := comparator(by)
	if compare == nil {
		return
	}
	desc := order == domain.SortDesc
	sort.SliceStable(projects, func(i, j int) bool {
		c := compare(projects[i], projects[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func comparator(by string) func(a, b domain.Project) int {
	switch by {
	case domain.SortByName, "":
		return func(a, b domain.Project) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case domain.SortByType:
		return func(a, b domain.Project) int { return strings.Compare(a.Type, b.Type) }
	case domain.SortByStatus:
		return func(a, b domain.Project) int { return strings.Compare(a.Status, b.Status) }
	case domain.SortByFeatures:
		return func(a, b domain.Project) int { return cmp.Compare(a.Features.Total(), b.Features.Total()) }
	case domain.SortByDate:
		return func(a, b domain.Project) int { return a.CreatedTime().Compare(b.CreatedTime()) }
	default:
		return nil
	}
}

// Types lists the distinct base types in sorted order.
func Types(all []domain.Project) []string {
	set := make(map[string]struct{})
	for _, p := range all {
		set[domain.BaseType(p.Type)] = struct{}{}
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func Summarize(all []domain.Project) domain.Stats {
	s := domain.Stats{Total: len(all)}
	for _, p := range all {
		if p.HasSpecification {
			s.WithSpecification++
		}
		if p.HasMarketEnhanced {
			s.WithMarketEnhanced++
		}
	}
	return s
}
