package domain

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
)

const (
	StatusSpecificationReady = "specification-ready"
	StatusMarketEnhanced     = "market-enhanced"
	StatusPending            = "pending"
)

const (
	SortByName     = "name"
	SortByType     = "type"
	SortByStatus   = "status"
	SortByFeatures = "features"
	SortByDate     = "date"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Tri-state filter values for hasFeatures / hasMarket. Empty means "any".
const (
	FilterAny = ""
	FilterYes = "yes"
	FilterNo  = "no"
)

// TypeAll is the UI sentinel for "no type filter".
const TypeAll = "all"

const (
	DefaultPageSize = 24
	DefaultLimit    = 20
)

var PageSizes = []int{12, 24, 48, 96}

var SortFields = []string{SortByName, SortByType, SortByStatus, SortByFeatures, SortByDate}

var Statuses = []string{StatusSpecificationReady, StatusMarketEnhanced, StatusPending}

// ListQuery is the full filter/sort/pagination state behind one listing request.
type ListQuery struct {
	Page      int
	PageSize  int
	Search    string
	Type      string
	Status    string
	HasFeat   string
	HasMarket string
	SortBy    string
	SortOrder string
}

// DefaultQuery mirrors the initial state of the projects grid.
func DefaultQuery() ListQuery {
	return ListQuery{
		Page:      1,
		PageSize:  DefaultPageSize,
		Type:      TypeAll,
		SortBy:    SortByName,
		SortOrder: SortAsc,
	}
}

// Values stringifies every field. Empty filters are passed through as empty
// strings and the "all" type is sent as an empty type.
func (q ListQuery) Values() url.Values {
	typ := q.Type
	if typ == TypeAll {
		typ = ""
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.PageSize))
	v.Set("search", q.Search)
	v.Set("type", typ)
	v.Set("status", q.Status)
	v.Set("hasFeatures", q.HasFeat)
	v.Set("hasMarket", q.HasMarket)
	v.Set("sortBy", q.SortBy)
	v.Set("sortOrder", q.SortOrder)
	return v
}

// Validate checks the enumerated fields. PageSize is only bounded, so that
// API callers may ask for any positive limit.
func (q ListQuery) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidQuery)
	}
	if q.PageSize < 1 || q.PageSize > 500 {
		return fmt.Errorf("%w: limit must be between 1 and 500", ErrInvalidQuery)
	}
	if q.Status != "" && !slices.Contains(Statuses, q.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, q.Status)
	}
	if !validTri(q.HasFeat) {
		return fmt.Errorf("%w: hasFeatures must be yes, no or empty", ErrInvalidQuery)
	}
	if !validTri(q.HasMarket) {
		return fmt.Errorf("%w: hasMarket must be yes, no or empty", ErrInvalidQuery)
	}
	if q.SortBy != "" && !slices.Contains(SortFields, q.SortBy) {
		return fmt.Errorf("%w: unknown sortBy %q", ErrInvalidQuery, q.SortBy)
	}
	if q.SortOrder != "" && q.SortOrder != SortAsc && q.SortOrder != SortDesc {
		return fmt.Errorf("%w: sortOrder must be asc or desc", ErrInvalidQuery)
	}
	return nil
}

func validTri(v string) bool {
	return v == FilterAny || v == FilterYes || v == FilterNo
}
