/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// Identifiable is implemented by records carrying a monotonically increasing id.
type Identifiable interface {
	GetID() int64
}

// CursorRequest describes a cursor page: items with id strictly below Cursor,
// newest first. A nil or non-positive Cursor requests the first page.
type CursorRequest struct {
	Cursor   *int64 `form:"cursor" json:"cursor"`
	PageSize int    `form:"page_size" json:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPageSize returns the requested size, falling back to DefaultPageSize.
func (r *CursorRequest) GetPageSize() int {
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	return r.PageSize
}

// GetCursor returns the exclusive upper bound, or nil when no usable cursor was
// supplied. Ids start at 1, so a cursor below 1 cannot bound any page.
func (r *CursorRequest) GetCursor() *int64 {
	if r.Cursor == nil || *r.Cursor < 1 {
		return nil
	}
	return r.Cursor
}

// Cursors holds the boundary ids used to navigate to adjacent pages.
type Cursors struct {
	Prev *int64 `json:"prev"`
	Next *int64 `json:"next"`
}

// Paging is the navigation metadata attached to a cursor page.
type Paging struct {
	Cursors Cursors `json:"cursors"`
	HasPrev bool    `json:"has_prev"`
	HasNext bool    `json:"has_next"`
}

// CursorPage is the envelope returned to callers of a cursor-paginated listing.
type CursorPage[T any] struct {
	Data   []T    `json:"data"`
	Paging Paging `json:"paging"`
}

// CursorPagination computes paging metadata for a page fetched in descending id
// order. The caller fetches the neighbouring pages itself and hands the results
// to Paging or Response.
type CursorPagination[T Identifiable] struct {
	cursor     *int64
	pageSize   int
	currItems  []T
	nextCursor *int64
}

// NewCursorPagination captures the current page. The next cursor is known as
// soon as the page is: it is the last id of a full page and nil otherwise.
func NewCursorPagination[T Identifiable](cursor *int64, pageSize int, currItems []T) *CursorPagination[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if currItems == nil {
		currItems = make([]T, 0)
	}
	p := &CursorPagination[T]{
		cursor:    cursor,
		pageSize:  pageSize,
		currItems: currItems,
	}
	if n := len(currItems); n > 0 && n == pageSize {
		p.nextCursor = int64Ptr(currItems[n-1].GetID())
	}
	return p
}

// Cursor returns the exclusive upper bound the current page was fetched with.
func (p *CursorPagination[T]) Cursor() *int64 { return p.cursor }

// PageSize returns the effective page size.
func (p *CursorPagination[T]) PageSize() int { return p.pageSize }

// NextCursor returns the bound for the next-page lookahead, nil when the current
// page is not full.
func (p *CursorPagination[T]) NextCursor() *int64 { return p.nextCursor }

// Items returns the current page.
func (p *CursorPagination[T]) Items() []T { return p.currItems }

// Paging derives the navigation metadata. prevItems are the items above the
// cursor in ascending order, nextItems the items below the next cursor in
// descending order; each holds at most one page.
func (p *CursorPagination[T]) Paging(prevItems, nextItems []T) Paging {
	var prev *int64
	if p.cursor != nil && len(prevItems) == p.pageSize {
		prev = int64Ptr(prevItems[len(prevItems)-1].GetID())
	}
	next := p.nextCursor
	if next != nil && len(nextItems) == 0 {
		next = nil
	}
	return Paging{
		Cursors: Cursors{Prev: prev, Next: next},
		HasPrev: p.cursor != nil && len(prevItems) > 0,
		HasNext: next != nil && len(nextItems) > 0,
	}
}

// Response builds the envelope for the current page.
func (p *CursorPagination[T]) Response(prevItems, nextItems []T) *CursorPage[T] {
	paging := p.Paging(prevItems, nextItems)
	return &CursorPage[T]{Data: p.currItems, Paging: paging}
}

func int64Ptr(v int64) *int64 { return &v }
