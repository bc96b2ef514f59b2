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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct{ id int64 }

func (r record) GetID() int64 { return r.id }

// store mimics the three bounded queries a repository issues for one page.
type store []int64 // ascending ids

func (s store) before(cursor *int64, limit int) []record {
	out := make([]record, 0, limit)
	for i := len(s) - 1; i >= 0 && len(out) < limit; i-- {
		if cursor == nil || s[i] < *cursor {
			out = append(out, record{s[i]})
		}
	}
	return out
}

func (s store) after(cursor int64, limit int) []record {
	out := make([]record, 0, limit)
	for i := 0; i < len(s) && len(out) < limit; i++ {
		if s[i] > cursor {
			out = append(out, record{s[i]})
		}
	}
	return out
}

func (s store) page(cursor *int64, size int) *CursorPage[record] {
	p := NewCursorPagination(cursor, size, s.before(cursor, size))
	var prev, next []record
	if cursor != nil {
		prev = s.after(*cursor, p.PageSize())
	}
	if nc := p.NextCursor(); nc != nil {
		next = s.before(nc, p.PageSize())
	}
	return p.Response(prev, next)
}

func sequence(n int) store {
	s := make(store, n)
	for i := range s {
		s[i] = int64(i + 1)
	}
	return s
}

func ids(items []record) []int64 {
	out := make([]int64, len(items))
	for i, r := range items {
		out[i] = r.id
	}
	return out
}

func TestCursorPaginationFirstPage(t *testing.T) {
	res := sequence(20).page(nil, 10)

	require.Len(t, res.Data, 10)
	assert.Equal(t, int64(20), res.Data[0].id)
	assert.Equal(t, int64(11), res.Data[9].id)
	require.NotNil(t, res.Paging.Cursors.Next)
	assert.Equal(t, int64(11), *res.Paging.Cursors.Next)
	assert.Nil(t, res.Paging.Cursors.Prev)
	assert.False(t, res.Paging.HasPrev)
	assert.True(t, res.Paging.HasNext)
}

func TestCursorPaginationWalkForwardAndBack(t *testing.T) {
	s := sequence(20)

	first := s.page(nil, 10)
	second := s.page(first.Paging.Cursors.Next, 10)

	assert.Equal(t, []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, ids(second.Data))
	assert.Nil(t, second.Paging.Cursors.Next)
	assert.Nil(t, second.Paging.Cursors.Prev)
	assert.True(t, second.Paging.HasPrev)
	assert.False(t, second.Paging.HasNext)

	back := s.page(second.Paging.Cursors.Prev, 10)
	assert.Equal(t, ids(first.Data), ids(back.Data))
	assert.Equal(t, first.Paging, back.Paging)
}

func TestCursorPaginationPrevCursorInTheMiddle(t *testing.T) {
	s := sequence(30)

	third := s.page(int64Ptr(11), 10)
	require.NotNil(t, third.Paging.Cursors.Prev)
	assert.Equal(t, int64(21), *third.Paging.Cursors.Prev)

	second := s.page(third.Paging.Cursors.Prev, 10)
	assert.Equal(t, []int64{20, 19, 18, 17, 16, 15, 14, 13, 12, 11}, ids(second.Data))
	assert.True(t, second.Paging.HasPrev)
	assert.True(t, second.Paging.HasNext)
}

func TestCursorPaginationEmpty(t *testing.T) {
	for _, cursor := range []*int64{nil, int64Ptr(5)} {
		res := store{}.page(cursor, 10)
		assert.Empty(t, res.Data)
		assert.NotNil(t, res.Data)
		assert.Nil(t, res.Paging.Cursors.Prev)
		assert.Nil(t, res.Paging.Cursors.Next)
		assert.False(t, res.Paging.HasPrev)
		assert.False(t, res.Paging.HasNext)
	}
}

func TestCursorPaginationExactlyOnePage(t *testing.T) {
	res := sequence(10).page(nil, 10)

	assert.Len(t, res.Data, 10)
	// full page, but nothing below it
	assert.Nil(t, res.Paging.Cursors.Next)
	assert.False(t, res.Paging.HasNext)
}

func TestCursorPaginationCursorBeyondRange(t *testing.T) {
	res := sequence(5).page(int64Ptr(1000), 10)

	assert.Equal(t, []int64{5, 4, 3, 2, 1}, ids(res.Data))
	assert.False(t, res.Paging.HasPrev)
	assert.False(t, res.Paging.HasNext)
	assert.Nil(t, res.Paging.Cursors.Prev)
	assert.Nil(t, res.Paging.Cursors.Next)
}

func TestCursorPaginationNextCursorEager(t *testing.T) {
	p := NewCursorPagination(nil, 3, []record{{9}, {7}, {4}})
	require.NotNil(t, p.NextCursor())
	assert.Equal(t, int64(4), *p.NextCursor())

	paging := p.Paging(nil, nil)
	assert.Nil(t, paging.Cursors.Next)
	// the eager cursor is left untouched for later lookups
	assert.Equal(t, int64(4), *p.NextCursor())

	assert.Nil(t, NewCursorPagination(nil, 3, []record{{9}, {7}}).NextCursor())
}

func TestCursorPaginationDefaultsPageSize(t *testing.T) {
	p := NewCursorPagination[record](nil, 0, nil)
	assert.Equal(t, DefaultPageSize, p.PageSize())
	assert.NotNil(t, p.Items())
}

func TestCursorPaginationFollowingNextTerminates(t *testing.T) {
	for _, tc := range []struct{ total, size int }{{0, 3}, {1, 3}, {7, 3}, {9, 3}, {20, 10}, {21, 1}, {50, 7}} {
		s := sequence(tc.total)
		seen := 0
		var cursor *int64
		for pages := 0; ; pages++ {
			require.LessOrEqual(t, pages, tc.total+1, "pagination does not terminate")
			res := s.page(cursor, tc.size)
			seen += len(res.Data)
			if !res.Paging.HasNext {
				break
			}
			cursor = res.Paging.Cursors.Next
		}
		assert.Equal(t, tc.total, seen, "total=%d size=%d", tc.total, tc.size)
	}
}

func TestCursorPaginationNextThenPrevRoundTrip(t *testing.T) {
	// sparse ids exercise the non-dense case
	s := store{2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233}
	size := 3

	var cursor *int64
	for {
		page := s.page(cursor, size)
		if !page.Paging.HasNext {
			break
		}
		next := s.page(page.Paging.Cursors.Next, size)
		back := s.page(next.Paging.Cursors.Prev, size)
		assert.Equal(t, ids(page.Data), ids(back.Data))
		cursor = page.Paging.Cursors.Next
	}
}

func TestCursorRequestPageSize(t *testing.T) {
	r := &CursorRequest{}
	assert.Equal(t, DefaultPageSize, r.GetPageSize())
	r = &CursorRequest{PageSize: 25}
	assert.Equal(t, 25, r.GetPageSize())
}

func TestCursorRequestGetCursor(t *testing.T) {
	assert.Nil(t, (&CursorRequest{}).GetCursor())
	assert.Nil(t, (&CursorRequest{Cursor: int64Ptr(0)}).GetCursor())
	assert.Nil(t, (&CursorRequest{Cursor: int64Ptr(-3)}).GetCursor())
	got := (&CursorRequest{Cursor: int64Ptr(7)}).GetCursor()
	if assert.NotNil(t, got) {
		assert.EqualValues(t, 7, *got)
	}
}
