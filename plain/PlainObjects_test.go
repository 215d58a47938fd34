package plain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutForPageCount(t *testing.T) {
	cases := []struct {
		name          string
		totalCount    int
		size          int
		wantPageCount int
	}{
		{"empty", 0, 10, 0},
		{"one short page", 3, 10, 1},
		{"exact fit", 20, 10, 2},
		{"remainder spills over", 25, 10, 3},
		{"big pages", 25, 30, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := LayoutFor(1, tc.totalCount, tc.size)
			assert.Equal(t, tc.wantPageCount, layout.PageCount)
		})
	}
}

func TestLayoutForRaisesSizeToFloor(t *testing.T) {
	layout := LayoutFor(1, 100, 3)
	assert.Equal(t, DefaultPageSize, layout.Size)

	layout = LayoutFor(1, 100, 30)
	assert.Equal(t, 30, layout.Size)
}

func TestLayoutForCoercesPageNo(t *testing.T) {
	for _, requested := range []int{-5, 0} {
		layout := LayoutFor(requested, 25, 10)
		assert.Equal(t, 1, layout.Page)
		assert.Equal(t, 0, layout.Skip)
	}
}

func TestLayoutForClampsToLastPage(t *testing.T) {
	layout := LayoutFor(99, 25, 10)
	assert.Equal(t, 3, layout.Page)
	assert.Equal(t, 20, layout.Skip)
}

func TestLayoutForEmptySetDegeneratesToPageZero(t *testing.T) {
	layout := LayoutFor(7, 0, 10)
	assert.Equal(t, 0, layout.Page)
	assert.Equal(t, 0, layout.PageCount)
	assert.Equal(t, 0, layout.Skip)
}

func TestNewPageNavPointers(t *testing.T) {
	t.Run("middle page points both ways", func(t *testing.T) {
		page := NewPage(LayoutFor(2, 25, 10), 25, nil)
		require.NotNil(t, page.First)
		require.NotNil(t, page.Prev)
		require.NotNil(t, page.Next)
		require.NotNil(t, page.Last)
		assert.Equal(t, 1, *page.First)
		assert.Equal(t, 1, *page.Prev)
		assert.Equal(t, 3, *page.Next)
		assert.Equal(t, 3, *page.Last)
	})

	t.Run("first page has no backward pointers", func(t *testing.T) {
		page := NewPage(LayoutFor(1, 25, 10), 25, nil)
		assert.Nil(t, page.First)
		assert.Nil(t, page.Prev)
		require.NotNil(t, page.Next)
		assert.Equal(t, 2, *page.Next)
	})

	t.Run("last page has no forward pointers", func(t *testing.T) {
		page := NewPage(LayoutFor(3, 25, 10), 25, nil)
		assert.Nil(t, page.Next)
		assert.Nil(t, page.Last)
		require.NotNil(t, page.Prev)
		assert.Equal(t, 2, *page.Prev)
		require.NotNil(t, page.First)
		assert.Equal(t, 1, *page.First)
	})

	t.Run("single page has no pointers at all", func(t *testing.T) {
		page := NewPage(LayoutFor(1, 5, 10), 5, nil)
		assert.Nil(t, page.First)
		assert.Nil(t, page.Prev)
		assert.Nil(t, page.Next)
		assert.Nil(t, page.Last)
	})
}
