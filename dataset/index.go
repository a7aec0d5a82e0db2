package dataset

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index accelerates category-based pair selection with one Roaring bitmap of
// pair ids per category value. Categories come from the "category" metadata
// key; pairs without one index under "".
type Index struct {
	categories map[string]*roaring.Bitmap
}

const categoryKey = "category"

// NewIndex builds an index over a dataset's pairs.
func NewIndex(d *Dataset) *Index {
	ix := &Index{categories: make(map[string]*roaring.Bitmap)}
	for i := 0; i < d.Len(); i++ {
		category := ""
		if v, ok := d.At(i).Metadata[categoryKey]; ok {
			if s, ok := v.(string); ok {
				category = s
			}
		}
		bm, ok := ix.categories[category]
		if !ok {
			bm = roaring.New()
			ix.categories[category] = bm
		}
		bm.Add(uint32(i))
	}
	return ix
}

// Categories returns the indexed category values, sorted.
func (ix *Index) Categories() []string {
	cats := make([]string, 0, len(ix.categories))
	for c := range ix.categories {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	return cats
}

// Select returns the pair indices in one category, ascending.
func (ix *Index) Select(category string) []int {
	bm, ok := ix.categories[category]
	if !ok {
		return nil
	}
	return toInts(bm)
}

// Union returns the pair indices in any of the given categories, ascending.
func (ix *Index) Union(categories ...string) []int {
	union := roaring.New()
	for _, c := range categories {
		if bm, ok := ix.categories[c]; ok {
			union.Or(bm)
		}
	}
	return toInts(union)
}

// Count returns the number of pairs in a category.
func (ix *Index) Count(category string) int {
	bm, ok := ix.categories[category]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

func toInts(bm *roaring.Bitmap) []int {
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
