package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":                SortPriceAsc,
		"price-lowtohigh": SortPriceAsc,
		"price-hightolow": SortPriceDesc,
		"price-desc":      SortPriceDesc,
		"title-atoz":      SortTitleAsc,
		"title-ztoa":      SortTitleDesc,
		" Title-Desc ":    SortTitleDesc,
		"popularity":      SortPriceAsc,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseSortKey(in), "input %q", in)
	}
}

func TestSplitSlugs(t *testing.T) {
	assert.Nil(t, SplitSlugs(""))
	assert.Equal(t, []string{"men", "women"}, SplitSlugs("men, women,"))
	assert.Equal(t, []string{"h&m"}, SplitSlugs("h&m"))
}
