package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListOptionsDefaults(t *testing.T) {
	opts, err := ParseListOptions(RawListOptions{})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), opts.Page)
	assert.Equal(t, int64(DefaultLimit), opts.Limit)
	assert.Nil(t, opts.MinPrice)
	assert.Nil(t, opts.MaxPrice)
}

func TestParseListOptionsClampsPage(t *testing.T) {
	for _, bad := range []string{"0", "-3", "abc"} {
		opts, err := ParseListOptions(RawListOptions{Page: bad, Limit: "10"})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), opts.Page, "page %q", bad)
	}
}

func TestParseListOptionsParsesValues(t *testing.T) {
	opts, err := ParseListOptions(RawListOptions{
		Sort: "comments", Order: "desc",
		Page: "4", Limit: "50",
		MinPrice: "0", MaxPrice: "12.5",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(4), opts.Page)
	assert.Equal(t, int64(50), opts.Limit)
	assert.Equal(t, 0.0, *opts.MinPrice)
	assert.Equal(t, 12.5, *opts.MaxPrice)
}

func TestParseListOptionsRejectsBadPrices(t *testing.T) {
	_, err := ParseListOptions(RawListOptions{MinPrice: "free"})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = ParseListOptions(RawListOptions{MaxPrice: "10€"})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
