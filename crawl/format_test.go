package crawl_test

import (
	"testing"

	"github.com/fwojciec/prospect/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://acme.io", crawl.TruncateURL("https://acme.io", 50))
	})

	t.Run("keeps the tail when longer than max", func(t *testing.T) {
		t.Parallel()
		result := crawl.TruncateURL("https://acme.io/company/about-our-team", 20)
		assert.Equal(t, "...ny/about-our-team", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns empty string when maxLen is not positive", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateURL("https://acme.io", 0))
		assert.Empty(t, crawl.TruncateURL("https://acme.io", -1))
	})

	t.Run("returns prefix when maxLen is too small for ellipsis", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "htt", crawl.TruncateURL("https://acme.io", 3))
		assert.Equal(t, "a", crawl.TruncateURL("a", 2))
	})
}

func TestFormatChars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0 chars", crawl.FormatChars(0))
	assert.Equal(t, "999 chars", crawl.FormatChars(999))
	assert.Equal(t, "1.0k chars", crawl.FormatChars(1000))
	assert.Equal(t, "5.2k chars", crawl.FormatChars(5230))
}
