package prospect_test

import (
	"testing"

	"github.com/fwojciec/prospect"
	"github.com/stretchr/testify/assert"
)

func TestBuildSummary(t *testing.T) {
	t.Parallel()

	t.Run("formats single page with upper-cased type", func(t *testing.T) {
		t.Parallel()

		pages := []*prospect.Page{
			{URL: "https://acme.io", Title: "Acme", Content: "We build rockets.", Type: prospect.PageTypeHomepage},
		}

		assert.Equal(t, "=== HOMEPAGE: Acme ===\nWe build rockets.", prospect.BuildSummary(pages))
	})

	t.Run("separates blocks with a blank line", func(t *testing.T) {
		t.Parallel()

		pages := []*prospect.Page{
			{Title: "Acme", Content: "Home text", Type: prospect.PageTypeHomepage},
			{Title: "About", Content: "About text", Type: prospect.PageTypeAbout},
		}

		expected := "=== HOMEPAGE: Acme ===\nHome text\n\n=== ABOUT: About ===\nAbout text"
		assert.Equal(t, expected, prospect.BuildSummary(pages))
	})

	t.Run("returns empty string for no pages", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, prospect.BuildSummary(nil))
	})

	t.Run("keeps empty title in header", func(t *testing.T) {
		t.Parallel()

		pages := []*prospect.Page{{Content: "text", Type: prospect.PageTypeBlog}}

		assert.Equal(t, "=== BLOG:  ===\ntext", prospect.BuildSummary(pages))
	})
}

func TestNewCorpus(t *testing.T) {
	t.Parallel()

	t.Run("derives summary from pages", func(t *testing.T) {
		t.Parallel()

		pages := []*prospect.Page{
			{URL: "https://acme.io", Title: "Acme", Content: "Home", Type: prospect.PageTypeHomepage},
		}

		c := prospect.NewCorpus("https://acme.io", "Acme", pages, []string{"hi@acme.io"})

		assert.Equal(t, prospect.BuildSummary(pages), c.Summary)
		assert.Equal(t, []string{"hi@acme.io"}, c.Emails)
		assert.False(t, c.Empty())
	})

	t.Run("replaces nil slices with empty ones", func(t *testing.T) {
		t.Parallel()

		c := prospect.NewCorpus("https://acme.io", "", nil, nil)

		assert.NotNil(t, c.Pages)
		assert.NotNil(t, c.Emails)
		assert.Empty(t, c.Summary)
		assert.True(t, c.Empty())
	})
}

func TestCorpus_TotalChars(t *testing.T) {
	t.Parallel()

	c := prospect.NewCorpus("https://acme.io", "Acme", []*prospect.Page{
		{Content: "héllo"},
		{Content: "abc"},
	}, nil)

	assert.Equal(t, 8, c.TotalChars())
	assert.Equal(t, 0, (*prospect.Corpus)(nil).TotalChars())
}
