package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontPageFixture = `
<html><body><table>
<tr class="athing" id="101"><td class="title">
  <a class="storylink" href="https://example.com/one">Story one</a>
</td></tr>
<tr class="athing"><td class="title">
  <a class="storylink" href="https://example.com/no-id">No id</a>
</td></tr>
<tr class="athing" id="103"><td class="title">
  <span class="titleline"><a href="https://example.com/three">Story three</a></span>
</td></tr>
<tr class="athing" id="104"><td class="title">No anchor at all</td></tr>
<tr class="athing" id="105"><td class="title">
  <a class="storylink" href="https://example.com/five">Story five</a>
</td></tr>
</table></body></html>`

func TestTopStories(t *testing.T) {
	t.Parallel()

	stories := TopStories(frontPageFixture, 0)
	require.Len(t, stories, 3)
	assert.Equal(t, Story{ID: "101", URL: "https://example.com/one"}, stories[0])
	assert.Equal(t, Story{ID: "103", URL: "https://example.com/three"}, stories[1])
	assert.Equal(t, Story{ID: "105", URL: "https://example.com/five"}, stories[2])
}

func TestTopStoriesHonorsLimit(t *testing.T) {
	t.Parallel()

	stories := TopStories(frontPageFixture, 2)
	require.Len(t, stories, 2)
	assert.Equal(t, "101", stories[0].ID)
	assert.Equal(t, "103", stories[1].ID)
}

func TestTopStoriesEmptyDocument(t *testing.T) {
	t.Parallel()

	assert.Empty(t, TopStories("", 10))
	assert.Empty(t, TopStories("<html><body>nothing here</body></html>", 10))
}

func TestTopStoriesMalformedHTML(t *testing.T) {
	t.Parallel()

	// Unclosed tags and stray brackets must not panic.
	doc := `<table><tr class="athing" id="7"><td><a class="storylink" href="https://example.com/7">x` +
		`<tr class="athing" id="8"><<<><a class="storylink">`
	stories := TopStories(doc, 10)
	require.Len(t, stories, 1)
	assert.Equal(t, "7", stories[0].ID)
}

const discussionFixture = `
<html><body>
<span class="commtext c00">
  Check <a href="https://example.com/a">this</a> and
  <a href="https://example.com/b">that</a>.
</span>
<span class="commtext c5a">
  An anchor <a>without href</a> and <a href="https://example.com/c">one more</a>.
</span>
<a href="https://example.com/outside">outside comment text</a>
</body></html>`

func TestCommentLinks(t *testing.T) {
	t.Parallel()

	links := CommentLinks(discussionFixture)
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}, links)
}

func TestCommentLinksNone(t *testing.T) {
	t.Parallel()

	assert.Empty(t, CommentLinks("<html><body><span class=\"commtext\">plain text</span></body></html>"))
	assert.Empty(t, CommentLinks(""))
}
