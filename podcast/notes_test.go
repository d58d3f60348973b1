package podcast

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubenote/note"
)

func testEpisode() *Episode {
	return &Episode{
		Title:        "A Great Episode",
		Link:         "https://example.com/ep1",
		EnclosureURL: "https://cdn.example.com/ep1.mp3",
		Description:  "We discuss things.",
		Duration:     "45:00",
		Published:    time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
		FeedTitle:    "Test Show",
		FeedURL:      "https://example.com/feed.xml",
	}
}

func TestRenderShowNotes(t *testing.T) {
	md := RenderShowNotes(testEpisode())

	assert.True(t, strings.HasPrefix(md, "# A Great Episode\n"))
	assert.Contains(t, md, "Podcast: Test Show")
	assert.Contains(t, md, "Published: 2024-03-12")
	assert.Contains(t, md, "Duration: 45:00")
	assert.Contains(t, md, "Episode page: https://example.com/ep1")
	assert.Contains(t, md, "## Show Notes\n\nWe discuss things.")
}

func TestRenderShowNotes_Deterministic(t *testing.T) {
	require.Equal(t, RenderShowNotes(testEpisode()), RenderShowNotes(testEpisode()))
}

func TestRenderShowNotes_EmptyDescription(t *testing.T) {
	ep := testEpisode()
	ep.Description = "   "
	md := RenderShowNotes(ep)
	assert.Contains(t, md, "[No show notes in this episode]")
}

func TestWriteShowNotes(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteShowNotes(testEpisode(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-03-12 A Great Episode.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	body := string(content)
	assert.Contains(t, body, "# A Great Episode")
	assert.Contains(t, body, "\n\n---\n\n```yaml\n")
	assert.Contains(t, body, "feed: https://example.com/feed.xml")
	assert.Contains(t, body, "episode_url: https://example.com/ep1")
	assert.Contains(t, body, "enclosure_url: https://cdn.example.com/ep1.mp3")
	assert.Contains(t, body, "published: \"2024-03-12T10:00:00Z\"")
}

func TestWriteShowNotes_TypedWriteError(t *testing.T) {
	// A file where the output directory should be makes the write fail.
	blocked := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(blocked, []byte("in the way"), 0644))

	_, err := WriteShowNotes(testEpisode(), blocked)
	var werr *note.WriteError
	require.ErrorAs(t, err, &werr)
	assert.NotEmpty(t, werr.Path)
}

func TestAudioStem(t *testing.T) {
	ep := testEpisode()
	assert.Equal(t, "2024-03-12 A Great Episode", audioStem(ep))

	ep.Published = time.Time{}
	assert.Equal(t, "A Great Episode", audioStem(ep))

	ep.Title = `bad/title?`
	assert.Equal(t, "bad-title-", audioStem(ep))
}
