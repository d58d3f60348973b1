package podcast

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tubenote/note"
	"tubenote/storage"
)

// showNotesMeta is the provenance block appended to every show-notes file.
type showNotesMeta struct {
	Feed      string `yaml:"feed"`
	Episode   string `yaml:"episode_url,omitempty"`
	Enclosure string `yaml:"enclosure_url,omitempty"`
	Published string `yaml:"published,omitempty"`
}

// RenderShowNotes renders the episode's show notes as markdown. Rendering is
// deterministic: the same episode always produces the same bytes.
func RenderShowNotes(ep *Episode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", ep.Title)
	if ep.FeedTitle != "" {
		fmt.Fprintf(&b, "Podcast: %s\n\n", ep.FeedTitle)
	}
	if !ep.Published.IsZero() {
		fmt.Fprintf(&b, "Published: %s\n\n", ep.Published.Format("2006-01-02"))
	}
	if ep.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n\n", ep.Duration)
	}
	if ep.Link != "" {
		fmt.Fprintf(&b, "Episode page: %s\n\n", ep.Link)
	}

	b.WriteString("## Show Notes\n\n")
	desc := strings.TrimSpace(ep.Description)
	if desc == "" {
		desc = "[No show notes in this episode]"
	}
	b.WriteString(desc + "\n")

	return b.String()
}

// WriteShowNotes persists the rendered notes plus the provenance block into
// dir and returns the final path.
func WriteShowNotes(ep *Episode, dir string) (string, error) {
	meta, err := yaml.Marshal(showNotesMeta{
		Feed:      ep.FeedURL,
		Episode:   ep.Link,
		Enclosure: ep.EnclosureURL,
		Published: publishedStamp(ep),
	})
	if err != nil {
		return "", fmt.Errorf("podcast: marshal provenance: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(RenderShowNotes(ep), "\n"))
	b.WriteString("\n\n---\n\n```yaml\n")
	b.Write(meta)
	b.WriteString("```\n")

	path := filepath.Join(dir, audioStem(ep)+".md")
	aw, err := storage.NewAtomicWriter(path)
	if err != nil {
		return "", &note.WriteError{Path: path, Err: err}
	}
	if _, err := aw.Write([]byte(b.String())); err != nil {
		aw.Abort()
		return "", &note.WriteError{Path: path, Err: err}
	}
	if err := aw.Commit(); err != nil {
		return "", &note.WriteError{Path: path, Err: err}
	}
	return path, nil
}

func publishedStamp(ep *Episode) string {
	if ep.Published.IsZero() {
		return ""
	}
	return ep.Published.Format(time.RFC3339)
}

// audioStem is the shared file stem for an episode's audio and notes files:
// publish date prefix plus the sanitized title.
func audioStem(ep *Episode) string {
	stem := note.SanitizeTitle(ep.Title)
	if !ep.Published.IsZero() {
		stem = ep.Published.Format("2006-01-02") + " " + stem
	}
	return stem
}
