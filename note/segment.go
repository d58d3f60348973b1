// Package note turns a transcript and video metadata into an Obsidian
// markdown note: chapter segmentation, rendering, optional restructuring,
// and collision-safe persistence.
package note

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tubenote/transcript"
	"tubenote/youtube"
)

// Section pairs a chapter with the transcript lines assigned to it.
type Section struct {
	Chapter youtube.Chapter
	Lines   []transcript.Line
}

// introTitle names the implicit chapter that owns lines before the first
// declared chapter start. Leading content must not be silently dropped.
const introTitle = "Intro"

// fallbackTitle names the single implicit chapter used when a video declares
// no chapters at all and none can be parsed from the description.
const fallbackTitle = "Transcript"

// Segment assigns every transcript line to exactly one chapter.
//
// Chapter resolution order: structured metadata chapters, then chapters
// parsed from description timestamps, then a single implicit chapter. Each
// line goes to the chapter with the greatest start not exceeding the line's
// timestamp; when two chapters share a start, the later-declared one wins.
func Segment(meta *youtube.VideoMetadata, lines []transcript.Line) []Section {
	chapters := meta.Chapters
	if len(chapters) == 0 {
		chapters = ParseDescriptionChapters(meta.Description)
	}
	if len(chapters) == 0 {
		chapters = []youtube.Chapter{{Start: 0, Title: fallbackTitle}}
	}

	// Lines ahead of the first chapter get an implicit Intro chapter.
	if chapters[0].Start > 0 && hasLineBefore(lines, chapters[0].Start) {
		chapters = append([]youtube.Chapter{{Start: 0, Title: introTitle}}, chapters...)
	}

	starts := make([]float64, len(chapters))
	for i, c := range chapters {
		starts[i] = c.Start
	}

	sections := make([]Section, len(chapters))
	for i, c := range chapters {
		sections[i] = Section{Chapter: c}
	}

	for _, line := range lines {
		idx := chapterIndex(starts, line.Timestamp)
		sections[idx].Lines = append(sections[idx].Lines, line)
	}

	return sections
}

// chapterIndex returns the index of the chapter owning the given timestamp:
// the last chapter whose start is <= ts. Duplicated starts resolve to the
// later-declared chapter because the search finds the rightmost candidate.
func chapterIndex(starts []float64, ts float64) int {
	idx := sort.Search(len(starts), func(i int) bool {
		return starts[i] > ts
	}) - 1
	if idx < 0 {
		// Only reachable when the first chapter starts after ts and no Intro
		// was synthesized; own it to the first chapter rather than drop it.
		return 0
	}
	return idx
}

func hasLineBefore(lines []transcript.Line, start float64) bool {
	for _, l := range lines {
		if l.Timestamp < start {
			return true
		}
	}
	return false
}

// descChapterRegex matches a description line that starts with a timestamp
// (HH:MM:SS or MM:SS) followed by a label on the same line.
var descChapterRegex = regexp.MustCompile(`^\s*\(?((?:\d{1,2}:)?\d{1,2}:\d{2})\)?\s*[-–—:.]*\s*(\S.*?)\s*$`)

// ParseDescriptionChapters extracts synthetic chapters from free-text
// description lines such as "02:00 Main topic". The result is sorted by
// start, preserving declaration order for equal starts.
func ParseDescriptionChapters(description string) []youtube.Chapter {
	if description == "" {
		return nil
	}

	var chapters []youtube.Chapter
	for _, line := range strings.Split(description, "\n") {
		m := descChapterRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start, ok := parseTimestamp(m[1])
		if !ok {
			continue
		}
		chapters = append(chapters, youtube.Chapter{Start: start, Title: m[2]})
	}

	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Start < chapters[j].Start
	})
	return chapters
}

// parseTimestamp converts "HH:MM:SS" or "MM:SS" to seconds.
func parseTimestamp(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return float64(total), true
}
