package note

import (
	"fmt"
	"regexp"
	"strings"
)

// Note is a rendered markdown draft before provenance is attached.
// Rendering is pure: the same sections and title always produce the same
// bytes.
type Note struct {
	// Title is the video title, used for the H1 and the output filename.
	Title string
	// Body is the rendered markdown, without the provenance block.
	Body string
}

// placeholderSpeaker labels the first line of each chapter when the
// transcript source provides no diarization.
const placeholderSpeaker = "Speaker 1"

// Render assembles the markdown draft: title, table of contents, one section
// per chapter, each line tagged with its own timestamp marker.
func Render(title string, sections []Section) *Note {
	var b strings.Builder

	b.WriteString("# " + title + "\n\n")
	b.WriteString("## Table of Contents\n\n")
	for _, s := range sections {
		heading := sectionHeading(s.Chapter.Start, s.Chapter.Title)
		fmt.Fprintf(&b, "* [%s](#%s)\n", heading, headingAnchor(heading))
	}
	b.WriteString("\n")

	for _, s := range sections {
		heading := sectionHeading(s.Chapter.Start, s.Chapter.Title)
		b.WriteString("## " + heading + "\n\n")

		if len(s.Lines) == 0 {
			fmt.Fprintf(&b, "[No transcript in this chapter] %s\n\n", Timestamp(s.Chapter.Start))
			continue
		}

		for i, line := range s.Lines {
			text := strings.TrimSpace(strings.ReplaceAll(line.Text, "\n", " "))
			if text == "" {
				continue
			}

			speaker := line.Speaker
			if speaker == "" && i == 0 {
				speaker = placeholderSpeaker
			}
			if speaker != "" {
				text = speaker + ": " + text
			}

			fmt.Fprintf(&b, "%s %s\n\n", text, Timestamp(line.Timestamp))
		}
	}

	return &Note{
		Title: title,
		Body:  strings.TrimRight(b.String(), "\n") + "\n",
	}
}

func sectionHeading(start float64, title string) string {
	return Timestamp(start) + " " + title
}

// Timestamp formats seconds as a zero-padded [HH:MM:SS] marker.
func Timestamp(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("[%02d:%02d:%02d]", s/3600, (s%3600)/60, s%60)
}

var anchorStripRegex = regexp.MustCompile(`[^a-z0-9 \-]`)

// headingAnchor derives the markdown anchor slug for a heading: lowercase,
// punctuation stripped, spaces to hyphens.
func headingAnchor(heading string) string {
	slug := strings.ToLower(heading)
	slug = anchorStripRegex.ReplaceAllString(slug, "")
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}
