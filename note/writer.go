package note

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"tubenote/storage"
	"tubenote/transcript"
)

// Provenance records which transcript source and restructuring path produced
// the final document. It is appended to every written note.
type Provenance struct {
	TranscriptionMethod transcript.Source `yaml:"transcription_method"`
	RestructureModel    string            `yaml:"restructure_model"`
}

// WriteError wraps a failure to persist a note. It is fatal: the run aborts
// and, thanks to write-then-rename, no partial file is left behind.
type WriteError struct {
	// Path is the target that could not be written.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *WriteError) Error() string {
	return "note: write " + e.Path + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer persists rendered notes into a vault directory.
type Writer struct {
	// Vault is the absolute path of the Obsidian vault.
	Vault string
	// OutDir is the vault-relative output directory.
	OutDir string
	// Now supplies the date prefix for filenames. Defaults to time.Now.
	Now func() time.Time
}

// Write persists the note body plus its provenance block as one markdown
// file and returns the final path. An existing unrelated note is never
// overwritten: identical content reuses the path (reruns are idempotent),
// different content gets a short random suffix.
func (w *Writer) Write(n *Note, body string, prov Provenance) (string, error) {
	content, err := appendProvenance(body, prov)
	if err != nil {
		return "", &WriteError{Path: w.OutDir, Err: err}
	}

	dir := filepath.Join(w.Vault, w.OutDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &WriteError{Path: dir, Err: err}
	}

	path, err := w.resolvePath(dir, n.Title, content)
	if err != nil {
		return "", err
	}
	if path == "" {
		// Identical note already on disk.
		return filepath.Join(dir, w.filename(n.Title)), nil
	}

	aw, err := storage.NewAtomicWriter(path)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if _, err := aw.Write(content); err != nil {
		aw.Abort()
		return "", &WriteError{Path: path, Err: err}
	}
	if err := aw.Commit(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	return path, nil
}

// resolvePath picks the output path, handling collisions. It returns ""
// when the file already exists with identical content.
func (w *Writer) resolvePath(dir string, title string, content []byte) (string, error) {
	path := filepath.Join(dir, w.filename(title))

	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return path, nil
	}
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if bytes.Equal(existing, content) {
		return "", nil
	}

	// Unrelated note with the same title: disambiguate with a short suffix.
	suffix := uuid.NewString()[:8]
	base := strings.TrimSuffix(filepath.Base(path), ".md")
	return filepath.Join(dir, base+"-"+suffix+".md"), nil
}

func (w *Writer) filename(title string) string {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return now().Format("2006-01-02") + " " + SanitizeTitle(title) + ".md"
}

var (
	invalidFilenameRegex = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRegex      = regexp.MustCompile(`\s+`)
)

// maxTitleLen caps sanitized titles to keep paths portable.
const maxTitleLen = 140

// SanitizeTitle makes a video title safe for use as a filename.
func SanitizeTitle(title string) string {
	s := invalidFilenameRegex.ReplaceAllString(title, "-")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > maxTitleLen {
		s = strings.TrimSpace(s[:maxTitleLen])
	}
	if s == "" {
		s = "Untitled"
	}
	return s
}

// appendProvenance attaches the run metadata block after the note body.
func appendProvenance(body string, prov Provenance) ([]byte, error) {
	meta, err := yaml.Marshal(prov)
	if err != nil {
		return nil, fmt.Errorf("marshal provenance: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n\n---\n\n```yaml\n")
	b.Write(meta)
	b.WriteString("```\n")
	return []byte(b.String()), nil
}
