package tubenote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubenote/config"
	"tubenote/note"
	"tubenote/transcript"
	"tubenote/youtube"
)

type fakeMetadata struct {
	meta *youtube.VideoMetadata
	err  error
}

func (f *fakeMetadata) Fetch(ctx context.Context, videoID string) (*youtube.VideoMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

type fakeSelector struct {
	result *transcript.Result
	err    error
}

func (f *fakeSelector) Select(ctx context.Context, videoID string) (*transcript.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeWriter struct {
	gotNote *note.Note
	gotBody string
	gotProv note.Provenance
	err     error
}

func (f *fakeWriter) Write(n *note.Note, body string, prov note.Provenance) (string, error) {
	f.gotNote = n
	f.gotBody = body
	f.gotProv = prov
	if f.err != nil {
		return "", f.err
	}
	return "/vault/Inbox/2024-03-15 " + n.Title + ".md", nil
}

type fakeRestyler struct {
	out string
	err error
}

func (f *fakeRestyler) Restyle(ctx context.Context, draft string, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeRestyler) Model() string { return "command-r" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetadata() *youtube.VideoMetadata {
	return &youtube.VideoMetadata{
		ID:    "dQw4w9WgXcQ",
		Title: "My Video",
		Chapters: []youtube.Chapter{
			{Start: 0, Title: "Intro"},
			{Start: 120, Title: "Main"},
		},
	}
}

func captionsResult() *transcript.Result {
	return &transcript.Result{
		Source: transcript.SourceCaptions,
		Lines: []transcript.Line{
			{Timestamp: 5, Text: "hello"},
			{Timestamp: 125, Text: "the main part"},
		},
	}
}

func promptFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompt.md")
	require.NoError(t, os.WriteFile(path, []byte("reword"), 0644))
	return path
}

func TestPipeline_Run(t *testing.T) {
	w := &fakeWriter{}
	p := &Pipeline{
		Metadata:    &fakeMetadata{meta: testMetadata()},
		Transcripts: &fakeSelector{result: captionsResult()},
		Writer:      w,
		Logger:      quietLogger(),
	}

	res, err := p.Run(context.Background(), Options{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, "My Video", res.Title)
	assert.Equal(t, transcript.SourceCaptions, res.Source)
	assert.Equal(t, note.NoRestyleModel, res.RestyleModel)
	assert.NotEmpty(t, res.NotePath)

	require.NotNil(t, w.gotNote)
	assert.Contains(t, w.gotBody, "## [00:00:00] Intro")
	assert.Contains(t, w.gotBody, "## [00:02:00] Main")
	assert.Equal(t, transcript.SourceCaptions, w.gotProv.TranscriptionMethod)
	assert.Equal(t, note.NoRestyleModel, w.gotProv.RestructureModel)
}

func TestPipeline_RecordsFallbackSource(t *testing.T) {
	w := &fakeWriter{}
	p := &Pipeline{
		Metadata: &fakeMetadata{meta: testMetadata()},
		Transcripts: &fakeSelector{result: &transcript.Result{
			Source: transcript.SourceASRFallback,
			Lines:  []transcript.Line{{Timestamp: 5, Text: "hello"}},
		}},
		Writer: w,
		Logger: quietLogger(),
	}

	res, err := p.Run(context.Background(), Options{URL: "dQw4w9WgXcQ"})
	require.NoError(t, err)

	assert.Equal(t, transcript.SourceASRFallback, res.Source)
	assert.Equal(t, transcript.SourceASRFallback, w.gotProv.TranscriptionMethod)
}

func TestPipeline_RestyleApplied(t *testing.T) {
	restyled := "# My Video\n\nTighter prose. [00:00:05]\n"
	w := &fakeWriter{}
	p := &Pipeline{
		Metadata:    &fakeMetadata{meta: testMetadata()},
		Transcripts: &fakeSelector{result: captionsResult()},
		Restyler:    &fakeRestyler{out: restyled},
		Writer:      w,
		Logger:      quietLogger(),
	}

	res, err := p.Run(context.Background(), Options{URL: "dQw4w9WgXcQ", PromptPath: promptFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "command-r", res.RestyleModel)
	assert.Equal(t, restyled, w.gotBody)
	assert.Equal(t, "command-r", w.gotProv.RestructureModel)
}

func TestPipeline_RestyleFailureKeepsDraft(t *testing.T) {
	w := &fakeWriter{}
	p := &Pipeline{
		Metadata:    &fakeMetadata{meta: testMetadata()},
		Transcripts: &fakeSelector{result: captionsResult()},
		Restyler:    &fakeRestyler{err: errors.New("model down")},
		Writer:      w,
		Logger:      quietLogger(),
	}

	res, err := p.Run(context.Background(), Options{URL: "dQw4w9WgXcQ", PromptPath: promptFile(t)})
	require.NoError(t, err, "restructuring failure must not fail the run")

	assert.Equal(t, note.NoRestyleModel, res.RestyleModel)
	assert.Equal(t, w.gotNote.Body, w.gotBody, "pre-restructuring content persisted unchanged")
	assert.Equal(t, note.NoRestyleModel, w.gotProv.RestructureModel)
}

func TestNewPipeline_DefaultChain(t *testing.T) {
	p := NewPipeline(context.Background(), config.DefaultConfig(), t.TempDir(), "Inbox", false, quietLogger())

	sel, ok := p.Transcripts.(*transcript.Selector)
	require.True(t, ok)
	require.Len(t, sel.Providers, 2, "captions first, speech recognition behind it")
	assert.Equal(t, transcript.SourceCaptions, sel.Providers[0].Source())
	assert.Equal(t, transcript.SourceASRFallback, sel.Providers[1].Source())
}

func TestNewPipeline_ForceASRSkipsCaptions(t *testing.T) {
	p := NewPipeline(context.Background(), config.DefaultConfig(), t.TempDir(), "Inbox", true, quietLogger())

	sel, ok := p.Transcripts.(*transcript.Selector)
	require.True(t, ok)
	require.Len(t, sel.Providers, 1, "caption provider must not be in the chain")
	assert.Equal(t, transcript.SourceASRFallback, sel.Providers[0].Source())
}

func TestPipeline_InvalidURL(t *testing.T) {
	p := &Pipeline{
		Metadata:    &fakeMetadata{meta: testMetadata()},
		Transcripts: &fakeSelector{result: captionsResult()},
		Writer:      &fakeWriter{},
		Logger:      quietLogger(),
	}

	_, err := p.Run(context.Background(), Options{URL: "https://example.com/not-a-video"})
	assert.ErrorIs(t, err, youtube.ErrInvalidURL)
}

func TestPipeline_MetadataFailurePropagates(t *testing.T) {
	p := &Pipeline{
		Metadata:    &fakeMetadata{err: youtube.ErrYtdlpNotInstalled},
		Transcripts: &fakeSelector{result: captionsResult()},
		Writer:      &fakeWriter{},
		Logger:      quietLogger(),
	}

	_, err := p.Run(context.Background(), Options{URL: "dQw4w9WgXcQ"})
	assert.ErrorIs(t, err, youtube.ErrYtdlpNotInstalled)
}

func TestPipeline_TranscriptFailurePropagates(t *testing.T) {
	audioErr := &youtube.AudioFetchError{VideoID: "dQw4w9WgXcQ", Err: errors.New("network down")}
	p := &Pipeline{
		Metadata:    &fakeMetadata{meta: testMetadata()},
		Transcripts: &fakeSelector{err: audioErr},
		Writer:      &fakeWriter{},
		Logger:      quietLogger(),
	}

	_, err := p.Run(context.Background(), Options{URL: "dQw4w9WgXcQ"})
	var gotErr *youtube.AudioFetchError
	assert.ErrorAs(t, err, &gotErr)
}

func TestPipeline_WriteFailurePropagates(t *testing.T) {
	wErr := &note.WriteError{Path: "/vault/x.md", Err: errors.New("disk full")}
	p := &Pipeline{
		Metadata:    &fakeMetadata{meta: testMetadata()},
		Transcripts: &fakeSelector{result: captionsResult()},
		Writer:      &fakeWriter{err: wErr},
		Logger:      quietLogger(),
	}

	_, err := p.Run(context.Background(), Options{URL: "dQw4w9WgXcQ"})
	var gotErr *note.WriteError
	assert.ErrorAs(t, err, &gotErr)
}
