package transcript

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubenote/youtube"
)

type fakeCaptionFetcher struct {
	entries []youtube.CaptionEntry
	err     error
	lang    string
}

func (f *fakeCaptionFetcher) FetchCaptions(ctx context.Context, videoID string, langCode string) ([]youtube.CaptionEntry, error) {
	f.lang = langCode
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type fakeChecker struct {
	has   bool
	err   error
	calls int
}

func (f *fakeChecker) HasCaptions(ctx context.Context, videoID string) (bool, error) {
	f.calls++
	return f.has, f.err
}

func TestCaptionProvider_Fetch(t *testing.T) {
	p := &CaptionProvider{
		Client: &fakeCaptionFetcher{entries: []youtube.CaptionEntry{
			{Start: 0, Text: "hello"},
			{Start: 1.5, Text: "  "},
			{Start: 3, Text: " world "},
			{Start: -2, Text: "clamped"},
		}},
		Language: "en",
	}

	lines, err := p.Fetch(context.Background(), "vid")
	require.NoError(t, err)

	require.Len(t, lines, 3, "blank entries are dropped")
	assert.Equal(t, "hello", lines[0].Text)
	assert.Equal(t, "world", lines[1].Text)
	assert.Equal(t, 3.0, lines[1].Timestamp)
	assert.Equal(t, 0.0, lines[2].Timestamp, "negative timestamps clamp to zero")
	assert.Empty(t, lines[0].Speaker, "captions carry no diarization")
}

func TestCaptionProvider_UnavailableMapsToSourceUnavailable(t *testing.T) {
	p := &CaptionProvider{
		Client: &fakeCaptionFetcher{err: &youtube.MetadataError{
			Source: "timedtext", VideoID: "vid", Err: youtube.ErrCaptionsUnavailable,
		}},
	}

	_, err := p.Fetch(context.Background(), "vid")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestCaptionProvider_OtherErrorsAreFatal(t *testing.T) {
	boom := errors.New("timeout")
	p := &CaptionProvider{Client: &fakeCaptionFetcher{err: boom}}

	_, err := p.Fetch(context.Background(), "vid")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestCaptionProvider_CheckerShortCircuits(t *testing.T) {
	fetcher := &fakeCaptionFetcher{entries: []youtube.CaptionEntry{{Start: 0, Text: "x"}}}
	checker := &fakeChecker{has: false}
	p := &CaptionProvider{Client: fetcher, Checker: checker}

	_, err := p.Fetch(context.Background(), "vid")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, 1, checker.calls)
}

func TestCaptionProvider_CheckerErrorIsAdvisory(t *testing.T) {
	fetcher := &fakeCaptionFetcher{entries: []youtube.CaptionEntry{{Start: 0, Text: "x"}}}
	checker := &fakeChecker{err: errors.New("quota exceeded")}
	p := &CaptionProvider{Client: fetcher, Checker: checker}

	lines, err := p.Fetch(context.Background(), "vid")
	require.NoError(t, err, "checker failure must not fail the provider")
	assert.Len(t, lines, 1)
}

func TestCaptionProvider_EmptyTrackIsUnavailable(t *testing.T) {
	p := &CaptionProvider{Client: &fakeCaptionFetcher{entries: []youtube.CaptionEntry{
		{Start: 0, Text: "   "},
	}}}

	_, err := p.Fetch(context.Background(), "vid")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
