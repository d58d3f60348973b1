package youtube

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewAudioDownloader(t *testing.T) {
	d := NewAudioDownloader()
	if d.YtdlpPath != "yt-dlp" {
		t.Errorf("NewAudioDownloader().YtdlpPath = %q, want %q", d.YtdlpPath, "yt-dlp")
	}
	if d.AudioQuality != 192 {
		t.Errorf("NewAudioDownloader().AudioQuality = %d, want 192", d.AudioQuality)
	}
}

func TestLastNonEmptyLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single line", "/tmp/a.mp3", "/tmp/a.mp3"},
		{"trailing newline", "/tmp/a.mp3\n", "/tmp/a.mp3"},
		{"progress noise before path", "downloading...\n50%\n/tmp/a.mp3\n", "/tmp/a.mp3"},
		{"empty", "", ""},
		{"only whitespace", "  \n\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastNonEmptyLine(tt.input); got != tt.want {
				t.Errorf("lastNonEmptyLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// fakeYtdlp writes a stub yt-dlp script into dir and returns its path.
// The script answers --version and, for a download invocation, creates the
// output file and prints its path the way --print after_move:filepath does.
func fakeYtdlp(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 2024.01.01; exit 0; fi\n" + body
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDownloadScoped_Success(t *testing.T) {
	dir := t.TempDir()
	// The stub finds the -o template's directory, drops an mp3 there, and
	// prints the final path.
	stub := fakeYtdlp(t, dir, `
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
dest=$(dirname "$out")
f="$dest/vid12345678.mp3"
echo audio > "$f"
echo "$f"
exit 0
`)

	d := NewAudioDownloader()
	d.YtdlpPath = stub

	path, cleanup, err := d.DownloadScoped(context.Background(), "vid12345678")
	if err != nil {
		t.Fatalf("DownloadScoped: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("audio file missing: %v", err)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cleanup should remove the scoped temp directory")
	}
}

func TestDownloadScoped_FailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	stub := fakeYtdlp(t, dir, "echo 'ERROR: something broke' >&2\nexit 1\n")

	d := NewAudioDownloader()
	d.YtdlpPath = stub

	_, _, err := d.DownloadScoped(context.Background(), "vid12345678")
	var afErr *AudioFetchError
	if !errors.As(err, &afErr) {
		t.Fatalf("error = %v, want *AudioFetchError", err)
	}
	if afErr.VideoID != "vid12345678" {
		t.Errorf("VideoID = %q", afErr.VideoID)
	}
}

func TestDownloadScoped_YtdlpMissing(t *testing.T) {
	d := NewAudioDownloader()
	d.YtdlpPath = filepath.Join(t.TempDir(), "definitely-not-here")

	_, _, err := d.DownloadScoped(context.Background(), "vid12345678")
	if !errors.Is(err, ErrYtdlpNotInstalled) {
		t.Errorf("error = %v, want ErrYtdlpNotInstalled", err)
	}
}
