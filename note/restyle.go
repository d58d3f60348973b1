package note

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// Restyler reformats a rendered note according to a prompt template while
// preserving its structural contract (title, ToC, headings, timestamps).
type Restyler interface {
	// Restyle returns the reworded note body.
	Restyle(ctx context.Context, draft string, prompt string) (string, error)
	// Model identifies the restyler in provenance metadata.
	Model() string
}

// NoRestyleModel is recorded in provenance when no restructuring was applied.
const NoRestyleModel = "none"

// CLIRestyler invokes an external text-generation command. The prompt and
// draft are written to stdin; the restyled note is read from stdout.
type CLIRestyler struct {
	// Command is the command line to run, split on whitespace.
	Command string
	// Timeout bounds a single invocation. Defaults to 5 minutes.
	Timeout time.Duration
}

// Model returns the base name of the configured command.
func (r *CLIRestyler) Model() string {
	fields := strings.Fields(r.Command)
	if len(fields) == 0 {
		return NoRestyleModel
	}
	return filepath.Base(fields[0])
}

// Restyle runs the command and returns its stdout.
func (r *CLIRestyler) Restyle(ctx context.Context, draft string, prompt string) (string, error) {
	fields := strings.Fields(r.Command)
	if len(fields) == 0 {
		return "", fmt.Errorf("no restyle command configured")
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, fields[0], fields[1:]...)
	cmd.Stdin = strings.NewReader(prompt + "\n\n---\n\n" + draft)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("restyle command: %w: %s", err, errMsg)
		}
		return "", fmt.Errorf("restyle command: %w", err)
	}

	return stdout.String(), nil
}

// CohereRestyler reformats notes through the Cohere chat API.
type CohereRestyler struct {
	client *cohereclient.Client
	model  string
}

// NewCohereRestyler creates an API-backed restyler.
func NewCohereRestyler(apiKey string, model string) *CohereRestyler {
	return &CohereRestyler{
		client: cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		model:  model,
	}
}

// Model returns the configured chat model name.
func (r *CohereRestyler) Model() string { return r.model }

// Restyle sends the draft with the prompt as preamble and returns the
// model's response text.
func (r *CohereRestyler) Restyle(ctx context.Context, draft string, prompt string) (string, error) {
	resp, err := r.client.Chat(ctx, &cohere.ChatRequest{
		Model:    &r.model,
		Preamble: &prompt,
		Message:  draft,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	return resp.Text, nil
}

// NewRestylerFromEnv picks a restyler the way providers are selected
// elsewhere in this codebase: the Cohere API when COHERE_API_KEY is set,
// else the configured CLI command, else nil (restructuring not configured).
func NewRestylerFromEnv(cliCommand string, cohereModel string, timeout time.Duration) Restyler {
	if key := os.Getenv("COHERE_API_KEY"); key != "" {
		model := cohereModel
		if model == "" {
			model = "command-r"
		}
		return NewCohereRestyler(key, model)
	}
	if cliCommand != "" {
		return &CLIRestyler{Command: cliCommand, Timeout: timeout}
	}
	return nil
}

var timestampMarkerRegex = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\]`)

// Restructure applies the restyler to the draft and fails soft: on any
// failure (missing prompt treated as not configured, command error, output
// that lost the note's structure) the original draft is returned with model
// NoRestyleModel.
func Restructure(ctx context.Context, logger *slog.Logger, r Restyler, draft *Note, promptPath string) (body string, model string) {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		return draft.Body, NoRestyleModel
	}

	prompt, err := os.ReadFile(promptPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("restyle prompt not found, skipping restructuring", "path", promptPath)
		} else {
			logger.Warn("restyle prompt unreadable, skipping restructuring", "path", promptPath, "error", err)
		}
		return draft.Body, NoRestyleModel
	}

	restyled, err := r.Restyle(ctx, draft.Body, string(prompt))
	if err != nil {
		logger.Warn("restructuring failed, keeping original note", "model", r.Model(), "error", err)
		return draft.Body, NoRestyleModel
	}

	if !keepsStructure(draft, restyled) {
		logger.Warn("restructured output lost note structure, keeping original note", "model", r.Model())
		return draft.Body, NoRestyleModel
	}

	return restyled, r.Model()
}

// keepsStructure checks the restyled output against the structural contract:
// the title heading survives and timestamp markers were not stripped.
func keepsStructure(draft *Note, restyled string) bool {
	if strings.TrimSpace(restyled) == "" {
		return false
	}
	if !strings.Contains(restyled, "# "+draft.Title) {
		return false
	}
	return timestampMarkerRegex.MatchString(restyled)
}
