package ocr

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"crosscheck/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// Client wraps tesseract CLI interactions. Text extraction is the only
// blocking I/O the comparison engine performs; callers bound it with a
// context deadline and the client degrades to an explicit error when the
// binary is absent, never blocking the other detectors.
type Client struct {
	binary    string
	languages string
	timeout   time.Duration
	exec      Executor
}

// New constructs an OCR client. binary defaults to "tesseract" and
// languages to "eng" when blank.
func New(binary, languages string, timeoutSeconds int, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "tesseract"
	}
	languages = strings.TrimSpace(languages)
	if languages == "" {
		languages = "eng"
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	client := &Client{
		binary:    binary,
		languages: languages,
		timeout:   timeout,
		exec:      commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Available reports whether the OCR binary can be resolved. The screenshot
// verifier checks this once per run and emits degraded results instead of
// calling ExtractText when it fails.
func (c *Client) Available() bool {
	if strings.ContainsRune(c.binary, os.PathSeparator) {
		info, err := os.Stat(c.binary)
		return err == nil && !info.IsDir()
	}
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// ExtractText runs OCR over the image at path and returns the extracted
// text. Deadline expiry maps to services.ErrTimeout, all other tool
// failures to services.ErrExternalTool.
func (c *Client) ExtractText(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrNotFound, "ocr", "extract", path, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// tesseract <image> stdout -l <langs> prints extracted text to stdout.
	out, err := c.exec.Run(ctx, c.binary, []string{path, "stdout", "-l", c.languages})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "ocr", "extract", path, err)
		}
		return "", services.Wrap(services.ErrExternalTool, "ocr", "extract", path, err)
	}
	return strings.TrimSpace(out), nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", errors.New(detail)
		}
		return "", err
	}
	return stdout.String(), nil
}
