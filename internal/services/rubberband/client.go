package rubberband

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"retempo/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps rubberband CLI interactions.
type Client struct {
	binary    string
	crispness int
	timeout   time.Duration
	exec      Executor
}

// New constructs a rubberband client.
func New(binary string, crispness, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("rubberband binary required")
	}
	if crispness < 0 || crispness > 6 {
		return nil, fmt.Errorf("crispness %d out of range 0-6", crispness)
	}
	client := &Client{
		binary:    binary,
		crispness: crispness,
		timeout:   time.Duration(timeoutSeconds) * time.Second,
		exec:      commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Stretch runs rubberband synchronously, scaling the duration of inputWav by
// factor into outputWav. Pitch is pinned to zero shift.
func (c *Client) Stretch(ctx context.Context, inputWav, outputWav string, factor float64, onOutput func(string)) error {
	if factor <= 0 {
		return services.Wrap(services.ErrValidation, "stretch", "arguments", fmt.Sprintf("factor must be positive, got %g", factor), nil)
	}
	if inputWav == "" || outputWav == "" {
		return services.Wrap(services.ErrValidation, "stretch", "arguments", "input and output paths required", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"-t", strconv.FormatFloat(factor, 'f', -1, 64),
		"--pitch", "0",
		"--crisp", strconv.Itoa(c.crispness),
		inputWav,
		outputWav,
	}
	if err := c.exec.Run(runCtx, c.binary, args, onOutput); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "stretch", "rubberband", fmt.Sprintf("gave up after %s", c.timeout), err)
		}
		return services.Wrap(services.ErrExternalTool, "stretch", "rubberband", "run", err)
	}

	if _, err := os.Stat(outputWav); err != nil {
		return services.Wrap(services.ErrExternalTool, "stretch", "rubberband", "produced no output file", err)
	}
	return nil
}
