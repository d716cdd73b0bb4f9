package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type scanResult struct {
	text string
	err  error
}

// Console is a text voice for development mode. Listen waits for one line
// from the input reader, Speak prints the response with the robot's prompt.
// A dedicated goroutine owns the reader so Listen can be abandoned when its
// context expires; the line arriving later is delivered to the next Listen.
type Console struct {
	lines <-chan scanResult
	out   io.Writer
	opts  Options
}

// NewConsole creates a console voice reading lines from in and writing
// responses to out.
func NewConsole(in io.Reader, out io.Writer, opts Options) *Console {
	lines := make(chan scanResult)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanResult{text: scanner.Text()}
		}
		if err := scanner.Err(); err != nil {
			lines <- scanResult{err: err}
		}
	}()

	return &Console{
		lines: lines,
		out:   out,
		opts:  opts,
	}
}

// Options returns the audio tuning the voice was built with.
func (c *Console) Options() Options {
	return c.opts
}

func (c *Console) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(c.out, "you> ")

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-c.lines:
		if !ok {
			return "", ErrNoSpeech
		}
		if res.err != nil {
			return "", fmt.Errorf("reading console input: %w", res.err)
		}

		line := strings.TrimSpace(res.text)
		if line == "" {
			return "", ErrNoSpeech
		}
		return line, nil
	}
}

func (c *Console) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(c.out, "R2D3> %s\n", text)
	if err != nil {
		return fmt.Errorf("writing console response: %w", err)
	}
	return nil
}
