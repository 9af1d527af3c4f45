package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jinwsy/blood-pressure/internal/ports"
)

// Confirmer asks y/N questions on a terminal
// This implements the ports.Confirmer interface
type Confirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewConfirmer reads answers from in and writes prompts to out.
// With assumeYes every prompt is approved without asking.
func NewConfirmer(in io.Reader, out io.Writer, assumeYes bool) *Confirmer {
	return &Confirmer{
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
	}
}

// Confirm prints the prompt and accepts "y" or "yes"; anything else,
// including end of input, declines.
func (c *Confirmer) Confirm(ctx context.Context, prompt ports.Prompt) (bool, error) {
	if c.assumeYes {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := fmt.Fprintf(c.out, "%s [y/N] ", prompt); err != nil {
		return false, err
	}

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
