package mock

import (
	"context"
	"sync"

	"github.com/jinwsy/blood-pressure/internal/ports"
)

// Confirmer answers prompts from a fixed policy and records what was asked
// This implements the ports.Confirmer interface
type Confirmer struct {
	mu     sync.Mutex
	answer bool
	asked  []ports.Prompt
}

// NewConfirmer creates a confirmer that always answers answer
func NewConfirmer(answer bool) *Confirmer {
	return &Confirmer{answer: answer}
}

// Confirm records the prompt and returns the configured answer
func (c *Confirmer) Confirm(ctx context.Context, prompt ports.Prompt) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, prompt)
	return c.answer, nil
}

// Asked returns the prompts seen so far
func (c *Confirmer) Asked() []ports.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.Prompt(nil), c.asked...)
}
