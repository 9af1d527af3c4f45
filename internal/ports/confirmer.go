package ports

import (
	"context"
)

// Prompt identifies what the user is asked to confirm
type Prompt string

const (
	PromptOutOfRange Prompt = "The values are outside the usual range. Save anyway?"
	PromptDelete     Prompt = "Delete this reading?"
	PromptClearAll   Prompt = "Delete all readings?"
)

// Confirmer asks the user to approve an action
// This is a PORT - adapters (terminal, mock) will implement it
type Confirmer interface {
	// Confirm returns true when the user approves the prompt
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}
