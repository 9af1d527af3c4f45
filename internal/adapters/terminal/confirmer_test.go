package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinwsy/blood-pressure/internal/ports"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full word", input: " YES \n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "blank defaults to no", input: "\n", want: false},
		{name: "eof declines", input: "", want: false},
		{name: "answer without newline", input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConfirmer(strings.NewReader(tt.input), &out, false)

			got, err := c.Confirm(context.Background(), ports.PromptDelete)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, string(ports.PromptDelete)+" [y/N] ", out.String())
		})
	}
}

func TestConfirm_AssumeYes(t *testing.T) {
	var out bytes.Buffer
	c := NewConfirmer(strings.NewReader(""), &out, true)

	got, err := c.Confirm(context.Background(), ports.PromptClearAll)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Empty(t, out.String(), "nothing is printed when confirmation is assumed")
}

func TestConfirm_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConfirmer(strings.NewReader("y\n"), &bytes.Buffer{}, false)
	_, err := c.Confirm(ctx, ports.PromptDelete)
	assert.ErrorIs(t, err, context.Canceled)
}
