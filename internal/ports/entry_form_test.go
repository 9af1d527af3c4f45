package ports_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinwsy/blood-pressure/internal/adapters/memory"
	"github.com/jinwsy/blood-pressure/internal/adapters/mock"
	"github.com/jinwsy/blood-pressure/internal/domain"
	"github.com/jinwsy/blood-pressure/internal/ports"
	"github.com/jinwsy/blood-pressure/internal/store"
)

func newForm(t *testing.T, answer bool) (*ports.EntryForm, *store.Store, *mock.Confirmer) {
	t.Helper()
	s := store.New(memory.NewSlot(), store.WithLogger(zerolog.Nop()), store.WithLocation(time.UTC))
	require.NoError(t, s.Load(context.Background()))
	confirmer := mock.NewConfirmer(answer)
	return ports.NewEntryForm(s, confirmer), s, confirmer
}

func TestSubmit_CreatesWhenNotEditing(t *testing.T) {
	form, s, confirmer := newForm(t, true)
	ctx := context.Background()

	r, err := form.Submit(ctx, domain.ReadingInput{Systolic: "120", Diastolic: "80"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 1, s.Count())
	assert.Empty(t, confirmer.Asked(), "plausible values need no confirmation")
}

func TestSubmit_UpdatesEditedReading(t *testing.T) {
	form, s, _ := newForm(t, true)
	ctx := context.Background()

	orig, err := s.Create(ctx, domain.ReadingInput{Systolic: "120", Diastolic: "80", Pulse: "66", Timestamp: "2024-01-01T08:00"})
	require.NoError(t, err)

	values, err := form.BeginEdit(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadingInput{Timestamp: "2024-01-01T08:00", Systolic: "120", Diastolic: "80", Pulse: "66"}, values)

	id, editing := form.Editing()
	require.True(t, editing)
	assert.Equal(t, orig.ID, id)

	values.Systolic = "131"
	updated, err := form.Submit(ctx, values)
	require.NoError(t, err)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, 131, updated.Systolic)
	assert.Equal(t, 1, s.Count())

	_, editing = form.Editing()
	assert.False(t, editing, "form returns to create mode after submit")

	next, err := form.Submit(ctx, domain.ReadingInput{Systolic: "110", Diastolic: "70"})
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, next.ID)
	assert.Equal(t, 2, s.Count())
}

func TestBeginEdit_UnknownID(t *testing.T) {
	form, _, _ := newForm(t, true)

	_, err := form.BeginEdit(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrReadingNotFound)

	_, editing := form.Editing()
	assert.False(t, editing)
}

func TestReset_ReturnsToCreateMode(t *testing.T) {
	form, s, _ := newForm(t, true)
	ctx := context.Background()

	orig, _ := s.Create(ctx, domain.ReadingInput{Systolic: "120", Diastolic: "80"})
	_, err := form.BeginEdit(ctx, orig.ID)
	require.NoError(t, err)

	form.Reset()
	r, err := form.Submit(ctx, domain.ReadingInput{Systolic: "125", Diastolic: "82"})
	require.NoError(t, err)
	assert.NotEqual(t, orig.ID, r.ID)
	assert.Equal(t, 2, s.Count())
}

func TestSubmit_OutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		answer    bool
		wantErr   error
		wantCount int
	}{
		{name: "confirmed", answer: true, wantCount: 1},
		{name: "declined", answer: false, wantErr: domain.ErrCancelled, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, s, confirmer := newForm(t, tt.answer)

			_, err := form.Submit(context.Background(), domain.ReadingInput{Systolic: "260", Diastolic: "80"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCount, s.Count())
			assert.Equal(t, []ports.Prompt{ports.PromptOutOfRange}, confirmer.Asked())
		})
	}
}

func TestSubmit_InvalidSkipsConfirmation(t *testing.T) {
	form, s, confirmer := newForm(t, true)

	_, err := form.Submit(context.Background(), domain.ReadingInput{Systolic: "abc", Diastolic: "80"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, confirmer.Asked())
	assert.Equal(t, 0, s.Count())
}

func TestDelete_AsksFirst(t *testing.T) {
	form, s, confirmer := newForm(t, false)
	ctx := context.Background()

	r, _ := s.Create(ctx, domain.ReadingInput{Systolic: "120", Diastolic: "80"})

	_, err := form.Delete(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, []ports.Prompt{ports.PromptDelete}, confirmer.Asked())
}

func TestDelete_ClearsEditingState(t *testing.T) {
	form, s, _ := newForm(t, true)
	ctx := context.Background()

	r, _ := s.Create(ctx, domain.ReadingInput{Systolic: "120", Diastolic: "80"})
	_, err := form.BeginEdit(ctx, r.ID)
	require.NoError(t, err)

	deleted, err := form.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, editing := form.Editing()
	assert.False(t, editing)
}

func TestClearAll(t *testing.T) {
	form, s, confirmer := newForm(t, true)
	ctx := context.Background()

	cleared, err := form.ClearAll(ctx)
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Empty(t, confirmer.Asked(), "empty store is cleared without asking")

	_, _ = s.Create(ctx, domain.ReadingInput{Systolic: "120", Diastolic: "80"})
	_, _ = s.Create(ctx, domain.ReadingInput{Systolic: "121", Diastolic: "81"})

	cleared, err = form.ClearAll(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, []ports.Prompt{ports.PromptClearAll}, confirmer.Asked())
}

// countingStore records how often the form reads the store's clock
type countingStore struct {
	*store.Store
	nowCalls int
}

func (c *countingStore) Now() time.Time {
	c.nowCalls++
	return c.Store.Now()
}

func TestSubmit_UsesStoreClock(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s := store.New(memory.NewSlot(),
		store.WithLogger(zerolog.Nop()),
		store.WithLocation(time.UTC),
		store.WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, s.Load(context.Background()))

	counting := &countingStore{Store: s}
	form := ports.NewEntryForm(counting, mock.NewConfirmer(true))

	r, err := form.Submit(context.Background(), domain.ReadingInput{Systolic: "120", Diastolic: "80"})
	require.NoError(t, err)
	assert.Positive(t, counting.nowCalls, "form validates against the store's clock")
	assert.True(t, r.Timestamp.Equal(fixed), "blank timestamp uses the store's clock, got %v", r.Timestamp)
}
