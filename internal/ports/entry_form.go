package ports

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jinwsy/blood-pressure/internal/domain"
)

// ReadingStore is the part of the store the entry form drives
type ReadingStore interface {
	Get(ctx context.Context, id string) (*domain.Reading, error)
	Create(ctx context.Context, in domain.ReadingInput) (*domain.Reading, error)
	Update(ctx context.Context, id string, in domain.ReadingInput) (*domain.Reading, error)
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
	Count() int
	Location() *time.Location
	Now() time.Time
}

// EntryForm holds the caller-side state of the reading form: whether a
// submit creates a new reading or overwrites the one being edited, and
// which actions need the user's confirmation first.
type EntryForm struct {
	store   ReadingStore
	confirm Confirmer

	mu      sync.Mutex
	editing string
}

// NewEntryForm creates a form in create mode
func NewEntryForm(store ReadingStore, confirm Confirmer) *EntryForm {
	return &EntryForm{
		store:   store,
		confirm: confirm,
	}
}

// BeginEdit switches the form to edit id and returns its current values.
// An unknown id leaves the form unchanged.
func (f *EntryForm) BeginEdit(ctx context.Context, id string) (domain.ReadingInput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reading, err := f.store.Get(ctx, id)
	if err != nil {
		return domain.ReadingInput{}, err
	}

	f.editing = reading.ID
	log.Debug().Str("id", id).Msg("editing reading")
	return reading.Input(f.store.Location()), nil
}

// Editing returns the id being edited, if any
func (f *EntryForm) Editing() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editing, f.editing != ""
}

// Reset returns the form to create mode
func (f *EntryForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editing = ""
}

// Submit validates in, asks for confirmation when the values are outside
// the plausible range, then updates the edited reading or creates a new
// one. The form is back in create mode after a successful submit.
func (f *EntryForm) Submit(ctx context.Context, in domain.ReadingInput) (*domain.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fields, err := in.Validate(f.store.Location(), f.store.Now())
	if err != nil {
		return nil, err
	}

	if !fields.Plausible() {
		if err := f.ask(ctx, PromptOutOfRange); err != nil {
			return nil, err
		}
	}

	var reading *domain.Reading
	if f.editing != "" {
		reading, err = f.store.Update(ctx, f.editing, in)
	} else {
		reading, err = f.store.Create(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	f.editing = ""
	log.Info().
		Str("id", reading.ID).
		Str("category", reading.Category().String()).
		Msg("saved reading")
	return reading, nil
}

// Delete removes id after the user confirms
func (f *EntryForm) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ask(ctx, PromptDelete); err != nil {
		return false, err
	}

	deleted, err := f.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if f.editing == id {
		f.editing = ""
	}
	return deleted, nil
}

// ClearAll removes every reading after the user confirms. With nothing
// stored it returns false without asking.
func (f *EntryForm) ClearAll(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.store.Count() == 0 {
		return false, nil
	}

	if err := f.ask(ctx, PromptClearAll); err != nil {
		return false, err
	}

	if err := f.store.Clear(ctx); err != nil {
		return false, err
	}
	f.editing = ""
	return true, nil
}

func (f *EntryForm) ask(ctx context.Context, prompt Prompt) error {
	ok, err := f.confirm.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		log.Info().Str("prompt", string(prompt)).Msg("action declined")
		return domain.ErrCancelled
	}
	return nil
}
