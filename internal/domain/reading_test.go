package domain

import (
	"errors"
	"testing"
	"time"
)

func TestReadingInput_Validate(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 30, 15, 123456789, time.UTC)

	tests := []struct {
		name      string
		input     ReadingInput
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid reading",
			input: ReadingInput{Systolic: "120", Diastolic: "80"},
		},
		{
			name:  "out of plausible range is still valid",
			input: ReadingInput{Systolic: "300", Diastolic: "10"},
		},
		{
			name:      "non-numeric systolic is invalid",
			input:     ReadingInput{Systolic: "abc", Diastolic: "80"},
			wantErr:   true,
			wantField: "systolic",
		},
		{
			name:      "missing diastolic is invalid",
			input:     ReadingInput{Systolic: "120", Diastolic: "  "},
			wantErr:   true,
			wantField: "diastolic",
		},
		{
			name:      "infinite systolic is invalid",
			input:     ReadingInput{Systolic: "Inf", Diastolic: "80"},
			wantErr:   true,
			wantField: "systolic",
		},
		{
			name:      "NaN diastolic is invalid",
			input:     ReadingInput{Systolic: "120", Diastolic: "NaN"},
			wantErr:   true,
			wantField: "diastolic",
		},
		{
			name:      "fractional systolic is invalid",
			input:     ReadingInput{Systolic: "120.5", Diastolic: "80"},
			wantErr:   true,
			wantField: "systolic",
		},
		{
			name:      "malformed pulse is invalid",
			input:     ReadingInput{Systolic: "120", Diastolic: "80", Pulse: "fast"},
			wantErr:   true,
			wantField: "pulse",
		},
		{
			name:      "negative pulse is invalid",
			input:     ReadingInput{Systolic: "120", Diastolic: "80", Pulse: "-5"},
			wantErr:   true,
			wantField: "pulse",
		},
		{
			name:      "malformed timestamp is invalid",
			input:     ReadingInput{Systolic: "120", Diastolic: "80", Timestamp: "yesterday"},
			wantErr:   true,
			wantField: "timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.input.Validate(time.UTC, now)

			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) || verr.Field != tt.wantField {
					t.Errorf("expected field %q, got %v", tt.wantField, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestReadingInput_ValidateNormalizes(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 30, 15, 123456789, time.UTC)
	seoul := time.FixedZone("KST", 9*60*60)

	f, err := ReadingInput{Systolic: " 121 ", Diastolic: "79", Note: "   "}.Validate(seoul, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Systolic != 121 || f.Diastolic != 79 {
		t.Errorf("got %d/%d, want 121/79", f.Systolic, f.Diastolic)
	}
	if f.Pulse != nil {
		t.Errorf("blank pulse should be absent, got %d", *f.Pulse)
	}
	if f.Note != "" {
		t.Errorf("whitespace note should be absent, got %q", f.Note)
	}
	if want := now.Truncate(time.Millisecond); !f.Timestamp.Equal(want) {
		t.Errorf("blank timestamp should default to now: got %v, want %v", f.Timestamp, want)
	}

	f, err = ReadingInput{Systolic: "120", Diastolic: "80", Pulse: "0", Timestamp: "2024-01-02T09:00"}.Validate(seoul, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Pulse != nil {
		t.Errorf("pulse 0 should mean not recorded, got %d", *f.Pulse)
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !f.Timestamp.Equal(want) || f.Timestamp.Location() != time.UTC {
		t.Errorf("local timestamp should be normalized to UTC: got %v, want %v", f.Timestamp, want)
	}
}

func TestFields_Plausible(t *testing.T) {
	tests := []struct {
		systolic, diastolic int
		want                bool
	}{
		{systolic: 120, diastolic: 80, want: true},
		{systolic: 50, diastolic: 30, want: true},
		{systolic: 250, diastolic: 150, want: true},
		{systolic: 49, diastolic: 80, want: false},
		{systolic: 251, diastolic: 80, want: false},
		{systolic: 120, diastolic: 29, want: false},
		{systolic: 120, diastolic: 151, want: false},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			f := Fields{Systolic: tt.systolic, Diastolic: tt.diastolic}
			if got := f.Plausible(); got != tt.want {
				t.Errorf("Plausible() = %v, want %v for %d/%d", got, tt.want, tt.systolic, tt.diastolic)
			}
		})
	}
}

func TestReading_InputRoundTrip(t *testing.T) {
	pulse := 72
	r := &Reading{
		ID:        "abc",
		Timestamp: time.Date(2024, 5, 1, 22, 15, 0, 0, time.UTC),
		Systolic:  133,
		Diastolic: 85,
		Pulse:     &pulse,
		Note:      "after coffee",
	}

	in := r.Input(time.UTC)
	f, err := in.Validate(time.UTC, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := NewReading(r.ID, f)
	if !got.Timestamp.Equal(r.Timestamp) || got.Systolic != r.Systolic || got.Diastolic != r.Diastolic ||
		*got.Pulse != *r.Pulse || got.Note != r.Note {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, r)
	}
}

func TestReading_CloneDoesNotAlias(t *testing.T) {
	pulse := 60
	r := &Reading{ID: "x", Pulse: &pulse}
	c := r.Clone()
	*c.Pulse = 99

	if *r.Pulse != 60 {
		t.Errorf("clone shares pulse with original")
	}
}
