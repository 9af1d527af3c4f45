package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Plausible input bounds. Values outside them are accepted by the store;
// callers are expected to ask the user before submitting them.
const (
	MinPlausibleSystolic  = 50
	MaxPlausibleSystolic  = 250
	MinPlausibleDiastolic = 30
	MaxPlausibleDiastolic = 150
)

// FormTimeLayout is the layout of a datetime-local form field.
const FormTimeLayout = "2006-01-02T15:04"

// Reading represents a single blood-pressure measurement
// This is pure domain logic - no storage, no transport, just business concepts
type Reading struct {
	ID        string
	Timestamp time.Time // always UTC, millisecond precision
	Systolic  int
	Diastolic int
	Pulse     *int   // nil means not recorded
	Note      string // empty means absent
}

// ReadingInput carries raw field values as typed by the user.
type ReadingInput struct {
	Timestamp string
	Systolic  string
	Diastolic string
	Pulse     string
	Note      string
}

// Fields is a validated ReadingInput, ready to become a Reading.
type Fields struct {
	Timestamp time.Time
	Systolic  int
	Diastolic int
	Pulse     *int
	Note      string
}

// NewID returns a fresh opaque reading identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate parses the raw input. A blank timestamp means now; local form
// values are interpreted in loc.
func (in ReadingInput) Validate(loc *time.Location, now time.Time) (Fields, error) {
	systolic, err := parseRequired("systolic", in.Systolic)
	if err != nil {
		return Fields{}, err
	}
	diastolic, err := parseRequired("diastolic", in.Diastolic)
	if err != nil {
		return Fields{}, err
	}

	var pulse *int
	if strings.TrimSpace(in.Pulse) != "" {
		p, err := parseRequired("pulse", in.Pulse)
		if err != nil {
			return Fields{}, err
		}
		if p < 0 {
			return Fields{}, &ValidationError{Field: "pulse", Reason: "must not be negative"}
		}
		// 0 means not recorded
		if p > 0 {
			pulse = &p
		}
	}

	ts, err := parseTimestamp(in.Timestamp, loc, now)
	if err != nil {
		return Fields{}, err
	}

	return Fields{
		Timestamp: ts,
		Systolic:  systolic,
		Diastolic: diastolic,
		Pulse:     pulse,
		Note:      strings.TrimSpace(in.Note),
	}, nil
}

// Plausible reports whether the primary values fall in the physiologically
// plausible range.
func (f Fields) Plausible() bool {
	return f.Systolic >= MinPlausibleSystolic && f.Systolic <= MaxPlausibleSystolic &&
		f.Diastolic >= MinPlausibleDiastolic && f.Diastolic <= MaxPlausibleDiastolic
}

// NewReading builds a reading from validated fields.
func NewReading(id string, f Fields) *Reading {
	r := &Reading{
		ID:        id,
		Timestamp: CanonicalTime(f.Timestamp),
		Systolic:  f.Systolic,
		Diastolic: f.Diastolic,
		Note:      strings.TrimSpace(f.Note),
	}
	if f.Pulse != nil {
		p := *f.Pulse
		r.Pulse = &p
	}
	return r
}

// Clone returns a deep copy so callers never alias stored state.
func (r *Reading) Clone() *Reading {
	c := *r
	if r.Pulse != nil {
		p := *r.Pulse
		c.Pulse = &p
	}
	return &c
}

// Category classifies the reading
func (r *Reading) Category() Category {
	return Classify(r.Systolic, r.Diastolic)
}

// Input renders the reading back into form values, e.g. to prefill an edit.
func (r *Reading) Input(loc *time.Location) ReadingInput {
	in := ReadingInput{
		Timestamp: r.Timestamp.In(loc).Format(FormTimeLayout),
		Systolic:  strconv.Itoa(r.Systolic),
		Diastolic: strconv.Itoa(r.Diastolic),
		Note:      r.Note,
	}
	if r.Pulse != nil {
		in.Pulse = strconv.Itoa(*r.Pulse)
	}
	return in
}

// CanonicalTime normalizes t to UTC with millisecond precision, the
// resolution of the stored form.
func CanonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func parseRequired(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Field: field, Reason: "is required"}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: field, Reason: "must be a finite number"}
	}
	if v != math.Trunc(v) {
		return 0, &ValidationError{Field: field, Reason: "must be a whole number"}
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, &ValidationError{Field: field, Reason: "is out of range"}
	}

	return int(v), nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	FormTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTimestamp(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return CanonicalTime(now), nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return CanonicalTime(t), nil
	}

	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return CanonicalTime(t), nil
		}
	}

	return time.Time{}, &ValidationError{Field: "timestamp", Reason: "is not a recognized date/time"}
}
