package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// StoredTimeLayout is the canonical textual form of Reading.Timestamp.
const StoredTimeLayout = "2006-01-02T15:04:05.000Z"

// storedReading is the on-disk shape of one record.
type storedReading struct {
	ID        string   `json:"id"`
	DateTime  string   `json:"dateTime"`
	Systolic  *float64 `json:"systolic"`
	Diastolic *float64 `json:"diastolic"`
	Pulse     *float64 `json:"pulse"`
	Note      string   `json:"note,omitempty"`
}

// EncodeReadings serializes the collection as a single JSON array.
func EncodeReadings(readings []*Reading) ([]byte, error) {
	out := make([]storedReading, len(readings))
	for i, r := range readings {
		sys := float64(r.Systolic)
		dia := float64(r.Diastolic)
		rec := storedReading{
			ID:        r.ID,
			DateTime:  r.Timestamp.UTC().Format(StoredTimeLayout),
			Systolic:  &sys,
			Diastolic: &dia,
			Note:      r.Note,
		}
		if r.Pulse != nil {
			p := float64(*r.Pulse)
			rec.Pulse = &p
		}
		out[i] = rec
	}
	return json.Marshal(out)
}

// DecodeReadings parses a blob written by EncodeReadings. Any record that
// breaks a collection invariant makes the whole blob corrupt.
func DecodeReadings(blob []byte) ([]*Reading, error) {
	var stored []storedReading
	if err := json.Unmarshal(blob, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}

	readings := make([]*Reading, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for i, rec := range stored {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrPersistenceCorrupt, i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrPersistenceCorrupt, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		if !usable(rec.Systolic) || !usable(rec.Diastolic) {
			return nil, fmt.Errorf("%w: record %q is missing a primary value", ErrPersistenceCorrupt, rec.ID)
		}
		if !inRange(rec.Systolic) || !inRange(rec.Diastolic) || (usable(rec.Pulse) && !inRange(rec.Pulse)) {
			return nil, fmt.Errorf("%w: record %q has a value out of range", ErrPersistenceCorrupt, rec.ID)
		}

		ts, err := time.Parse(time.RFC3339Nano, rec.DateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: record %q has bad dateTime: %v", ErrPersistenceCorrupt, rec.ID, err)
		}

		r := &Reading{
			ID:        rec.ID,
			Timestamp: CanonicalTime(ts),
			Systolic:  int(math.Round(*rec.Systolic)),
			Diastolic: int(math.Round(*rec.Diastolic)),
			Note:      strings.TrimSpace(rec.Note),
		}
		// Older blobs store a blank pulse as 0.
		if usable(rec.Pulse) && math.Round(*rec.Pulse) > 0 {
			p := int(math.Round(*rec.Pulse))
			r.Pulse = &p
		}
		readings = append(readings, r)
	}

	return readings, nil
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// inRange reports whether the rounded value fits the bounds Validate accepts
func inRange(v *float64) bool {
	r := math.Round(*v)
	return r >= math.MinInt32 && r <= math.MaxInt32
}
