package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	pulse := 64
	readings := []*Reading{
		{ID: "a", Timestamp: time.Date(2024, 2, 1, 7, 5, 0, 250_000_000, time.UTC), Systolic: 118, Diastolic: 76, Pulse: &pulse, Note: "morning"},
		{ID: "b", Timestamp: time.Date(2024, 2, 2, 21, 40, 0, 0, time.UTC), Systolic: 142, Diastolic: 91},
	}

	blob, err := EncodeReadings(readings)
	if err != nil {
		t.Fatalf("EncodeReadings failed: %v", err)
	}

	got, err := DecodeReadings(blob)
	if err != nil {
		t.Fatalf("DecodeReadings failed: %v", err)
	}
	if diff := cmp.Diff(readings, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeReadings_StoredShape(t *testing.T) {
	readings := []*Reading{
		{ID: "a", Timestamp: time.Date(2024, 2, 1, 7, 5, 0, 0, time.UTC), Systolic: 118, Diastolic: 76},
	}

	blob, err := EncodeReadings(readings)
	if err != nil {
		t.Fatalf("EncodeReadings failed: %v", err)
	}

	want := `[{"id":"a","dateTime":"2024-02-01T07:05:00.000Z","systolic":118,"diastolic":76,"pulse":null}]`
	if string(blob) != want {
		t.Errorf("got %s, want %s", blob, want)
	}
}

func TestDecodeReadings_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "not json", blob: "{not json"},
		{name: "wrong shape", blob: `{"id":"a"}`},
		{name: "missing systolic", blob: `[{"id":"a","dateTime":"2024-01-01T00:00:00.000Z","diastolic":80}]`},
		{name: "non-numeric diastolic", blob: `[{"id":"a","dateTime":"2024-01-01T00:00:00.000Z","systolic":120,"diastolic":"80"}]`},
		{name: "missing id", blob: `[{"dateTime":"2024-01-01T00:00:00.000Z","systolic":120,"diastolic":80}]`},
		{name: "duplicate id", blob: `[{"id":"a","dateTime":"2024-01-01T00:00:00.000Z","systolic":120,"diastolic":80},{"id":"a","dateTime":"2024-01-02T00:00:00.000Z","systolic":121,"diastolic":81}]`},
		{name: "bad timestamp", blob: `[{"id":"a","dateTime":"yesterday","systolic":120,"diastolic":80}]`},
		{name: "huge systolic", blob: `[{"id":"a","dateTime":"2024-01-01T00:00:00.000Z","systolic":1e300,"diastolic":80}]`},
		{name: "huge negative diastolic", blob: `[{"id":"a","dateTime":"2024-01-01T00:00:00.000Z","systolic":120,"diastolic":-1e20}]`},
		{name: "systolic past int32", blob: `[{"id":"a","dateTime":"2024-01-01T00:00:00.000Z","systolic":2147483648,"diastolic":80}]`},
		{name: "huge pulse", blob: `[{"id":"a","dateTime":"2024-01-01T00:00:00.000Z","systolic":120,"diastolic":80,"pulse":1e300}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReadings([]byte(tt.blob))
			if !errors.Is(err, ErrPersistenceCorrupt) {
				t.Errorf("expected ErrPersistenceCorrupt, got %v", err)
			}
		})
	}
}

func TestDecodeReadings_LegacyValues(t *testing.T) {
	blob := `[{"id":"a","dateTime":"2024-01-01T09:30:00.000Z","systolic":120,"diastolic":80,"pulse":null,"note":"  "}]`

	got, err := DecodeReadings([]byte(blob))
	if err != nil {
		t.Fatalf("DecodeReadings failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(got))
	}
	if got[0].Pulse != nil {
		t.Errorf("null pulse should decode as absent")
	}
	if got[0].Note != "" {
		t.Errorf("blank note should decode as absent, got %q", got[0].Note)
	}
}

func TestDecodeReadings_ZeroPulseMeansNotRecorded(t *testing.T) {
	tests := []struct {
		name      string
		pulse     string
		wantPulse *int
	}{
		{name: "zero", pulse: "0"},
		{name: "rounds to zero", pulse: "0.4"},
		{name: "negative", pulse: "-3"},
		{name: "recorded", pulse: "71", wantPulse: func() *int { p := 71; return &p }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := `[{"id":"a","dateTime":"2024-01-01T09:30:00.000Z","systolic":120,"diastolic":80,"pulse":` + tt.pulse + `}]`

			got, err := DecodeReadings([]byte(blob))
			if err != nil {
				t.Fatalf("DecodeReadings failed: %v", err)
			}
			if diff := cmp.Diff(tt.wantPulse, got[0].Pulse); diff != "" {
				t.Errorf("pulse mismatch (-want +got):\n%s", diff)
			}

			rows := BuildExportRows(got, time.UTC)
			if diff := cmp.Diff(tt.wantPulse, rows[0].Pulse); diff != "" {
				t.Errorf("export pulse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeReadings_Int32Bounds(t *testing.T) {
	blob := `[{"id":"a","dateTime":"2024-01-01T09:30:00.000Z","systolic":2147483647,"diastolic":-2147483648}]`

	got, err := DecodeReadings([]byte(blob))
	if err != nil {
		t.Fatalf("values at the int32 bounds should decode: %v", err)
	}
	if got[0].Systolic != math.MaxInt32 || got[0].Diastolic != math.MinInt32 {
		t.Errorf("got %d/%d", got[0].Systolic, got[0].Diastolic)
	}
}
