package grpc

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/jinwsy/blood-pressure/internal/domain"
	"github.com/jinwsy/blood-pressure/internal/export"
)

// Store is the part of the reading store exposed over the bridge
type Store interface {
	Create(ctx context.Context, in domain.ReadingInput) (*domain.Reading, error)
	Update(ctx context.Context, id string, in domain.ReadingInput) (*domain.Reading, error)
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
	Get(ctx context.Context, id string) (*domain.Reading, error)
	List() []*domain.Reading
	Stats() domain.Stats
	ExportRows() []domain.ExportRow
	ChartSeries() domain.ChartSeries
	Location() *time.Location
}

// ReadingServiceHandler implements the gRPC ReadingService.
// The bridge is unconditional: confirming destructive actions is the UI's job.
type ReadingServiceHandler struct {
	store Store
}

// NewReadingServiceHandler creates a new gRPC handler
func NewReadingServiceHandler(store Store) *ReadingServiceHandler {
	return &ReadingServiceHandler{store: store}
}

// CreateReading validates raw form fields and stores a new reading
func (h *ReadingServiceHandler) CreateReading(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	log.Info().Msg("CreateReading called")

	reading, err := h.store.Create(ctx, inputFromStruct(req))
	if err != nil {
		return nil, toStatus(err, "failed to create reading")
	}

	return h.readingToStruct(reading), nil
}

// UpdateReading overwrites the reading named by the "id" field
func (h *ReadingServiceHandler) UpdateReading(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := fieldString(req, "id")
	log.Info().Str("id", id).Msg("UpdateReading called")

	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	reading, err := h.store.Update(ctx, id, inputFromStruct(req))
	if err != nil {
		return nil, toStatus(err, "failed to update reading")
	}

	return h.readingToStruct(reading), nil
}

// DeleteReading removes a reading; a missing id reports false, not an error
func (h *ReadingServiceHandler) DeleteReading(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	log.Info().Str("id", req.GetValue()).Msg("DeleteReading called")

	deleted, err := h.store.Delete(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err, "failed to delete reading")
	}

	return wrapperspb.Bool(deleted), nil
}

// ClearReadings removes every reading
func (h *ReadingServiceHandler) ClearReadings(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	log.Info().Msg("ClearReadings called")

	if err := h.store.Clear(ctx); err != nil {
		return nil, toStatus(err, "failed to clear readings")
	}

	return &emptypb.Empty{}, nil
}

// GetReading returns one reading, e.g. to prefill an edit form
func (h *ReadingServiceHandler) GetReading(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	reading, err := h.store.Get(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err, "failed to get reading")
	}

	return h.readingToStruct(reading), nil
}

// ListReadings returns all readings newest first
func (h *ReadingServiceHandler) ListReadings(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	readings := h.store.List()

	values := make([]*structpb.Value, len(readings))
	for i, r := range readings {
		values[i] = structpb.NewStructValue(h.readingToStruct(r))
	}

	return &structpb.ListValue{Values: values}, nil
}

// GetStats returns aggregate statistics; averages and lastCategory are
// null when there are no readings
func (h *ReadingServiceHandler) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats := h.store.Stats()

	fields := map[string]*structpb.Value{
		"count":        structpb.NewNumberValue(float64(stats.Count)),
		"avgSystolic":  optionalNumber(stats.AvgSystolic),
		"avgDiastolic": optionalNumber(stats.AvgDiastolic),
		"lastCategory": structpb.NewNullValue(),
		"lastTier":     structpb.NewNullValue(),
	}
	if stats.LastCategory != nil {
		fields["lastCategory"] = structpb.NewStringValue(stats.LastCategory.String())
		fields["lastTier"] = structpb.NewStringValue(string(stats.LastCategory.Tier()))
	}

	return &structpb.Struct{Fields: fields}, nil
}

// GetExportRows returns the header followed by newest-first rows, one
// list of six strings each
func (h *ReadingServiceHandler) GetExportRows(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	rows := h.store.ExportRows()

	values := make([]*structpb.Value, 0, len(rows)+1)
	values = append(values, stringList(domain.ExportHeader))
	for _, row := range rows {
		values = append(values, stringList(export.Cells(row)))
	}

	return &structpb.ListValue{Values: values}, nil
}

// GetChartSeries returns oldest-first labels and values
func (h *ReadingServiceHandler) GetChartSeries(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	series := h.store.ChartSeries()

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"labels":    stringList(series.Labels),
		"systolic":  numberList(series.Systolic),
		"diastolic": numberList(series.Diastolic),
	}}, nil
}

// readingToStruct converts domain model to protobuf
func (h *ReadingServiceHandler) readingToStruct(r *domain.Reading) *structpb.Struct {
	category := r.Category()
	fields := map[string]*structpb.Value{
		"id":        structpb.NewStringValue(r.ID),
		"timestamp": structpb.NewStringValue(r.Timestamp.UTC().Format(domain.StoredTimeLayout)),
		"display":   structpb.NewStringValue(r.Timestamp.In(h.store.Location()).Format(domain.DisplayTimeLayout)),
		"systolic":  structpb.NewNumberValue(float64(r.Systolic)),
		"diastolic": structpb.NewNumberValue(float64(r.Diastolic)),
		"pulse":     structpb.NewNullValue(),
		"note":      structpb.NewNullValue(),
		"category":  structpb.NewStringValue(category.String()),
		"tier":      structpb.NewStringValue(string(category.Tier())),
	}
	if r.Pulse != nil {
		fields["pulse"] = structpb.NewNumberValue(float64(*r.Pulse))
	}
	if r.Note != "" {
		fields["note"] = structpb.NewStringValue(r.Note)
	}
	return &structpb.Struct{Fields: fields}
}

// inputFromStruct reads raw form fields; numbers and strings are both accepted
func inputFromStruct(s *structpb.Struct) domain.ReadingInput {
	return domain.ReadingInput{
		Timestamp: fieldString(s, "timestamp"),
		Systolic:  fieldString(s, "systolic"),
		Diastolic: fieldString(s, "diastolic"),
		Pulse:     fieldString(s, "pulse"),
		Note:      fieldString(s, "note"),
	}
}

func fieldString(s *structpb.Struct, name string) string {
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue)
	}
	return ""
}

func optionalNumber(v *float64) *structpb.Value {
	if v == nil {
		return structpb.NewNullValue()
	}
	return structpb.NewNumberValue(*v)
}

func stringList(items []string) *structpb.Value {
	values := make([]*structpb.Value, len(items))
	for i, s := range items {
		values[i] = structpb.NewStringValue(s)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func numberList(items []int) *structpb.Value {
	values := make([]*structpb.Value, len(items))
	for i, n := range items {
		values[i] = structpb.NewNumberValue(float64(n))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

// toStatus maps store errors onto gRPC codes
func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrReadingNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrPersistenceWrite):
		log.Error().Err(err).Msg(msg)
		return status.Error(codes.Unavailable, msg)
	}
	log.Error().Err(err).Msg(msg)
	return status.Error(codes.Internal, msg)
}
