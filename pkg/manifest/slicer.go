package manifest

import (
	"encoding/json"
	"fmt"
)

// Stream slicer discriminants.
const (
	TypeDatetimeStreamSlicer         = "DatetimeStreamSlicer"
	TypeListStreamSlicer             = "ListStreamSlicer"
	TypeSubstreamSlicer              = "SubstreamSlicer"
	TypeCartesianProductStreamSlicer = "CartesianProductStreamSlicer"
	TypeSingleSlice                  = "SingleSlice"
	TypeCustomStreamSlicer           = "CustomStreamSlicer"
)

// StreamSlicer partitions a stream into repeated request slices.
type StreamSlicer interface {
	SlicerType() string
	isStreamSlicer()
}

// DatetimeStreamSlicer slices a stream into time windows.
type DatetimeStreamSlicer struct {
	CursorField           string         `json:"cursor_field"`
	DatetimeFormat        string         `json:"datetime_format"`
	StartDatetime         DatetimeBound  `json:"start_datetime"`
	EndDatetime           DatetimeBound  `json:"end_datetime"`
	Step                  string         `json:"step"`
	StartTimeOption       *RequestOption `json:"start_time_option,omitempty"`
	EndTimeOption         *RequestOption `json:"end_time_option,omitempty"`
	StreamStateFieldStart string         `json:"stream_state_field_start,omitempty"`
	StreamStateFieldEnd   string         `json:"stream_state_field_end,omitempty"`
	LookbackWindow        string         `json:"lookback_window,omitempty"`
	Extra                 map[string]any `json:"-"`
}

// ListStreamSlicer issues one slice per listed value.
type ListStreamSlicer struct {
	CursorField   string         `json:"cursor_field"`
	SliceValues   SliceValues    `json:"slice_values"`
	RequestOption *RequestOption `json:"request_option,omitempty"`
	Extra         map[string]any `json:"-"`
}

// SubstreamSlicer issues one slice per record of each parent stream.
type SubstreamSlicer struct {
	ParentStreamConfigs []ParentStreamConfig `json:"parent_stream_configs"`
}

// ParentStreamConfig embeds a fully expanded parent stream definition.
type ParentStreamConfig struct {
	ParentKey        string            `json:"parent_key"`
	StreamSliceField string            `json:"stream_slice_field"`
	RequestOption    *RequestOption    `json:"request_option,omitempty"`
	Stream           DeclarativeStream `json:"stream"`
}

// CartesianProductStreamSlicer combines the slices of several slicers.
type CartesianProductStreamSlicer struct {
	StreamSlicers []StreamSlicer `json:"stream_slicers"`
}

// SingleSlice issues exactly one slice.
type SingleSlice struct{}

// CustomStreamSlicer references a slicer implemented in code.
type CustomStreamSlicer struct {
	ClassName string         `json:"class_name"`
	Extra     map[string]any `json:"-"`
}

// UnknownStreamSlicer holds a slicer of a kind this package does not model.
type UnknownStreamSlicer struct {
	Kind   string
	Fields map[string]any
}

func (DatetimeStreamSlicer) SlicerType() string         { return TypeDatetimeStreamSlicer }
func (ListStreamSlicer) SlicerType() string             { return TypeListStreamSlicer }
func (SubstreamSlicer) SlicerType() string              { return TypeSubstreamSlicer }
func (CartesianProductStreamSlicer) SlicerType() string { return TypeCartesianProductStreamSlicer }
func (SingleSlice) SlicerType() string                  { return TypeSingleSlice }
func (CustomStreamSlicer) SlicerType() string           { return TypeCustomStreamSlicer }
func (s UnknownStreamSlicer) SlicerType() string        { return s.Kind }

func (DatetimeStreamSlicer) isStreamSlicer()         {}
func (ListStreamSlicer) isStreamSlicer()             {}
func (SubstreamSlicer) isStreamSlicer()              {}
func (CartesianProductStreamSlicer) isStreamSlicer() {}
func (SingleSlice) isStreamSlicer()                  {}
func (CustomStreamSlicer) isStreamSlicer()           {}
func (UnknownStreamSlicer) isStreamSlicer()          {}

func (s DatetimeStreamSlicer) MarshalJSON() ([]byte, error) {
	type alias DatetimeStreamSlicer
	return marshalTypedExtra(TypeDatetimeStreamSlicer, alias(s), s.Extra)
}

func (s *DatetimeStreamSlicer) UnmarshalJSON(data []byte) error {
	type alias DatetimeStreamSlicer
	extra, err := decodeExtra(data, (*alias)(s))
	if err != nil {
		return err
	}
	s.Extra = extra
	return nil
}

func (s ListStreamSlicer) MarshalJSON() ([]byte, error) {
	type alias ListStreamSlicer
	return marshalTypedExtra(TypeListStreamSlicer, alias(s), s.Extra)
}

func (s *ListStreamSlicer) UnmarshalJSON(data []byte) error {
	type alias ListStreamSlicer
	extra, err := decodeExtra(data, (*alias)(s))
	if err != nil {
		return err
	}
	s.Extra = extra
	return nil
}

func (s SubstreamSlicer) MarshalJSON() ([]byte, error) {
	type alias SubstreamSlicer
	out := alias(s)
	if out.ParentStreamConfigs == nil {
		out.ParentStreamConfigs = []ParentStreamConfig{}
	}
	return marshalTyped(TypeSubstreamSlicer, out)
}

func (c ParentStreamConfig) MarshalJSON() ([]byte, error) {
	type alias ParentStreamConfig
	return marshalTyped(TypeParentStreamConfig, alias(c))
}

func (s CartesianProductStreamSlicer) MarshalJSON() ([]byte, error) {
	type alias CartesianProductStreamSlicer
	out := alias(s)
	if out.StreamSlicers == nil {
		out.StreamSlicers = []StreamSlicer{}
	}
	return marshalTyped(TypeCartesianProductStreamSlicer, out)
}

func (s *CartesianProductStreamSlicer) UnmarshalJSON(data []byte) error {
	var aux struct {
		StreamSlicers []json.RawMessage `json:"stream_slicers"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.StreamSlicers = make([]StreamSlicer, 0, len(aux.StreamSlicers))
	for idx, raw := range aux.StreamSlicers {
		slicer, err := DecodeStreamSlicer(raw)
		if err != nil {
			return fmt.Errorf("stream_slicers[%d]: %w", idx, err)
		}
		s.StreamSlicers = append(s.StreamSlicers, slicer)
	}
	return nil
}

func (s SingleSlice) MarshalJSON() ([]byte, error) {
	return marshalTyped(TypeSingleSlice, struct{}{})
}

func (s CustomStreamSlicer) MarshalJSON() ([]byte, error) {
	type alias CustomStreamSlicer
	return marshalTypedExtra(TypeCustomStreamSlicer, alias(s), s.Extra)
}

func (s *CustomStreamSlicer) UnmarshalJSON(data []byte) error {
	type alias CustomStreamSlicer
	if err := json.Unmarshal(data, (*alias)(s)); err != nil {
		return err
	}
	extra, err := extraFields(data, "class_name")
	if err != nil {
		return err
	}
	s.Extra = extra
	return nil
}

func (s UnknownStreamSlicer) MarshalJSON() ([]byte, error) {
	return marshalUnknown(s.Kind, s.Fields)
}

// DecodeStreamSlicer decodes a stream slicer by its discriminant. A null or
// empty payload yields a nil StreamSlicer.
func DecodeStreamSlicer(data []byte) (StreamSlicer, error) {
	if isNull(data) {
		return nil, nil
	}
	kind, err := peekType(data)
	if err != nil {
		return nil, err
	}

	var slicer StreamSlicer
	switch kind {
	case TypeDatetimeStreamSlicer:
		var out DatetimeStreamSlicer
		err = json.Unmarshal(data, &out)
		slicer = out
	case TypeListStreamSlicer:
		var out ListStreamSlicer
		err = json.Unmarshal(data, &out)
		slicer = out
	case TypeSubstreamSlicer:
		var out SubstreamSlicer
		err = json.Unmarshal(data, &out)
		slicer = out
	case TypeCartesianProductStreamSlicer:
		var out CartesianProductStreamSlicer
		err = json.Unmarshal(data, &out)
		slicer = out
	case TypeSingleSlice:
		return SingleSlice{}, nil
	case TypeCustomStreamSlicer:
		var out CustomStreamSlicer
		err = json.Unmarshal(data, &out)
		slicer = out
	default:
		fields, rawErr := rawFields(data)
		if rawErr != nil {
			return nil, rawErr
		}
		return UnknownStreamSlicer{Kind: kind, Fields: fields}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return slicer, nil
}

// DatetimeBound is a slicer start or end: either an interpolated datetime
// string or a MinMaxDatetime object.
type DatetimeBound struct {
	Value  string
	MinMax *MinMaxDatetime
}

// MinMaxDatetime clamps an interpolated datetime between two bounds.
type MinMaxDatetime struct {
	Datetime       string `json:"datetime"`
	DatetimeFormat string `json:"datetime_format,omitempty"`
	MinDatetime    string `json:"min_datetime,omitempty"`
	MaxDatetime    string `json:"max_datetime,omitempty"`
}

func (m MinMaxDatetime) MarshalJSON() ([]byte, error) {
	type alias MinMaxDatetime
	return marshalTyped(TypeMinMaxDatetime, alias(m))
}

func (b DatetimeBound) MarshalJSON() ([]byte, error) {
	if b.MinMax != nil {
		return json.Marshal(b.MinMax)
	}
	return json.Marshal(b.Value)
}

func (b *DatetimeBound) UnmarshalJSON(data []byte) error {
	*b = DatetimeBound{}
	if isNull(data) {
		return nil
	}
	if err := json.Unmarshal(data, &b.Value); err == nil {
		return nil
	}
	var minMax MinMaxDatetime
	if err := json.Unmarshal(data, &minMax); err != nil {
		return fmt.Errorf("datetime must be a string or a MinMaxDatetime: %w", err)
	}
	b.MinMax = &minMax
	return nil
}

// SliceValues is either a literal list of values or an interpolated string
// that evaluates to a list.
type SliceValues struct {
	Values     []string
	Expression string
}

func (v SliceValues) MarshalJSON() ([]byte, error) {
	if v.Expression != "" {
		return json.Marshal(v.Expression)
	}
	if v.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Values)
}

func (v *SliceValues) UnmarshalJSON(data []byte) error {
	*v = SliceValues{}
	if isNull(data) {
		return nil
	}
	if err := json.Unmarshal(data, &v.Expression); err == nil {
		return nil
	}
	v.Values = []string{}
	return json.Unmarshal(data, &v.Values)
}
