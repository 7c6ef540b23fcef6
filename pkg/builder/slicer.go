package builder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// StreamSlicer is the form's optional per stream slicer. Besides
// SubstreamSlicer and CartesianProductSlicer, any manifest slicer variant is
// carried through unchanged (DatetimeStreamSlicer and ListStreamSlicer in
// practice).
type StreamSlicer interface {
	SlicerType() string
}

// SubstreamSlicer references its parent stream by id instead of embedding it.
type SubstreamSlicer struct {
	ParentKey             string                  `json:"parent_key"`
	StreamSliceField      string                  `json:"stream_slice_field"`
	ParentStreamReference string                  `json:"parentStreamReference"`
	RequestOption         *manifest.RequestOption `json:"request_option,omitempty"`
}

func (SubstreamSlicer) SlicerType() string { return manifest.TypeSubstreamSlicer }

func (s SubstreamSlicer) MarshalJSON() ([]byte, error) {
	type alias SubstreamSlicer
	return manifest.MarshalWithType(manifest.TypeSubstreamSlicer, alias(s))
}

// CartesianProductSlicer combines sub-slicers. Entries may not themselves be
// CartesianProductSlicers.
type CartesianProductSlicer struct {
	StreamSlicers []StreamSlicer `json:"stream_slicers"`
}

func (CartesianProductSlicer) SlicerType() string {
	return manifest.TypeCartesianProductStreamSlicer
}

func (s CartesianProductSlicer) MarshalJSON() ([]byte, error) {
	type alias CartesianProductSlicer
	out := alias(s)
	if out.StreamSlicers == nil {
		out.StreamSlicers = []StreamSlicer{}
	}
	return manifest.MarshalWithType(manifest.TypeCartesianProductStreamSlicer, out)
}

func (s *CartesianProductSlicer) UnmarshalJSON(data []byte) error {
	var aux struct {
		StreamSlicers []json.RawMessage `json:"stream_slicers"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.StreamSlicers = make([]StreamSlicer, 0, len(aux.StreamSlicers))
	for idx, raw := range aux.StreamSlicers {
		slicer, err := decodeSlicer(raw, false)
		if err != nil {
			return fmt.Errorf("stream_slicers[%d]: %w", idx, err)
		}
		if slicer == nil {
			return fmt.Errorf("stream_slicers[%d]: slicer is null", idx)
		}
		s.StreamSlicers = append(s.StreamSlicers, slicer)
	}
	return nil
}

// ErrNestedCartesian is returned when a CartesianProductSlicer is nested in
// another one.
var ErrNestedCartesian = errors.New("CartesianProductStreamSlicer cannot be nested in another CartesianProductStreamSlicer")

// DecodeStreamSlicer decodes a form slicer. A null or empty payload yields a
// nil StreamSlicer.
func DecodeStreamSlicer(data []byte) (StreamSlicer, error) {
	return decodeSlicer(data, true)
}

func decodeSlicer(data []byte, allowCartesian bool) (StreamSlicer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case manifest.TypeSubstreamSlicer:
		var out SubstreamSlicer
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", probe.Type, err)
		}
		return out, nil
	case manifest.TypeCartesianProductStreamSlicer:
		if !allowCartesian {
			return nil, ErrNestedCartesian
		}
		var out CartesianProductSlicer
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", probe.Type, err)
		}
		return out, nil
	}

	slicer, err := manifest.DecodeStreamSlicer(trimmed)
	if err != nil {
		return nil, err
	}
	return slicer, nil
}
