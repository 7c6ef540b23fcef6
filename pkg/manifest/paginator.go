package manifest

import (
	"encoding/json"
	"fmt"
)

// Paginator and pagination strategy discriminants.
const (
	TypeDefaultPaginator         = "DefaultPaginator"
	TypeNoPagination             = "NoPagination"
	TypeCursorPagination         = "CursorPagination"
	TypeOffsetIncrement          = "OffsetIncrement"
	TypePageIncrement            = "PageIncrement"
	TypeCustomPaginationStrategy = "CustomPaginationStrategy"
)

// Paginator follows multi-page responses.
type Paginator interface {
	PaginatorType() string
	isPaginator()
}

// DefaultPaginator pages using a strategy and request options.
type DefaultPaginator struct {
	PageTokenOption    *RequestOption     `json:"page_token_option,omitempty"`
	PageSizeOption     *RequestOption     `json:"page_size_option,omitempty"`
	PaginationStrategy PaginationStrategy `json:"pagination_strategy"`
	URLBase            string             `json:"url_base"`
}

// NoPagination marks a stream that issues a single page per slice.
type NoPagination struct{}

// UnknownPaginator holds a paginator of a kind this package does not model.
type UnknownPaginator struct {
	Kind   string
	Fields map[string]any
}

func (DefaultPaginator) PaginatorType() string   { return TypeDefaultPaginator }
func (NoPagination) PaginatorType() string       { return TypeNoPagination }
func (p UnknownPaginator) PaginatorType() string { return p.Kind }

func (DefaultPaginator) isPaginator() {}
func (NoPagination) isPaginator()     {}
func (UnknownPaginator) isPaginator() {}

func (p DefaultPaginator) MarshalJSON() ([]byte, error) {
	type alias DefaultPaginator
	return marshalTyped(TypeDefaultPaginator, alias(p))
}

func (p *DefaultPaginator) UnmarshalJSON(data []byte) error {
	type alias DefaultPaginator
	aux := struct {
		*alias
		PaginationStrategy json.RawMessage `json:"pagination_strategy"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	strategy, err := DecodePaginationStrategy(aux.PaginationStrategy)
	if err != nil {
		return fmt.Errorf("pagination_strategy: %w", err)
	}
	p.PaginationStrategy = strategy
	return nil
}

func (p NoPagination) MarshalJSON() ([]byte, error) {
	return marshalTyped(TypeNoPagination, struct{}{})
}

func (p UnknownPaginator) MarshalJSON() ([]byte, error) {
	return marshalUnknown(p.Kind, p.Fields)
}

// DecodePaginator decodes a paginator by its discriminant.
func DecodePaginator(data []byte) (Paginator, error) {
	if isNull(data) {
		return nil, nil
	}
	kind, err := peekType(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case TypeDefaultPaginator:
		var out DefaultPaginator
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return out, nil
	case TypeNoPagination:
		return NoPagination{}, nil
	default:
		fields, err := rawFields(data)
		if err != nil {
			return nil, err
		}
		return UnknownPaginator{Kind: kind, Fields: fields}, nil
	}
}

// PaginationStrategy computes the next page token.
type PaginationStrategy interface {
	StrategyType() string
	isPaginationStrategy()
}

// CursorPagination reads the next page token from the response.
type CursorPagination struct {
	CursorValue   string `json:"cursor_value"`
	StopCondition string `json:"stop_condition,omitempty"`
	PageSize      *int   `json:"page_size,omitempty"`
}

// OffsetIncrement advances an offset by the page size.
type OffsetIncrement struct {
	PageSize int `json:"page_size"`
}

// PageIncrement advances a page number.
type PageIncrement struct {
	PageSize      int  `json:"page_size"`
	StartFromPage *int `json:"start_from_page,omitempty"`
}

// CustomPaginationStrategy references a strategy implemented in code.
type CustomPaginationStrategy struct {
	ClassName string         `json:"class_name"`
	Extra     map[string]any `json:"-"`
}

// UnknownPaginationStrategy holds a strategy this package does not model.
type UnknownPaginationStrategy struct {
	Kind   string
	Fields map[string]any
}

func (CursorPagination) StrategyType() string            { return TypeCursorPagination }
func (OffsetIncrement) StrategyType() string             { return TypeOffsetIncrement }
func (PageIncrement) StrategyType() string               { return TypePageIncrement }
func (CustomPaginationStrategy) StrategyType() string    { return TypeCustomPaginationStrategy }
func (s UnknownPaginationStrategy) StrategyType() string { return s.Kind }

func (CursorPagination) isPaginationStrategy()          {}
func (OffsetIncrement) isPaginationStrategy()           {}
func (PageIncrement) isPaginationStrategy()             {}
func (CustomPaginationStrategy) isPaginationStrategy()  {}
func (UnknownPaginationStrategy) isPaginationStrategy() {}

func (s CursorPagination) MarshalJSON() ([]byte, error) {
	type alias CursorPagination
	return marshalTyped(TypeCursorPagination, alias(s))
}

func (s OffsetIncrement) MarshalJSON() ([]byte, error) {
	type alias OffsetIncrement
	return marshalTyped(TypeOffsetIncrement, alias(s))
}

func (s PageIncrement) MarshalJSON() ([]byte, error) {
	type alias PageIncrement
	return marshalTyped(TypePageIncrement, alias(s))
}

func (s CustomPaginationStrategy) MarshalJSON() ([]byte, error) {
	type alias CustomPaginationStrategy
	return marshalTypedExtra(TypeCustomPaginationStrategy, alias(s), s.Extra)
}

func (s *CustomPaginationStrategy) UnmarshalJSON(data []byte) error {
	type alias CustomPaginationStrategy
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

func (s UnknownPaginationStrategy) MarshalJSON() ([]byte, error) {
	return marshalUnknown(s.Kind, s.Fields)
}

// DecodePaginationStrategy decodes a pagination strategy by its discriminant.
func DecodePaginationStrategy(data []byte) (PaginationStrategy, error) {
	if isNull(data) {
		return nil, nil
	}
	kind, err := peekType(data)
	if err != nil {
		return nil, err
	}

	var strategy PaginationStrategy
	switch kind {
	case TypeCursorPagination:
		var out CursorPagination
		err = json.Unmarshal(data, &out)
		strategy = out
	case TypeOffsetIncrement:
		var out OffsetIncrement
		err = json.Unmarshal(data, &out)
		strategy = out
	case TypePageIncrement:
		var out PageIncrement
		err = json.Unmarshal(data, &out)
		strategy = out
	case TypeCustomPaginationStrategy:
		var out CustomPaginationStrategy
		err = json.Unmarshal(data, &out)
		strategy = out
	default:
		fields, rawErr := rawFields(data)
		if rawErr != nil {
			return nil, rawErr
		}
		return UnknownPaginationStrategy{Kind: kind, Fields: fields}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return strategy, nil
}
