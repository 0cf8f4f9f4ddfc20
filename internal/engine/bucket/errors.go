package bucket

import "errors"

var (
	// ErrCapacity is returned when the unit store cannot grow any further.
	ErrCapacity = errors.New("unit store full")
	// ErrInvalidSource is returned for a source handle that is not live.
	ErrInvalidSource = errors.New("invalid source handle")
	// ErrNilLayout is returned when a source is registered without a layout.
	ErrNilLayout = errors.New("nil layout")
	// ErrNilBinding is returned when a unit is inserted without a binding.
	ErrNilBinding = errors.New("nil binding")
	// ErrUnknownSortOrder is returned by ParseSortOrder.
	ErrUnknownSortOrder = errors.New("unknown sort order")
)
