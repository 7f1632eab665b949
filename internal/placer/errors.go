package placer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDeviceSelected is returned when the request carries no destination root.
	ErrNoDeviceSelected = errors.New("no device selected")
	// ErrDeviceUnavailable is returned when the destination root is missing or
	// the program folder cannot be created.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrInvalidRequest is returned for a program or bank outside 1-4.
	ErrInvalidRequest = errors.New("invalid build request")
	// ErrBusy is returned when another build holds the destination lock.
	ErrBusy = errors.New("another build is writing to this device")

	// ErrSourceRead marks a slot whose source could not be opened or read.
	ErrSourceRead = errors.New("source read error")
	// ErrDestinationWrite marks a slot whose destination could not be written.
	ErrDestinationWrite = errors.New("destination write error")
)

// SlotError describes a failure confined to one slot. It matches both its
// kind (ErrSourceRead or ErrDestinationWrite) and the underlying cause under
// errors.Is.
type SlotError struct {
	Slot        int
	Source      string
	Destination string
	Kind        error
	Err         error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("slot %d (%s): %v: %v", e.Slot+1, e.Source, e.Kind, e.Err)
}

func (e *SlotError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
