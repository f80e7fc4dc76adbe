package tileset

import (
	"errors"
	"fmt"
)

// ErrInvalidTopology reports a tile mesh whose boundary cannot be turned
// into face loops. The caller must fix or drop the offending tile.
var ErrInvalidTopology = errors.New("invalid topology")

// ErrUngroupedCatalogue reports a catalogue that is not made of groups of
// four yaw rotations.
var ErrUngroupedCatalogue = errors.New("catalogue is not grouped in yaw rotations")

// TopologyError pins an ErrInvalidTopology to a catalogue entry.
type TopologyError struct {
	Entry  int
	Reason string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("tileset: entry %d: %s: %s", e.Entry, ErrInvalidTopology, e.Reason)
}

func (e *TopologyError) Unwrap() error {
	return ErrInvalidTopology
}

func topologyErrorf(entry int, format string, args ...any) error {
	return &TopologyError{Entry: entry, Reason: fmt.Sprintf(format, args...)}
}
