package fanin

import "fmt"

// An InvalidSizeError is returned when a buffer cannot be
// reduced because of its length.
type InvalidSizeError struct {
	Size   int
	Reason string
}

// Error returns a description of the bad size.
func (i *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid buffer size %d: %s", i.Size, i.Reason)
}

// An IndexOutOfRangeError is returned when a worker's
// base or partner index falls outside of the buffer.
//
// This only happens when non-power-of-two sizes are
// allowed.
type IndexOutOfRangeError struct {
	Round  int
	Worker int
	Index  int
	Len    int
}

// Error returns a description of the bad access.
func (i *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("round %d: worker %d: index %d out of range for buffer of length %d",
		i.Round, i.Worker, i.Index, i.Len)
}
