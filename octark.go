// Package octark reads, writes and repairs the binary save files of the
// DPS-1 sampler/sequencer: project files, bank files, arrangement files and
// the per-sample attribute files kept beside audio files. The layouts are
// reverse-engineered, so every field whose meaning is unknown is carried as
// raw bytes and preserved verbatim across a decode/encode round trip,
// including the trailing checksums whose algorithm the device never
// documented.
package octark

import (
	"errors"
	"fmt"
)

// Counts of the fixed containers of a project. The device numbers all of
// them starting from 1; in-memory arrays are of course 0-based.
const (
	NumBanks         = 16
	NumPatterns      = 16 // per bank
	NumParts         = 4  // per bank, saved and unsaved each
	NumTracks        = 8  // audio tracks; there are as many midi tracks
	NumSteps         = 64 // per track
	NumArrangements  = 8
	NumStaticSlots   = 128
	NumFlexSlots     = 128
	NumRecorderSlots = 8
)

var (
	// ErrMalformed indicates that a byte buffer did not decode as the
	// requested record type: its length differed from the declared size of
	// the type, or a header magic did not match.
	ErrMalformed = errors.New("malformed data")

	// ErrInvalidIndex indicates a 1-based bank, pattern, part, track or
	// arrangement index outside its valid range.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrMissingIndex indicates that a caller supplied no indexes at all
	// where at least one was required.
	ErrMissingIndex = errors.New("missing index")

	// ErrNotAFile indicates that a path expected to name a regular file
	// named a directory instead.
	ErrNotAFile = errors.New("not a file")

	// ErrNotADirectory indicates that a path expected to name a directory
	// named a regular file instead.
	ErrNotADirectory = errors.New("not a directory")
)

// ValidateIndexList checks that indexes contains at least one index and that
// every index is within 1..max. It is meant to be called before any file is
// touched, so that a bad selection causes no I/O at all.
func ValidateIndexList(indexes []int, max int) error {
	if len(indexes) == 0 {
		return fmt.Errorf("%w: no indexes given", ErrMissingIndex)
	}
	for _, index := range indexes {
		if index < 1 || index > max {
			return fmt.Errorf("%w: %v is outside 1-%v", ErrInvalidIndex, index, max)
		}
	}
	return nil
}
