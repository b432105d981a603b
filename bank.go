package octark

import "fmt"

type (
	// Bank is one of the 16 per-project containers of sequence data: 16
	// patterns and 4 parts, the parts both in their saved form and in their
	// possibly edited, unsaved form. The trailing checksum is opaque and
	// preserved verbatim; the device recomputes it by an unknown algorithm.
	Bank struct {
		Header    [22]byte
		Patterns  [NumPatterns]Pattern
		Parts     Parts
		Unknown   [5]byte
		PartNames [NumParts][7]byte
		Checksum  [2]byte
	}

	// Parts holds the saved snapshots and the current unsaved state of the
	// four parts of a bank. Both halves reference sample slots, so both are
	// rewritten when slots are deduplicated.
	Parts struct {
		Saved   [NumParts]Part
		Unsaved [NumParts]Part
	}

	// Part is a snapshot of the per-track machine and mixing settings of all
	// 8 audio tracks. The two large trailing blocks are undocumented and
	// preserved as raw bytes.
	Part struct {
		Header         [4]byte
		Machines       [NumTracks]MachineSlot
		TrackVolumes   [NumTracks]uint8
		FX1Types       [NumTracks]uint8
		FX2Types       [NumTracks]uint8
		PlaybackParams [NumTracks][6]uint8
		AmpParams      [NumTracks][6]uint8
		FX1Params      [NumTracks][6]uint8
		FX2Params      [NumTracks][6]uint8
		MachineParams  [NumTracks][16]uint8
		LFOs           [NumTracks]LFOSettings
		PageStates     [NumTracks][2]uint8
		Unknown        [2903]byte
		Unknown2       [2904]byte
	}

	// MachineSlot is the machine assignment of one track within a part.
	// StaticSlotID and FlexSlotID use the same 0-based reference encoding as
	// pattern trig properties, including the recorder buffer addressing on
	// the flex byte; Unlocked references nothing.
	MachineSlot struct {
		Machine      MachineType
		StaticSlotID uint8
		FlexSlotID   uint8
		Unknown      uint8
	}

	// MachineType selects what a track plays: a sample from one of the slot
	// tables, its input, its neighbor track, or the pickup looper.
	MachineType uint8

	// LFOSettings are the three LFOs of one track.
	LFOSettings struct {
		Speeds       [3]uint8
		Depths       [3]uint8
		Destinations [3]uint8
		Waveforms    [3]uint8
		Unknown      [4]byte
	}
)

const (
	MachineStatic MachineType = iota
	MachineFlex
	MachineThru
	MachineNeighbor
	MachinePickup
)

var machineTypeNames = [...]string{"static", "flex", "thru", "neighbor", "pickup"}

func (t MachineType) String() string {
	if int(t) < len(machineTypeNames) {
		return machineTypeNames[t]
	}
	return "unknown"
}

// DefaultTrackVolume is the volume of a track in a blank part.
const DefaultTrackVolume = 108

// NewBank returns a blank bank: headers populated, patterns blank, parts
// with default volumes and no machine slot assignments, and the default part
// names PART 1..PART 4.
func NewBank() *Bank {
	var bank Bank
	copy(bank.Header[:], bankMagic)
	for pattern := range bank.Patterns {
		bank.Patterns[pattern] = NewPattern()
	}
	for part := range bank.Parts.Saved {
		bank.Parts.Saved[part] = newPart()
		bank.Parts.Unsaved[part] = newPart()
	}
	for part := range bank.PartNames {
		putFixedString(bank.PartNames[part][:], fmt.Sprintf("PART %d", part+1))
	}
	return &bank
}

func newPart() Part {
	var part Part
	copy(part.Header[:], partMagic)
	for track := range part.Machines {
		part.Machines[track].StaticSlotID = Unlocked
		part.Machines[track].FlexSlotID = Unlocked
		part.TrackVolumes[track] = DefaultTrackVolume
	}
	return part
}

// Pattern returns the pattern at the 1-based index the device displays.
func (b *Bank) Pattern(index int) (*Pattern, error) {
	if err := ValidateIndexList([]int{index}, NumPatterns); err != nil {
		return nil, err
	}
	return &b.Patterns[index-1], nil
}

// SavedPart and UnsavedPart return the part at the 1-based index the device
// displays.
func (b *Bank) SavedPart(index int) (*Part, error) {
	if err := ValidateIndexList([]int{index}, NumParts); err != nil {
		return nil, err
	}
	return &b.Parts.Saved[index-1], nil
}

func (b *Bank) UnsavedPart(index int) (*Part, error) {
	if err := ValidateIndexList([]int{index}, NumParts); err != nil {
		return nil, err
	}
	return &b.Parts.Unsaved[index-1], nil
}

// PartName returns the name of the part at the 1-based index, with the NUL
// padding stripped.
func (b *Bank) PartName(index int) string {
	if index < 1 || index > NumParts {
		return ""
	}
	return fixedString(b.PartNames[index-1][:])
}

// SetPartName renames the part at the 1-based index. Names longer than the
// 7-byte name field are truncated.
func (b *Bank) SetPartName(index int, name string) error {
	if err := ValidateIndexList([]int{index}, NumParts); err != nil {
		return err
	}
	putFixedString(b.PartNames[index-1][:], name)
	return nil
}
