package octark

import "fmt"

type (
	// Attributes is the per-sample settings file the device keeps beside an
	// audio file (sample.wav -> sample.ot): tempo, trim and loop settings,
	// gain and the slice table of a sliced sample chain. TimestretchMode and
	// LoopMode are stored 32 bits wide here but use the same code sets as
	// the slot record fields of the same name.
	Attributes struct {
		Header           [16]byte
		Unknown          [7]byte
		TempoX24         uint32
		TrimLenBarsX100  uint32
		LoopLenBarsX100  uint32
		TimestretchMode  uint32
		LoopMode         uint32
		Gain             uint16
		TrigQuantization TrigQuantization
		TrimStart        uint32
		TrimEnd          uint32
		LoopPoint        uint32
		Slices           Slices
		Checksum         [2]byte
	}

	// Slices is the fixed slice table of an attributes file: exactly 64
	// slots, of which the first Count are populated.
	Slices struct {
		Slices [64]Slice
		Count  uint32
	}

	// Slice is one segment of a sliced sample chain, addressed in raw sample
	// frames, not musical bars. LoopStart is either NoLoop or a frame within
	// [TrimStart, TrimEnd).
	Slice struct {
		TrimStart uint32
		TrimEnd   uint32
		LoopStart uint32
	}
)

// NoLoop is the LoopStart value of a slice that does not loop.
const NoLoop = 0xFFFFFFFF

// attributesUnknownDefault is what the device writes into the undocumented
// region of a fresh attributes file.
var attributesUnknownDefault = [7]byte{0, 0, 0, 0, 0, 2, 0}

// NewAttributes returns blank attributes: header magic populated, default
// tempo and gain, direct trig quantization and an empty slice table.
func NewAttributes() *Attributes {
	attributes := Attributes{
		Unknown:          attributesUnknownDefault,
		TempoX24:         DefaultTempoX24,
		Gain:             DefaultGain,
		TrigQuantization: QuantDirect,
	}
	copy(attributes.Header[:], attributesMagic)
	return &attributes
}

// BPM returns the sample tempo in beats per minute.
func (a *Attributes) BPM() float64 {
	return float64(a.TempoX24) / 24
}

// SetBPM sets the sample tempo, rounding to the 1/24 BPM resolution of the
// stored value.
func (a *Attributes) SetBPM(bpm float64) {
	a.TempoX24 = uint32(bpm*24 + 0.5)
}

// NewSlice validates and returns a slice. It fails when trimStart lies after
// trimEnd, or when loopStart is not NoLoop and lies outside
// [trimStart, trimEnd). Pass NoLoop as loopStart for a slice that does not
// loop.
func NewSlice(trimStart, trimEnd, loopStart uint32) (Slice, error) {
	if trimStart > trimEnd {
		return Slice{}, fmt.Errorf("slice trim start %v is after trim end %v", trimStart, trimEnd)
	}
	if loopStart != NoLoop && (loopStart < trimStart || loopStart >= trimEnd) {
		return Slice{}, fmt.Errorf("slice loop start %v is outside %v-%v", loopStart, trimStart, trimEnd)
	}
	return Slice{TrimStart: trimStart, TrimEnd: trimEnd, LoopStart: loopStart}, nil
}

// Push appends a slice to the table. It fails when all 64 slots are in use.
func (s *Slices) Push(slice Slice) error {
	if int(s.Count) >= len(s.Slices) {
		return fmt.Errorf("all %v slices are in use", len(s.Slices))
	}
	s.Slices[s.Count] = slice
	s.Count++
	return nil
}

// Populated returns the populated head of the slice table. A count beyond
// the table size, which only a corrupt file can produce, is clamped.
func (s *Slices) Populated() []Slice {
	return s.Slices[:min(int(s.Count), len(s.Slices))]
}

// Clear empties the slice table.
func (s *Slices) Clear() {
	*s = Slices{}
}
