package octark

type (
	// SampleType tells which of the three sample slot tables of a project a
	// slot lives in. The three tables have independent id namespaces: static
	// slot 3 and flex slot 3 are unrelated.
	SampleType uint8

	// LoopMode is the sample loop setting stored both in slot records and in
	// attribute files.
	LoopMode uint8

	// TimestretchMode selects the timestretch algorithm of a sample. The
	// device skips code 1, so the set of valid codes is not contiguous.
	TimestretchMode uint8

	// TrigQuantization controls when a manually triggered sample actually
	// starts. QuantDirect starts it immediately, QuantPatternLength at the
	// end of the current pattern, and codes 1..16 index quantSteps for a
	// step count to wait for.
	TrigQuantization uint8

	// SampleSlot is one entry of a project's sample slot tables, i.e. one
	// loaded sample and its playback settings. ID is the 1-based position the
	// slot occupies in its table on disk. Path may be empty for a recorder
	// buffer that has nothing recorded into it yet.
	SampleSlot struct {
		ID               int
		Type             SampleType
		Path             string `yaml:",omitempty"`
		Gain             int
		LoopMode         LoopMode
		TimestretchMode  TimestretchMode
		TrigQuantization TrigQuantization
		BPM              float64
		TrimBarsX100     int
	}
)

const (
	Static SampleType = iota
	Flex
	RecorderBuffer
)

const (
	LoopOff LoopMode = iota
	LoopOn
	LoopPingPong
)

const (
	StretchOff    TimestretchMode = 0
	StretchNormal TimestretchMode = 2
	StretchBeat   TimestretchMode = 3
)

const (
	QuantPatternLength TrigQuantization = 0
	QuantDirect        TrigQuantization = 0xFF
)

// DefaultGain is the slot and attributes gain value that plays a sample back
// unchanged. Gain values range 0..96 in half decibel steps, so 48 is 0 dB.
const DefaultGain = 48

// quantSteps maps TrigQuantization codes 1..16 to the number of steps the
// device waits for before starting the sample.
var quantSteps = [...]int{1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 48, 64, 96, 128, 192, 256}

var sampleTypeNames = [...]string{"static", "flex", "recorder"}

func (t SampleType) String() string {
	if int(t) < len(sampleTypeNames) {
		return sampleTypeNames[t]
	}
	return "unknown"
}

// Steps returns the quantization length in steps, 0 for pattern length
// quantization and -1 for direct (unquantized) triggering and for codes
// outside the known set.
func (q TrigQuantization) Steps() int {
	if q == QuantPatternLength {
		return 0
	}
	if i := int(q) - 1; i >= 0 && i < len(quantSteps) {
		return quantSteps[i]
	}
	return -1
}

// Equivalent reports whether two slots would play back identically: every
// attribute except the slot id is equal. Only the path strings are compared,
// never the audio files behind them, so the same file loaded under two
// different paths counts as two different samples.
func (s SampleSlot) Equivalent(other SampleSlot) bool {
	s.ID = 0
	other.ID = 0
	return s == other
}
