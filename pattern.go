package octark

import "math/bits"

type (
	// Pattern is the sequence data of one of the 16 pattern positions of a
	// bank: the trigs of all 8 audio and all 8 midi tracks.
	Pattern struct {
		Header      [8]byte
		AudioTracks [NumTracks]AudioTrackTrigs
		MidiTracks  [NumTracks]MidiTrackTrigs
		Unknown     [12]byte
	}

	// AudioTrackTrigs holds the trigs of one audio track: six step masks, the
	// track length and timing settings, and one 32-byte property record per
	// step. Two bytes of every step property record reference sample slots by
	// id, which is what the deduplication rewrite adjusts.
	AudioTrackTrigs struct {
		Header       [4]byte
		TrigMask     StepMask
		TriglessMask StepMask
		OneShotMask  StepMask
		SwingMask    StepMask
		SlideMask    StepMask
		PlockMask    StepMask
		Length       uint8 // steps used, 1..64
		Scale        uint8 // timing multiplier code
		SwingAmount  uint8 // 50..80
		Unknown      [43]byte
		Steps        [NumSteps]TrigProperties
		Unknown2     [192]byte
	}

	// MidiTrackTrigs is the midi counterpart of AudioTrackTrigs. Midi steps
	// carry notes and CC values but no sample references, so the
	// deduplication rewrite never touches them.
	MidiTrackTrigs struct {
		Header       [4]byte
		TrigMask     StepMask
		TriglessMask StepMask
		SwingMask    StepMask
		SlideMask    StepMask
		Length       uint8
		Scale        uint8
		SwingAmount  uint8
		Unknown      [18]byte
		Steps        [NumSteps]MidiTrigProperties
		Unknown2     [128]byte
	}

	// TrigProperties are the parameter locks of one audio track step. A byte
	// value of Unlocked means the step does not override that parameter.
	// StaticSlotID and FlexSlotID are 0-based sample slot references; flex
	// values 128..254 address the recorder buffers instead of the flex slot
	// table (128 is recorder buffer 1).
	TrigProperties struct {
		StaticSlotID uint8
		FlexSlotID   uint8
		Playback     [6]byte
		Amp          [6]byte
		LFO          [6]byte
		FX1          [6]byte
		FX2          [6]byte
	}

	// MidiTrigProperties are the parameter locks of one midi track step.
	MidiTrigProperties struct {
		Note     uint8
		Velocity uint8
		Length   uint8
		Unknown  [5]byte
		CC       [8]uint8
		Unknown2 [16]byte
	}

	// StepMask is a 64-step bit mask. Step 0 is the most significant bit,
	// matching the order the device stores steps on disk.
	StepMask uint64
)

// Unlocked is the byte value of a trig property that carries no lock and of
// a sample reference that references nothing.
const Unlocked = 0xFF

// DefaultSwingAmount is the swing of a track that does not swing: every even
// step at 50% of the step pair.
const DefaultSwingAmount = 50

func (m StepMask) Has(step int) bool {
	return m&stepBit(step) != 0
}

func (m *StepMask) Set(step int, on bool) {
	if on {
		*m |= stepBit(step)
	} else {
		*m &^= stepBit(step)
	}
}

// Count returns the number of set steps.
func (m StepMask) Count() int {
	return bits.OnesCount64(uint64(m))
}

func stepBit(step int) StepMask {
	return 1 << (63 - step)
}

// NewPattern returns a blank pattern: headers populated, all tracks at full
// length with no trigs and every step property unlocked.
func NewPattern() Pattern {
	var pattern Pattern
	copy(pattern.Header[:], patternMagic)
	for track := range pattern.AudioTracks {
		pattern.AudioTracks[track] = newAudioTrackTrigs()
	}
	for track := range pattern.MidiTracks {
		pattern.MidiTracks[track] = newMidiTrackTrigs()
	}
	return pattern
}

func newAudioTrackTrigs() AudioTrackTrigs {
	track := AudioTrackTrigs{Length: NumSteps, SwingAmount: DefaultSwingAmount}
	copy(track.Header[:], audioTrackMagic)
	for step := range track.Steps {
		track.Steps[step] = unlockedTrigProperties()
	}
	return track
}

func newMidiTrackTrigs() MidiTrackTrigs {
	track := MidiTrackTrigs{Length: NumSteps, SwingAmount: DefaultSwingAmount}
	copy(track.Header[:], midiTrackMagic)
	for step := range track.Steps {
		p := &track.Steps[step]
		p.Note, p.Velocity, p.Length = Unlocked, Unlocked, Unlocked
		for i := range p.Unknown {
			p.Unknown[i] = Unlocked
		}
		for i := range p.CC {
			p.CC[i] = Unlocked
		}
		for i := range p.Unknown2 {
			p.Unknown2[i] = Unlocked
		}
	}
	return track
}

func unlockedTrigProperties() TrigProperties {
	var p TrigProperties
	p.StaticSlotID = Unlocked
	p.FlexSlotID = Unlocked
	for i := range p.Playback {
		p.Playback[i] = Unlocked
		p.Amp[i] = Unlocked
		p.LFO[i] = Unlocked
		p.FX1[i] = Unlocked
		p.FX2[i] = Unlocked
	}
	return p
}

// TrigCount returns the total number of trigs of all tracks of the pattern,
// audio and midi alike.
func (p *Pattern) TrigCount() int {
	count := 0
	for track := range p.AudioTracks {
		count += p.AudioTracks[track].TrigMask.Count()
	}
	for track := range p.MidiTracks {
		count += p.MidiTracks[track].TrigMask.Count()
	}
	return count
}
