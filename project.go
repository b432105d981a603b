package octark

import "fmt"

type (
	// Project is the top-level record of a project directory: format
	// metadata, the device UI state, mixer settings and the three sample
	// slot tables. The slot tables are kept as lists holding only the slots
	// that differ from a blank table entry; on disk every table position is
	// always present.
	Project struct {
		FormatVersion int
		OSVersion     string
		State         ProjectState
		Mixer         ProjectMixer
		StaticSlots   []SampleSlot
		FlexSlots     []SampleSlot
		RecorderSlots []SampleSlot
		Unknown       [64]byte `yaml:",flow"`
		Checksum      [2]byte  `yaml:",flow"`
	}

	// ProjectState is the focus and mute state block of a project: what the
	// device shows when the project is loaded. Mute masks have bit t set
	// when track t+1 is muted.
	ProjectState struct {
		SelectedBank      uint8
		SelectedPattern   uint8
		SelectedPart      uint8
		SelectedTrack     uint8
		SelectedMidiTrack uint8
		TrackMutes        uint16
		MidiMutes         uint16
		Unknown           [7]byte `yaml:",flow"`
	}

	// ProjectMixer is the mixer settings block of a project. TempoX24 is the
	// project tempo in BPM times 24.
	ProjectMixer struct {
		TempoX24    uint32
		MainVolume  uint8
		CueVolume   uint8
		MetronomeOn uint8
		Unknown     [9]byte `yaml:",flow"`
	}

	// projectData is the exact on-disk layout of a project file. Project is
	// converted through it when decoding and encoding.
	projectData struct {
		Magic         [16]byte
		FormatVersion uint32
		OSVersion     [16]byte
		State         ProjectState
		Mixer         ProjectMixer
		StaticSlots   [NumStaticSlots]slotRecord
		FlexSlots     [NumFlexSlots]slotRecord
		RecorderSlots [NumRecorderSlots]slotRecord
		Unknown       [64]byte
		Checksum      [2]byte
	}

	// slotRecord is the exact on-disk layout of one sample slot table entry.
	// SlotID repeats the 1-based table position of the entry.
	slotRecord struct {
		SlotID           uint8
		Type             SampleType
		Path             [128]byte
		Gain             uint8
		LoopMode         LoopMode
		TimestretchMode  TimestretchMode
		TrigQuantization TrigQuantization
		BPMX24           uint32
		TrimBarsX100     uint32
	}
)

const (
	// DefaultTempoX24 is 120 BPM, the tempo of a fresh project and of fresh
	// sample attributes.
	DefaultTempoX24 = 2880

	DefaultFormatVersion = 19
	DefaultOSVersion     = "R0290 1.40C"
	DefaultMixerVolume   = 64
)

// NewProject returns a blank project: current format version, default mixer
// settings and all sample slots blank.
func NewProject() *Project {
	return &Project{
		FormatVersion: DefaultFormatVersion,
		OSVersion:     DefaultOSVersion,
		Mixer: ProjectMixer{
			TempoX24:   DefaultTempoX24,
			MainVolume: DefaultMixerVolume,
			CueVolume:  DefaultMixerVolume,
		},
	}
}

// Copy returns a deep copy of the project, with its own slot lists.
func (p *Project) Copy() Project {
	c := *p
	c.StaticSlots = append([]SampleSlot(nil), p.StaticSlots...)
	c.FlexSlots = append([]SampleSlot(nil), p.FlexSlots...)
	c.RecorderSlots = append([]SampleSlot(nil), p.RecorderSlots...)
	return c
}

// BPM returns the project tempo in beats per minute.
func (m *ProjectMixer) BPM() float64 {
	return float64(m.TempoX24) / 24
}

// SetBPM sets the project tempo, rounding to the 1/24 BPM resolution of the
// stored value.
func (m *ProjectMixer) SetBPM(bpm float64) {
	m.TempoX24 = uint32(bpm*24 + 0.5)
}

// TrackMuted reports whether the audio track at the 1-based index is muted
// project-wide.
func (s *ProjectState) TrackMuted(track int) bool {
	return track >= 1 && track <= NumTracks && s.TrackMutes&(1<<(track-1)) != 0
}

// MidiTrackMuted reports whether the midi track at the 1-based index is
// muted project-wide.
func (s *ProjectState) MidiTrackMuted(track int) bool {
	return track >= 1 && track <= NumTracks && s.MidiMutes&(1<<(track-1)) != 0
}

// Slots returns the slot list of the given kind. The returned slice is the
// project's own; mutating its elements mutates the project.
func (p *Project) Slots(t SampleType) []SampleSlot {
	switch t {
	case Static:
		return p.StaticSlots
	case Flex:
		return p.FlexSlots
	case RecorderBuffer:
		return p.RecorderSlots
	}
	return nil
}

// AllSlots returns a copy of all slots of the project, static then flex then
// recorder, each list in ascending id order as decoded.
func (p *Project) AllSlots() []SampleSlot {
	all := make([]SampleSlot, 0, len(p.StaticSlots)+len(p.FlexSlots)+len(p.RecorderSlots))
	all = append(all, p.StaticSlots...)
	all = append(all, p.FlexSlots...)
	all = append(all, p.RecorderSlots...)
	return all
}

// setAllSlots replaces the slot lists of the project with the given slots,
// partitioned by kind in the order given.
func (p *Project) setAllSlots(slots []SampleSlot) {
	p.StaticSlots = nil
	p.FlexSlots = nil
	p.RecorderSlots = nil
	for _, slot := range slots {
		switch slot.Type {
		case Static:
			p.StaticSlots = append(p.StaticSlots, slot)
		case Flex:
			p.FlexSlots = append(p.FlexSlots, slot)
		case RecorderBuffer:
			p.RecorderSlots = append(p.RecorderSlots, slot)
		}
	}
}

// FindSlot returns the slot with the given kind and 1-based id.
func (p *Project) FindSlot(t SampleType, id int) (SampleSlot, bool) {
	for _, slot := range p.Slots(t) {
		if slot.ID == id {
			return slot, true
		}
	}
	return SampleSlot{}, false
}

// slotTableSizes must follow the kind order of the tables on disk.
var slotTableSizes = [...]int{NumStaticSlots, NumFlexSlots, NumRecorderSlots}

// blankSlotRecord is the table entry of an unused slot position. Everything
// that differs from it when decoding becomes a SampleSlot of the list form.
func blankSlotRecord(t SampleType, index int) slotRecord {
	return slotRecord{
		SlotID:           uint8(index + 1),
		Type:             t,
		Gain:             DefaultGain,
		TrigQuantization: QuantDirect,
		BPMX24:           DefaultTempoX24,
	}
}

func (r *slotRecord) slot() SampleSlot {
	return SampleSlot{
		ID:               int(r.SlotID),
		Type:             r.Type,
		Path:             fixedString(r.Path[:]),
		Gain:             int(r.Gain),
		LoopMode:         r.LoopMode,
		TimestretchMode:  r.TimestretchMode,
		TrigQuantization: r.TrigQuantization,
		BPM:              float64(r.BPMX24) / 24,
		TrimBarsX100:     int(r.TrimBarsX100),
	}
}

func slotToRecord(s SampleSlot) (slotRecord, error) {
	if s.Gain < 0 || s.Gain > 255 {
		return slotRecord{}, fmt.Errorf("%v slot %v: gain %v does not fit the gain byte", s.Type, s.ID, s.Gain)
	}
	if s.BPM < 0 {
		return slotRecord{}, fmt.Errorf("%v slot %v: negative bpm %v", s.Type, s.ID, s.BPM)
	}
	if s.TrimBarsX100 < 0 {
		return slotRecord{}, fmt.Errorf("%v slot %v: negative trim length %v", s.Type, s.ID, s.TrimBarsX100)
	}
	r := slotRecord{
		SlotID:           uint8(s.ID),
		Type:             s.Type,
		Gain:             uint8(s.Gain),
		LoopMode:         s.LoopMode,
		TimestretchMode:  s.TimestretchMode,
		TrigQuantization: s.TrigQuantization,
		BPMX24:           uint32(s.BPM*24 + 0.5),
		TrimBarsX100:     uint32(s.TrimBarsX100),
	}
	putFixedString(r.Path[:], s.Path)
	return r, nil
}

// fromData fills the project from its on-disk form. Table entries that equal
// the blank entry of their position are dropped; everything else must carry
// the 1-based id of its position and the kind of its table, or the file does
// not decode.
func (p *Project) fromData(d *projectData) error {
	if !zeroPadded(d.OSVersion[:]) {
		return fmt.Errorf("%w: os version field is not NUL padded", ErrMalformed)
	}
	p.FormatVersion = int(d.FormatVersion)
	p.OSVersion = fixedString(d.OSVersion[:])
	p.State = d.State
	p.Mixer = d.Mixer
	p.Unknown = d.Unknown
	p.Checksum = d.Checksum
	tables := [][]slotRecord{d.StaticSlots[:], d.FlexSlots[:], d.RecorderSlots[:]}
	lists := []*[]SampleSlot{&p.StaticSlots, &p.FlexSlots, &p.RecorderSlots}
	for kind, table := range tables {
		t := SampleType(kind)
		*lists[kind] = nil
		for index := range table {
			r := &table[index]
			if *r == blankSlotRecord(t, index) {
				continue
			}
			if int(r.SlotID) != index+1 {
				return fmt.Errorf("%w: %v slot at position %v carries id %v", ErrMalformed, t, index+1, r.SlotID)
			}
			if r.Type != t {
				return fmt.Errorf("%w: %v slot %v carries kind code %v", ErrMalformed, t, index+1, r.Type)
			}
			if !zeroPadded(r.Path[:]) {
				return fmt.Errorf("%w: %v slot %v path is not NUL padded", ErrMalformed, t, index+1)
			}
			*lists[kind] = append(*lists[kind], r.slot())
		}
	}
	return nil
}

// data converts the project to its on-disk form: blank entries everywhere,
// then each held slot written at the position its id names. Slot ids must be
// unique within their kind and within the table range.
func (p *Project) data() (*projectData, error) {
	d := &projectData{
		FormatVersion: uint32(p.FormatVersion),
		State:         p.State,
		Mixer:         p.Mixer,
		Unknown:       p.Unknown,
		Checksum:      p.Checksum,
	}
	copy(d.Magic[:], projectMagic)
	putFixedString(d.OSVersion[:], p.OSVersion)
	tables := [][]slotRecord{d.StaticSlots[:], d.FlexSlots[:], d.RecorderSlots[:]}
	for kind, table := range tables {
		for index := range table {
			table[index] = blankSlotRecord(SampleType(kind), index)
		}
	}
	for kind, list := range [][]SampleSlot{p.StaticSlots, p.FlexSlots, p.RecorderSlots} {
		t := SampleType(kind)
		seen := make(map[int]bool, len(list))
		for _, slot := range list {
			if slot.Type != t {
				return nil, fmt.Errorf("%v slot %v held in the %v list", slot.Type, slot.ID, t)
			}
			if slot.ID < 1 || slot.ID > slotTableSizes[kind] {
				return nil, fmt.Errorf("%w: %v slot id %v is outside 1-%v", ErrInvalidIndex, t, slot.ID, slotTableSizes[kind])
			}
			if seen[slot.ID] {
				return nil, fmt.Errorf("%w: duplicate %v slot id %v", ErrInvalidIndex, t, slot.ID)
			}
			seen[slot.ID] = true
			r, err := slotToRecord(slot)
			if err != nil {
				return nil, err
			}
			tables[kind][slot.ID-1] = r
		}
	}
	return d, nil
}
