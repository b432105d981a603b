package octark

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Steps are 16th notes; 24 ticks per step gives the standard 96 ticks per
// quarter note.
const smfTicksPerStep = 24

const (
	// audioTrigNote is the key sample trigs are rendered as: they carry no
	// pitch of their own.
	audioTrigNote       = 60
	defaultTrigVelocity = 100
)

type smfEvent struct {
	tick int
	off  bool
	msg  midi.Message
}

// PatternSMF renders the pattern at the 1-based index of the bank as a
// standard MIDI file, so that sequences survive outside the device. Audio
// tracks become channels 1..8, their sample trigs rendered as a fixed note
// one step long. Midi tracks become channels 9..16 with their stored notes,
// velocities and lengths. The given tempo is written into the first track.
func PatternSMF(bank *Bank, pattern int, bpm float64) (*smf.SMF, error) {
	p, err := bank.Pattern(pattern)
	if err != nil {
		return nil, err
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(4 * smfTicksPerStep)
	for track := range p.AudioTracks {
		events := audioTrackEvents(&p.AudioTracks[track], uint8(track))
		s.Add(trackFromEvents(fmt.Sprintf("T%d", track+1), bpm, track == 0, events))
	}
	for track := range p.MidiTracks {
		events := midiTrackEvents(&p.MidiTracks[track], uint8(NumTracks+track))
		s.Add(trackFromEvents(fmt.Sprintf("MIDI%d", track+1), 0, false, events))
	}
	return s, nil
}

func audioTrackEvents(track *AudioTrackTrigs, channel uint8) []smfEvent {
	var events []smfEvent
	length := trackLength(int(track.Length))
	for step := 0; step < length; step++ {
		if !track.TrigMask.Has(step) {
			continue
		}
		on := step * smfTicksPerStep
		events = append(events,
			smfEvent{tick: on, msg: midi.NoteOn(channel, audioTrigNote, defaultTrigVelocity)},
			smfEvent{tick: on + smfTicksPerStep, off: true, msg: midi.NoteOff(channel, audioTrigNote)},
		)
	}
	return events
}

func midiTrackEvents(track *MidiTrackTrigs, channel uint8) []smfEvent {
	var events []smfEvent
	length := trackLength(int(track.Length))
	for step := 0; step < length; step++ {
		if !track.TrigMask.Has(step) {
			continue
		}
		properties := &track.Steps[step]
		if properties.Note == Unlocked {
			continue
		}
		key := properties.Note & 0x7F
		velocity := properties.Velocity
		if velocity == Unlocked {
			velocity = defaultTrigVelocity
		}
		steps := 1
		if properties.Length != Unlocked {
			steps = trackLength(int(properties.Length))
		}
		on := step * smfTicksPerStep
		events = append(events,
			smfEvent{tick: on, msg: midi.NoteOn(channel, key, velocity&0x7F)},
			smfEvent{tick: on + steps*smfTicksPerStep, off: true, msg: midi.NoteOff(channel, key)},
		)
	}
	return events
}

// trackFromEvents sorts the events by tick, note offs first so that
// retrigged notes close before they reopen, and converts the absolute ticks
// to the delta form the file stores.
func trackFromEvents(name string, bpm float64, tempo bool, events []smfEvent) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	if tempo {
		tr.Add(0, smf.MetaTempo(bpm))
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})
	last := 0
	for _, ev := range events {
		tr.Add(uint32(ev.tick-last), ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	return tr
}

func trackLength(length int) int {
	return clamp(length, 1, NumSteps)
}
