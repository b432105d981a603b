package octark_test

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/octark/octark"
)

func smfBank() *octark.Bank {
	b := octark.NewBank()
	audio := &b.Patterns[0].AudioTracks[0]
	audio.Length = 16
	audio.TrigMask.Set(0, true)
	audio.TrigMask.Set(4, true)
	midiTrack := &b.Patterns[0].MidiTracks[0]
	midiTrack.TrigMask.Set(0, true)
	midiTrack.Steps[0].Note = 64
	midiTrack.Steps[0].Velocity = 100
	midiTrack.Steps[0].Length = 2
	// a note with velocity and length left unlocked
	midiTrack.TrigMask.Set(4, true)
	midiTrack.Steps[4].Note = 72
	// a trig with no note locked renders nothing
	midiTrack.TrigMask.Set(2, true)
	return b
}

func TestPatternSMF(t *testing.T) {
	s, err := octark.PatternSMF(smfBank(), 1, 174)
	if err != nil {
		t.Fatalf("PatternSMF failed: %v", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	read, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	if len(read.Tracks) != 2*octark.NumTracks {
		t.Fatalf("file has %v tracks, expected %v", len(read.Tracks), 2*octark.NumTracks)
	}
	metricTicks, ok := read.TimeFormat.(smf.MetricTicks)
	if !ok || uint16(metricTicks) != 96 {
		t.Fatalf("time format is %v, expected 96 metric ticks", read.TimeFormat)
	}

	var (
		name     string
		tempoBPM float64
		onTicks  []int
		tick     int
	)
	for _, ev := range read.Tracks[0] {
		tick += int(ev.Delta)
		var text string
		var bpm float64
		var channel, key, velocity uint8
		switch {
		case ev.Message.GetMetaTrackName(&text):
			name = text
		case ev.Message.GetMetaTempo(&bpm):
			tempoBPM = bpm
		case ev.Message.GetNoteStart(&channel, &key, &velocity):
			if channel != 0 || key != 60 || velocity != 100 {
				t.Errorf("audio trig rendered as channel %v key %v velocity %v", channel, key, velocity)
			}
			onTicks = append(onTicks, tick)
		}
	}
	if name != "T1" {
		t.Errorf("first track is named %q, expected T1", name)
	}
	if math.Abs(tempoBPM-174) > 0.01 {
		t.Errorf("tempo is %v, expected 174", tempoBPM)
	}
	if want := []int{0, 96}; !reflect.DeepEqual(onTicks, want) {
		t.Errorf("audio trigs start at ticks %v, expected %v", onTicks, want)
	}

	name = ""
	tick = 0
	var ons, offs [][3]int
	for _, ev := range read.Tracks[octark.NumTracks] {
		tick += int(ev.Delta)
		var text string
		var channel, key, velocity uint8
		switch {
		case ev.Message.GetMetaTrackName(&text):
			name = text
		case ev.Message.GetNoteStart(&channel, &key, &velocity):
			ons = append(ons, [3]int{tick, int(key), int(velocity)})
			if channel != octark.NumTracks {
				t.Errorf("midi track 1 renders on channel %v", channel)
			}
		case ev.Message.GetNoteEnd(&channel, &key):
			offs = append(offs, [3]int{tick, int(key), 0})
		}
	}
	if name != "MIDI1" {
		t.Errorf("ninth track is named %q, expected MIDI1", name)
	}
	if want := [][3]int{{0, 64, 100}, {96, 72, 100}}; !reflect.DeepEqual(ons, want) {
		t.Errorf("midi notes start as %v, expected %v", ons, want)
	}
	if want := [][3]int{{48, 64, 0}, {120, 72, 0}}; !reflect.DeepEqual(offs, want) {
		t.Errorf("midi notes end as %v, expected %v", offs, want)
	}
}

func TestPatternSMFInvalidIndex(t *testing.T) {
	b := octark.NewBank()
	for _, index := range []int{0, 17} {
		if _, err := octark.PatternSMF(b, index, 120); !errors.Is(err, octark.ErrInvalidIndex) {
			t.Errorf("pattern %v: got %v, expected ErrInvalidIndex", index, err)
		}
	}
}
