package octark_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/octark/octark"
)

// Region sizes of the bank layout, used to locate nested headers inside
// encoded banks without the typed accessors.
const (
	bankHeaderSize = 22
	audioTrackSize = 2338
)

// Offsets into an encoded project file.
const (
	osVersionOffset  = 20
	firstSlotOffset  = 68
	unknownOffset    = octark.ProjectSize - 66
	checksumOffset   = octark.ProjectSize - 2
	slotPathOffset   = firstSlotOffset + 2
	selectedBankByte = 36
)

func testProject() *octark.Project {
	project := octark.NewProject()
	project.State.SelectedBank = 3
	project.State.TrackMutes = 0b101
	project.Mixer.SetBPM(174)
	project.StaticSlots = []octark.SampleSlot{
		{ID: 3, Type: octark.Static, Path: "AUDIO/kick.wav", Gain: 52, LoopMode: octark.LoopOn,
			TimestretchMode: octark.StretchBeat, TrigQuantization: octark.QuantDirect, BPM: 174, TrimBarsX100: 400},
	}
	project.FlexSlots = []octark.SampleSlot{
		{ID: 1, Type: octark.Flex, Path: "AUDIO/loop.wav", Gain: 48, TrigQuantization: octark.QuantDirect, BPM: 120},
	}
	return project
}

func TestProjectRoundTrip(t *testing.T) {
	project := testProject()
	data, err := octark.EncodeProject(project)
	if err != nil {
		t.Fatalf("EncodeProject failed: %v", err)
	}
	if len(data) != octark.ProjectSize {
		t.Fatalf("encoded project is %v bytes, expected %v", len(data), octark.ProjectSize)
	}
	if !bytes.HasPrefix(data, []byte("FORM\x00\x00\x00\x00DPS1PROJ")) {
		t.Fatalf("encoded project header is %q", data[:16])
	}
	decoded, err := octark.DecodeProject(data)
	if err != nil {
		t.Fatalf("DecodeProject failed: %v", err)
	}
	if !reflect.DeepEqual(project, decoded) {
		t.Fatalf("project did not round trip, got %#v, expected %#v", decoded, project)
	}
}

// Opaque regions have to survive decode/encode byte for byte, or saving a
// project would corrupt the fields the codec does not understand.
func TestProjectByteExactRoundTrip(t *testing.T) {
	data, err := octark.EncodeProject(testProject())
	if err != nil {
		t.Fatalf("EncodeProject failed: %v", err)
	}
	data[unknownOffset+10] = 0xAB
	data[checksumOffset] = 0x12
	data[checksumOffset+1] = 0x34
	data[selectedBankByte] = 7
	decoded, err := octark.DecodeProject(data)
	if err != nil {
		t.Fatalf("DecodeProject failed: %v", err)
	}
	encoded, err := octark.EncodeProject(decoded)
	if err != nil {
		t.Fatalf("EncodeProject failed: %v", err)
	}
	if !bytes.Equal(data, encoded) {
		for i := range data {
			if data[i] != encoded[i] {
				t.Fatalf("byte mismatch @ %v, got %v, expected %v", i, encoded[i], data[i])
			}
		}
	}
}

func TestDecodeProjectRejectsCorruptData(t *testing.T) {
	valid, err := octark.EncodeProject(octark.NewProject())
	if err != nil {
		t.Fatalf("EncodeProject failed: %v", err)
	}
	corrupt := func(offset int, value byte) []byte {
		data := append([]byte(nil), valid...)
		data[offset] = value
		return data
	}
	for _, c := range []struct {
		name string
		data []byte
	}{
		{"truncated", valid[:octark.ProjectSize-1]},
		{"oversized", append(append([]byte(nil), valid...), 0)},
		{"magic", corrupt(0, 'X')},
		{"slot id", corrupt(firstSlotOffset, 5)},
		{"slot kind", corrupt(firstSlotOffset+1, 1)},
		{"version padding", corrupt(osVersionOffset+13, 1)},
		{"path padding", corrupt(slotPathOffset+5, 'x')},
	} {
		t.Run(c.name, func(t *testing.T) {
			if _, err := octark.DecodeProject(c.data); !errors.Is(err, octark.ErrMalformed) {
				t.Fatalf("got %v, expected ErrMalformed", err)
			}
		})
	}
}

func TestEncodeProjectRejectsBadSlots(t *testing.T) {
	for _, c := range []struct {
		name    string
		slot    octark.SampleSlot
		invalid bool // expect ErrInvalidIndex specifically
	}{
		{"id zero", octark.SampleSlot{ID: 0, Type: octark.Static, Path: "a.wav", Gain: 48}, true},
		{"id beyond table", octark.SampleSlot{ID: 129, Type: octark.Static, Path: "a.wav", Gain: 48}, true},
		{"wrong kind", octark.SampleSlot{ID: 1, Type: octark.Flex, Path: "a.wav", Gain: 48}, false},
		{"gain overflow", octark.SampleSlot{ID: 1, Type: octark.Static, Path: "a.wav", Gain: 300}, false},
		{"negative bpm", octark.SampleSlot{ID: 1, Type: octark.Static, Path: "a.wav", Gain: 48, BPM: -10}, false},
	} {
		t.Run(c.name, func(t *testing.T) {
			project := octark.NewProject()
			project.StaticSlots = []octark.SampleSlot{c.slot}
			_, err := octark.EncodeProject(project)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if c.invalid != errors.Is(err, octark.ErrInvalidIndex) {
				t.Fatalf("got %v, ErrInvalidIndex expectation was %v", err, c.invalid)
			}
		})
	}
	project := octark.NewProject()
	project.StaticSlots = []octark.SampleSlot{
		{ID: 1, Type: octark.Static, Path: "a.wav", Gain: 48},
		{ID: 1, Type: octark.Static, Path: "b.wav", Gain: 48},
	}
	if _, err := octark.EncodeProject(project); !errors.Is(err, octark.ErrInvalidIndex) {
		t.Fatalf("got %v, expected ErrInvalidIndex for duplicate slot ids", err)
	}
}

func testBank() *octark.Bank {
	bank := octark.NewBank()
	track := &bank.Patterns[0].AudioTracks[0]
	track.TrigMask.Set(0, true)
	track.TrigMask.Set(4, true)
	track.Steps[0].StaticSlotID = 2
	bank.Parts.Saved[0].Machines[0].Machine = octark.MachineFlex
	bank.Parts.Saved[0].Machines[0].FlexSlotID = 0
	bank.Parts.Unsaved[3].Machines[7].StaticSlotID = 9
	bank.SetPartName(2, "DRUMS")
	return bank
}

func TestBankRoundTrip(t *testing.T) {
	bank := testBank()
	data, err := octark.EncodeBank(bank)
	if err != nil {
		t.Fatalf("EncodeBank failed: %v", err)
	}
	if len(data) != octark.BankSize {
		t.Fatalf("encoded bank is %v bytes, expected %v", len(data), octark.BankSize)
	}
	if !bytes.HasPrefix(data, []byte("FORM\x00\x00\x00\x00DPS1BANK\x00\x00\x00\x00\x00\x16")) {
		t.Fatalf("encoded bank header is %q", data[:bankHeaderSize])
	}
	// opaque bytes decode and encode unchanged
	data[octark.BankSize-3] = 0x5A
	decoded, err := octark.DecodeBank(data)
	if err != nil {
		t.Fatalf("DecodeBank failed: %v", err)
	}
	encoded, err := octark.EncodeBank(decoded)
	if err != nil {
		t.Fatalf("EncodeBank failed: %v", err)
	}
	if !bytes.Equal(data, encoded) {
		t.Fatalf("bank did not round trip byte-exact")
	}
	if got := decoded.Patterns[0].AudioTracks[0].TrigMask.Count(); got != 2 {
		t.Errorf("decoded trig count is %v, expected 2", got)
	}
	if got := decoded.PartName(2); got != "DRUMS" {
		t.Errorf("decoded part name is %q, expected %q", got, "DRUMS")
	}
}

func TestDecodeBankValidatesNestedHeaders(t *testing.T) {
	valid, err := octark.EncodeBank(octark.NewBank())
	if err != nil {
		t.Fatalf("EncodeBank failed: %v", err)
	}
	corrupt := func(offset int) []byte {
		data := append([]byte(nil), valid...)
		data[offset] ^= 1
		return data
	}
	for _, c := range []struct {
		name   string
		offset int
	}{
		{"bank header", 0},
		{"first pattern header", bankHeaderSize},
		{"last pattern header", bankHeaderSize + 15*octark.PatternSize},
		{"audio track header", bankHeaderSize + 8},
		{"midi track header", bankHeaderSize + 8 + 8*audioTrackSize},
		{"saved part header", bankHeaderSize + 16*octark.PatternSize},
		{"unsaved part header", bankHeaderSize + 16*octark.PatternSize + 4*octark.PartSize},
	} {
		t.Run(c.name, func(t *testing.T) {
			if _, err := octark.DecodeBank(corrupt(c.offset)); !errors.Is(err, octark.ErrMalformed) {
				t.Fatalf("got %v, expected ErrMalformed", err)
			}
		})
	}
	if _, err := octark.DecodeBank(valid[:octark.BankSize-1]); !errors.Is(err, octark.ErrMalformed) {
		t.Fatalf("got %v, expected ErrMalformed for a truncated bank", err)
	}
	if _, err := octark.DecodeBank(append(append([]byte(nil), valid...), 0)); !errors.Is(err, octark.ErrMalformed) {
		t.Fatalf("got %v, expected ErrMalformed for an oversized bank", err)
	}
}

func TestArrangementRoundTrip(t *testing.T) {
	arrangement := octark.NewArrangement("AUTUMN LIVE")
	arrangement.Rows[0] = octark.ArrangementRow{RowType: 1, Bank: 2, Pattern: 5, Repeats: 3, RowLength: 64, BPMX24: 4176, MuteMask: 0b10}
	data, err := octark.EncodeArrangement(arrangement)
	if err != nil {
		t.Fatalf("EncodeArrangement failed: %v", err)
	}
	if len(data) != octark.ArrangementSize {
		t.Fatalf("encoded arrangement is %v bytes, expected %v", len(data), octark.ArrangementSize)
	}
	data[octark.ArrangementSize-20] = 0x77 // inside the opaque tail
	decoded, err := octark.DecodeArrangement(data)
	if err != nil {
		t.Fatalf("DecodeArrangement failed: %v", err)
	}
	encoded, err := octark.EncodeArrangement(decoded)
	if err != nil {
		t.Fatalf("EncodeArrangement failed: %v", err)
	}
	if !bytes.Equal(data, encoded) {
		t.Fatalf("arrangement did not round trip byte-exact")
	}
	if got := decoded.Title(); got != "AUTUMN LIVE" {
		t.Errorf("decoded title is %q, expected %q", got, "AUTUMN LIVE")
	}
	data[0] = 'X'
	if _, err := octark.DecodeArrangement(data); !errors.Is(err, octark.ErrMalformed) {
		t.Fatalf("got %v, expected ErrMalformed for a corrupt header", err)
	}
}

func TestAttributesRoundTrip(t *testing.T) {
	attributes := octark.NewAttributes()
	attributes.SetBPM(150)
	attributes.Gain = 60
	attributes.TrimEnd = 88200
	attributes.LoopPoint = 44100
	slice, err := octark.NewSlice(0, 44100, octark.NoLoop)
	if err != nil {
		t.Fatalf("NewSlice failed: %v", err)
	}
	if err := attributes.Slices.Push(slice); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	data, err := octark.EncodeAttributes(attributes)
	if err != nil {
		t.Fatalf("EncodeAttributes failed: %v", err)
	}
	if len(data) != octark.AttributesSize {
		t.Fatalf("encoded attributes are %v bytes, expected %v", len(data), octark.AttributesSize)
	}
	if !bytes.HasPrefix(data, []byte("FORM\x00\x00\x00\x00DPS1SMPA")) {
		t.Fatalf("encoded attributes header is %q", data[:16])
	}
	decoded, err := octark.DecodeAttributes(data)
	if err != nil {
		t.Fatalf("DecodeAttributes failed: %v", err)
	}
	if !reflect.DeepEqual(attributes, decoded) {
		t.Fatalf("attributes did not round trip, got %#v, expected %#v", decoded, attributes)
	}
	if got := decoded.BPM(); got != 150 {
		t.Errorf("decoded BPM is %v, expected 150", got)
	}
	data[20] ^= 0xFF // inside the opaque region
	decoded, err = octark.DecodeAttributes(data)
	if err != nil {
		t.Fatalf("DecodeAttributes failed: %v", err)
	}
	encoded, err := octark.EncodeAttributes(decoded)
	if err != nil {
		t.Fatalf("EncodeAttributes failed: %v", err)
	}
	if !bytes.Equal(data, encoded) {
		t.Fatalf("attributes did not round trip byte-exact")
	}
}

func TestDecodeDispatchesOnSize(t *testing.T) {
	projectBytes, err := octark.EncodeProject(octark.NewProject())
	if err != nil {
		t.Fatalf("EncodeProject failed: %v", err)
	}
	bankBytes, err := octark.EncodeBank(octark.NewBank())
	if err != nil {
		t.Fatalf("EncodeBank failed: %v", err)
	}
	arrangementBytes, err := octark.EncodeArrangement(octark.NewArrangement("A"))
	if err != nil {
		t.Fatalf("EncodeArrangement failed: %v", err)
	}
	attributesBytes, err := octark.EncodeAttributes(octark.NewAttributes())
	if err != nil {
		t.Fatalf("EncodeAttributes failed: %v", err)
	}
	for _, c := range []struct {
		name string
		data []byte
		want any
	}{
		{"project", projectBytes, &octark.Project{}},
		{"bank", bankBytes, &octark.Bank{}},
		{"arrangement", arrangementBytes, &octark.Arrangement{}},
		{"attributes", attributesBytes, &octark.Attributes{}},
	} {
		t.Run(c.name, func(t *testing.T) {
			record, err := octark.Decode(c.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if reflect.TypeOf(record) != reflect.TypeOf(c.want) {
				t.Fatalf("Decode returned %T, expected %T", record, c.want)
			}
		})
	}
	if _, err := octark.Decode(make([]byte, 123)); !errors.Is(err, octark.ErrMalformed) {
		t.Fatalf("got %v, expected ErrMalformed for an unknown size", err)
	}
}

func TestBankRawBytes(t *testing.T) {
	data, err := octark.EncodeBank(testBank())
	if err != nil {
		t.Fatalf("EncodeBank failed: %v", err)
	}
	raw, err := octark.DecodeBankRawBytes(data)
	if err != nil {
		t.Fatalf("DecodeBankRawBytes failed: %v", err)
	}
	pattern, err := raw.Pattern(1)
	if err != nil {
		t.Fatalf("Pattern failed: %v", err)
	}
	if string(pattern[:4]) != "PTRN" {
		t.Errorf("pattern region starts with %q, expected PTRN", pattern[:4])
	}
	if len(pattern) != octark.PatternSize {
		t.Errorf("pattern region is %v bytes, expected %v", len(pattern), octark.PatternSize)
	}
	if _, err := raw.Pattern(16); err != nil {
		t.Errorf("Pattern(16) failed: %v", err)
	}
	saved, err := raw.SavedPart(1)
	if err != nil {
		t.Fatalf("SavedPart failed: %v", err)
	}
	if string(saved[:4]) != "PART" {
		t.Errorf("saved part region starts with %q, expected PART", saved[:4])
	}
	unsaved, err := raw.UnsavedPart(4)
	if err != nil {
		t.Fatalf("UnsavedPart failed: %v", err)
	}
	if string(unsaved[:4]) != "PART" {
		t.Errorf("unsaved part region starts with %q, expected PART", unsaved[:4])
	}
	if got := raw.Checksum(); !bytes.Equal(got, data[octark.BankSize-2:]) {
		t.Errorf("checksum region is % x, expected % x", got, data[octark.BankSize-2:])
	}
	if _, err := raw.Pattern(0); !errors.Is(err, octark.ErrInvalidIndex) {
		t.Errorf("got %v, expected ErrInvalidIndex", err)
	}
	if _, err := raw.SavedPart(5); !errors.Is(err, octark.ErrInvalidIndex) {
		t.Errorf("got %v, expected ErrInvalidIndex", err)
	}
	// the raw form is a copy, so inspecting it cannot disturb the original
	raw[0] = 'X'
	if data[0] != 'F' {
		t.Errorf("mutating the raw copy changed the source buffer")
	}
	if _, err := octark.DecodeBankRawBytes(data[:100]); !errors.Is(err, octark.ErrMalformed) {
		t.Errorf("got %v, expected ErrMalformed for a short buffer", err)
	}
	// corrupt banks stay inspectable, the raw decoder checks only the size
	data[0] = 'X'
	if _, err := octark.DecodeBankRawBytes(data); err != nil {
		t.Errorf("DecodeBankRawBytes rejected a corrupt header: %v", err)
	}
}
