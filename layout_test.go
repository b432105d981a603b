package octark

import (
	"encoding/binary"
	"testing"
)

// The encoder and decoder trust that the declared struct layouts pack to
// exactly the declared record sizes. Everything else in the codec leans on
// these equalities.
func TestRecordLayoutSizes(t *testing.T) {
	for _, c := range []struct {
		what string
		v    any
		size int
	}{
		{"projectData", projectData{}, ProjectSize},
		{"slotRecord", slotRecord{}, slotRecordSize},
		{"Bank", Bank{}, BankSize},
		{"Pattern", Pattern{}, PatternSize},
		{"AudioTrackTrigs", AudioTrackTrigs{}, audioTrackSize},
		{"MidiTrackTrigs", MidiTrackTrigs{}, midiTrackSize},
		{"Part", Part{}, PartSize},
		{"Arrangement", Arrangement{}, ArrangementSize},
		{"Attributes", Attributes{}, AttributesSize},
	} {
		if got := binary.Size(c.v); got != c.size {
			t.Errorf("%s packs to %v bytes, expected %v", c.what, got, c.size)
		}
	}
}

// The raw bank accessors compute region offsets from these sums.
func TestBankRegionArithmetic(t *testing.T) {
	total := bankHeaderSize + NumPatterns*PatternSize + 2*NumParts*PartSize + 5 + NumParts*7 + 2
	if total != BankSize {
		t.Errorf("bank regions sum to %v bytes, expected %v", total, BankSize)
	}
	total = 16 + 4 + 16 + 16 + 16 + (NumStaticSlots+NumFlexSlots+NumRecorderSlots)*slotRecordSize + 64 + 2
	if total != ProjectSize {
		t.Errorf("project regions sum to %v bytes, expected %v", total, ProjectSize)
	}
}

// A magic shorter than the header field it is copied into would leave stale
// bytes in the header unnoticed.
func TestMagicLengths(t *testing.T) {
	for _, c := range []struct {
		what  string
		magic []byte
		size  int
	}{
		{"project", projectMagic, 16},
		{"bank", bankMagic, bankHeaderSize},
		{"arrangement", arrangementMagic, 22},
		{"attributes", attributesMagic, 16},
		{"pattern", patternMagic, 8},
		{"audio track", audioTrackMagic, 4},
		{"midi track", midiTrackMagic, 4},
		{"part", partMagic, 4},
	} {
		if len(c.magic) != c.size {
			t.Errorf("%s magic is %v bytes, expected %v", c.what, len(c.magic), c.size)
		}
	}
}
