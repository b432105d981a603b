package octark

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Sizes of the on-disk records, in bytes. Decoding accepts nothing shorter
// or longer: the layout is the whole contract, there are no length prefixes
// or delimiters anywhere in the formats.
const (
	ProjectSize     = 37622
	BankSize        = 636113
	PatternSize     = 36588
	PartSize        = 6331
	ArrangementSize = 3240
	AttributesSize  = 832

	audioTrackSize = 2338
	midiTrackSize  = 2233
	slotRecordSize = 142
	bankHeaderSize = 22
)

// Header magics of the records. The file-level ones follow the FORM chunk
// convention of the device, tagged with its internal hardware name DPS1.
var (
	projectMagic     = []byte("FORM\x00\x00\x00\x00DPS1PROJ")
	bankMagic        = []byte("FORM\x00\x00\x00\x00DPS1BANK\x00\x00\x00\x00\x00\x16")
	arrangementMagic = []byte("FORM\x00\x00\x00\x00DPS1ARRA\x00\x00\x00\x00\x00\x16")
	attributesMagic  = []byte("FORM\x00\x00\x00\x00DPS1SMPA")
	patternMagic     = []byte("PTRN\x00\x00\x00\x00")
	audioTrackMagic  = []byte("TRAC")
	midiTrackMagic   = []byte("MTRA")
	partMagic        = []byte("PART")
)

// All multi-byte integers of the formats are stored big-endian.
var byteOrder = binary.BigEndian

func decodeRecord[T any](data []byte, size int, what string) (*T, error) {
	if len(data) != size {
		return nil, fmt.Errorf("%w: %s is %v bytes, expected %v", ErrMalformed, what, len(data), size)
	}
	record := new(T)
	if err := binary.Read(bytes.NewReader(data), byteOrder, record); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", what, err)
	}
	return record, nil
}

func encodeRecord(record any, size int, what string) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := binary.Write(buf, byteOrder, record); err != nil {
		return nil, fmt.Errorf("could not encode %s: %w", what, err)
	}
	if buf.Len() != size {
		return nil, fmt.Errorf("encoded %s is %v bytes, expected %v", what, buf.Len(), size)
	}
	return buf.Bytes(), nil
}

func checkMagic(got, want []byte, what string) error {
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: %s header does not match", ErrMalformed, what)
	}
	return nil
}

// fixedString interprets b as a NUL padded string.
func fixedString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// putFixedString writes s into b and NUL pads the rest. Overlong strings are
// truncated.
func putFixedString(b []byte, s string) {
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
}

// zeroPadded reports whether every byte after the first NUL of b is zero,
// i.e. whether converting b to a string and back loses nothing.
func zeroPadded(b []byte) bool {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return true
	}
	for _, c := range b[i:] {
		if c != 0 {
			return false
		}
	}
	return true
}

// Decode decodes data as whichever record type its size declares. The
// concrete type returned is *Project, *Bank, *Arrangement or *Attributes.
func Decode(data []byte) (any, error) {
	switch len(data) {
	case ProjectSize:
		return DecodeProject(data)
	case BankSize:
		return DecodeBank(data)
	case ArrangementSize:
		return DecodeArrangement(data)
	case AttributesSize:
		return DecodeAttributes(data)
	}
	return nil, fmt.Errorf("%w: no record type is %v bytes", ErrMalformed, len(data))
}

// DecodeProject decodes the contents of a project file.
func DecodeProject(data []byte) (*Project, error) {
	d, err := decodeRecord[projectData](data, ProjectSize, "project")
	if err != nil {
		return nil, err
	}
	if err := checkMagic(d.Magic[:], projectMagic, "project"); err != nil {
		return nil, err
	}
	var project Project
	if err := project.fromData(d); err != nil {
		return nil, err
	}
	return &project, nil
}

// EncodeProject encodes the project into the contents of a project file.
func EncodeProject(project *Project) ([]byte, error) {
	d, err := project.data()
	if err != nil {
		return nil, err
	}
	return encodeRecord(d, ProjectSize, "project")
}

// DecodeBank decodes the contents of a bank file, validating the bank header
// and every nested pattern, track and part header.
func DecodeBank(data []byte) (*Bank, error) {
	bank, err := decodeRecord[Bank](data, BankSize, "bank")
	if err != nil {
		return nil, err
	}
	if err := bank.validateMagic(); err != nil {
		return nil, err
	}
	return bank, nil
}

// EncodeBank encodes the bank into the contents of a bank file.
func EncodeBank(bank *Bank) ([]byte, error) {
	return encodeRecord(bank, BankSize, "bank")
}

// DecodeArrangement decodes the contents of an arrangement file.
func DecodeArrangement(data []byte) (*Arrangement, error) {
	arrangement, err := decodeRecord[Arrangement](data, ArrangementSize, "arrangement")
	if err != nil {
		return nil, err
	}
	if err := checkMagic(arrangement.Header[:], arrangementMagic, "arrangement"); err != nil {
		return nil, err
	}
	return arrangement, nil
}

// EncodeArrangement encodes the arrangement into the contents of an
// arrangement file.
func EncodeArrangement(arrangement *Arrangement) ([]byte, error) {
	return encodeRecord(arrangement, ArrangementSize, "arrangement")
}

// DecodeAttributes decodes the contents of a sample attributes file.
func DecodeAttributes(data []byte) (*Attributes, error) {
	attributes, err := decodeRecord[Attributes](data, AttributesSize, "attributes")
	if err != nil {
		return nil, err
	}
	if err := checkMagic(attributes.Header[:], attributesMagic, "attributes"); err != nil {
		return nil, err
	}
	return attributes, nil
}

// EncodeAttributes encodes the attributes into the contents of a sample
// attributes file.
func EncodeAttributes(attributes *Attributes) ([]byte, error) {
	return encodeRecord(attributes, AttributesSize, "attributes")
}

func (b *Bank) validateMagic() error {
	if err := checkMagic(b.Header[:], bankMagic, "bank"); err != nil {
		return err
	}
	for i := range b.Patterns {
		if err := b.Patterns[i].validateMagic(fmt.Sprintf("pattern %v", i+1)); err != nil {
			return err
		}
	}
	for i := range b.Parts.Saved {
		if err := checkMagic(b.Parts.Saved[i].Header[:], partMagic, fmt.Sprintf("saved part %v", i+1)); err != nil {
			return err
		}
		if err := checkMagic(b.Parts.Unsaved[i].Header[:], partMagic, fmt.Sprintf("unsaved part %v", i+1)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pattern) validateMagic(what string) error {
	if err := checkMagic(p.Header[:], patternMagic, what); err != nil {
		return err
	}
	for track := range p.AudioTracks {
		if err := checkMagic(p.AudioTracks[track].Header[:], audioTrackMagic, fmt.Sprintf("%s audio track %v", what, track+1)); err != nil {
			return err
		}
	}
	for track := range p.MidiTracks {
		if err := checkMagic(p.MidiTracks[track].Header[:], midiTrackMagic, fmt.Sprintf("%s midi track %v", what, track+1)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Project) MarshalBinary() ([]byte, error) { return EncodeProject(p) }

func (p *Project) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeProject(data)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

func (b *Bank) MarshalBinary() ([]byte, error) { return EncodeBank(b) }

func (b *Bank) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeBank(data)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

func (a *Arrangement) MarshalBinary() ([]byte, error) { return EncodeArrangement(a) }

func (a *Arrangement) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeArrangement(data)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}

func (a *Attributes) MarshalBinary() ([]byte, error) { return EncodeAttributes(a) }

func (a *Attributes) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeAttributes(data)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}

// BankRawBytes is a bank file kept as its flat bytes, for inspecting the
// undocumented regions of the format. It has no encode path: raw bytes are
// never written back through the typed bank codec.
type BankRawBytes []byte

// DecodeBankRawBytes validates only the size of data and returns a copy of
// it. The header is deliberately not checked, so that corrupt banks the
// typed codec rejects can still be inspected.
func DecodeBankRawBytes(data []byte) (BankRawBytes, error) {
	if len(data) != BankSize {
		return nil, fmt.Errorf("%w: bank is %v bytes, expected %v", ErrMalformed, len(data), BankSize)
	}
	return append(BankRawBytes(nil), data...), nil
}

// Pattern returns the bytes of the pattern at the 1-based index.
func (r BankRawBytes) Pattern(index int) ([]byte, error) {
	if err := ValidateIndexList([]int{index}, NumPatterns); err != nil {
		return nil, err
	}
	offset := bankHeaderSize + (index-1)*PatternSize
	return r[offset : offset+PatternSize], nil
}

// SavedPart and UnsavedPart return the bytes of the part at the 1-based
// index.
func (r BankRawBytes) SavedPart(index int) ([]byte, error) {
	if err := ValidateIndexList([]int{index}, NumParts); err != nil {
		return nil, err
	}
	offset := bankHeaderSize + NumPatterns*PatternSize + (index-1)*PartSize
	return r[offset : offset+PartSize], nil
}

func (r BankRawBytes) UnsavedPart(index int) ([]byte, error) {
	if err := ValidateIndexList([]int{index}, NumParts); err != nil {
		return nil, err
	}
	offset := bankHeaderSize + NumPatterns*PatternSize + (NumParts+index-1)*PartSize
	return r[offset : offset+PartSize], nil
}

// Checksum returns the trailing checksum bytes of the bank.
func (r BankRawBytes) Checksum() []byte {
	return r[BankSize-2:]
}
