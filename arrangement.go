package octark

type (
	// Arrangement is one of the 8 arrangement files of a project: a name and
	// 256 fixed-size rows chaining bank patterns together. The row semantics
	// beyond the codec are out of scope here; arrangements are round-tripped
	// so that tools rewriting a project directory do not lose them.
	Arrangement struct {
		Header   [22]byte
		Name     [16]byte
		Rows     [256]ArrangementRow
		Unknown  [128]byte
		Checksum [2]byte
	}

	// ArrangementRow is one row of an arrangement. BPMX24 is the tempo in
	// BPM times 24, 0 meaning the tempo is left as it is. MuteMask has bit t
	// set when audio track t+1 plays muted during this row.
	ArrangementRow struct {
		RowType   uint8
		Bank      uint8
		Pattern   uint8
		Repeats   uint8
		Offset    uint16
		RowLength uint16
		BPMX24    uint16
		MuteMask  uint16
	}
)

// NewArrangement returns a blank arrangement with the given name. Names
// longer than the 16-byte name field are truncated.
func NewArrangement(name string) *Arrangement {
	var arrangement Arrangement
	copy(arrangement.Header[:], arrangementMagic)
	putFixedString(arrangement.Name[:], name)
	return &arrangement
}

// Title returns the arrangement name with the NUL padding stripped.
func (a *Arrangement) Title() string {
	return fixedString(a.Name[:])
}

// SetTitle renames the arrangement, truncating to the 16-byte name field.
func (a *Arrangement) SetTitle(name string) {
	putFixedString(a.Name[:], name)
}
