package octark

// Reassignment is one planned slot id substitution: every reference to
// InitialSlotID of the given kind is to be replaced by NewSlotID. Whether
// the ids are 0- or 1-based depends on where the plan sits in the
// deduplication flow: plans are computed and applied on the 0-based form the
// reference bytes use.
type Reassignment struct {
	InitialSlotID int
	NewSlotID     int
	Type          SampleType
}

// PlanDeduplication splits slots into the ones to retain and a reassignment
// plan for the rest. The first slot seen of an equivalence class (every
// attribute equal except the id) is retained as canonical; each later match
// is dropped and yields a reassignment pointing at the canonical slot.
// First-seen order decides ties, so the result is deterministic. Slots of
// different kinds never merge, as the kind is part of the equivalence.
func PlanDeduplication(slots []SampleSlot) ([]SampleSlot, []Reassignment) {
	retained := make([]SampleSlot, 0, len(slots))
	var plan []Reassignment
	canonical := make(map[SampleSlot]int, len(slots))
	for _, slot := range slots {
		key := slot
		key.ID = 0
		if id, ok := canonical[key]; ok {
			plan = append(plan, Reassignment{InitialSlotID: slot.ID, NewSlotID: id, Type: slot.Type})
			continue
		}
		canonical[key] = slot.ID
		retained = append(retained, slot)
	}
	return retained, plan
}

// RewriteSlotReferences applies a reassignment plan to every pattern and
// every part, saved and unsaved, of every given bank. Plan ids must be the
// 0-based form the reference bytes store. The pass is exhaustive: a missed
// occurrence would leave a trig pointing at a slot that no longer exists
// after the slot list is compacted. RecorderBuffer reassignments are a
// no-op, as recorder buffers are not slot table entries addressed this way.
// Re-running with a stale plan against already rewritten banks is a caller
// error that is not detected here.
func RewriteSlotReferences(plan []Reassignment, banks []*Bank) {
	for _, r := range plan {
		if r.Type == RecorderBuffer {
			continue
		}
		for _, bank := range banks {
			bank.rewriteSlotReferences(r.Type, uint8(r.InitialSlotID), uint8(r.NewSlotID))
		}
	}
}

func (b *Bank) rewriteSlotReferences(t SampleType, from, to uint8) {
	for p := range b.Patterns {
		for track := range b.Patterns[p].AudioTracks {
			steps := &b.Patterns[p].AudioTracks[track].Steps
			for step := range steps {
				steps[step].rewriteSlotReference(t, from, to)
			}
		}
	}
	for part := range b.Parts.Saved {
		for track := range b.Parts.Saved[part].Machines {
			b.Parts.Saved[part].Machines[track].rewriteSlotReference(t, from, to)
		}
		for track := range b.Parts.Unsaved[part].Machines {
			b.Parts.Unsaved[part].Machines[track].rewriteSlotReference(t, from, to)
		}
	}
}

func (p *TrigProperties) rewriteSlotReference(t SampleType, from, to uint8) {
	switch t {
	case Static:
		if p.StaticSlotID == from {
			p.StaticSlotID = to
		}
	case Flex:
		if p.FlexSlotID == from {
			p.FlexSlotID = to
		}
	}
}

func (m *MachineSlot) rewriteSlotReference(t SampleType, from, to uint8) {
	switch t {
	case Static:
		if m.StaticSlotID == from {
			m.StaticSlotID = to
		}
	case Flex:
		if m.FlexSlotID == from {
			m.FlexSlotID = to
		}
	}
}

// zeroIndexSlots and oneIndexSlots convert slot ids between the 1-based form
// of the slot tables and the 0-based form of the reference bytes. The
// deduplication flow plans and rewrites on the 0-based form and converts
// back before anything is persisted.
func zeroIndexSlots(slots []SampleSlot) {
	for i := range slots {
		slots[i].ID--
	}
}

func oneIndexSlots(slots []SampleSlot) {
	for i := range slots {
		slots[i].ID++
	}
}
