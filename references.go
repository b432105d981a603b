package octark

import "sort"

// SlotUsage is one sample slot reference found in a pattern trig or a part
// machine assignment. Active is true when the referenced id resolves to a
// slot that actually carries a loaded sample, i.e. one with a non-empty
// path.
type SlotUsage struct {
	SlotID int
	Type   SampleType
	Active bool
}

// ScanSlotReferences walks every audio track trig step of the given patterns
// and every machine assignment of the given parts and returns one usage per
// sample reference byte that is not Unlocked. Midi tracks carry no sample
// references and are skipped. Usages are sorted ascending by slot id with a
// stable sort, so references to the same slot keep their pattern-then-part,
// track-then-step scan order; duplicates are preserved because callers need
// raw usage counts. Filtering, such as dropping usages of empty slots, is
// caller policy.
func ScanSlotReferences(project *Project, patterns []Pattern, parts []Part) []SlotUsage {
	var usages []SlotUsage
	scan := func(staticByte, flexByte uint8) {
		if usage, ok := staticSlotUsage(staticByte, project); ok {
			usages = append(usages, usage)
		}
		if usage, ok := flexSlotUsage(flexByte, project); ok {
			usages = append(usages, usage)
		}
	}
	for p := range patterns {
		for track := range patterns[p].AudioTracks {
			steps := &patterns[p].AudioTracks[track].Steps
			for step := range steps {
				scan(steps[step].StaticSlotID, steps[step].FlexSlotID)
			}
		}
	}
	for p := range parts {
		for track := range parts[p].Machines {
			scan(parts[p].Machines[track].StaticSlotID, parts[p].Machines[track].FlexSlotID)
		}
	}
	sort.SliceStable(usages, func(i, j int) bool {
		return usages[i].SlotID < usages[j].SlotID
	})
	return usages
}

// staticSlotUsage maps a static reference byte to a usage. The byte is the
// 0-based slot id; Unlocked references nothing.
func staticSlotUsage(b uint8, project *Project) (SlotUsage, bool) {
	if b == Unlocked {
		return SlotUsage{}, false
	}
	return resolveUsage(Static, int(b)+1, project), true
}

// flexSlotUsage maps a flex reference byte to a usage. Bytes below 128 are
// 0-based flex slot ids; 128..254 address the recorder buffers, 128 being
// recorder buffer 1.
func flexSlotUsage(b uint8, project *Project) (SlotUsage, bool) {
	switch {
	case b == Unlocked:
		return SlotUsage{}, false
	case b >= 128:
		return resolveUsage(RecorderBuffer, int(b)-127, project), true
	}
	return resolveUsage(Flex, int(b)+1, project), true
}

func resolveUsage(t SampleType, id int, project *Project) SlotUsage {
	slot, found := project.FindSlot(t, id)
	return SlotUsage{
		SlotID: id,
		Type:   t,
		Active: found && slot.Path != "",
	}
}
