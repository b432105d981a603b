package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/octark/octark"
	"github.com/octark/octark/version"
)

func main() {
	banksFlag := flag.String("b", "all", "Comma separated list of 1-based banks to scan, or \"all\" for every bank file present.")
	patternsFlag := flag.String("p", "", "Comma separated list of 1-based patterns to show for every scanned bank.")
	partsFlag := flag.String("a", "", "Comma separated list of 1-based parts to show for every scanned bank.")
	usagesFlag := flag.Bool("u", false, "List every single slot reference instead of the per-slot summary.")
	excludeEmpty := flag.Bool("e", false, "Leave out slots and references that carry no sample.")
	yamlOut := flag.Bool("y", false, "Output as YAML.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	given := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { given[f.Name] = true })
	process := func(path string) error {
		dir, err := octark.OpenProjectDir(path)
		if err != nil {
			return err
		}
		var banks []int
		allBanks := *banksFlag == "all"
		if allBanks {
			for bank := 1; bank <= octark.NumBanks; bank++ {
				banks = append(banks, bank)
			}
		} else {
			if banks, err = parseIndexList(*banksFlag); err != nil {
				return err
			}
			if err = octark.ValidateIndexList(banks, octark.NumBanks); err != nil {
				return err
			}
		}
		var patterns, parts []int
		if given["p"] {
			if patterns, err = parseIndexList(*patternsFlag); err != nil {
				return err
			}
			if err = octark.ValidateIndexList(patterns, octark.NumPatterns); err != nil {
				return err
			}
		}
		if given["a"] {
			if parts, err = parseIndexList(*partsFlag); err != nil {
				return err
			}
			if err = octark.ValidateIndexList(parts, octark.NumParts); err != nil {
				return err
			}
		}
		project, err := dir.LoadProject()
		if err != nil {
			return err
		}
		type loadedBank struct {
			number int
			bank   *octark.Bank
		}
		var loaded []loadedBank
		for _, number := range banks {
			bank, err := dir.LoadBank(number)
			if err != nil {
				if allBanks && errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return err
			}
			loaded = append(loaded, loadedBank{number: number, bank: bank})
		}
		if len(patterns) > 0 || len(parts) > 0 {
			for _, lb := range loaded {
				for _, pattern := range patterns {
					printPattern(lb.number, pattern, lb.bank)
				}
				for _, part := range parts {
					printPart(lb.number, part, lb.bank)
				}
			}
			return nil
		}
		var allPatterns []octark.Pattern
		var allParts []octark.Part
		for _, lb := range loaded {
			allPatterns = append(allPatterns, lb.bank.Patterns[:]...)
			allParts = append(allParts, lb.bank.Parts.Saved[:]...)
			allParts = append(allParts, lb.bank.Parts.Unsaved[:]...)
		}
		usages := octark.ScanSlotReferences(project, allPatterns, allParts)
		if *usagesFlag {
			if *excludeEmpty {
				var kept []octark.SlotUsage
				for _, usage := range usages {
					if usage.Active {
						kept = append(kept, usage)
					}
				}
				usages = kept
			}
			if *yamlOut {
				out, err := yaml.Marshal(usages)
				if err != nil {
					return fmt.Errorf("could not marshal usages: %v", err)
				}
				fmt.Print(string(out))
				return nil
			}
			for _, usage := range usages {
				state := "active"
				if !usage.Active {
					state = "inactive"
				}
				fmt.Printf("%v slot %v (%v)\n", usage.Type, usage.SlotID, state)
			}
			return nil
		}
		counts := make(map[octark.SlotUsage]int)
		for _, usage := range usages {
			usage.Active = false
			counts[usage]++
		}
		var slots []octark.SlotReport
		for _, slot := range project.AllSlots() {
			if *excludeEmpty && slot.Path == "" {
				continue
			}
			slots = append(slots, octark.SlotReport{
				Slot:   slot,
				Usages: counts[octark.SlotUsage{SlotID: slot.ID, Type: slot.Type}],
				Active: slot.Path != "",
			})
		}
		if *yamlOut {
			out, err := yaml.Marshal(slots)
			if err != nil {
				return fmt.Errorf("could not marshal slots: %v", err)
			}
			fmt.Print(string(out))
			return nil
		}
		for _, s := range slots {
			path := s.Slot.Path
			if path == "" {
				path = "<empty>"
			}
			fmt.Printf("%-9s %3d  %-40s gain %3d  %7.2f BPM  %v usages\n",
				s.Slot.Type, s.Slot.ID, path, s.Slot.Gain, s.Slot.BPM, s.Usages)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not list %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printPattern(bank, index int, b *octark.Bank) {
	pattern, err := b.Pattern(index)
	if err != nil {
		return
	}
	fmt.Printf("bank %02d pattern %02d: %v trigs\n", bank, index, pattern.TrigCount())
	for track := range pattern.AudioTracks {
		t := &pattern.AudioTracks[track]
		fmt.Printf("  T%d    len %2d scale %d swing %2d  trigs %2d\n",
			track+1, t.Length, t.Scale, t.SwingAmount, t.TrigMask.Count())
	}
	for track := range pattern.MidiTracks {
		t := &pattern.MidiTracks[track]
		fmt.Printf("  MIDI%d len %2d scale %d swing %2d  trigs %2d\n",
			track+1, t.Length, t.Scale, t.SwingAmount, t.TrigMask.Count())
	}
}

func printPart(bank, index int, b *octark.Bank) {
	part, err := b.SavedPart(index)
	if err != nil {
		return
	}
	fmt.Printf("bank %02d part %d %q\n", bank, index, b.PartName(index))
	for track := range part.Machines {
		m := part.Machines[track]
		fmt.Printf("  T%d  %-9s vol %3d  static %s  flex %s\n",
			track+1, m.Machine, part.TrackVolumes[track],
			refString(m.StaticSlotID, false), refString(m.FlexSlotID, true))
	}
}

func refString(b uint8, flex bool) string {
	switch {
	case b == octark.Unlocked:
		return "-"
	case flex && b >= 128:
		return fmt.Sprintf("recorder %d", b-127)
	}
	return strconv.Itoa(int(b) + 1)
}

func parseIndexList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var indexes []int
	for _, field := range strings.Split(s, ",") {
		index, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("bad index %q: %v", field, err)
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "List the sample slots, slot references, patterns and parts of project directories.\nUsage: %s [flags] [projectdir ...]\n", os.Args[0])
	flag.PrintDefaults()
}
