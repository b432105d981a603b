package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/octark/octark"
	"github.com/octark/octark/version"
)

func main() {
	bankFlag := flag.Int("b", 1, "1-based bank to export patterns from.")
	patternsFlag := flag.String("p", "all", "Comma separated list of 1-based patterns to export, or \"all\" for every pattern that contains trigs.")
	directory := flag.String("o", "", "Directory where to output the .mid files. The directory and its parents are created if needed. By default, the files are placed in the project directory.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
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
	process := func(path string) error {
		dir, err := octark.OpenProjectDir(path)
		if err != nil {
			return err
		}
		project, err := dir.LoadProject()
		if err != nil {
			return err
		}
		bank, err := dir.LoadBank(*bankFlag)
		if err != nil {
			return err
		}
		var patterns []int
		if *patternsFlag == "all" {
			for index := 1; index <= octark.NumPatterns; index++ {
				if bank.Patterns[index-1].TrigCount() > 0 {
					patterns = append(patterns, index)
				}
			}
			if len(patterns) == 0 {
				fmt.Fprintf(os.Stderr, "%v: bank %v has no patterns with trigs\n", path, *bankFlag)
				return nil
			}
		} else {
			if patterns, err = parseIndexList(*patternsFlag); err != nil {
				return err
			}
		}
		if err := octark.ValidateIndexList(patterns, octark.NumPatterns); err != nil {
			return err
		}
		outDir := path
		if *directory != "" {
			outDir = *directory
		}
		for _, pattern := range patterns {
			s, err := octark.PatternSMF(bank, pattern, project.Mixer.BPM())
			if err != nil {
				return err
			}
			buf := new(bytes.Buffer)
			if _, err := s.WriteTo(buf); err != nil {
				return fmt.Errorf("could not serialize midi file: %v", err)
			}
			if *stdout {
				if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
					return err
				}
				continue
			}
			if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", outDir, err)
			}
			name := fmt.Sprintf("bank%02d-pattern%02d.mid", *bankFlag, pattern)
			f := filepath.Join(outDir, name)
			if err := os.WriteFile(f, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not export %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
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
	fmt.Fprintf(os.Stderr, "Export the patterns of a bank as standard midi files.\nUsage: %s [flags] [projectdir ...]\n", os.Args[0])
	flag.PrintDefaults()
}
