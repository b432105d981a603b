package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/octark/octark"
	"github.com/octark/octark/version"
)

func main() {
	jsonOut := flag.Bool("j", false, "Output parsed records as .json instead of .yml.")
	binOut := flag.Bool("b", false, "Convert a .yml or .json record back to the device binary format. Requires -t.")
	recordType := flag.String("t", "", "Record type for -b: project, bank, arrangement or attributes.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original file is.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	safe := flag.Bool("n", false, "Never overwrite files; if the output file already exists, give an error.")
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
	if *binOut && *recordType == "" {
		fmt.Fprintf(os.Stderr, "-b requires a record type; use -t project, -t bank, -t arrangement or -t attributes\n")
		os.Exit(1)
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			_, name := filepath.Split(filename)
			var dir string
			if *directory != "" {
				dir = *directory
			} else {
				var err error
				dir, err = filepath.Abs(filepath.Dir(filename))
				if err != nil {
					return fmt.Errorf("could not get absolute path to input file: %v", err)
				}
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if *safe {
				if _, err := os.Stat(f); err == nil {
					return fmt.Errorf("file %v already exists", f)
				}
			}
			err = os.MkdirAll(dir, os.ModePerm)
			if err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			err = os.WriteFile(f, contents, 0644)
			if err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		if *binOut {
			contents, extension, err := parseRecord(*recordType, inputBytes)
			if err != nil {
				return err
			}
			return output(extension, contents)
		}
		record, err := octark.Decode(inputBytes)
		if err != nil {
			return err
		}
		if *jsonOut {
			contents, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("could not marshal record: %v", err)
			}
			return output(".json", contents)
		}
		contents, err := yaml.Marshal(record)
		if err != nil {
			return fmt.Errorf("could not marshal record: %v", err)
		}
		return output(".yml", contents)
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not convert %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

// parseRecord parses a record of the given type from .json or .yml and
// returns its device binary form, along with the file extension the
// device expects for it.
func parseRecord(recordType string, inputBytes []byte) ([]byte, string, error) {
	unmarshal := func(value any) error {
		if errJSON := json.Unmarshal(inputBytes, value); errJSON != nil {
			if errYaml := yaml.Unmarshal(inputBytes, value); errYaml != nil {
				return fmt.Errorf("the record could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
			}
		}
		return nil
	}
	switch recordType {
	case "project":
		var project octark.Project
		if err := unmarshal(&project); err != nil {
			return nil, "", err
		}
		contents, err := octark.EncodeProject(&project)
		return contents, ".work", err
	case "bank":
		var bank octark.Bank
		if err := unmarshal(&bank); err != nil {
			return nil, "", err
		}
		contents, err := octark.EncodeBank(&bank)
		return contents, ".work", err
	case "arrangement":
		var arrangement octark.Arrangement
		if err := unmarshal(&arrangement); err != nil {
			return nil, "", err
		}
		contents, err := octark.EncodeArrangement(&arrangement)
		return contents, ".work", err
	case "attributes":
		var attributes octark.Attributes
		if err := unmarshal(&attributes); err != nil {
			return nil, "", err
		}
		contents, err := octark.EncodeAttributes(&attributes)
		return contents, ".ot", err
	}
	return nil, "", fmt.Errorf("unknown record type %q; use project, bank, arrangement or attributes", recordType)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Convert device binary records to .yml or .json and back.\nUsage: %s [flags] [file ...]\n", os.Args[0])
	flag.PrintDefaults()
}
