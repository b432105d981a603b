package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/octark/octark"
	"github.com/octark/octark/version"
)

func main() {
	yamlOut := flag.Bool("y", false, "Output as YAML instead of CSV.")
	outFile := flag.String("o", "", "File to write the index to. By default the index is written to standard output.")
	compatibleOnly := flag.Bool("c", false, "Index only audio files the device can load directly.")
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
	if *outFile != "" && flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "-o works with a single set root only\n")
		os.Exit(1)
	}
	process := func(root string, w io.Writer) error {
		set, err := octark.ScanSet(root)
		if err != nil {
			return err
		}
		if *compatibleOnly {
			var kept []octark.SampleFile
			for _, sample := range set.Samples {
				if sample.Compatible {
					kept = append(kept, sample)
				}
			}
			set.Samples = kept
		}
		if *yamlOut {
			out, err := yaml.Marshal(set)
			if err != nil {
				return fmt.Errorf("could not marshal set: %v", err)
			}
			_, err = w.Write(out)
			return err
		}
		return set.WriteCSV(w)
	}
	var w io.Writer = os.Stdout
	var f *os.File
	if *outFile != "" {
		var err error
		if f, err = os.Create(*outFile); err != nil {
			fmt.Fprintf(os.Stderr, "could not create %v: %v\n", *outFile, err)
			os.Exit(1)
		}
		w = f
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param, w); err != nil {
			fmt.Fprintf(os.Stderr, "could not index %v: %v\n", param, err)
			retval = 1
		}
	}
	if f != nil {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "could not close %v: %v\n", *outFile, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Index the audio files and projects of set directories.\nUsage: %s [flags] [setdir ...]\n", os.Args[0])
	flag.PrintDefaults()
}
