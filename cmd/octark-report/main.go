package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/octark/octark"
	"github.com/octark/octark/version"
)

func main() {
	directory := flag.String("o", "", "Directory where to output the reports as .txt files, one per project. By default, reports are written to standard output.")
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
		report, err := octark.NewProjectReport(dir)
		if err != nil {
			return err
		}
		if *directory == "" {
			return report.Render(os.Stdout)
		}
		buf := new(bytes.Buffer)
		if err := report.Render(buf); err != nil {
			return err
		}
		if err := os.MkdirAll(*directory, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", *directory, err)
		}
		name := filepath.Base(filepath.Clean(path)) + ".txt"
		f := filepath.Join(*directory, name)
		if err := os.WriteFile(f, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not report %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Print a summary report of project directories: slots, usages, banks and patterns.\nUsage: %s [flags] [projectdir ...]\n", os.Args[0])
	flag.PrintDefaults()
}
