package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/octark/octark"
	"github.com/octark/octark/version"
)

func main() {
	dryRun := flag.Bool("n", false, "Do not modify any files; just print the reassignment plan.")
	quiet := flag.Bool("q", false, "Print nothing but errors.")
	yamlOut := flag.Bool("y", false, "Output the plan as YAML.")
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
		var plan []octark.Reassignment
		if *dryRun {
			plan, err = dir.DeduplicationPlan()
		} else {
			plan, err = dir.Deduplicate()
		}
		if err != nil {
			return err
		}
		if *quiet {
			return nil
		}
		if *yamlOut {
			out, err := yaml.Marshal(plan)
			if err != nil {
				return fmt.Errorf("could not marshal plan: %v", err)
			}
			fmt.Print(string(out))
			return nil
		}
		if len(plan) == 0 {
			fmt.Printf("%v: no duplicate slots\n", path)
			return nil
		}
		for _, r := range plan {
			fmt.Printf("%v: %v slot %v -> %v\n", path, r.Type, r.InitialSlotID, r.NewSlotID)
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not deduplicate %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Merge duplicate sample slots of project directories and rewrite all bank references to them.\nBackups of every modified file are kept with a .bak suffix.\nUsage: %s [flags] [projectdir ...]\n", os.Args[0])
	flag.PrintDefaults()
}
