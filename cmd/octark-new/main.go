package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/octark/octark"
	"github.com/octark/octark/version"
)

func main() {
	force := flag.Bool("f", false, "Overwrite an existing project in the directory.")
	arrangements := flag.Bool("a", false, "Also create the 8 blank arrangement files.")
	tempo := flag.Float64("t", 120, "Tempo of the new project in BPM.")
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
		if err := os.MkdirAll(path, os.ModePerm); err != nil {
			return fmt.Errorf("could not create directory %v: %v", path, err)
		}
		dir, err := octark.OpenProjectDir(path)
		if err != nil {
			return err
		}
		if !*force {
			if _, err := os.Stat(dir.ProjectPath()); err == nil {
				return fmt.Errorf("%v already exists; use -f to overwrite", dir.ProjectPath())
			}
		}
		project := octark.NewProject()
		project.Mixer.SetBPM(*tempo)
		if err := dir.SaveProject(project); err != nil {
			return err
		}
		for bank := 1; bank <= octark.NumBanks; bank++ {
			if err := dir.SaveBank(bank, octark.NewBank()); err != nil {
				return err
			}
		}
		if *arrangements {
			for arrangement := 1; arrangement <= octark.NumArrangements; arrangement++ {
				a := octark.NewArrangement(fmt.Sprintf("ARR %02d", arrangement))
				if err := dir.SaveArrangement(arrangement, a); err != nil {
					return err
				}
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not create project %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Create blank project directories: project.work and the 16 blank banks.\nUsage: %s [flags] [projectdir ...]\n", os.Args[0])
	flag.PrintDefaults()
}
