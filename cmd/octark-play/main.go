package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/octark/octark"
	"github.com/octark/octark/oto"
	"github.com/octark/octark/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	rawOut := flag.Bool("r", false, "Output the sample as .raw stereo float32 buffer. By default, saves it to disk.")
	wavOut := flag.Bool("w", false, "Output the sample as .wav file. By default, saves it to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	play := flag.Bool("p", false, "Play the sample (default behaviour when no other output is defined).")
	normalize := flag.Bool("n", false, "Normalize the sample to full scale before applying any gain.")
	applyAttributes := flag.Bool("a", false, "Apply the gain of the attributes file kept beside the sample.")
	gain := flag.Int("g", octark.DefaultGain, "Gain to apply, half decibel steps with 48 = 0 dB.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original sample file is.")
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
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	var audioContext octark.AudioContext
	if *play {
		var err error
		audioContext, err = oto.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating audio context: %v\n", err)
			os.Exit(1)
		}
		defer audioContext.Close()
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				if _, err := os.Stdout.Write(contents); err != nil {
					return err
				}
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
			if absIn, err := filepath.Abs(filename); err == nil {
				if absOut, err := filepath.Abs(f); err == nil && absOut == absIn {
					return fmt.Errorf("writing %v would overwrite the input sample; use -o", f)
				}
			}
			err := os.MkdirAll(dir, os.ModePerm)
			if err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			err = os.WriteFile(f, contents, 0644)
			if err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		buffer, info, err := octark.DecodeWav(inputBytes)
		if err != nil {
			return err
		}
		if *normalize {
			buffer.Normalize()
		}
		if *applyAttributes {
			attributesBytes, err := os.ReadFile(octark.AttributesPath(filename))
			if err != nil {
				return fmt.Errorf("could not read attributes file: %v", err)
			}
			attributes, err := octark.DecodeAttributes(attributesBytes)
			if err != nil {
				return err
			}
			buffer.ApplyGain(octark.GainToLinear(int(attributes.Gain)))
		}
		if *gain != octark.DefaultGain {
			buffer.ApplyGain(octark.GainToLinear(*gain))
		}
		var playWaiter octark.CloserWaiter
		if *play {
			if info.SampleRate != 44100 {
				fmt.Fprintf(os.Stderr, "%v: playing a %v Hz sample at 44100 Hz\n", filename, info.SampleRate)
			}
			playWaiter = audioContext.Play(buffer.Source())
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not convert buffer to .raw: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := buffer.Wav(*pcm)
			if err != nil {
				return fmt.Errorf("could not convert buffer to .wav: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			playWaiter.Wait()
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		// if the parameter is a directory, process all .wav files in it
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files, err := filepath.Glob(filepath.Join(param, "*.wav"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for wav files: %v\n", param, err)
				retval = 1
				continue
			}
			for _, file := range files {
				err := process(file)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not process %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			err := process(param)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not process %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Play .wav samples with their slot gain applied, or export them as .wav or .raw.\nUsage: %s [flags] [file or directory ...]\n", os.Args[0])
	flag.PrintDefaults()
}
