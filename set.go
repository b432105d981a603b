package octark

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

type (
	// Set describes the contents of one removable media root: the audio
	// files of its pool and the project directories on it.
	Set struct {
		Path     string
		Projects []string
		Samples  []SampleFile
	}

	// SampleFile is one audio file of a set, with the format information the
	// device cares about. Path is relative to the set root, with forward
	// slashes regardless of platform so that indexes diff cleanly.
	// HasAttributes is set when an attributes file sits beside the audio
	// file.
	SampleFile struct {
		Path          string
		Size          int64
		SampleRate    int
		Channels      int
		Bits          int
		Float         bool
		Frames        int
		Compatible    bool
		HasAttributes bool
	}
)

// ScanSet walks the directory tree under root and indexes every .wav file
// and every project directory it finds. The walk is lexical, so the index
// order is deterministic. Audio files whose headers do not parse are
// skipped rather than fatal: a set usually carries unrelated files too.
func ScanSet(root string) (*Set, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not open set: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %v", ErrNotADirectory, root)
	}
	set := &Set{Path: root}
	err = filepath.WalkDir(root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.Name() == ProjectFileName {
			set.Projects = append(set.Projects, path.Dir(rel))
			return nil
		}
		if !strings.EqualFold(filepath.Ext(file), ".wav") {
			return nil
		}
		sample, err := scanSampleFile(file, rel)
		if err != nil {
			return nil
		}
		set.Samples = append(set.Samples, sample)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not scan set %v: %w", root, err)
	}
	return set, nil
}

// AttributesPath returns the path of the attributes file kept beside an
// audio file: sample.wav becomes sample.ot.
func AttributesPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".ot"
}

func scanSampleFile(file, rel string) (SampleFile, error) {
	f, err := os.Open(file)
	if err != nil {
		return SampleFile{}, err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return SampleFile{}, err
	}
	info, err := ReadWavInfo(f)
	if err != nil {
		return SampleFile{}, err
	}
	sample := SampleFile{
		Path:       rel,
		Size:       stat.Size(),
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		Bits:       info.Bits,
		Float:      info.Float,
		Frames:     info.Frames,
		Compatible: info.Compatible(),
	}
	if _, err := os.Stat(AttributesPath(file)); err == nil {
		sample.HasAttributes = true
	}
	return sample, nil
}

// WriteCSV writes the sample index as CSV, one row per audio file.
func (s *Set) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"path", "size", "rate", "channels", "bits", "float", "frames", "compatible", "attributes"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("could not write csv: %w", err)
	}
	for _, sample := range s.Samples {
		row := []string{
			sample.Path,
			strconv.FormatInt(sample.Size, 10),
			strconv.Itoa(sample.SampleRate),
			strconv.Itoa(sample.Channels),
			strconv.Itoa(sample.Bits),
			strconv.FormatBool(sample.Float),
			strconv.Itoa(sample.Frames),
			strconv.FormatBool(sample.Compatible),
			strconv.FormatBool(sample.HasAttributes),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
