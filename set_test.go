package octark_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/octark/octark"
)

func writeSetFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("cannot create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("cannot write %v: %v", path, err)
	}
}

func TestScanSet(t *testing.T) {
	root := t.TempDir()
	kick, err := octark.AudioBuffer{{0.5, -0.5}}.Wav(true)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	pad, err := octark.AudioBuffer{{0.25, -0.25}}.Wav(false)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	attributes, err := octark.EncodeAttributes(octark.NewAttributes())
	if err != nil {
		t.Fatalf("EncodeAttributes failed: %v", err)
	}
	project, err := octark.EncodeProject(octark.NewProject())
	if err != nil {
		t.Fatalf("EncodeProject failed: %v", err)
	}
	writeSetFile(t, filepath.Join(root, "AUDIO", "kick.wav"), kick)
	writeSetFile(t, filepath.Join(root, "AUDIO", "kick.ot"), attributes)
	writeSetFile(t, filepath.Join(root, "AUDIO", "pad.wav"), pad)
	writeSetFile(t, filepath.Join(root, "AUDIO", "broken.wav"), []byte("RIFFjunk"))
	writeSetFile(t, filepath.Join(root, "PROJ1", octark.ProjectFileName), project)
	writeSetFile(t, filepath.Join(root, "notes.txt"), []byte("not audio"))

	set, err := octark.ScanSet(root)
	if err != nil {
		t.Fatalf("ScanSet failed: %v", err)
	}
	if !reflect.DeepEqual(set.Projects, []string{"PROJ1"}) {
		t.Errorf("projects are %v, expected [PROJ1]", set.Projects)
	}
	if len(set.Samples) != 2 {
		t.Fatalf("%v samples indexed, expected 2", len(set.Samples))
	}
	wantKick := octark.SampleFile{
		Path:          "AUDIO/kick.wav",
		Size:          int64(len(kick)),
		SampleRate:    44100,
		Channels:      2,
		Bits:          16,
		Frames:        1,
		Compatible:    true,
		HasAttributes: true,
	}
	if !reflect.DeepEqual(set.Samples[0], wantKick) {
		t.Errorf("first sample is %+v, expected %+v", set.Samples[0], wantKick)
	}
	wantPad := octark.SampleFile{
		Path:       "AUDIO/pad.wav",
		Size:       int64(len(pad)),
		SampleRate: 44100,
		Channels:   2,
		Bits:       32,
		Float:      true,
		Frames:     1,
	}
	if !reflect.DeepEqual(set.Samples[1], wantPad) {
		t.Errorf("second sample is %+v, expected %+v", set.Samples[1], wantPad)
	}

	var buf bytes.Buffer
	if err := set.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %v lines, expected 3", len(lines))
	}
	if lines[0] != "path,size,rate,channels,bits,float,frames,compatible,attributes" {
		t.Errorf("csv header is %q", lines[0])
	}
	if want := "AUDIO/kick.wav,48,44100,2,16,false,1,true,true"; lines[1] != want {
		t.Errorf("csv row is %q, expected %q", lines[1], want)
	}
	if want := "AUDIO/pad.wav,66,44100,2,32,true,1,false,false"; lines[2] != want {
		t.Errorf("csv row is %q, expected %q", lines[2], want)
	}
}

func TestScanSetErrors(t *testing.T) {
	if _, err := octark.ScanSet(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, expected fs.ErrNotExist", err)
	}
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("cannot write file: %v", err)
	}
	if _, err := octark.ScanSet(file); !errors.Is(err, octark.ErrNotADirectory) {
		t.Errorf("got %v, expected ErrNotADirectory", err)
	}
}

func TestAttributesPath(t *testing.T) {
	cases := [][2]string{
		{"a/b/sample.wav", "a/b/sample.ot"},
		{"KICK.WAV", "KICK.ot"},
		{"noext", "noext.ot"},
	}
	for _, c := range cases {
		if got := octark.AttributesPath(c[0]); got != c[1] {
			t.Errorf("AttributesPath(%q) is %q, expected %q", c[0], got, c[1])
		}
	}
}
