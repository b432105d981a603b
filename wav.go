package octark

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

// WavInfo describes the format of a .wav file without its sample data.
type WavInfo struct {
	SampleRate int
	Channels   int
	Bits       int
	Float      bool
	Frames     int
}

// compatibleRates and compatibleBits list the audio specs the device loads
// directly; anything else needs conversion before it can be used in a slot.
var (
	compatibleRates = []int{44100}
	compatibleBits  = []int{16, 24}
)

// Compatible reports whether the device can load audio of this format
// directly.
func (info *WavInfo) Compatible() bool {
	return !info.Float &&
		slices.Contains(compatibleBits, info.Bits) &&
		slices.Contains(compatibleRates, info.SampleRate) &&
		info.Channels >= 1 && info.Channels <= 2
}

// ReadWavInfo parses the headers of a .wav stream, seeking past the sample
// data instead of reading it. Structural problems fail with ErrMalformed;
// formats the parser merely cannot decode do not, as the info may still be
// wanted for indexing.
func ReadWavInfo(r io.ReadSeeker) (*WavInfo, error) {
	info, _, _, err := parseWav(r)
	return info, err
}

// DecodeWav decodes a 16-bit, 24-bit or float32 .wav file into an
// AudioBuffer. Mono files play on both channels; more than two channels are
// not supported.
func DecodeWav(data []byte) (AudioBuffer, *WavInfo, error) {
	info, offset, size, err := parseWav(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	if info.Channels < 1 || info.Channels > 2 {
		return nil, nil, fmt.Errorf("unsupported wav: %v channels", info.Channels)
	}
	if offset+int64(size) > int64(len(data)) {
		return nil, nil, fmt.Errorf("%w: sample data extends past the end of the file", ErrMalformed)
	}
	samples := data[offset : offset+int64(size)]
	bytesPerSample := info.Bits / 8
	frameSize := bytesPerSample * info.Channels
	buffer := make(AudioBuffer, len(samples)/frameSize)
	for frame := range buffer {
		for channel := 0; channel < info.Channels; channel++ {
			b := samples[frame*frameSize+channel*bytesPerSample:]
			var v float32
			switch {
			case info.Float && info.Bits == 32:
				v = math.Float32frombits(binary.LittleEndian.Uint32(b))
			case !info.Float && info.Bits == 16:
				v = float32(int16(binary.LittleEndian.Uint16(b))) / (1 << 15)
			case !info.Float && info.Bits == 24:
				v = float32(int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24)>>8) / (1 << 23)
			default:
				return nil, nil, fmt.Errorf("unsupported wav: %v bits, float %v", info.Bits, info.Float)
			}
			buffer[frame][channel] = v
		}
		if info.Channels == 1 {
			buffer[frame][1] = buffer[frame][0]
		}
	}
	return buffer, info, nil
}

func parseWav(r io.ReadSeeker) (*WavInfo, int64, uint32, error) {
	var riff struct {
		Magic [4]byte
		Size  uint32
		Wave  [4]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: could not read riff header", ErrMalformed)
	}
	if string(riff.Magic[:]) != "RIFF" || string(riff.Wave[:]) != "WAVE" {
		return nil, 0, 0, fmt.Errorf("%w: not a wav file", ErrMalformed)
	}
	info := &WavInfo{}
	var haveFormat, haveData bool
	var blockAlign int
	var dataOffset int64
	var dataSize uint32
	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		err := binary.Read(r, binary.LittleEndian, &chunk)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, 0, 0, fmt.Errorf("%w: could not read chunk header", ErrMalformed)
		}
		// chunks are word aligned, odd sizes carry one pad byte
		skip := int64(chunk.Size) + int64(chunk.Size%2)
		switch string(chunk.ID[:]) {
		case "fmt ":
			var format struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if chunk.Size < 16 {
				return nil, 0, 0, fmt.Errorf("%w: fmt chunk is %v bytes", ErrMalformed, chunk.Size)
			}
			if err := binary.Read(r, binary.LittleEndian, &format); err != nil {
				return nil, 0, 0, fmt.Errorf("%w: truncated fmt chunk", ErrMalformed)
			}
			haveFormat = true
			info.Channels = int(format.Channels)
			info.SampleRate = int(format.SampleRate)
			info.Bits = int(format.BitsPerSample)
			info.Float = format.AudioFormat == 3
			blockAlign = int(format.BlockAlign)
			if format.AudioFormat != 1 && format.AudioFormat != 3 {
				return nil, 0, 0, fmt.Errorf("unsupported wav: format code %v", format.AudioFormat)
			}
			if _, err := r.Seek(skip-16, io.SeekCurrent); err != nil {
				return nil, 0, 0, fmt.Errorf("could not seek past fmt extension: %w", err)
			}
		case "data":
			offset, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("could not locate sample data: %w", err)
			}
			haveData = true
			dataOffset = offset
			dataSize = chunk.Size
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return nil, 0, 0, fmt.Errorf("could not seek past sample data: %w", err)
			}
		default:
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return nil, 0, 0, fmt.Errorf("could not seek past %q chunk: %w", chunk.ID[:], err)
			}
		}
	}
	if !haveFormat || !haveData {
		return nil, 0, 0, fmt.Errorf("%w: missing fmt or data chunk", ErrMalformed)
	}
	if blockAlign > 0 {
		info.Frames = int(dataSize) / blockAlign
	}
	return info, dataOffset, dataSize, nil
}
