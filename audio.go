package octark

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/viterin/vek/vek32"
)

type (
	// AudioBuffer is a buffer of stereo audio samples, each sample being a
	// [2]float32 left/right pair.
	AudioBuffer [][2]float32

	// AudioContext represents the low-level audio drivers. There should be
	// at most one AudioContext at a time. Play starts playing a stream of
	// interleaved 16-bit little endian stereo samples and returns without
	// blocking.
	AudioContext interface {
		Play(r io.Reader) CloserWaiter
		Close() error
	}

	// CloserWaiter is a handle to ongoing playback: Wait blocks until the
	// playback has finished, Close stops it early.
	CloserWaiter interface {
		Close() error
		Wait()
	}
)

// interleaved copies the buffer into a flat left-right interleaved form that
// the vek kernels and the audio drivers work on.
func (buffer AudioBuffer) interleaved() []float32 {
	flat := make([]float32, 2*len(buffer))
	for i, sample := range buffer {
		flat[2*i] = sample[0]
		flat[2*i+1] = sample[1]
	}
	return flat
}

func (buffer AudioBuffer) fromInterleaved(flat []float32) {
	for i := range buffer {
		buffer[i][0] = flat[2*i]
		buffer[i][1] = flat[2*i+1]
	}
}

// Peak returns the largest absolute sample value of the buffer, 0 for an
// empty buffer.
func (buffer AudioBuffer) Peak() float32 {
	if len(buffer) == 0 {
		return 0
	}
	flat := buffer.interleaved()
	vek32.Abs_Inplace(flat)
	return vek32.Max(flat)
}

// ApplyGain multiplies every sample of the buffer by gain.
func (buffer AudioBuffer) ApplyGain(gain float32) {
	if len(buffer) == 0 {
		return
	}
	flat := buffer.interleaved()
	vek32.MulNumber_Inplace(flat, gain)
	buffer.fromInterleaved(flat)
}

// Normalize scales the buffer so that its peak hits full scale. A silent
// buffer is left as it is.
func (buffer AudioBuffer) Normalize() {
	if peak := buffer.Peak(); peak > 0 {
		buffer.ApplyGain(1 / peak)
	}
}

// GainToLinear converts a slot or attributes gain value (0..96 in half
// decibel steps, 48 = 0 dB) to a linear multiplier.
func GainToLinear(gain int) float32 {
	return float32(math.Pow(10, float64(gain-DefaultGain)*0.5/20))
}

// Source returns a reader that reads the buffer as interleaved 16-bit
// little endian samples, the format AudioContext consumes.
func (buffer AudioBuffer) Source() io.Reader {
	return bytes.NewReader(buffer.pcm16())
}

func (buffer AudioBuffer) pcm16() []byte {
	data := make([]byte, 0, 4*len(buffer))
	for _, sample := range buffer {
		for channel := 0; channel < 2; channel++ {
			v := int16(clamp(int(sample[channel]*math.MaxInt16), math.MinInt16, math.MaxInt16))
			data = append(data, byte(v), byte(v>>8))
		}
	}
	return data
}

// Raw converts the buffer to raw audio data: interleaved 16-bit signed
// samples when pcm16 is set, interleaved float32 otherwise, both little
// endian.
func (buffer AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := buffer.rawToBuffer(pcm16, buf); err != nil {
		return nil, fmt.Errorf("Raw failed: %v", err)
	}
	return buf.Bytes(), nil
}

// Wav converts the buffer to a stereo 44100 Hz .wav file, 16-bit signed when
// pcm16 is set and float32 otherwise.
func (buffer AudioBuffer) Wav(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	wavHeader(2*len(buffer), pcm16, buf)
	if err := buffer.rawToBuffer(pcm16, buf); err != nil {
		return nil, fmt.Errorf("Wav failed: %v", err)
	}
	return buf.Bytes(), nil
}

func (buffer AudioBuffer) rawToBuffer(pcm16 bool, buf *bytes.Buffer) error {
	var err error
	if pcm16 {
		_, err = buf.Write(buffer.pcm16())
	} else {
		err = binary.Write(buf, binary.LittleEndian, buffer.interleaved())
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %v", err)
	}
	return nil
}

// wavHeader writes a wave header for either float32 or int16 .wav file into
// the bytes.Buffer. It needs to know the length of the buffer and assumes
// stereo sound, so the length in stereo samples (L + R) is bufferLength / 2.
// If pcm16 = true, then the header is for int16 audio; pcm16 = false means
// the header is for float32 audio. Assumes 44100 Hz sample rate.
func wavHeader(bufferLength int, pcm16 bool, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	numChannels := 2
	sampleRate := 44100
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	var factChunk bool
	if pcm16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*bufferLength
		fmtChunkSize = 16
		waveFormat = 1 // PCM
		factChunk = false
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*bufferLength
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
		factChunk = true
	}
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(chunkSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	binary.Write(buf, binary.LittleEndian, uint16(waveFormat))
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                      // bits per sample
	if fmtChunkSize > 16 {
		binary.Write(buf, binary.LittleEndian, uint16(0)) // size of extension
	}
	if factChunk {
		buf.Write([]byte("fact"))
		binary.Write(buf, binary.LittleEndian, uint32(4))            // fact chunk size
		binary.Write(buf, binary.LittleEndian, uint32(bufferLength)) // sample length
	}
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(bytesPerSample*bufferLength))
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
