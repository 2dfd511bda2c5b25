package waveform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

var ErrUnsupportedFormat = errors.New("waveform: unsupported audio format")

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// Decode sniffs the container and decodes it to mono PCM. Multi-channel
// audio is downmixed by averaging each frame.
func Decode(data []byte) (PCM, error) {
	switch {
	case isWAV(data):
		return decodeWAV(data)
	case isFLAC(data):
		return decodeFLAC(data)
	case isOgg(data):
		return decodeOgg(data)
	case isMP3(data):
		return decodeMP3(data)
	default:
		return PCM{}, ErrUnsupportedFormat
	}
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

func isFLAC(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == "fLaC"
}

func isOgg(data []byte) bool {
	return len(data) >= 4 && string(data[0:4]) == "OggS"
}

// ADTS AAC shares the 0xFFF sync bits but always has layer 00, which MP3
// never uses.
func isMP3(data []byte) bool {
	if len(data) >= 3 && string(data[0:3]) == "ID3" {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && data[1]&0x06 != 0
}

// downmix averages interleaved frames of ch channels.
func downmix(interleaved []float64, ch int) []float64 {
	frames := len(interleaved) / ch
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < ch; c++ {
			sum += interleaved[i*ch+c]
		}
		mono[i] = sum / float64(ch)
	}
	return mono
}

func decodeWAV(data []byte) (PCM, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return PCM{}, fmt.Errorf("wav: %w", err)
	}
	if d.NumChans < 1 || d.SampleRate == 0 {
		return PCM{}, errors.New("wav: missing format")
	}

	switch d.WavAudioFormat {
	case wavFormatPCM, wavFormatExtensible:
		return decodeIntWAV(d)
	case wavFormatFloat:
		return decodeFloatWAV(d)
	default:
		return PCM{}, fmt.Errorf("wav: audio format %d: %w", d.WavAudioFormat, ErrUnsupportedFormat)
	}
}

func decodeIntWAV(d *wav.Decoder) (PCM, error) {
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return PCM{}, errors.New("wav: missing format")
	}

	// 8-bit WAV is unsigned around 128.
	offset := 0
	if d.BitDepth == 8 {
		offset = 128
	}
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v - offset)
	}
	return PCM{Samples: downmix(samples, buf.Format.NumChannels), SampleRate: buf.Format.SampleRate}, nil
}

// decodeFloatWAV reads IEEE float samples straight from the data chunk;
// go-audio only decodes integer PCM.
func decodeFloatWAV(d *wav.Decoder) (PCM, error) {
	if err := d.FwdToPCM(); err != nil {
		return PCM{}, fmt.Errorf("wav: %w", err)
	}
	if err := d.Err(); err != nil {
		return PCM{}, fmt.Errorf("wav: %w", err)
	}
	if d.PCMChunk == nil {
		return PCM{}, errors.New("wav: data chunk not found")
	}
	raw, err := io.ReadAll(d.PCMChunk)
	if err != nil {
		return PCM{}, fmt.Errorf("wav: %w", err)
	}

	var size int
	var at func([]byte) float64
	switch d.BitDepth {
	case 32:
		size = 4
		at = func(b []byte) float64 { return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))) }
	case 64:
		size = 8
		at = func(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b)) }
	default:
		return PCM{}, fmt.Errorf("wav: %d-bit float: %w", d.BitDepth, ErrUnsupportedFormat)
	}

	samples := make([]float64, len(raw)/size)
	for i := range samples {
		samples[i] = finite(at(raw[i*size:]))
	}
	return PCM{Samples: downmix(samples, int(d.NumChans)), SampleRate: int(d.SampleRate)}, nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// decodeFLAC averages the subframes of each frame. Frames whose subframes
// disagree on length are cut to the shortest.
func decodeFLAC(data []byte) (PCM, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil || info.NChannels == 0 || info.SampleRate == 0 {
		return PCM{}, errors.New("flac: missing stream info")
	}

	var mono []float64
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PCM{}, fmt.Errorf("flac: %w", err)
		}
		if len(f.Subframes) == 0 {
			continue
		}
		n := len(f.Subframes[0].Samples)
		for _, sub := range f.Subframes[1:] {
			n = min(n, len(sub.Samples))
		}
		for i := 0; i < n; i++ {
			sum := 0.0
			for _, sub := range f.Subframes {
				sum += float64(sub.Samples[i])
			}
			mono = append(mono, sum/float64(len(f.Subframes)))
		}
	}
	return PCM{Samples: mono, SampleRate: int(info.SampleRate)}, nil
}

func decodeOgg(data []byte) (PCM, error) {
	raw, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("ogg: %w", err)
	}
	if format == nil || format.Channels < 1 || format.SampleRate <= 0 {
		return PCM{}, errors.New("ogg: missing format")
	}
	samples := make([]float64, len(raw))
	for i, v := range raw {
		samples[i] = finite(float64(v))
	}
	return PCM{Samples: downmix(samples, format.Channels), SampleRate: format.SampleRate}, nil
}

// go-mp3 always yields interleaved 16-bit little-endian stereo.
func decodeMP3(data []byte) (PCM, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("mp3: %w", err)
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return PCM{}, fmt.Errorf("mp3: %w", err)
	}

	const frameBytes = 4
	frames := len(raw) / frameBytes
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[i*frameBytes:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*frameBytes+2:]))
		mono[i] = (float64(l) + float64(r)) / 2
	}
	return PCM{Samples: mono, SampleRate: d.SampleRate()}, nil
}
