package chatbot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBadContainer is returned when a capture blob cannot be parsed
var ErrBadContainer = errors.New("corrupt or unsupported audio container")

const wavHeaderSize = 44

// Recording holds decoded PCM audio as per-channel float samples in [-1, 1].
type Recording struct {
	SampleRate int
	Channels   [][]float32
}

// Len returns the per-channel sample count.
func (r *Recording) Len() int {
	if len(r.Channels) == 0 {
		return 0
	}
	return len(r.Channels[0])
}

// EncodeWAV frames the recording as a canonical waveform container: a 44-byte
// RIFF/WAVE header followed by interleaved 16-bit signed little-endian PCM.
// Only the first channel is consulted for sample data; the header still
// reflects the source channel count. This mirrors the capture pipeline the
// backend was built against, so keep it even though it looks lossy.
func EncodeWAV(rec *Recording) ([]byte, error) {
	if rec == nil || len(rec.Channels) == 0 || rec.SampleRate <= 0 {
		return nil, fmt.Errorf("encode wav: %w", ErrBadContainer)
	}

	channels := len(rec.Channels)
	samples := rec.Channels[0]
	total := len(samples)*channels*2 + wavHeaderSize

	buf := bytes.NewBuffer(make([]byte, 0, total))
	buf.WriteString("RIFF")
	writeUint32(buf, uint32(total-8))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeUint32(buf, 16)
	writeUint16(buf, 1) // PCM
	writeUint16(buf, uint16(channels))
	writeUint32(buf, uint32(rec.SampleRate))
	writeUint32(buf, uint32(rec.SampleRate*2*channels))
	writeUint16(buf, uint16(channels*2))
	writeUint16(buf, 16)

	buf.WriteString("data")
	writeUint32(buf, uint32(total-wavHeaderSize))

	for _, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7fff)
		}
		for c := 0; c < channels; c++ {
			writeUint16(buf, uint16(v))
		}
	}

	return buf.Bytes(), nil
}

// DecodeWAV parses a finished PCM capture container back into a Recording.
// 8-bit and 16-bit PCM are supported; anything else fails the recording
// attempt with ErrBadContainer.
func DecodeWAV(blob []byte) (*Recording, error) {
	if len(blob) < wavHeaderSize || string(blob[0:4]) != "RIFF" || string(blob[8:12]) != "WAVE" {
		return nil, fmt.Errorf("decode wav: %w", ErrBadContainer)
	}

	// walk chunks for fmt and data
	var (
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
		data       []byte
	)

	pos := 12
	for pos+8 <= len(blob) {
		id := string(blob[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(blob[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(blob) {
			return nil, fmt.Errorf("decode wav: truncated %q chunk: %w", id, ErrBadContainer)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("decode wav: short fmt chunk: %w", ErrBadContainer)
			}
			format = binary.LittleEndian.Uint16(blob[body : body+2])
			channels = int(binary.LittleEndian.Uint16(blob[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(blob[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(blob[body+14 : body+16]))
		case "data":
			data = blob[body : body+size]
		}

		pos = body + size
		if size%2 == 1 {
			pos++ // chunk bodies are word-aligned
		}
	}

	if format != 1 || channels < 1 || sampleRate <= 0 || data == nil {
		return nil, fmt.Errorf("decode wav: not uncompressed PCM: %w", ErrBadContainer)
	}

	switch bitDepth {
	case 8, 16:
	default:
		return nil, fmt.Errorf("decode wav: unsupported bit depth %d: %w", bitDepth, ErrBadContainer)
	}

	bytesPerSample := bitDepth / 8
	frame := bytesPerSample * channels
	frames := len(data) / frame

	rec := &Recording{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for c := range rec.Channels {
		rec.Channels[c] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			off := i*frame + c*bytesPerSample
			if bitDepth == 8 {
				// 8-bit WAV is unsigned
				rec.Channels[c][i] = (float32(data[off]) - 128) / 128
			} else {
				v := int16(binary.LittleEndian.Uint16(data[off : off+2]))
				if v < 0 {
					rec.Channels[c][i] = float32(v) / 0x8000
				} else {
					rec.Channels[c][i] = float32(v) / 0x7fff
				}
			}
		}
	}

	return rec, nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
