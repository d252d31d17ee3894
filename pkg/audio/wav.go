package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// WAVE format tags understood by the decoder.
const (
	wavFormatPCM        = 0x0001
	wavFormatIEEEFloat  = 0x0003
	wavFormatExtensible = 0xFFFE
)

// DecodeWAV decodes a RIFF/WAVE byte stream to a mono [Buffer]. Integer PCM
// at 8, 16, 24 and 32 bits plus 32-bit IEEE float are supported.
// Multi-channel audio is downmixed by averaging.
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrDecode)
	}

	var (
		haveFmt    bool
		formatTag  uint16
		channels   int
		sampleRate int
		bitDepth   int
		pcm        []byte
	)

	// Walk the chunk list. Chunks are 2-byte aligned; unknown chunks are
	// skipped.
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(data) {
			// Truncated chunk; some encoders mis-report the final data size.
			size = len(data) - body
			if size < 0 {
				break
			}
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrDecode)
			}
			formatTag = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if formatTag == wavFormatExtensible && size >= 40 {
				// The real format lives in the first two bytes of the
				// extensible SubFormat GUID.
				formatTag = binary.LittleEndian.Uint16(data[body+24 : body+26])
			}
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrDecode)
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid fmt (channels=%d rate=%d)", ErrDecode, channels, sampleRate)
	}

	samples, err := decodePCM(pcm, formatTag, bitDepth, channels)
	if err != nil {
		return nil, err
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// decodePCM converts raw interleaved sample data to mono float64.
func decodePCM(pcm []byte, formatTag uint16, bitDepth, channels int) ([]float64, error) {
	bytesPerSample := bitDepth / 8
	if bytesPerSample == 0 {
		return nil, fmt.Errorf("%w: invalid bit depth %d", ErrDecode, bitDepth)
	}
	frameSize := bytesPerSample * channels
	frames := len(pcm) / frameSize
	out := make([]float64, frames)

	read := func(b []byte) (float64, bool) {
		switch formatTag {
		case wavFormatPCM:
			switch bitDepth {
			case 8:
				// 8-bit WAV is unsigned.
				return (float64(b[0]) - 128) / 128, true
			case 16:
				return float64(int16(binary.LittleEndian.Uint16(b))) / 32768, true
			case 24:
				v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
				if v&0x800000 != 0 {
					v |= ^int32(0xFFFFFF)
				}
				return float64(v) / 8388608, true
			case 32:
				return float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648, true
			}
		case wavFormatIEEEFloat:
			if bitDepth == 32 {
				return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), true
			}
		}
		return 0, false
	}

	for i := range frames {
		var sum float64
		base := i * frameSize
		for c := range channels {
			v, ok := read(pcm[base+c*bytesPerSample : base+(c+1)*bytesPerSample])
			if !ok {
				return nil, fmt.Errorf("%w: unsupported sample format (tag=%d bits=%d)", ErrDecode, formatTag, bitDepth)
			}
			sum += v
		}
		out[i] = sum / float64(channels)
	}
	return out, nil
}

// EncodeWAV serializes mono samples as a 16-bit PCM RIFF/WAVE stream.
// Samples outside [-1, 1] are clamped. Used to re-container decoded audio
// for STT backends that only accept WAV uploads.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	const (
		bitsPerSample = 16
		channels      = 1
	)
	dataSize := len(samples) * 2

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*bitsPerSample/8))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bitsPerSample/8))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.Write(&buf, binary.LittleEndian, int16(math.Round(s*32767)))
	}
	return buf.Bytes()
}
