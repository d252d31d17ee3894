package audio

import (
	"encoding/binary"
	"fmt"

	"layeh.com/gopus"
)

// opusSampleRate is the rate Opus decoders always output at.
const opusSampleRate = 48000

// maxOpusFrameSize is the largest valid Opus frame: 120 ms at 48 kHz.
const maxOpusFrameSize = 5760

// DecodeOggOpus decodes an Ogg-encapsulated Opus stream (the default
// container produced by browser MediaRecorder implementations) to a mono
// [Buffer] at 48 kHz. Stereo streams are downmixed.
func DecodeOggOpus(data []byte) (*Buffer, error) {
	packets, err := oggPackets(data)
	if err != nil {
		return nil, err
	}
	if len(packets) < 2 {
		return nil, fmt.Errorf("%w: ogg stream missing opus headers", ErrDecode)
	}

	head := packets[0]
	if len(head) < 19 || string(head[0:8]) != "OpusHead" {
		return nil, fmt.Errorf("%w: not an opus stream", ErrDecode)
	}
	channels := int(head[9])
	preSkip := int(binary.LittleEndian.Uint16(head[10:12]))
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: unsupported opus channel count %d", ErrDecode, channels)
	}

	dec, err := gopus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: opus decoder: %v", ErrDecode, err)
	}

	var mono []float64
	// packets[1] is the OpusTags packet; audio starts at index 2.
	for _, pkt := range packets[2:] {
		if len(pkt) == 0 {
			continue
		}
		pcm, err := dec.Decode(pkt, maxOpusFrameSize, false)
		if err != nil {
			// A corrupt trailing packet should not discard the clip.
			continue
		}
		frames := len(pcm) / channels
		for i := range frames {
			var sum float64
			for c := range channels {
				sum += float64(pcm[i*channels+c]) / 32768
			}
			mono = append(mono, sum/float64(channels))
		}
	}

	if preSkip > 0 && preSkip < len(mono) {
		mono = mono[preSkip:]
	} else if preSkip >= len(mono) {
		mono = nil
	}
	return &Buffer{Samples: mono, SampleRate: opusSampleRate}, nil
}

// oggPackets reassembles logical packets from the Ogg page framing.
// Lacing values of 255 mark a segment continued by the next one; a value
// below 255 terminates the current packet.
func oggPackets(data []byte) ([][]byte, error) {
	var (
		packets [][]byte
		current []byte
	)
	off := 0
	for off+27 <= len(data) {
		if string(data[off:off+4]) != "OggS" {
			return nil, fmt.Errorf("%w: bad ogg page capture pattern", ErrDecode)
		}
		segCount := int(data[off+26])
		tableOff := off + 27
		if tableOff+segCount > len(data) {
			break
		}
		body := tableOff + segCount
		for s := range segCount {
			lace := int(data[tableOff+s])
			if body+lace > len(data) {
				return packets, nil
			}
			current = append(current, data[body:body+lace]...)
			body += lace
			if lace < 255 {
				packets = append(packets, current)
				current = nil
			}
		}
		off = body
	}
	if len(current) > 0 {
		packets = append(packets, current)
	}
	return packets, nil
}
