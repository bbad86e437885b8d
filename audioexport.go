package nova

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Raw converts an interleaved buffer into little-endian float32 data, or
// int16 data if pcm16 is set.
func Raw(buffer []float32, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error
	if pcm16 {
		int16data := make([]int16, len(buffer))
		for i, v := range buffer {
			int16data[i] = int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, buffer)
	}
	if err != nil {
		return nil, fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWav encodes an interleaved buffer as a PCM .wav file with the given
// bit depth (16, 24 or 32).
func WriteWav(w io.WriteSeeker, buffer []float32, sampleRate, numChannels, bitDepth int) error {
	if numChannels <= 0 {
		return errors.New("wav needs at least one channel")
	}
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	encoder := wav.NewEncoder(w, sampleRate, bitDepth, numChannels, 1)
	maxValue := float64(int64(1)<<(bitDepth-1) - 1)
	data := make([]int, len(buffer))
	for i, v := range buffer {
		data[i] = clamp(int(float64(v)*maxValue), -int(maxValue)-1, int(maxValue))
	}
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(ib); err != nil {
		return fmt.Errorf("could not encode wav: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("could not finish wav: %w", err)
	}
	return nil
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
