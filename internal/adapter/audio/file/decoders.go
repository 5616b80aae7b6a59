package file

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// --- WAV ---

type wavDecoder struct {
	file     *os.File
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	channels int
	scale    float64
	offset   float64
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, err
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	// 8-bit WAV PCM is unsigned (0..255); deeper depths are signed.
	var offset float64
	if bitDepth == 8 {
		offset = 128
	}

	return &wavDecoder{
		file:     f,
		dec:      dec,
		channels: channels,
		scale:    float64(int64(1) << (bitDepth - 1)),
		offset:   offset,
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  int(dec.SampleRate),
			},
			Data:           make([]int, decodeChunkFrames*channels),
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// read decodes one PCM chunk and downmixes it to mono floats.
func (d *wavDecoder) read(dst []float64) (int, error) {
	want := len(dst) * d.channels
	if want > cap(d.buf.Data) {
		want = cap(d.buf.Data)
	}
	d.buf.Data = d.buf.Data[:want]

	n, err := d.dec.PCMBuffer(d.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	frames := n / d.channels
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < d.channels; ch++ {
			sum += (float64(d.buf.Data[i*d.channels+ch]) - d.offset) / d.scale
		}
		dst[i] = sum / float64(d.channels)
	}
	return frames, err
}

func (d *wavDecoder) sampleRate() int { return int(d.dec.SampleRate) }
func (d *wavDecoder) close() error   { return d.file.Close() }

// --- MP3 ---

// go-mp3 always emits 16-bit little-endian stereo frames.
type mp3Decoder struct {
	file *os.File
	dec  *mp3.Decoder
	raw  []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return &mp3Decoder{file: f, dec: dec}, nil
}

func (d *mp3Decoder) read(dst []float64) (int, error) {
	need := len(dst) * 4
	if cap(d.raw) < need {
		d.raw = make([]byte, need)
	}
	raw := d.raw[:need]

	n, err := io.ReadFull(d.dec, raw)
	if n == 0 {
		if err != nil {
			return 0, io.EOF
		}
		return 0, io.EOF
	}

	frames := n / 4
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		dst[i] = (float64(l) + float64(r)) / 2 / 32768
	}

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return frames, err
}

func (d *mp3Decoder) sampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) close() error    { return d.file.Close() }

// --- Ogg Vorbis ---

type oggDecoder struct {
	file     *os.File
	dec      *oggvorbis.Reader
	channels int
	raw      []float32
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, err
	}
	return &oggDecoder{file: f, dec: dec, channels: dec.Channels()}, nil
}

func (d *oggDecoder) read(dst []float64) (int, error) {
	need := len(dst) * d.channels
	if cap(d.raw) < need {
		d.raw = make([]float32, need)
	}
	raw := d.raw[:need]

	n, err := d.dec.Read(raw)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	frames := n / d.channels
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < d.channels; ch++ {
			sum += float64(raw[i*d.channels+ch])
		}
		dst[i] = sum / float64(d.channels)
	}
	return frames, err
}

func (d *oggDecoder) sampleRate() int { return d.dec.SampleRate() }
func (d *oggDecoder) close() error    { return d.file.Close() }
