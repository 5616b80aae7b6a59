// Package file provides an AudioSource backed by a local audio file.
// A background goroutine decodes the file at playback pace into a ring
// buffer; the analyzer reads the most recent window out of the ring without
// ever blocking on the decoder.
package file

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/ports"
)

// decodeChunkFrames is how many sample frames are decoded per pacing tick.
const decodeChunkFrames = 2048

// ringSeconds is how much recent audio the ring retains.
const ringSeconds = 1

// Metadata is the subset of file tags the UI displays.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// decoder is implemented by the format-specific decoders. read fills dst
// with mono samples in the -1..1 range.
type decoder interface {
	read(dst []float64) (int, error)
	sampleRate() int
	close() error
}

// Source streams a local audio file through a ring buffer and exposes it as
// an AudioSource.
type Source struct {
	logger *slog.Logger
	path   string

	dec  decoder
	rate int
	meta Metadata
	ring *Ring

	done chan struct{}
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Open opens path, detects the format by extension and starts the decode
// goroutine. Unsupported extensions return ErrUnsupportedFormat.
func Open(logger *slog.Logger, path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewSourceError("open", path, err)
	}

	meta := readTags(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, domain.NewSourceError("open", path, err)
	}

	dec, err := newDecoder(f)
	if err != nil {
		_ = f.Close()
		return nil, domain.NewSourceError("open", path, err)
	}

	s := &Source{
		logger: logger,
		path:   path,
		dec:    dec,
		rate:   dec.sampleRate(),
		meta:   meta,
		ring:   NewRing(dec.sampleRate() * ringSeconds),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.decodeLoop()

	logger.Info("audio source opened",
		slog.String("path", filepath.Base(path)),
		slog.Int("sample_rate", s.rate))

	return s, nil
}

// newDecoder detects the format by file extension.
func newDecoder(f *os.File) (decoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".wav":
		return newWAVDecoder(f)
	case ".mp3":
		return newMP3Decoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
}

// readTags extracts display metadata; tag failures leave it empty.
func readTags(f *os.File) Metadata {
	m, err := tag.ReadFrom(f)
	if err != nil {
		return Metadata{}
	}
	return Metadata{Title: m.Title(), Artist: m.Artist(), Album: m.Album()}
}

// decodeLoop decodes chunk by chunk at playback pace until the file drains
// or the source closes.
func (s *Source) decodeLoop() {
	defer s.wg.Done()

	chunk := make([]float64, decodeChunkFrames)
	interval := time.Duration(float64(decodeChunkFrames) / float64(s.rate) * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			n, err := s.dec.read(chunk)
			if n > 0 {
				s.ring.Write(chunk[:n])
			}
			if err != nil {
				if err != io.EOF {
					s.logger.Warn("decode failed", slog.Any("error", err))
				}
				s.logger.Debug("audio source drained",
					slog.String("path", filepath.Base(s.path)))
				return
			}
		}
	}
}

// SampleRate returns the source sample rate in Hz.
func (s *Source) SampleRate() int {
	return s.rate
}

// Metadata returns the file's display tags.
func (s *Source) Metadata() Metadata {
	return s.meta
}

// ReadWaveform fills dst with the most recent mono samples. It never
// blocks; with less audio buffered than requested the tail of dst stays
// zeroed.
func (s *Source) ReadWaveform(dst []float64) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, domain.ErrSourceClosed
	}

	n := s.ring.ReadLatest(dst)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return n, nil
}

// Close stops the decode goroutine and releases the file. Idempotent.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
	return s.dec.close()
}

// Verify interface implementation at compile time.
var _ ports.AudioSource = (*Source)(nil)
