// Package opusmeta reads tags, cover art and duration straight out of
// an Ogg Opus container. It exists so converted MP3s keep their
// metadata: FFmpeg carries the text tags but not the base64-encoded
// cover picture Opus files use.
package opusmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonas747/ogg"
)

// Opus granule positions always count 48 kHz samples, independent of
// the input sample rate.
const granuleRate = 48000

var (
	ErrNotOpus   = errors.New("not an ogg opus stream")
	errTruncated = errors.New("truncated packet")
)

// Metadata holds everything read from the container.
type Metadata struct {
	Vendor   string
	Tags     map[string][]string
	Cover    *Picture
	Duration time.Duration
}

// ReadFile parses the Ogg Opus file at path.
func ReadFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses an Ogg Opus stream. The whole stream is consumed so the
// final granule position (and with it the duration) can be recovered.
func Read(r io.Reader) (*Metadata, error) {
	decoder := ogg.NewPacketDecoder(ogg.NewDecoder(r))

	head, _, err := decoder.Decode()
	if err != nil {
		return nil, fmt.Errorf("read ogg header packet: %w", err)
	}
	preSkip, err := parseOpusHead(head)
	if err != nil {
		return nil, err
	}

	tagsPacket, _, err := decoder.Decode()
	if err != nil {
		return nil, fmt.Errorf("read ogg tags packet: %w", err)
	}
	meta, err := parseOpusTags(tagsPacket)
	if err != nil {
		return nil, err
	}

	// Drain the audio packets to find the last granule position.
	var lastGranule int64
	for {
		_, page, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read ogg stream: %w", err)
		}
		if page.Granule > lastGranule {
			lastGranule = page.Granule
		}
	}

	samples := lastGranule - int64(preSkip)
	if samples > 0 {
		meta.Duration = time.Duration(samples) * time.Second / granuleRate
	}

	meta.Cover = decodeCover(meta.Tags["metadata_block_picture"])
	return meta, nil
}

// First returns the first value of a tag (keys are lowercase), or "".
func (m *Metadata) First(key string) string {
	values := m.Tags[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Year extracts a plain integer year from the date tag. Dates that are
// not bare integers are rejected, matching the original converter.
func (m *Metadata) Year() (string, bool) {
	for _, v := range m.Tags["date"] {
		if year, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return strconv.Itoa(year), true
		}
	}
	return "", false
}

// parseOpusHead validates the identification header and returns the
// pre-skip sample count.
func parseOpusHead(packet []byte) (uint16, error) {
	if len(packet) < 19 || string(packet[:8]) != "OpusHead" {
		return 0, ErrNotOpus
	}
	return binary.LittleEndian.Uint16(packet[10:12]), nil
}

// parseOpusTags parses the comment header (a Vorbis comment block with
// an "OpusTags" magic). Keys are lowercased; values keep their case.
func parseOpusTags(packet []byte) (*Metadata, error) {
	if len(packet) < 8 || string(packet[:8]) != "OpusTags" {
		return nil, ErrNotOpus
	}
	rest := packet[8:]

	vendor, rest, err := readLenPrefixed(rest)
	if err != nil {
		return nil, fmt.Errorf("opus tags vendor: %w", err)
	}

	if len(rest) < 4 {
		return nil, fmt.Errorf("opus tags count: %w", errTruncated)
	}
	count := binary.LittleEndian.Uint32(rest)
	rest = rest[4:]

	meta := &Metadata{
		Vendor: string(vendor),
		Tags:   make(map[string][]string),
	}
	for i := uint32(0); i < count; i++ {
		var comment []byte
		comment, rest, err = readLenPrefixed(rest)
		if err != nil {
			return nil, fmt.Errorf("opus tags comment %d: %w", i, err)
		}
		key, value, found := strings.Cut(string(comment), "=")
		if !found {
			continue
		}
		key = strings.ToLower(key)
		meta.Tags[key] = append(meta.Tags[key], value)
	}
	return meta, nil
}

func readLenPrefixed(b []byte) (value, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, errTruncated
	}
	n := binary.LittleEndian.Uint32(b)
	b = b[4:]
	if uint32(len(b)) < n {
		return nil, nil, errTruncated
	}
	return b[:n], b[n:], nil
}
