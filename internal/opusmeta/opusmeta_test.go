package opusmeta

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ogg page CRC: polynomial 0x04c11db7, not reflected, zero init.
var oggCRCTable = func() [256]uint32 {
	var table [256]uint32
	for i := range table {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

func oggCRC(b []byte) uint32 {
	var crc uint32
	for _, x := range b {
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^x]
	}
	return crc
}

// oggPage frames one packet as a single ogg page with a valid CRC.
func oggPage(headerType byte, granule int64, seq uint32, packet []byte) []byte {
	var lacing []byte
	n := len(packet)
	for n >= 255 {
		lacing = append(lacing, 255)
		n -= 255
	}
	lacing = append(lacing, byte(n))

	page := make([]byte, 0, 27+len(lacing)+len(packet))
	page = append(page, 'O', 'g', 'g', 'S', 0, headerType)
	page = binary.LittleEndian.AppendUint64(page, uint64(granule))
	page = binary.LittleEndian.AppendUint32(page, 0xbeef) // serial
	page = binary.LittleEndian.AppendUint32(page, seq)
	page = binary.LittleEndian.AppendUint32(page, 0) // crc placeholder
	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	page = append(page, packet...)

	binary.LittleEndian.PutUint32(page[22:26], oggCRC(page))
	return page
}

func opusHeadPacket(preSkip uint16) []byte {
	p := []byte("OpusHead")
	p = append(p, 1, 2) // version, channels
	p = binary.LittleEndian.AppendUint16(p, preSkip)
	p = binary.LittleEndian.AppendUint32(p, 48000)
	p = append(p, 0, 0, 0) // output gain, mapping family
	return p
}

func opusTagsPacket(vendor string, comments ...string) []byte {
	p := []byte("OpusTags")
	p = binary.LittleEndian.AppendUint32(p, uint32(len(vendor)))
	p = append(p, vendor...)
	p = binary.LittleEndian.AppendUint32(p, uint32(len(comments)))
	for _, c := range comments {
		p = binary.LittleEndian.AppendUint32(p, uint32(len(c)))
		p = append(p, c...)
	}
	return p
}

func TestRead(t *testing.T) {
	const preSkip = 312
	var stream bytes.Buffer
	stream.Write(oggPage(0x02, 0, 0, opusHeadPacket(preSkip)))
	stream.Write(oggPage(0, 0, 1, opusTagsPacket("libopus 1.4",
		"TITLE=Night Drive",
		"ARTIST=The Examples",
		"DATE=2019",
		"TITLE=Alternate Title",
	)))
	// Two seconds of (fake) audio.
	stream.Write(oggPage(0x04, preSkip+2*48000, 2, []byte{0xfc, 0xff, 0xfe}))

	meta, err := Read(&stream)
	require.NoError(t, err)

	assert.Equal(t, "libopus 1.4", meta.Vendor)
	assert.Equal(t, "Night Drive", meta.First("title"))
	assert.Equal(t, "The Examples", meta.First("artist"))
	assert.Equal(t, []string{"Night Drive", "Alternate Title"}, meta.Tags["title"])
	assert.Equal(t, 2*time.Second, meta.Duration)
	assert.Nil(t, meta.Cover)

	year, ok := meta.Year()
	require.True(t, ok)
	assert.Equal(t, "2019", year)
}

func TestReadNotOpus(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(oggPage(0x02, 0, 0, []byte("\x01vorbis this is not opus at all")))
	stream.Write(oggPage(0x04, 0, 1, []byte("\x03vorbis")))

	_, err := Read(&stream)
	assert.ErrorIs(t, err, ErrNotOpus)
}

func TestReadGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("definitely not an ogg container")))
	assert.Error(t, err)
}

func TestParseOpusHead(t *testing.T) {
	preSkip, err := parseOpusHead(opusHeadPacket(3840))
	require.NoError(t, err)
	assert.Equal(t, uint16(3840), preSkip)

	_, err = parseOpusHead([]byte("OpusHead"))
	assert.ErrorIs(t, err, ErrNotOpus)
}

func TestParseOpusTagsTruncated(t *testing.T) {
	packet := opusTagsPacket("vendor", "TITLE=x")
	_, err := parseOpusTags(packet[:len(packet)-3])
	assert.Error(t, err)
}

func TestParseOpusTagsSkipsMalformedComments(t *testing.T) {
	meta, err := parseOpusTags(opusTagsPacket("vendor", "no separator here", "ALBUM=Greatest Bits"))
	require.NoError(t, err)
	assert.Equal(t, "Greatest Bits", meta.First("album"))
	assert.Len(t, meta.Tags, 1)
}

func TestYearRejectsNonInteger(t *testing.T) {
	meta := &Metadata{Tags: map[string][]string{"date": {"2019-05-01"}}}
	_, ok := meta.Year()
	assert.False(t, ok)

	meta.Tags["date"] = append(meta.Tags["date"], " 1987 ")
	year, ok := meta.Year()
	require.True(t, ok)
	assert.Equal(t, "1987", year)
}

func TestFirstMissingKey(t *testing.T) {
	meta := &Metadata{Tags: map[string][]string{}}
	assert.Equal(t, "", meta.First("artist"))
}
