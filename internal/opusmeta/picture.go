package opusmeta

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// pictureTypeFrontCover is the FLAC picture type for the front cover.
const pictureTypeFrontCover = 3

// Picture is one embedded image from a metadata_block_picture tag.
type Picture struct {
	Type        uint32
	MIME        string
	Description string
	Width       uint32
	Height      uint32
	Data        []byte
}

// FileExt returns a file extension suitable for writing the image to a
// temp file, derived from the MIME type or the data's magic bytes.
func (p *Picture) FileExt() string {
	switch p.MIME {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if bytes.HasPrefix(p.Data, []byte("\x89PNG")) {
		return ".png"
	}
	return ".jpg"
}

// decodeCover picks the front cover out of the base64-encoded picture
// blocks. Undecodable blocks are skipped; when no block is marked as a
// front cover the first valid picture is used.
func decodeCover(blocks []string) *Picture {
	var first *Picture
	for _, block := range blocks {
		raw, err := base64.StdEncoding.DecodeString(block)
		if err != nil {
			continue
		}
		pic, err := parsePictureBlock(raw)
		if err != nil {
			continue
		}
		if pic.Type == pictureTypeFrontCover {
			return pic
		}
		if first == nil {
			first = pic
		}
	}
	return first
}

// parsePictureBlock decodes a FLAC METADATA_BLOCK_PICTURE structure.
// All fields are big-endian.
func parsePictureBlock(b []byte) (*Picture, error) {
	pic := &Picture{}

	var err error
	pic.Type, b, err = readUint32BE(b)
	if err != nil {
		return nil, fmt.Errorf("picture type: %w", err)
	}

	mime, b, err := readBytesBE(b)
	if err != nil {
		return nil, fmt.Errorf("picture mime: %w", err)
	}
	pic.MIME = string(mime)

	desc, b, err := readBytesBE(b)
	if err != nil {
		return nil, fmt.Errorf("picture description: %w", err)
	}
	pic.Description = string(desc)

	if len(b) < 16 {
		return nil, fmt.Errorf("picture dimensions: %w", errTruncated)
	}
	pic.Width = binary.BigEndian.Uint32(b[0:4])
	pic.Height = binary.BigEndian.Uint32(b[4:8])
	// depth and palette size are not interesting here
	b = b[16:]

	data, _, err := readBytesBE(b)
	if err != nil {
		return nil, fmt.Errorf("picture data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("picture data: empty")
	}
	pic.Data = data
	return pic, nil
}

func readUint32BE(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, errTruncated
	}
	return binary.BigEndian.Uint32(b), b[4:], nil
}

func readBytesBE(b []byte) (value, rest []byte, err error) {
	n, b, err := readUint32BE(b)
	if err != nil {
		return nil, nil, err
	}
	if uint32(len(b)) < n {
		return nil, nil, errTruncated
	}
	return b[:n], b[n:], nil
}
