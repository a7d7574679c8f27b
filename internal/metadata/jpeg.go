package metadata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	serr "imgmeta/internal/errors"
)

// JPEG markers used by the segment walk.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

var (
	// xmpNamespace prefixes the payload of an XMP APP1 segment.
	xmpNamespace = []byte("http://ns.adobe.com/xap/1.0/\x00")
	exifHeader   = []byte("Exif\x00\x00")
)

// maxSegmentPayload is the largest payload a length-prefixed segment can hold.
const maxSegmentPayload = 0xFFFF - 2

// segment is one marker segment before the scan data. data excludes the
// marker and the length field.
type segment struct {
	marker byte
	data   []byte
}

func (s segment) isXMP() bool {
	return s.marker == markerAPP1 && bytes.HasPrefix(s.data, xmpNamespace)
}

func (s segment) isEXIF() bool {
	return s.marker == markerAPP1 && bytes.HasPrefix(s.data, exifHeader)
}

// standalone markers carry no length field.
func standalone(marker byte) bool {
	return marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7) || marker == markerSOI || marker == markerEOI
}

func (s segment) writeTo(w io.Writer) error {
	if standalone(s.marker) {
		_, err := w.Write([]byte{0xFF, s.marker})
		return err
	}
	if len(s.data) > maxSegmentPayload {
		return serr.NewMetadataError(fmt.Sprintf("segment payload of %d bytes exceeds %d", len(s.data), maxSegmentPayload), "", "", serr.SegmentTooLarge, nil)
	}
	var header [4]byte
	header[0] = 0xFF
	header[1] = s.marker
	binary.BigEndian.PutUint16(header[2:], uint16(len(s.data)+2))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(s.data)
	return err
}

// segmentReader walks the header segments of a JPEG stream up to and
// including SOS. Everything after that is entropy-coded data and is left in
// the buffered reader.
type segmentReader struct {
	br *bufio.Reader
}

var errNotJPEG = serr.NewMetadataError("not a JPEG stream", "", "", serr.UnsupportedFormat, nil)

func newSegmentReader(r io.Reader) (*segmentReader, error) {
	br := bufio.NewReader(r)
	var soi [2]byte
	if _, err := io.ReadFull(br, soi[:]); err != nil {
		return nil, errNotJPEG
	}
	if soi[0] != 0xFF || soi[1] != markerSOI {
		return nil, errNotJPEG
	}
	return &segmentReader{br: br}, nil
}

// next returns the next segment. io.EOF means the stream ended before SOS.
func (sr *segmentReader) next() (segment, error) {
	b, err := sr.br.ReadByte()
	if err != nil {
		return segment{}, err
	}
	if b != 0xFF {
		return segment{}, serr.NewMetadataError(fmt.Sprintf("expected marker, found 0x%02X", b), "", "", serr.MetadataDecodeFailed, nil)
	}
	// Any number of 0xFF fill bytes may precede a marker.
	marker := byte(0xFF)
	for marker == 0xFF {
		if marker, err = sr.br.ReadByte(); err != nil {
			return segment{}, io.ErrUnexpectedEOF
		}
	}
	if standalone(marker) {
		return segment{marker: marker}, nil
	}

	var length [2]byte
	if _, err := io.ReadFull(sr.br, length[:]); err != nil {
		return segment{}, io.ErrUnexpectedEOF
	}
	n := int(binary.BigEndian.Uint16(length[:])) - 2
	if n < 0 {
		return segment{}, serr.NewMetadataError("negative segment length", "", "", serr.MetadataDecodeFailed, nil)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(sr.br, data); err != nil {
		return segment{}, io.ErrUnexpectedEOF
	}
	return segment{marker: marker, data: data}, nil
}

// findXMP returns the first XMP packet in the header segments of a JPEG, or
// nil when there is none.
func findXMP(r io.Reader) ([]byte, error) {
	sr, err := newSegmentReader(r)
	if err != nil {
		return nil, err
	}
	for {
		seg, err := sr.next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if seg.isXMP() {
			return seg.data[len(xmpNamespace):], nil
		}
		if seg.marker == markerSOS || seg.marker == markerEOI {
			return nil, nil
		}
	}
}

// ReplaceXMP copies the JPEG stream r to w with every XMP APP1 segment
// removed and a single new one carrying packet. The new segment goes after
// the leading JFIF/EXIF segments. Scan data is copied byte for byte.
func ReplaceXMP(r io.Reader, w io.Writer, packet []byte) error {
	payload := make([]byte, 0, len(xmpNamespace)+len(packet))
	payload = append(payload, xmpNamespace...)
	payload = append(payload, packet...)
	if len(payload) > maxSegmentPayload {
		return serr.NewMetadataError(fmt.Sprintf("XMP packet of %d bytes does not fit in one segment", len(packet)), "", "rewrite", serr.SegmentTooLarge, nil)
	}
	xmp := segment{marker: markerAPP1, data: payload}

	sr, err := newSegmentReader(r)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := (segment{marker: markerSOI}).writeTo(bw); err != nil {
		return err
	}

	inserted := false
	insert := func() error {
		if inserted {
			return nil
		}
		inserted = true
		return xmp.writeTo(bw)
	}

	for {
		seg, err := sr.next()
		if err == io.EOF {
			// Truncated stream without SOS; keep what we have.
			if err := insert(); err != nil {
				return err
			}
			return bw.Flush()
		}
		if err != nil {
			return err
		}
		if seg.isXMP() {
			continue
		}
		if seg.marker != markerAPP0 && !seg.isEXIF() {
			if err := insert(); err != nil {
				return err
			}
		}
		if err := seg.writeTo(bw); err != nil {
			return err
		}
		if seg.marker == markerSOS || seg.marker == markerEOI {
			break
		}
	}

	if _, err := io.Copy(bw, sr.br); err != nil {
		return err
	}
	return bw.Flush()
}
