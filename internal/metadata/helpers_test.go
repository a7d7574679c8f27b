package metadata

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 20), B: 128, A: 255})
		}
	}
	return img
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// withSegments splices extra header segments in right after SOI.
func withSegments(t *testing.T, base []byte, segs ...segment) []byte {
	t.Helper()
	require.True(t, bytes.HasPrefix(base, []byte{0xFF, markerSOI}))
	var buf bytes.Buffer
	buf.Write(base[:2])
	for _, s := range segs {
		require.NoError(t, s.writeTo(&buf))
	}
	buf.Write(base[2:])
	return buf.Bytes()
}

// exifSegment builds a little-endian TIFF block holding a single IFD0 Make
// tag.
func exifSegment(maker string) segment {
	value := append([]byte(maker), 0)
	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, binary.LittleEndian, uint16(42))
	binary.Write(&tiff, binary.LittleEndian, uint32(8))
	binary.Write(&tiff, binary.LittleEndian, uint16(1))
	binary.Write(&tiff, binary.LittleEndian, uint16(0x010F))
	binary.Write(&tiff, binary.LittleEndian, uint16(2))
	binary.Write(&tiff, binary.LittleEndian, uint32(len(value)))
	binary.Write(&tiff, binary.LittleEndian, uint32(26))
	binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write(value)

	data := append([]byte{}, exifHeader...)
	data = append(data, tiff.Bytes()...)
	return segment{marker: markerAPP1, data: data}
}

func jfifSegment() segment {
	return segment{marker: markerAPP0, data: []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return writeFile(t, dir, name, buf.Bytes())
}

// headerMarkers lists the markers before SOS in a JPEG stream.
func headerMarkers(t *testing.T, data []byte) []byte {
	t.Helper()
	sr, err := newSegmentReader(bytes.NewReader(data))
	require.NoError(t, err)
	var markers []byte
	for {
		seg, err := sr.next()
		require.NoError(t, err)
		markers = append(markers, seg.marker)
		if seg.marker == markerSOS {
			return markers
		}
	}
}

func countXMP(t *testing.T, data []byte) int {
	t.Helper()
	sr, err := newSegmentReader(bytes.NewReader(data))
	require.NoError(t, err)
	n := 0
	for {
		seg, err := sr.next()
		require.NoError(t, err)
		if seg.isXMP() {
			n++
		}
		if seg.marker == markerSOS {
			return n
		}
	}
}

// scanTail returns everything from the first SOS marker on.
func scanTail(t *testing.T, data []byte) []byte {
	t.Helper()
	i := bytes.Index(data, []byte{0xFF, markerSOS})
	require.GreaterOrEqual(t, i, 0)
	return data[i:]
}
