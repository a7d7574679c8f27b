// Package metadata decodes EXIF and XMP from image files and writes
// modified copies of JPEGs with a replacement XMP packet.
package metadata

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"

	serr "imgmeta/internal/errors"
	"imgmeta/internal/log"
	"imgmeta/pkg/types"
)

// Directory labels used to group EXIF tags.
const (
	DirIFD0      = "IFD0"
	DirExif      = "ExifIFD"
	DirGPS       = "GPS"
	DirInterop   = "Interoperability"
	DirThumbnail = "IFD1"
	DirMakerNote = "MakerNote"
)

var registerOnce sync.Once

// Reader decodes metadata snapshots. The zero value is ready to use.
type Reader struct{}

// NewReader returns a Reader with the maker note parsers registered.
func NewReader() *Reader {
	registerOnce.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})
	return &Reader{}
}

// Read decodes the EXIF directories and XMP packet of path. A file with no
// decodable metadata yields an empty snapshot, not an error; only a file
// that cannot be opened fails.
func (r *Reader) Read(ctx context.Context, path string) (*types.MetadataSnapshot, error) {
	logger := log.LogWithFields(log.F("path", path))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		kind := serr.FileAccessDenied
		if os.IsNotExist(err) {
			kind = serr.FileNotFound
		}
		return nil, serr.NewFileError("failed to open image", path, kind, err)
	}
	defer f.Close()

	snap := types.EmptySnapshot(path)
	if mt, err := mimetype.DetectReader(f); err == nil {
		snap.MIMEType = mt.String()
	}

	if _, err := f.Seek(0, 0); err == nil {
		if x, err := exif.Decode(f); err != nil {
			logger.Debugf("No EXIF data decoded: %v", err)
		} else {
			_ = x.Walk(dirWalker{dirs: snap.EXIF})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, 0); err == nil {
		packet, err := findXMP(f)
		switch {
		case err != nil && !serr.IsUnsupportedFormat(err):
			logger.Debugf("XMP scan stopped: %v", err)
		case len(packet) > 0:
			snap.XMP = string(packet)
		}
	}

	logger.Debugf("Decoded %d EXIF tags, xmp=%t", snap.TagCount(), snap.HasXMP())
	return snap, nil
}

// dirWalker groups tags by the directory they most likely came from.
type dirWalker struct {
	dirs map[string]map[string]string
}

func (w dirWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if name == "" || tag == nil {
		return nil
	}
	dir := directoryOf(string(name))
	if w.dirs[dir] == nil {
		w.dirs[dir] = map[string]string{}
	}
	w.dirs[dir][string(name)] = tagValue(tag)
	return nil
}

func tagValue(tag *tiff.Tag) string {
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			return strings.TrimRight(s, "\x00 ")
		}
	}
	return tag.String()
}

var ifd0Tags = map[string]bool{
	"ImageWidth": true, "ImageLength": true, "BitsPerSample": true,
	"Compression": true, "PhotometricInterpretation": true, "Orientation": true,
	"SamplesPerPixel": true, "PlanarConfiguration": true, "YCbCrSubSampling": true,
	"YCbCrPositioning": true, "XResolution": true, "YResolution": true,
	"ResolutionUnit": true, "DateTime": true, "ImageDescription": true,
	"Make": true, "Model": true, "Software": true, "Artist": true,
	"Copyright": true, "ExifIFDPointer": true, "GPSInfoIFDPointer": true,
	"TransferFunction": true, "WhitePoint": true, "PrimaryChromaticities": true,
	"YCbCrCoefficients": true, "ReferenceBlackWhite": true,
	"StripOffsets": true, "RowsPerStrip": true, "StripByteCounts": true,
}

// directoryOf maps a goexif field name to its directory label. goexif does
// not expose the IFD a tag was read from, so the grouping follows the tag
// tables of the TIFF and EXIF specifications.
func directoryOf(name string) string {
	switch {
	case strings.Contains(name, "."):
		return DirMakerNote
	case strings.HasPrefix(name, "GPS") && name != "GPSInfoIFDPointer":
		return DirGPS
	case name == "InteroperabilityIndex":
		return DirInterop
	case strings.HasPrefix(name, "ThumbJPEGInterchangeFormat"):
		return DirThumbnail
	case ifd0Tags[name]:
		return DirIFD0
	}
	return DirExif
}
