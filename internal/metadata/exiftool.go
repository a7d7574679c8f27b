package metadata

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/google/uuid"

	serr "imgmeta/internal/errors"
	"imgmeta/internal/log"
	"imgmeta/pkg/types"
)

// Rewrite backends selectable through rewrite.backend.
const (
	BackendNative   = "native"
	BackendExiftool = "exiftool"
)

// xmpAll names every XMP tag; assigning it nothing drops the old packet.
const xmpAll = "XMP:all"

// ExiftoolRewriter writes the modified copy through a long running
// exiftool process instead of ReplaceXMP. Destination naming and the
// existing-copy policies are the same as Rewriter's. exiftool lays out
// the packet itself, so an update too large for one APP1 segment is
// stored as extended XMP.
type ExiftoolRewriter struct {
	Suffix   string
	Existing types.ExistingPolicy

	mu sync.Mutex
	et *exiftool.Exiftool
}

// NewExiftoolRewriter starts exiftool. It fails when the binary is not on
// PATH.
func NewExiftoolRewriter(suffix string, existing types.ExistingPolicy) (*ExiftoolRewriter, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, serr.NewMetadataError("cannot start exiftool", "", "rewrite", serr.MetadataWriteFailed, err)
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &ExiftoolRewriter{Suffix: suffix, Existing: existing, et: et}, nil
}

// ExiftoolTags maps update onto exiftool tag names such as XMP-tiff:Make.
// Only the well-known namespaces have exiftool tables, so declared
// namespaces and rdf:about are refused.
func ExiftoolTags(update types.XMPUpdate) (map[string]interface{}, error) {
	if update.IsEmpty() {
		return nil, serr.NewMetadataError("no XMP fields to write", "", "rewrite", serr.InvalidXMPField, nil)
	}
	if update.About != "" {
		return nil, serr.NewMetadataError("the exiftool backend cannot set rdf:about", "", "rewrite", serr.InvalidXMPField, nil)
	}

	tags := make(map[string]interface{}, len(update.Fields))
	for _, f := range update.Fields {
		if !xmlName.MatchString(f.Name) {
			return nil, invalidField(f, "is not a valid XML name")
		}
		if _, custom := update.Namespaces[f.Prefix]; custom {
			return nil, invalidField(f, "uses a namespace exiftool does not know")
		}
		if _, ok := KnownNamespaces[f.Prefix]; !ok {
			return nil, invalidField(f, "uses an unknown namespace prefix")
		}
		tag := "XMP-" + f.Prefix + ":" + f.Name
		if _, dup := tags[tag]; dup {
			return nil, invalidField(f, "is set twice")
		}
		tags[tag] = f.Value
	}
	return tags, nil
}

// Rewrite copies src next to its destination, lets exiftool replace the
// XMP of the copy and stores the result at ModifiedPath(src).
func (rw *ExiftoolRewriter) Rewrite(ctx context.Context, src string, update types.XMPUpdate) (string, error) {
	suffix := rw.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dest := ModifiedPath(src, suffix)
	logger := log.LogWithFields(log.F("path", src), log.F("dest", dest), log.F("backend", BackendExiftool))

	tags, err := ExiftoolTags(update)
	if err != nil {
		return "", err
	}
	if err := checkJPEG(src); err != nil {
		return "", err
	}

	content, err := rw.render(src, tags)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := store(src, dest, content, rw.Existing); err != nil {
		return "", err
	}

	logger.Infof("Wrote modified copy (%d bytes, %d XMP fields)", len(content), len(update.Fields))
	return dest, nil
}

func (rw *ExiftoolRewriter) render(src string, tags map[string]interface{}) ([]byte, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, serr.NewFileError("cannot read source image", src, serr.FileAccessDenied, err)
	}

	// exiftool picks the writer by extension, so the scratch copy keeps it.
	tmp := filepath.Join(filepath.Dir(src), "."+uuid.NewString()+filepath.Ext(src))
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		os.Remove(tmp)
		return nil, serr.NewFileError("failed to write temporary copy", tmp, serr.FileCreateFailed, err)
	}
	defer os.Remove(tmp)
	defer os.Remove(tmp + "_original")

	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.et == nil {
		return nil, serr.NewMetadataError("exiftool has been closed", src, "rewrite", serr.MetadataWriteFailed, nil)
	}

	for _, fields := range []map[string]interface{}{{xmpAll: ""}, tags} {
		batch := []exiftool.FileMetadata{{File: tmp, Fields: fields}}
		rw.et.WriteMetadata(batch)
		if batch[0].Err != nil {
			return nil, serr.NewMetadataError("exiftool failed to rewrite XMP", src, "rewrite", serr.MetadataWriteFailed, batch[0].Err)
		}
	}

	out, err := os.ReadFile(tmp)
	if err != nil {
		return nil, serr.NewFileError("cannot read temporary copy", tmp, serr.FileOperationFailed, err)
	}
	return out, nil
}

// Close stops the exiftool process.
func (rw *ExiftoolRewriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.et == nil {
		return nil
	}
	err := rw.et.Close()
	rw.et = nil
	return err
}
