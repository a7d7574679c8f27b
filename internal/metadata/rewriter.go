package metadata

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	serr "imgmeta/internal/errors"
	"imgmeta/internal/log"
	"imgmeta/pkg/types"
)

// DefaultSuffix is appended to the stem of the modified copy.
const DefaultSuffix = "_modified"

// ModifiedPath returns <dir>/<stem><suffix><ext> for src.
func ModifiedPath(src, suffix string) string {
	dir := filepath.Dir(src)
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+suffix+ext)
}

// XMPRewriter writes a modified copy of src and returns its path.
type XMPRewriter interface {
	Rewrite(ctx context.Context, src string, update types.XMPUpdate) (string, error)
}

// NewBackend returns the rewriter named by backend. An empty name selects
// the native writer. The exiftool rewriter must be closed by the caller.
func NewBackend(backend, suffix string, existing types.ExistingPolicy) (XMPRewriter, error) {
	switch backend {
	case "", BackendNative:
		return NewRewriter(suffix, existing), nil
	case BackendExiftool:
		rw, err := NewExiftoolRewriter(suffix, existing)
		if err != nil {
			return nil, err
		}
		return rw, nil
	}
	return nil, serr.NewConfigError(fmt.Sprintf("unknown backend %q", backend), "rewrite.backend", serr.InvalidConfig, nil)
}

// Rewriter writes a sibling copy of a JPEG whose XMP packet is replaced.
type Rewriter struct {
	Suffix   string
	Existing types.ExistingPolicy
}

// NewRewriter returns a rewriter using suffix, or DefaultSuffix when empty.
func NewRewriter(suffix string, existing types.ExistingPolicy) *Rewriter {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Rewriter{Suffix: suffix, Existing: existing}
}

// Rewrite encodes update, streams src through ReplaceXMP and stores the
// result at ModifiedPath(src). The source is never modified. The
// destination is only touched once the new content is fully built.
func (rw *Rewriter) Rewrite(ctx context.Context, src string, update types.XMPUpdate) (string, error) {
	suffix := rw.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dest := ModifiedPath(src, suffix)
	logger := log.LogWithFields(log.F("path", src), log.F("dest", dest), log.F("existing", rw.Existing.String()))

	packet, err := EncodeXMP(update)
	if err != nil {
		return "", err
	}

	content, err := rw.render(src, packet)
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

// checkJPEG rejects anything but a readable JPEG.
func checkJPEG(src string) error {
	mt, err := mimetype.DetectFile(src)
	if err != nil {
		kind := serr.FileAccessDenied
		if os.IsNotExist(err) {
			kind = serr.FileNotFound
		}
		return serr.NewFileError("cannot read source image", src, kind, err)
	}
	if !mt.Is("image/jpeg") {
		return serr.NewMetadataError("only JPEG sources can be rewritten, got "+mt.String(), src, "rewrite", serr.UnsupportedFormat, nil)
	}
	return nil
}

func (rw *Rewriter) render(src string, packet []byte) ([]byte, error) {
	if err := checkJPEG(src); err != nil {
		return nil, err
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, serr.NewFileError("cannot read source image", src, serr.FileAccessDenied, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := ReplaceXMP(f, &out, packet); err != nil {
		if serr.IsMetadataError(err) {
			return nil, err
		}
		return nil, serr.NewMetadataError("failed to rewrite JPEG", src, "rewrite", serr.MetadataWriteFailed, err)
	}
	return out.Bytes(), nil
}

// store writes content to dest according to the existing-copy policy.
func store(src, dest string, content []byte, existing types.ExistingPolicy) error {
	switch existing {
	case types.ExistingFail:
		return writeExclusive(dest, content)
	case types.ExistingOverwrite:
		return writeReplace(dest, content)
	default:
		return writeInPlace(src, dest, content)
	}
}

// writeInPlace keeps the identity of an existing destination. A missing
// file is created. Anything other than a regular file distinct from src
// is refused, so a symlinked copy never writes through to its target.
func writeInPlace(src, dest string, content []byte) error {
	info, err := os.Lstat(dest)
	switch {
	case os.IsNotExist(err):
		return writeExclusive(dest, content)
	case err != nil:
		return serr.NewFileError("cannot inspect modified copy", dest, serr.FileAccessDenied, err)
	}
	if !info.Mode().IsRegular() {
		return serr.NewFileError("modified copy is not a regular file", dest, serr.InvalidPath, nil)
	}
	if srcInfo, err := os.Stat(src); err == nil && os.SameFile(info, srcInfo) {
		return serr.NewFileError("modified copy is the source image", dest, serr.InvalidPath, nil)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY, 0)
	if err != nil {
		return serr.NewFileError("failed to open modified copy", dest, serr.FileAccessDenied, err)
	}
	// dest may have been swapped between Lstat and open.
	if opened, err := f.Stat(); err != nil || !os.SameFile(info, opened) {
		f.Close()
		return serr.NewFileError("modified copy changed while opening", dest, serr.InvalidPath, err)
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return serr.NewFileError("failed to write modified copy", dest, serr.FileOperationFailed, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return serr.NewFileError("failed to write modified copy", dest, serr.FileOperationFailed, err)
	}
	if err := f.Close(); err != nil {
		return serr.NewFileError("failed to write modified copy", dest, serr.FileOperationFailed, err)
	}
	return nil
}

func writeExclusive(dest string, content []byte) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return serr.NewFileError("modified copy already exists", dest, serr.DestinationExists, err)
		}
		return serr.NewFileError("failed to create modified copy", dest, serr.FileCreateFailed, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(dest)
		return serr.NewFileError("failed to write modified copy", dest, serr.FileOperationFailed, err)
	}
	return f.Close()
}

func writeReplace(dest string, content []byte) error {
	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		os.Remove(tmp)
		return serr.NewFileError("failed to write temporary copy", tmp, serr.FileCreateFailed, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return serr.NewFileError("failed to replace modified copy", dest, serr.FileOperationFailed, err)
	}
	return nil
}
