package strap

import (
	"archive/zip"
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/straptrack/pkg/errors"
)

// zstd frame magic number, checked up front so a corrupt file fails at
// open time instead of on the first read.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// compressionSuffixes lists the recognized compression suffixes in the
// order they are checked. Dispatch is purely on the file name; content
// is never sniffed.
var compressionSuffixes = []string{
	".gz", ".gzip", ".zst", ".zstd", ".zip", ".lz4", ".s2", ".sz", ".snappy",
}

// decodedStream is a buffered byte stream over a possibly compressed
// file. Closing it releases the decoder and the underlying file handle.
type decodedStream struct {
	r       io.Reader
	closers []func() error
}

func (d *decodedStream) Read(p []byte) (int, error) {
	return d.r.Read(p)
}

func (d *decodedStream) Close() error {
	var firstErr error
	for _, c := range d.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenReader opens path and returns a byte stream that transparently
// decompresses based on the file name suffix (case-insensitive).
// Unrecognized suffixes are read raw. Open, permission, and malformed
// header failures all surface here, not on first read.
func OpenReader(path string) (io.ReadCloser, error) {
	lower := strings.ToLower(path)

	if strings.HasSuffix(lower, ".zip") {
		return openZip(path)
	}

	f, err := os.Open(path) //nolint:gosec // G304: caller-controlled path
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file")
	}
	closeFile := f.Close

	br := bufio.NewReader(f)

	switch {
	case strings.HasSuffix(lower, ".gz") || strings.HasSuffix(lower, ".gzip"):
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeFormat, "malformed gzip header")
		}
		return &decodedStream{
			r:       bufio.NewReader(zr),
			closers: []func() error{zr.Close, closeFile},
		}, nil

	case strings.HasSuffix(lower, ".zst") || strings.HasSuffix(lower, ".zstd"):
		magic, err := br.Peek(len(zstdMagic))
		if err != nil || !bytes.Equal(magic, zstdMagic) {
			_ = f.Close()
			return nil, errors.New(errors.ErrorTypeFormat, "malformed zstd header")
		}
		zr, err := zstd.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to create zstd decoder")
		}
		return &decodedStream{
			r: bufio.NewReader(zr),
			closers: []func() error{
				func() error { zr.Close(); return nil },
				closeFile,
			},
		}, nil

	case strings.HasSuffix(lower, ".lz4"):
		return &decodedStream{
			r:       bufio.NewReader(lz4.NewReader(br)),
			closers: []func() error{closeFile},
		}, nil

	case strings.HasSuffix(lower, ".s2"):
		return &decodedStream{
			r:       bufio.NewReader(s2.NewReader(br)),
			closers: []func() error{closeFile},
		}, nil

	case strings.HasSuffix(lower, ".sz") || strings.HasSuffix(lower, ".snappy"):
		return &decodedStream{
			r:       bufio.NewReader(snappy.NewReader(br)),
			closers: []func() error{closeFile},
		}, nil

	default:
		return &decodedStream{
			r:       br,
			closers: []func() error{closeFile},
		}, nil
	}
}

// openZip opens path as a zip archive and buffers the bytes of the
// first entry into memory. Only the first entry is ever considered;
// this is a deliberate scope limitation, not a general archive reader.
func openZip(path string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to open zip archive")
	}
	defer zr.Close()

	if len(zr.File) == 0 {
		return nil, errors.New(errors.ErrorTypeFormat, "zip archive is empty")
	}

	entry, err := zr.File[0].Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to open first zip entry")
	}
	defer entry.Close()

	contents, err := io.ReadAll(entry)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to read first zip entry")
	}

	return &decodedStream{
		r: bytes.NewReader(contents),
	}, nil
}

// stripCompressionSuffix removes one recognized compression suffix from
// a lowercase path, if present.
func stripCompressionSuffix(lower string) string {
	for _, suffix := range compressionSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return strings.TrimSuffix(lower, suffix)
		}
	}
	return lower
}
