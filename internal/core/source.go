package core

// source.go turns an uploaded byte stream into text for Parse.
//
// The transforms run in a fixed order:
//  1. The UTF-8 byte order mark written by Excel on Windows is dropped
//  2. Legacy single-byte encodings are decoded to UTF-8 when configured
//  3. The stream is capped at the configured size
//  4. Any remaining invalid UTF-8 is replaced with U+FFFD

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SourceOptions controls how ReadSource decodes a stream.
type SourceOptions struct {
	// Encoding is "utf-8" (default), "windows-1252" or "iso-8859-1".
	Encoding string

	// MaxBytes caps the raw size read from the stream, before decoding.
	// Zero means unlimited.
	MaxBytes int64
}

// ReadSource reads a whole upload and returns it as UTF-8 text.
// Returns ErrFileTooLarge if the raw stream exceeds opts.MaxBytes.
func ReadSource(r io.Reader, opts SourceOptions) (string, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return "", err
	}

	var limited *io.LimitedReader
	if opts.MaxBytes > 0 {
		limited = &io.LimitedReader{R: r, N: opts.MaxBytes + 1}
		r = limited
	}

	src := skipBOM(r)
	if dec != nil {
		src = transform.NewReader(src, dec)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if limited != nil && limited.N <= 0 {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, opts.MaxBytes)
	}

	return string(bytes.ToValidUTF8(data, []byte("\uFFFD"))), nil
}

// skipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

// decoderFor maps an encoding name to a decoder. UTF-8 needs none.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("encoding error: unsupported source encoding %q", name)
	}
}

// ValidEncoding reports whether ReadSource accepts the encoding name.
func ValidEncoding(name string) bool {
	_, err := decoderFor(name)
	return err == nil
}

// CountingReader tracks bytes read for ingest logging.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.BytesRead += int64(n)
	return n, err
}
