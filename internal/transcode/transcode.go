// Package transcode converts source bytes in a declared character encoding to
// UTF-8 before they reach the searcher.
package transcode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrUnknownEncoding is returned by Lookup for labels it does not know.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrInvalidData is returned by strict readers when the source contains
	// byte sequences that are invalid for the declared encoding.
	ErrInvalidData = errors.New("invalid data for encoding")
)

// replacement is U+FFFD encoded as UTF-8. Decoders from x/text emit it for
// every invalid input sequence.
var replacement = []byte("\uFFFD")

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Lookup resolves a WHATWG encoding label such as "latin1", "sjis" or
// "utf-16le". The labels "", "auto" and "none" return a nil Encoding, which
// means the source is searched as it is.
func Lookup(label string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "auto", "none":
		return nil, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return enc, nil
}

// Name returns the canonical name of enc, or "none" for nil.
func Name(enc encoding.Encoding) string {
	if enc == nil {
		return "none"
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return fmt.Sprint(enc)
	}
	return name
}

// NewReader returns a reader yielding the UTF-8 form of r decoded from enc.
// In strict mode the reader fails with ErrInvalidData at the first invalid
// sequence; otherwise invalid sequences become U+FFFD. A UTF-16 or UTF-8 BOM
// at the start of the source overrides enc, as browsers do.
func NewReader(r io.Reader, enc encoding.Encoding, strict bool) io.Reader {
	if !strict {
		return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))
	}
	br := bufio.NewReader(r)
	return transform.NewReader(br, newStrictDecoder(sniffBOM(br, enc)))
}

// NewBOMReader returns a reader that decodes UTF-16 sources starting with a
// BOM, strips a UTF-8 BOM and passes everything else through unchanged.
func NewBOMReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// sniffBOM consumes a leading BOM from br and returns the encoding it
// announces, or enc when there is none.
func sniffBOM(br *bufio.Reader, enc encoding.Encoding) encoding.Encoding {
	head, _ := br.Peek(len(utf8BOM))
	switch {
	case bytes.HasPrefix(head, utf8BOM):
		_, _ = br.Discard(len(utf8BOM))
		return unicode.UTF8
	case bytes.HasPrefix(head, utf16LEBOM):
		_, _ = br.Discard(len(utf16LEBOM))
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case bytes.HasPrefix(head, utf16BEBOM):
		_, _ = br.Discard(len(utf16BEBOM))
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return enc
}

// strictDecoder decodes like enc's decoder and fails once the output holds
// more U+FFFD than the source spells out in enc. A source may contain the
// replacement character itself, so only the surplus marks invalid data.
type strictDecoder struct {
	dec transform.Transformer

	// literal is U+FFFD encoded in the source encoding, nil when the
	// encoding cannot represent it.
	literal []byte

	tail     []byte // consumed bytes that may start a literal
	literals int    // literal replacement characters consumed so far
	decoded  int    // replacement characters emitted so far
	offset   int64  // source bytes consumed so far
}

func newStrictDecoder(enc encoding.Encoding) *strictDecoder {
	literal, err := enc.NewEncoder().Bytes(replacement)
	if err != nil || len(literal) == 0 {
		literal = nil
	}
	return &strictDecoder{dec: enc.NewDecoder(), literal: literal}
}

func (d *strictDecoder) Reset() {
	d.dec.Reset()
	d.tail = d.tail[:0]
	d.literals, d.decoded, d.offset = 0, 0, 0
}

func (d *strictDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = d.dec.Transform(dst, src, atEOF)
	d.countLiterals(src[:nSrc])

	out := dst[:nDst]
	for i := 0; ; {
		j := bytes.Index(out[i:], replacement)
		if j < 0 {
			break
		}
		i += j
		d.decoded++
		if d.decoded > d.literals {
			return i, nSrc, fmt.Errorf("%w near source offset %d", ErrInvalidData, d.offset)
		}
		i += len(replacement)
	}
	d.offset += int64(nSrc)
	return nDst, nSrc, err
}

// countLiterals counts the encoded replacement characters in consumed
// source bytes, including ones split across calls.
func (d *strictDecoder) countLiterals(consumed []byte) {
	if d.literal == nil || len(consumed) == 0 {
		return
	}
	window := append(d.tail, consumed...)
	d.literals += bytes.Count(window, d.literal)

	keep := min(len(d.literal)-1, len(window))
	if i := bytes.LastIndex(window, d.literal); i >= 0 && len(window)-keep < i+len(d.literal) {
		keep = len(window) - (i + len(d.literal))
	}
	d.tail = append(d.tail[:0], window[len(window)-keep:]...)
}
