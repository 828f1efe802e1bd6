// scanner.go -- byte-level FASTA/FASTQ record scanner
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package scan walks a byte stream one line at a time, delimiting
// records on a configurable marker that must appear at the start of a
// line, and yields each record's header text together with its
// (offset, length) within the stream. It optionally enforces FASTQ's
// 4-line structure and large-FASTA's rule that body lines never grow
// in length.
package scan

import (
	"bufio"
	"io"

	"github.com/opencoff/cdbfasta/ferr"
)

const (
	initialHeaderCap = 16 * 1024
	maxHeaderCap     = 16 * 1024 * 1024
	minReadBuffer    = 64 * 1024
)

type state int

const (
	statePreFirst state = iota
	stateInHeader
	stateInBody
)

type fqPhase int

const (
	fqSeqHeader fqPhase = iota
	fqSeq
	fqQVHeader
	fqQV
	fqDone
)

// Record is one delimited record: Header is the raw bytes between the
// marker and the first line terminator (marker stripped); Offset and
// Length describe its byte range, including the header line and every
// body line, but excluding the terminating EOL sequence.
type Record struct {
	Header []byte
	Offset uint64
	Length uint64
}

// Options configures a Scanner.
type Options struct {
	// Marker is the record delimiter, 1..126 bytes, checked only at
	// the start of a line.
	Marker []byte

	// FASTQ enables the 4-line seq/+/qual structural check and the
	// quality-line marker-lookalike guard.
	FASTQ bool

	// LargeFasta enables the body-line-length check (-G): no body
	// line may be longer than the line before it.
	LargeFasta bool

	// KeepFullHeader controls header capture: when false (P-Default),
	// capture stops at the first whitespace or control byte, matching
	// the scanner's original memory-saving shortcut for the one
	// policy that only ever looks at a line prefix. Every other
	// policy needs the complete header line.
	KeepFullHeader bool
}

// Scanner reads records out of r per Options.
type Scanner struct {
	br     *bufio.Reader
	opts   Options
	marker []byte
}

// New validates opts and returns a Scanner over r.
func New(r io.Reader, opts Options) (*Scanner, error) {
	if len(opts.Marker) == 0 || len(opts.Marker) > 126 {
		return nil, ferr.Config("scan: marker length must be 1..126, got %d", len(opts.Marker))
	}
	return &Scanner{
		br:     bufio.NewReaderSize(r, minReadBuffer),
		opts:   opts,
		marker: opts.Marker,
	}, nil
}

// Each calls emit once per record, in stream order, stopping at the
// first error returned by emit or encountered while scanning.
func (s *Scanner) Each(emit func(Record) error) error {
	sc := &scanState{
		s:      s,
		header: make([]byte, 0, initialHeaderCap),
	}
	return sc.run(emit)
}

type scanState struct {
	s   *Scanner
	pos uint64

	st          state
	atLineStart bool

	header        []byte
	headerCapture bool // still appending to header (false once P-Default's prefix is captured)

	haveOpen    bool
	recordStart uint64
	lastEOLLen  int

	lineIdx      int
	curLineLen   int
	firstLineLen int
	prevLineLen  int

	wasEOL bool

	fq     fqPhase
	fqLens [4]int
}

func (sc *scanState) run(emit func(Record) error) error {
	sc.atLineStart = true
	sc.st = statePreFirst

	for {
		if sc.atLineStart && sc.st != stateInHeader {
			matched, err := sc.tryMarker()
			if err != nil {
				return err
			}
			if matched {
				sc.wasEOL = false
				if err := sc.onMarker(emit); err != nil {
					return err
				}
				continue
			}
			sc.atLineStart = false
		}

		b, eof, err := sc.readByte()
		if err != nil {
			return err
		}
		if eof {
			break
		}

		if !sc.isEOL(b) {
			sc.wasEOL = false
		}
		if err := sc.consume(b); err != nil {
			return err
		}
	}

	return sc.finish(emit)
}

func (sc *scanState) readByte() (b byte, eof bool, err error) {
	b, err = sc.s.br.ReadByte()
	if err == io.EOF {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, ferr.IORead("scan: read: %s", err)
	}
	sc.pos++
	return b, false, nil
}

// tryMarker peeks for the marker at the current line start. It
// returns false without consuming anything if the marker isn't found,
// or if FASTQ's quality-line guard forbids treating it as a marker
// here.
func (sc *scanState) tryMarker() (bool, error) {
	peek, err := sc.s.br.Peek(len(sc.s.marker))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return false, ferr.IORead("scan: peek: %s", err)
	}
	if len(peek) < len(sc.s.marker) {
		return false, nil
	}
	for i, m := range sc.s.marker {
		if peek[i] != m {
			return false, nil
		}
	}

	if sc.st == stateInBody && sc.s.opts.FASTQ {
		if sc.fqLens[1] > sc.fqLens[3] {
			return false, nil
		}
	}

	if _, err := sc.s.br.Discard(len(sc.s.marker)); err != nil {
		return false, ferr.IORead("scan: discard marker: %s", err)
	}
	sc.pos += uint64(len(sc.s.marker))
	return true, nil
}

func (sc *scanState) onMarker(emit func(Record) error) error {
	markerStart := sc.pos - uint64(len(sc.s.marker))

	if sc.st == stateInBody {
		if err := sc.closeRecord(emit, markerStart); err != nil {
			return err
		}
	}

	sc.st = stateInHeader
	sc.header = sc.header[:0]
	sc.headerCapture = true
	sc.recordStart = markerStart
	sc.haveOpen = true
	return nil
}

func (sc *scanState) consume(b byte) error {
	switch sc.st {
	case statePreFirst:
		return sc.consumePreFirst(b)
	case stateInHeader:
		return sc.consumeHeader(b)
	case stateInBody:
		return sc.consumeBody(b)
	}
	return nil
}

func (sc *scanState) consumePreFirst(b byte) error {
	if sc.isEOL(b) {
		if sc.consumeEOL(b) > 0 {
			sc.atLineStart = true
		}
	}
	return nil
}

func (sc *scanState) consumeHeader(b byte) error {
	if sc.isEOL(b) {
		sc.lastEOLLen = sc.consumeEOL(b)
		if sc.lastEOLLen == 0 {
			return nil // blank line inside a header: ignore, keep capturing
		}

		sc.st = stateInBody
		sc.atLineStart = true
		sc.lineIdx = 0
		sc.curLineLen = 0
		sc.firstLineLen = -1
		sc.prevLineLen = 0
		if sc.s.opts.FASTQ {
			sc.fq = fqSeqHeader
			sc.fqLens = [4]int{}
		}
		return nil
	}

	if !sc.headerCapture {
		return nil
	}
	if !sc.s.opts.KeepFullHeader && isDefaultTerminator(b) {
		sc.headerCapture = false
		return nil
	}
	if len(sc.header) >= maxHeaderCap {
		return ferr.Format("scan: header exceeds %d bytes", maxHeaderCap)
	}
	sc.header = append(sc.header, b)
	return nil
}

func (sc *scanState) consumeBody(b byte) error {
	if sc.isEOL(b) {
		n := sc.consumeEOL(b)
		if n == 0 {
			return nil // blank line
		}
		sc.lastEOLLen = n
		return sc.endBodyLine()
	}

	first := sc.curLineLen == 0
	sc.curLineLen++

	if sc.s.opts.FASTQ {
		if first && sc.fq == fqSeqHeader {
			sc.fq = fqSeq
		}
		if first && sc.fq == fqSeq && b == '+' {
			sc.fq = fqQVHeader
		}
		switch sc.fq {
		case fqSeq:
			sc.fqLens[1]++
		case fqQV:
			sc.fqLens[3]++
		}
	}

	return nil
}

func (sc *scanState) endBodyLine() error {
	if sc.lineIdx == 0 {
		sc.firstLineLen = sc.curLineLen
	} else if sc.s.opts.LargeFasta && sc.curLineLen > sc.prevLineLen {
		// Body lines must be monotonically non-increasing in length;
		// a genomic record's final, shorter line is expected, but a
		// line growing again afterward indicates a malformed record.
		return ferr.Format("scan: body line %d longer than the line before it", sc.lineIdx)
	}
	sc.prevLineLen = sc.curLineLen

	if sc.s.opts.FASTQ {
		switch sc.fq {
		case fqQVHeader:
			sc.fq = fqQV
		case fqQV:
			sc.fq = fqDone
		}
	}

	sc.lineIdx++
	sc.curLineLen = 0
	sc.atLineStart = true
	return nil
}

func (sc *scanState) closeRecord(emit func(Record) error, endPos uint64) error {
	if sc.s.opts.FASTQ {
		if sc.lineIdx < 3 || sc.fqLens[1] != sc.fqLens[3] {
			return ferr.Format("scan: fastq record at offset %d: seq/qv length mismatch or truncated record", sc.recordStart)
		}
	}

	length := endPos - sc.recordStart - uint64(sc.lastEOLLen)
	rec := Record{
		Header: sc.header,
		Offset: sc.recordStart,
		Length: length,
	}
	sc.header = make([]byte, 0, initialHeaderCap)
	return emit(rec)
}

func (sc *scanState) finish(emit func(Record) error) error {
	if !sc.haveOpen {
		return nil
	}
	if sc.st == stateInHeader {
		// header line never terminated by EOL (no trailing newline
		// in the input); treat current position as its end.
		sc.lastEOLLen = 0
	}
	if sc.st == stateInBody && sc.curLineLen > 0 {
		// final body line has no trailing EOL: count it as a line and
		// subtract nothing from the record's length.
		if err := sc.endBodyLine(); err != nil {
			return err
		}
		sc.lastEOLLen = 0
	}
	return sc.closeRecord(emit, sc.pos)
}

// isEOL reports whether b is one of the two EOL bytes.
func (sc *scanState) isEOL(b byte) bool { return b == '\n' || b == '\r' }

// consumeEOL processes one EOL byte already consumed from the
// reader, absorbing its \n\r pair partner if present, and returns the
// total EOL length (1 or 2), or 0 if this is a blank line (two
// consecutive EOL bytes that don't form the \n\r pair). A blank line
// leaves the scanner at the start of a line.
func (sc *scanState) consumeEOL(b byte) int {
	if sc.wasEOL {
		sc.wasEOL = false
		sc.atLineStart = true
		return 0
	}

	n := 1
	if b == '\n' {
		if next, err := sc.s.br.Peek(1); err == nil && len(next) == 1 && next[0] == '\r' {
			sc.s.br.Discard(1)
			sc.pos++
			n = 2
		}
	}
	sc.wasEOL = n == 1
	return n
}

func isDefaultTerminator(b byte) bool {
	switch b {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	}
	return b < 32
}
