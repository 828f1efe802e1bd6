// sink.go -- compressing sink for the effective database
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package zsink wraps an output file with block-oriented compression.
// Each record handed to WriteRecord is compressed into its own self-contained
// zstd frame, so a downstream reader can decompress any single
// (offset, length) slice of the output file without needing the rest
// of the stream -- the contract spec.md §4.3 requires of the
// compressing sink.
package zsink

import (
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/opencoff/cdbfasta/ferr"
)

// Sink is an append-only, block-oriented compressing writer. It is
// mutually exclusive with FASTQ mode at the configuration layer (see
// build.Config): FASTQ's structural validation needs byte-accurate
// line accounting against the *uncompressed* record bytes, which this
// sink does not expose.
type Sink struct {
	fd   *os.File
	enc  *zstd.Encoder
	off  uint64
	tmp  string
	fn   string
}

// Create opens tmp for exclusive write; fn is the final path the
// caller will rename tmp to once the build succeeds.
func Create(tmp, fn string) (*Sink, error) {
	fd, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, ferr.IOWrite("zsink: create %s: %s", tmp, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		fd.Close()
		return nil, ferr.IOWrite("zsink: new encoder: %s", err)
	}

	return &Sink{fd: fd, enc: enc, tmp: tmp, fn: fn}, nil
}

// WriteRecord compresses buf into a single self-contained zstd frame
// and appends it to the sink. It returns the compressed offset and
// length at which the frame landed in the output file.
func (s *Sink) WriteRecord(buf []byte) (offset uint64, length uint32, err error) {
	block := s.enc.EncodeAll(buf, nil)

	n, err := s.fd.WriteAt(block, int64(s.off))
	if err != nil {
		return 0, 0, ferr.IOWrite("zsink: write block: %s", err)
	}
	if n != len(block) {
		return 0, 0, ferr.IOWrite("zsink: short write (%d of %d)", n, len(block))
	}

	offset = s.off
	length = uint32(len(block))
	s.off += uint64(length)
	return offset, length, nil
}

// Size returns the number of compressed bytes written so far -- the
// effective database size once Finish has been called.
func (s *Sink) Size() uint64 { return s.off }

// Finish flushes any pending state and closes the encoder. Because
// every record is a complete, independent frame there is nothing
// buffered across records, but the encoder itself still owns internal
// resources that must be released.
func (s *Sink) Finish() error {
	if err := s.enc.Close(); err != nil {
		return ferr.IOWrite("zsink: close encoder: %s", err)
	}
	if err := s.fd.Sync(); err != nil {
		return ferr.IOWrite("zsink: sync: %s", err)
	}
	if err := s.fd.Close(); err != nil {
		return ferr.IOWrite("zsink: close: %s", err)
	}
	return nil
}

// Abort closes and removes the temporary output file.
func (s *Sink) Abort() {
	s.enc.Close()
	s.fd.Close()
	os.Remove(s.tmp)
}

// Rename moves the temporary compressed file to its final name. The
// caller invokes this only after the index itself has been committed,
// matching spec.md §4.6 step 6.
func (s *Sink) Rename() error {
	os.Remove(s.fn)
	if err := os.Rename(s.tmp, s.fn); err != nil {
		return ferr.IOWrite("zsink: rename %s -> %s: %s", s.tmp, s.fn, err)
	}
	return nil
}

// DecodeBlock decompresses a single self-contained frame previously
// produced by WriteRecord. It exists mainly to make the sink's
// round-trip property testable without a separate lookup tool.
func DecodeBlock(block []byte) ([]byte, error) {
	d, err := zstd.NewReader(nil)
	if err != nil {
		return nil, ferr.IORead("zsink: new decoder: %s", err)
	}
	defer d.Close()

	out, err := d.DecodeAll(block, nil)
	if err != nil {
		return nil, ferr.IORead("zsink: decode block: %s", err)
	}
	return out, nil
}
