// trailer.go -- index metadata trailer (cdbInfo)
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package cdb

import (
	"io"
	"path/filepath"

	"github.com/opencoff/cdbfasta/ferr"
)

// Index flag bits, OR'd into Trailer.Flags.
const (
	FlagMulti    uint32 = 0x01
	FlagCompress uint32 = 0x02
	FlagCompact  uint32 = 0x04
	FlagCompactA uint32 = 0x08
	FlagGSeq     uint32 = 0x10
)

// TrailerSize is the fixed, 32-byte on-disk size of Trailer: reader
// tools locate it by seeking -TrailerSize from EOF. The named fields
// (tag, flags, num_records, num_keys, dbsize, dbnamelen) sum to 28
// bytes; the remaining 4 bytes are reserved and written as zero so the
// trailer lands on the 32-byte boundary spec.md's external interface
// section hardcodes ("downstream lookup tools read the last 32
// bytes").
const TrailerSize = 4 + 4 + 4 + 4 + 8 + 4 + 4

// Trailer is the fixed-layout metadata block appended after the CDB
// structure, immediately following the raw basename bytes of the
// database file.
type Trailer struct {
	Flags      uint32
	NumRecords uint32
	NumKeys    uint32
	DBSize     uint64
	DBName     string
}

// WriteTrailer writes the database basename followed by the 32-byte
// fixed trailer to w, in the exact layout described in spec.md §3:
// tag, idxflags, num_records, num_keys, dbsize, dbnamelen -- with the
// basename bytes immediately preceding the fixed block.
//
// Implementations of this format disagree about whether DBName should
// be the basename or the path as given on the command line; this one
// always stores the basename (filepath.Base), matching what downstream
// lookup tools expect to find.
func WriteTrailer(w io.Writer, t Trailer) error {
	name := filepath.Base(t.DBName)

	if _, err := w.Write([]byte(name)); err != nil {
		return ferr.IOWrite("cdb: write trailer name: %s", err)
	}

	var b [TrailerSize]byte
	copy(b[0:4], []byte("CDBX"))
	putU32(b[4:8], t.Flags)
	putU32(b[8:12], t.NumRecords)
	putU32(b[12:16], t.NumKeys)
	putU64(b[16:24], t.DBSize)
	putU32(b[24:28], uint32(len(name)))

	if _, err := w.Write(b[:]); err != nil {
		return ferr.IOWrite("cdb: write trailer: %s", err)
	}
	return nil
}
