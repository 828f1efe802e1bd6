// writer.go -- append-only CDB hash table builder
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package cdb implements the on-disk structure of a constant database:
// a 256-bucket directory over an append-only series of key/payload
// records, each bucket holding an open-addressed hash table for O(1)
// lookup. See http://cr.yp.to/cdb.html for the original design.
//
// Unlike a general purpose cdb, this Writer never rejects a duplicate
// key -- the caller (the header key extractor) is the sole arbiter of
// which keys get forwarded here, and two distinct records are allowed
// to share a key.
package cdb

import (
	"bufio"
	"math"
	"os"

	"github.com/opencoff/cdbfasta/ferr"
)

const (
	numBuckets = 256
	dirSize    = numBuckets * 8 // position u32 LE, slot-count u32 LE per bucket
)

type slot struct {
	hash uint32
	off  uint32
}

// Writer accumulates (key, payload) insertions in an append-only data
// region and, at Finish, emits the bucket directory and per-bucket
// open-addressed hash tables that make the file a constant database.
//
// Add and Finish must be called in that order; Writer is not
// reentrant and holds exactly one open file descriptor for its
// lifetime.
type Writer struct {
	fd  *os.File
	bw  *bufio.Writer
	tmp string

	buckets  [numBuckets][]slot
	off      uint64 // current write offset, including the reserved directory
	nkeys    uint32
	finished bool
}

// Create opens path for exclusive write and reserves the 2048-byte
// bucket directory at the head of the file. path is expected to be
// the build driver's deterministic temporary path (e.g. "<index>_tmp");
// Create itself has no opinion about naming.
func Create(path string) (*Writer, error) {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, ferr.IOWrite("cdb: create %s: %s", path, err)
	}

	w := &Writer{
		fd:  fd,
		bw:  bufio.NewWriterSize(fd, 65536),
		tmp: path,
		off: dirSize,
	}

	var zero [dirSize]byte
	if _, err := w.bw.Write(zero[:]); err != nil {
		fd.Close()
		return nil, ferr.IOWrite("cdb: reserve directory: %s", err)
	}

	return w, nil
}

// Add appends key and payload to the data region and records the
// key's hash for later bucket placement. An empty key is rejected with
// ErrConfig and a key longer than 1023 bytes with ErrKeyOverflow; any
// other key bytes, embedded NULs included, are stored as given.
func (w *Writer) Add(key, payload []byte) error {
	if w.finished {
		return ferr.IOWrite("cdb: add after finish")
	}
	if len(key) == 0 {
		return ferr.Config("cdb: empty key")
	}
	if len(key) > 1023 {
		return ferr.KeyOverflow(len(key))
	}

	var hdr [8]byte
	putU32(hdr[0:4], uint32(len(key)))
	putU32(hdr[4:8], uint32(len(payload)))

	dataOff := w.off
	if dataOff > math.MaxUint32 {
		return ferr.IOWrite("cdb: index exceeds 4GiB")
	}

	if _, err := w.bw.Write(hdr[:]); err != nil {
		return ferr.IOWrite("cdb: write record header: %s", err)
	}
	if _, err := w.bw.Write(key); err != nil {
		return ferr.IOWrite("cdb: write key: %s", err)
	}
	if _, err := w.bw.Write(payload); err != nil {
		return ferr.IOWrite("cdb: write payload: %s", err)
	}

	h := Hash32(key)
	bucket := h & 0xff
	w.buckets[bucket] = append(w.buckets[bucket], slot{hash: h, off: uint32(dataOff)})

	w.off += uint64(len(hdr) + len(key) + len(payload))
	w.nkeys++
	return nil
}

// NumKeys returns the number of successful Add calls so far.
func (w *Writer) NumKeys() uint32 { return w.nkeys }

// Finish writes, for each of the 256 buckets, an open-addressed hash
// table of size 2x its slot count (or zero when the bucket is empty),
// then rewrites the directory at the head of the file with each
// bucket's final (offset, slot-count*2). The file is left open and
// positioned at EOF so the caller can append the trailer.
func (w *Writer) Finish() error {
	if w.finished {
		return ferr.IOWrite("cdb: already finished")
	}

	var dir [numBuckets][2]uint32 // offset, slot count

	for i := 0; i < numBuckets; i++ {
		entries := w.buckets[i]
		tsz := uint32(len(entries)) * 2

		dir[i][0] = uint32(w.off)
		dir[i][1] = tsz

		if tsz == 0 {
			continue
		}

		table := make([]slot, tsz)
		for _, e := range entries {
			idx := (e.hash >> 8) % tsz
			for table[idx].hash != 0 || table[idx].off != 0 {
				idx = (idx + 1) % tsz
			}
			table[idx] = e
		}

		for _, e := range table {
			var rec [8]byte
			putU32(rec[0:4], e.hash)
			putU32(rec[4:8], e.off)
			if _, err := w.bw.Write(rec[:]); err != nil {
				return ferr.IOWrite("cdb: write hash table: %s", err)
			}
			w.off += 8
		}
	}

	if err := w.bw.Flush(); err != nil {
		return ferr.IOWrite("cdb: flush: %s", err)
	}

	if _, err := w.fd.Seek(0, os.SEEK_SET); err != nil {
		return ferr.IOWrite("cdb: seek to directory: %s", err)
	}

	var buf [dirSize]byte
	for i, d := range dir {
		o := i * 8
		putU32(buf[o:o+4], d[0])
		putU32(buf[o+4:o+8], d[1])
	}
	if _, err := w.fd.Write(buf[:]); err != nil {
		return ferr.IOWrite("cdb: write directory: %s", err)
	}

	if _, err := w.fd.Seek(0, os.SEEK_END); err != nil {
		return ferr.IOWrite("cdb: seek to EOF: %s", err)
	}

	w.finished = true
	return nil
}

// Fd exposes the underlying file descriptor so the build driver can
// append the database basename and trailer bytes after Finish.
func (w *Writer) Fd() *os.File { return w.fd }

// Abort closes and removes the temporary file; used on any build
// failure so no partial index is left on disk.
func (w *Writer) Abort() {
	w.fd.Close()
	os.Remove(w.tmp)
}
