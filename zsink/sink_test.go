// sink_test.go
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package zsink

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newAsserter(t *testing.T) func(cond bool, msg string, args ...interface{}) {
	return func(cond bool, msg string, args ...interface{}) {
		if cond {
			return
		}

		_, file, line, ok := runtime.Caller(1)
		if !ok {
			file = "???"
			line = 0
		}

		s := fmt.Sprintf(msg, args...)
		t.Fatalf("%s: %d: Assertion failed: %s\n", file, line, s)
	}
}

func TestSinkRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	tmp := filepath.Join(dir, "db.z_ztmp")
	final := filepath.Join(dir, "db.z")

	s, err := Create(tmp, final)
	assert(err == nil, "create: %v", err)

	recA := []byte(">seqA extra\nACGT\n")
	recB := []byte(">seqB\nTTT\n")

	offA, lenA, err := s.WriteRecord(recA)
	assert(err == nil, "write recA: %v", err)
	offB, lenB, err := s.WriteRecord(recB)
	assert(err == nil, "write recB: %v", err)
	assert(offB == offA+uint64(lenA), "recB not contiguous after recA")

	assert(s.Finish() == nil, "finish")
	assert(s.Rename() == nil, "rename")

	raw, err := os.ReadFile(final)
	assert(err == nil, "read final: %v", err)
	assert(uint64(len(raw)) == s.Size(), "file size mismatch")

	blockA := raw[offA : offA+uint64(lenA)]
	blockB := raw[offB : offB+uint64(lenB)]

	outA, err := DecodeBlock(blockA)
	assert(err == nil, "decode A: %v", err)
	assert(bytes.Equal(outA, recA), "recA round trip mismatch")

	outB, err := DecodeBlock(blockB)
	assert(err == nil, "decode B: %v", err)
	assert(bytes.Equal(outB, recB), "recB round trip mismatch")
}

func TestSinkAbortRemovesTemp(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	tmp := filepath.Join(dir, "db.z_ztmp")
	final := filepath.Join(dir, "db.z")

	s, err := Create(tmp, final)
	assert(err == nil, "create: %v", err)

	_, _, err = s.WriteRecord([]byte("hello"))
	assert(err == nil, "write: %v", err)

	s.Abort()
	_, err = os.Stat(tmp)
	assert(os.IsNotExist(err), "abort left temp file behind")
}
