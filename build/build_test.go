// build_test.go
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package build

import (
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

func writeTemp(t *testing.T, dir, name, content string) string {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestRunDefaultFasta(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	in := writeTemp(t, dir, "in.fa", ">seqA extra\nACGT\n>seqB\nTTT\n")
	idx := filepath.Join(dir, "out.cdb")

	cfg := &Config{InputPath: in, IndexPath: idx}
	assert(cfg.Validate() == nil, "validate failed")

	stats, err := Run(cfg)
	assert(err == nil, "run: %v", err)
	assert(stats.NumRecords == 2, "records = %d", stats.NumRecords)
	assert(stats.NumKeys == 2, "keys = %d", stats.NumKeys)

	fi, err := os.Stat(idx)
	assert(err == nil, "stat idx: %v", err)
	assert(fi.Size() > 0, "empty index")

	_, err = os.Stat(idx + "_tmp")
	assert(os.IsNotExist(err), "temp file left behind")
}

func TestValidateRejectsFastqPlusCompression(t *testing.T) {
	assert := newAsserter(t)

	cfg := &Config{
		InputPath:  "in.fq",
		IndexPath:  "out.cdb",
		CompressTo: "out.z",
		FASTQ:      true,
	}
	err := cfg.Validate()
	assert(err != nil, "expected a ConfigError")
}

func TestRunCompressingSink(t *testing.T) {
	assert := newAsserter(t)

	dir := t.TempDir()
	in := writeTemp(t, dir, "in.fa", ">seqA extra\nACGT\n>seqB\nTTT\n")
	idx := filepath.Join(dir, "out.cdb")
	z := filepath.Join(dir, "out.z")

	cfg := &Config{InputPath: in, IndexPath: idx, CompressTo: z}
	assert(cfg.Validate() == nil, "validate failed")

	stats, err := Run(cfg)
	assert(err == nil, "run: %v", err)
	assert(stats.NumRecords == 2, "records = %d", stats.NumRecords)

	_, err = os.Stat(z)
	assert(err == nil, "compressed output missing: %v", err)
	_, err = os.Stat(z + "_ztmp")
	assert(os.IsNotExist(err), "ztmp left behind")
}
