// keys_test.go
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package keys

import (
	"fmt"
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

// recSink collects the (key, offset, length) triples an Extractor
// hands it, in order.
type recSink struct {
	keys    []string
	offsets []uint64
}

func (s *recSink) Add(key []byte, offset uint64, length uint32) error {
	s.keys = append(s.keys, string(key))
	s.offsets = append(s.offsets, offset)
	return nil
}

func TestDefaultPolicy(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindDefault}, s)
	err := e.Extract([]byte("gi|12345|ref|NP_0001.1| hypothetical protein"), 0, 100)
	assert(err == nil, "extract: %v", err)
	assert(len(s.keys) == 1, "want 1 key, got %d", len(s.keys))
	assert(s.keys[0] == "gi|12345|ref|NP_0001.1|", "got %q", s.keys[0])
}

func TestDefaultCaseInsensitive(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindDefault, CaseInsensitive: true}, s)
	err := e.Extract([]byte("ABC_123 rest of header"), 0, 10)
	assert(err == nil, "extract: %v", err)
	assert(len(s.keys) == 2, "want 2 keys, got %d: %v", len(s.keys), s.keys)
	assert(s.keys[0] == "ABC_123", "got %q", s.keys[0])
	assert(s.keys[1] == "abc_123", "got %q", s.keys[1])
}

func TestFieldsAll(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindFields, Fields: AllFields()}, s)
	err := e.Extract([]byte("one two,three (four)"), 0, 10)
	assert(err == nil, "extract: %v", err)
	want := []string{"one", "two,three", "four"}
	assert(len(s.keys) == len(want), "got %v", s.keys)
	for i := range want {
		assert(s.keys[i] == want[i], "field %d: got %q want %q", i, s.keys[i], want[i])
	}
}

func TestFieldsFirstN(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindFields, Fields: FirstN(2)}, s)
	err := e.Extract([]byte("alpha beta gamma delta"), 0, 10)
	assert(err == nil, "extract: %v", err)
	assert(len(s.keys) == 2, "got %v", s.keys)
	assert(s.keys[0] == "alpha" && s.keys[1] == "beta", "got %v", s.keys)
}

func TestFieldSelectorOpenRange(t *testing.T) {
	assert := newAsserter(t)

	fs, err := ParseFieldSelector("5-")
	assert(err == nil, "parse: %v", err)

	s := &recSink{}
	e := New(Policy{Kind: KindFields, Fields: fs}, s)
	err = e.Extract([]byte("a b c d e f g"), 0, 10)
	assert(err == nil, "extract: %v", err)
	want := []string{"e", "f", "g"}
	assert(len(s.keys) == len(want), "got %v", s.keys)
	for i := range want {
		assert(s.keys[i] == want[i], "got %v", s.keys)
	}
}

func TestFieldsStopwords(t *testing.T) {
	assert := newAsserter(t)

	stop := NewStopSet([]string{"and", "the"})
	s := &recSink{}
	e := New(Policy{Kind: KindFields, Fields: AllFields(), Stop: stop}, s)
	err := e.Extract([]byte("the cat and the hat"), 0, 10)
	assert(err == nil, "extract: %v", err)
	want := []string{"cat", "hat"}
	assert(len(s.keys) == len(want), "got %v", s.keys)
	for i := range want {
		assert(s.keys[i] == want[i], "got %v", s.keys)
	}
}

func TestCompactShortcut(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindCompact}, s)
	err := e.Extract([]byte("gi|12345|ref|NP_0001.1|hypothetical"), 0, 10)
	assert(err == nil, "extract: %v", err)
	assert(len(s.keys) == 1, "got %v", s.keys)
	assert(s.keys[0] == "gi|12345", "got %q", s.keys[0])
}

func TestCompactPlusNRDB(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindCompact, Plus: true}, s)
	hdr := "gi|12345|ref|NP_0001.1|hypothetical\x01sp|P12345|HUMAN other"
	err := e.Extract([]byte(hdr), 0, 10)
	assert(err == nil, "extract: %v", err)

	want := map[string]bool{
		"gi|12345|ref|NP_0001.1|hypothetical": true,
		"gi|12345":                            true,
		"ref|NP_0001.1":                       true,
		"sp|P12345|HUMAN":                     true,
		"sp|P12345":                           true,
	}
	assert(len(s.keys) == len(want), "got %v", s.keys)
	for _, k := range s.keys {
		assert(want[k], "unexpected key %q", k)
	}
}

func TestCompactAccessionOnly(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindCompact, Plus: true, AccMode: true, AccOnly: true}, s)
	hdr := "gi|12345|ref|NP_0001.1|hypothetical\x01sp|P12345|HUMAN other"
	err := e.Extract([]byte(hdr), 0, 10)
	assert(err == nil, "extract: %v", err)

	want := map[string]bool{"12345": true, "NP_0001.1": true, "P12345": true}
	assert(len(s.keys) == len(want), "got %v", s.keys)
	for _, k := range s.keys {
		assert(want[k], "unexpected key %q", k)
	}
}

func TestKeyDelim(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindDelim, Delim: '|'}, s)
	err := e.Extract([]byte("aaa|bbb||ccc rest"), 0, 10)
	assert(err == nil, "extract: %v", err)
	want := []string{"aaa", "bbb", "ccc"}
	assert(len(s.keys) == len(want), "got %v", s.keys)
	for i := range want {
		assert(s.keys[i] == want[i], "got %v", s.keys)
	}
}

func TestDuplicateSuppression(t *testing.T) {
	assert := newAsserter(t)

	s := &recSink{}
	e := New(Policy{Kind: KindDefault}, s)
	err := e.Extract([]byte("dup"), 5, 10)
	assert(err == nil, "extract: %v", err)
	err = e.Extract([]byte("dup"), 5, 10)
	assert(err == nil, "extract: %v", err)
	assert(len(s.keys) == 1, "dup not suppressed: %v", s.keys)
}
