// errors_test.go
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package ferr

import (
	"errors"
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

func TestWrappedKindsClassify(t *testing.T) {
	assert := newAsserter(t)

	assert(errors.Is(Config("bad flag %s", "-x"), ErrConfig), "Config not ErrConfig")
	assert(errors.Is(IORead("read %s", "x"), ErrIORead), "IORead not ErrIORead")
	assert(errors.Is(IOWrite("write %s", "x"), ErrIOWrite), "IOWrite not ErrIOWrite")
	assert(errors.Is(Format("bad shape"), ErrFormat), "Format not ErrFormat")
	assert(errors.Is(KeyOverflow(2000), ErrKeyOverflow), "KeyOverflow not ErrKeyOverflow")
}

func TestWrappedKindsDontCrossClassify(t *testing.T) {
	assert := newAsserter(t)

	err := Config("x")
	assert(!errors.Is(err, ErrFormat), "Config incorrectly classified as ErrFormat")
	assert(!errors.Is(err, ErrIORead), "Config incorrectly classified as ErrIORead")
}
