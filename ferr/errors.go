// errors.go -- typed error kinds for the index builder
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package ferr defines the error taxonomy shared by the scanner, key
// extractor, CDB writer and build driver. Every error returned by this
// module wraps one of the five base kinds below so that callers can
// classify failures with errors.Is without parsing strings.
package ferr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig covers contradictory policy flags, invalid marker
	// syntax, out-of-range field lists, or unreadable stopword files.
	ErrConfig = errors.New("invalid configuration")

	// ErrIORead covers input open/read failures.
	ErrIORead = errors.New("input read error")

	// ErrIOWrite covers write, seek, rename or trailer-append failures.
	ErrIOWrite = errors.New("output write error")

	// ErrFormat covers structural violations: a large-FASTA body line
	// longer than the one before it, FASTQ seq/qv length mismatches,
	// truncated records.
	ErrFormat = errors.New("malformed record")

	// ErrKeyOverflow is returned when a single key exceeds the maximum
	// permitted length.
	ErrKeyOverflow = errors.New("key too long")
)

// Config wraps ErrConfig with a formatted message.
func Config(f string, v ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(f, v...), ErrConfig)
}

// IORead wraps ErrIORead with a formatted message.
func IORead(f string, v ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(f, v...), ErrIORead)
}

// IOWrite wraps ErrIOWrite with a formatted message.
func IOWrite(f string, v ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(f, v...), ErrIOWrite)
}

// Format wraps ErrFormat with a formatted message.
func Format(f string, v ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(f, v...), ErrFormat)
}

// KeyOverflow wraps ErrKeyOverflow with the offending key length.
func KeyOverflow(n int) error {
	return fmt.Errorf("key length %d exceeds maximum: %w", n, ErrKeyOverflow)
}
