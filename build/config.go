// config.go -- build driver configuration and validation
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package build wires the record scanner, header key extractor and
// CDB writer into a complete index build, matching the driver
// described for the original command-line tool: pick a sink, pick a
// policy, run the scan, finish the index, append the trailer, rename
// into place.
package build

import (
	"github.com/opencoff/cdbfasta/ferr"
	"github.com/opencoff/cdbfasta/keys"
)

// PolicyFlag names the mutually-exclusive CLI policy selectors; a
// build's extractor policy and index flag bits are derived from it.
type PolicyFlag int

const (
	PolicyNone PolicyFlag = iota
	PolicyMulti
	PolicyNumKeys
	PolicyFields
	PolicyCompact
	PolicyCompactPlus
	PolicyAccession
	PolicyAccessionPlus
	PolicyKeyDelim
)

// Config fully describes one build. It is the validated, normalized
// form of the command line -- main.go's job is only to populate it.
type Config struct {
	InputPath  string
	IndexPath  string
	CompressTo string // empty unless -z

	Marker []byte
	FASTQ  bool
	Large  bool // -G

	Policy PolicyFlag
	Fields keys.FieldSelector
	NumKeys int

	CaseInsensitive bool // -i
	Delim           byte // -D/-d
	JunkSet         string
	Stop            *keys.StopSet // built by the CLI layer from -w; out of scope here
	MaxAccs         int
}

// Validate checks field combinations the scanner and extractor can't
// reject on their own, and fills in the default marker ('>', or '@'
// with FASTQ). It rejects a missing index path, a marker longer than
// 126 bytes, FASTQ combined with compression or with a marker other
// than '@', and a policy missing its parameter (-n count, -f list,
// -D/-d delimiter). Config holds a single Policy, so conflicting CLI
// policy flags never reach Validate, and Marker is taken as literal
// bytes with no escape decoding.
func (c *Config) Validate() error {
	if c.IndexPath == "" {
		return ferr.Config("build: output index path is required")
	}
	if len(c.Marker) == 0 {
		if c.FASTQ {
			c.Marker = []byte("@")
		} else {
			c.Marker = []byte(">")
		}
	}
	if len(c.Marker) > 126 {
		return ferr.Config("build: record marker longer than 126 bytes")
	}

	if c.FASTQ && c.CompressTo != "" {
		return ferr.Config("build: FASTQ mode and compression (-z) are mutually exclusive")
	}
	if c.FASTQ && string(c.Marker) != "@" {
		return ferr.Config("build: FASTQ mode requires the '@' marker")
	}

	switch c.Policy {
	case PolicyNumKeys:
		if c.NumKeys < 1 {
			return ferr.Config("build: -n requires a positive count")
		}
	case PolicyFields:
		if c.Fields.Empty() {
			return ferr.Config("build: -f requires a non-empty field list")
		}
	case PolicyKeyDelim:
		if c.Delim == 0 {
			return ferr.Config("build: -D/-d requires a delimiter byte")
		}
	}

	return nil
}

// extractorPolicy turns the validated Config into the keys.Policy the
// extractor consumes.
func (c *Config) extractorPolicy() keys.Policy {
	p := keys.Policy{
		CaseInsensitive: c.CaseInsensitive,
		Junk:            c.JunkSet,
		Stop:            c.Stop,
		MaxAccs:         c.MaxAccs,
	}

	switch c.Policy {
	case PolicyMulti:
		p.Kind = keys.KindFields
		p.Fields = keys.AllFields()
	case PolicyNumKeys:
		p.Kind = keys.KindFields
		p.Fields = keys.FirstN(c.NumKeys)
	case PolicyFields:
		p.Kind = keys.KindFields
		p.Fields = c.Fields
	case PolicyCompact:
		p.Kind = keys.KindCompact
	case PolicyCompactPlus:
		p.Kind = keys.KindCompact
		p.Plus = true
	case PolicyAccession:
		p.Kind = keys.KindCompact
		p.Plus = true
		p.AccMode = true
		p.AccOnly = true
	case PolicyAccessionPlus:
		p.Kind = keys.KindCompact
		p.Plus = true
		p.AccMode = true
		p.AccOnly = false
	case PolicyKeyDelim:
		p.Kind = keys.KindDelim
		p.Delim = c.Delim
	default:
		p.Kind = keys.KindDefault
	}
	return p
}
