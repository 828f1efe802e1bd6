// policy.go -- header key extraction policies
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package keys implements the header key extractor: given a defline
// and a policy, it emits the keys a build driver should store against
// a record's (offset, length). The five policies described in
// spec.md §4.4 are modelled as one sum type (Kind) rather than the
// original tool's function-pointer dispatch, resolved once at
// configuration time and then threaded through the scanner.
package keys

// Kind selects which defline-parsing strategy a Policy uses.
type Kind int

const (
	// KindDefault is the single-token policy: the key is the prefix
	// of the header up to the first whitespace or control byte.
	KindDefault Kind = iota

	// KindFields covers -m (all fields), -n (first N fields) and -f
	// (explicit field list) -- all three share the same whitespace
	// tokenizer and junk-trimming, differing only in FieldSelector.
	KindFields

	// KindCompact covers -c, -C, -a and -A: NCBI-nrdb style db|accession
	// parsing, optionally repeated across NRDB-concatenated deflines.
	KindCompact

	// KindDelim covers -D/-d: split the first whitespace token at
	// every occurrence of a configured delimiter byte.
	KindDelim
)

// DefaultJunk is the default set of characters stripped from both ends
// of each token by the field-based policies.
const DefaultJunk = "'\",`.(){}/[]!:;~|><+-"

// DefaultMaxAccs is the default cap on bare accessions emitted per
// record by accession-mode compact policies, overridable by -n.
const DefaultMaxAccs = 255

// MaxKeyLen is the longest key the CDB writer accepts. The extractor
// forwards longer keys to its sink unchanged -- it never silently
// truncates -- and the build driver's sink rejects them with
// ErrKeyOverflow.
const MaxKeyLen = 1023

// Policy fully describes one configured key-extraction strategy. Only
// the fields relevant to Kind are consulted; the zero Policy is
// KindDefault with no case-folding.
type Policy struct {
	Kind            Kind
	CaseInsensitive bool

	// KindFields
	Fields FieldSelector
	Stop   *StopSet
	Junk   string

	// KindCompact
	Plus    bool // -C/-a/-A: walk every NRDB-concatenated defline
	AccMode bool // -a/-A: emit bare accessions
	AccOnly bool // -a (without -A): suppress whole-token/prefix keys
	MaxAccs int

	// KindDelim
	Delim byte
}

// junkSet returns the configured junk character set, or DefaultJunk if
// the policy didn't override it.
func (p Policy) junkSet() string {
	if len(p.Junk) == 0 {
		return DefaultJunk
	}
	return p.Junk
}

// maxAccs returns the configured accession cap, or DefaultMaxAccs.
func (p Policy) maxAccs() int {
	if p.MaxAccs > 0 {
		return p.MaxAccs
	}
	return DefaultMaxAccs
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	}
	return false
}

// isDefaultTerminator matches P-Default's rule: whitespace byte or any
// control byte below 32 ends the key.
func isDefaultTerminator(b byte) bool {
	return isSpaceByte(b) || b < 32
}

func isJunk(b byte, junk string) bool {
	for i := 0; i < len(junk); i++ {
		if junk[i] == b {
			return true
		}
	}
	return false
}

// trimJunk strips junk characters from both ends of tok, mirroring
// cdbfasta.cpp's addKeyMulti inline trimming.
func trimJunk(tok []byte, junk string) []byte {
	i, j := 0, len(tok)
	for i < j && isJunk(tok[i], junk) {
		i++
	}
	for j > i && isJunk(tok[j-1], junk) {
		j--
	}
	return tok[i:j]
}

func loCase(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}
