// extractor.go -- per-record key extraction driver
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package keys

import "bytes"

// Sink receives one extracted key, bound to the (offset, length) of
// the record its header came from. The build driver implements Sink
// by encoding (offset, length) into a cdb payload and forwarding to
// a cdb.Writer; Extractor itself knows nothing about the on-disk
// format, only about pulling keys out of header bytes.
type Sink interface {
	Add(key []byte, offset uint64, length uint32) error
}

// Extractor applies one Policy to a stream of record headers,
// forwarding every key it finds to a Sink. It also tracks the
// duplicate-suppression state the original tool keyed off of: a key
// identical to the immediately preceding one, for the same record, is
// dropped rather than written twice.
type Extractor struct {
	policy Policy
	sink   Sink

	haveLast   bool
	lastOffset uint64
	lastKey    []byte

	NumRecords uint64
	NumKeys    uint64
}

// New returns an Extractor bound to policy and sink.
func New(policy Policy, sink Sink) *Extractor {
	return &Extractor{policy: policy, sink: sink}
}

// Extract pulls all of the current policy's keys out of header (the
// raw bytes between the record marker and the first line break, not
// including the marker itself) and forwards each to the sink, bound
// to (offset, length).
func (e *Extractor) Extract(header []byte, offset uint64, length uint32) error {
	e.NumRecords++

	switch e.policy.Kind {
	case KindDefault:
		return e.addDefault(header, offset, length)
	case KindFields:
		return e.addFields(header, offset, length)
	case KindCompact:
		return e.addCompact(header, offset, length)
	case KindDelim:
		return e.addDelim(header, offset, length)
	default:
		return e.addDefault(header, offset, length)
	}
}

// add is the common sink, deduplicating a key against the immediately
// preceding one from the same record and forwarding everything else.
func (e *Extractor) add(key []byte, offset uint64, length uint32) error {
	if len(key) == 0 {
		return nil
	}
	if e.haveLast && e.lastOffset == offset && bytes.Equal(e.lastKey, key) {
		return nil
	}
	if err := e.sink.Add(key, offset, length); err != nil {
		return err
	}
	e.NumKeys++
	e.haveLast = true
	e.lastOffset = offset
	e.lastKey = append(e.lastKey[:0], key...)
	return nil
}

// addDefault implements P-Default: the key is the header prefix up to
// the first whitespace or control byte. With -i, the lowercased form
// is also emitted as an additional key whenever it differs.
func (e *Extractor) addDefault(header []byte, offset uint64, length uint32) error {
	end := 0
	for end < len(header) && !isDefaultTerminator(header[end]) {
		end++
	}
	key := header[:end]
	if err := e.add(key, offset, length); err != nil {
		return err
	}
	if e.policy.CaseInsensitive {
		if lo := loCase(key); !bytes.Equal(lo, key) {
			return e.add(lo, offset, length)
		}
	}
	return nil
}

// addFields implements P-Multi/P-NumKeys/P-Fields: whitespace-tokenize
// header, trim junk from each token, skip stopwords, and emit tokens
// whose 1-based position is selected by the policy's FieldSelector.
func (e *Extractor) addFields(header []byte, offset uint64, length uint32) error {
	fs := e.policy.Fields
	maxExplicit := fs.maxExplicit()
	junk := e.policy.junkSet()

	fieldno := 0
	pos := 0
	for pos < len(header) {
		for pos < len(header) && isSpaceByte(header[pos]) {
			pos++
		}
		if pos >= len(header) {
			break
		}
		end := pos
		for end < len(header) && !isSpaceByte(header[end]) {
			end++
		}
		fieldno++

		if fs.Selected(fieldno) {
			tok := trimJunk(header[pos:end], junk)
			if len(tok) > 0 && !e.policy.Stop.Has(tok) {
				if err := e.add(tok, offset, length); err != nil {
					return err
				}
				if e.policy.CaseInsensitive {
					if lo := loCase(tok); !bytes.Equal(lo, tok) {
						if err := e.add(lo, offset, length); err != nil {
							return err
						}
					}
				}
			}
		}

		pos = end
		if !fs.open() && fieldno >= maxExplicit {
			break
		}
	}
	return nil
}

// addDelim implements P-KeyDelim: split the first whitespace token of
// each NRDB-concatenated defline at every occurrence of Delim, and key
// every non-empty piece.
func (e *Extractor) addDelim(header []byte, offset uint64, length uint32) error {
	rest := header
	for {
		seg, next, more := nextNRDB(rest)
		end := tokenEnd(seg)
		tok := seg[:end]

		start := 0
		for i := 0; i <= len(tok); i++ {
			if i == len(tok) || tok[i] == e.policy.Delim {
				if i > start {
					if err := e.add(tok[start:i], offset, length); err != nil {
						return err
					}
				}
				start = i + 1
			}
		}

		if !more {
			break
		}
		rest = next
	}
	return nil
}
