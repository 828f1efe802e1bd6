// compact.go -- P-Compact / P-Compact-plus / P-Accession(-plus) policies
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

// addCompact implements the four NCBI-nrdb flavored policies, all
// sharing the same db|accession walk (parseDBAcc) and differing only
// in how far it's applied:
//
//   - plain (-c): only the first NRDB segment's first token, and only
//     its shortest db|accession construct (or the whole token if none
//     parses).
//   - plus (-C/-a/-A): every NRDB-concatenated segment's first token,
//     walking every db|accession construct within it.
//
// AccOnly (-a without -A) suppresses the whole-token and prefix keys,
// leaving only the bare accessions -- this resolves an inconsistency
// between the general description of -a ("indexes only the accession
// part") and its worked example, in favor of the example.
func (e *Extractor) addCompact(header []byte, offset uint64, length uint32) error {
	if !e.policy.Plus {
		return e.addCompactShortcut(header, offset, length)
	}

	accKeyed := 0
	rest := header
	for {
		seg, next, more := nextNRDB(rest)
		end := tokenEnd(seg)
		tok := seg[:end]

		if err := e.addCompactToken(tok, offset, length, &accKeyed); err != nil {
			return err
		}

		if !more {
			break
		}
		rest = next
	}
	return nil
}

func (e *Extractor) addCompactShortcut(header []byte, offset uint64, length uint32) error {
	seg, _, _ := nextNRDB(header)
	end := tokenEnd(seg)
	tok := seg[:end]
	if len(tok) == 0 {
		return nil
	}

	if start, cend, ok, _, _, _ := parseDBAcc(tok, 0); ok {
		return e.add(tok[start:cend], offset, length)
	}
	return e.add(tok, offset, length)
}

// addCompactToken walks every db|accession construct in one
// NRDB segment's token. accKeyed is shared across every segment of
// the same record so policy.maxAccs() caps bare accessions per
// record, not per segment.
func (e *Extractor) addCompactToken(tok []byte, offset uint64, length uint32, accKeyed *int) error {
	if len(tok) == 0 {
		return nil
	}

	if !e.policy.AccOnly {
		if err := e.add(tok, offset, length); err != nil {
			return err
		}
	}

	maxAccs := e.policy.maxAccs()
	from := 0
	for from < len(tok) {
		// A trailing run with no '|' at all isn't a db|accession
		// construct -- it's free text tacked onto the last field,
		// and is already covered by the whole-token key above.
		if bytes.IndexByte(tok[from:], '|') < 0 {
			break
		}

		start, end, ok, accStart, accEnd, hasAcc := parseDBAcc(tok, from)
		if !ok {
			break
		}

		if !e.policy.AccOnly {
			if err := e.add(tok[start:end], offset, length); err != nil {
				return err
			}
		}
		if e.policy.AccMode && hasAcc && *accKeyed < maxAccs {
			if err := e.add(tok[accStart:accEnd], offset, length); err != nil {
				return err
			}
			*accKeyed++
		}

		from = end + 1
	}
	return nil
}
