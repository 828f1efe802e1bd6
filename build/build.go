// build.go -- build driver: wires scanner, extractor and CDB writer
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
	"bufio"
	"io"
	"os"

	"github.com/opencoff/cdbfasta/cdb"
	"github.com/opencoff/cdbfasta/ferr"
	"github.com/opencoff/cdbfasta/keys"
	"github.com/opencoff/cdbfasta/scan"
	"github.com/opencoff/cdbfasta/zsink"
)

// Stats summarizes a completed build, returned to the caller for a
// human-readable report.
type Stats struct {
	NumRecords uint64
	NumKeys    uint64
	DBSize     uint64
}

// Run executes a complete build per cfg, which must already have
// passed Validate. On success the index file at cfg.IndexPath (and,
// if configured, the compressed database at cfg.CompressTo) exist and
// are complete; on any error, no partial output is left in place.
//
// InputPath must name a seekable regular file: the compressing sink
// re-reads each record's raw bytes by offset after the scanner has
// already passed over it, rather than buffering whole records inline.
// A "-"/stdin input, as the CLI contract allows alongside
// compression, would need the scanner itself to hand off record
// bytes instead; that's a larger change than this core warrants.
func Run(cfg *Config) (Stats, error) {
	in, err := os.Open(cfg.InputPath)
	if err != nil {
		return Stats{}, ferr.IORead("build: open %s: %s", cfg.InputPath, err)
	}
	defer in.Close()

	idxTmp := cfg.IndexPath + "_tmp"
	w, err := cdb.Create(idxTmp)
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if w != nil {
			w.Abort()
		}
	}()

	var zs *zsink.Sink
	var effective io.Reader = bufio.NewReaderSize(in, 1<<20)

	if cfg.CompressTo != "" {
		zTmp := cfg.CompressTo + "_ztmp"
		zs, err = zsink.Create(zTmp, cfg.CompressTo)
		if err != nil {
			return Stats{}, err
		}
		defer func() {
			if zs != nil {
				zs.Abort()
			}
		}()
	}

	sc, err := scan.New(effective, scan.Options{
		Marker:         cfg.Marker,
		FASTQ:          cfg.FASTQ,
		LargeFasta:     cfg.Large,
		KeepFullHeader: cfg.Policy != PolicyNone,
	})
	if err != nil {
		return Stats{}, err
	}

	policy := cfg.extractorPolicy()
	sink := &cdbSink{w: w}
	ex := keys.New(policy, sink)

	err = sc.Each(func(r scan.Record) error {
		offset, length := r.Offset, uint32(r.Length)

		if zs != nil {
			raw := make([]byte, r.Length)
			// Records are read back from the plain input at their
			// scanner-reported (offset, length); the scanner already
			// consumed this region sequentially, so a second,
			// independent read keeps the sink decoupled from the
			// scanner's internal buffering.
			if _, err := in.ReadAt(raw, int64(r.Offset)); err != nil {
				return ferr.IORead("build: reread record at %d: %s", r.Offset, err)
			}
			zoff, zlen, err := zs.WriteRecord(raw)
			if err != nil {
				return err
			}
			offset, length = zoff, zlen
		}

		return ex.Extract(r.Header, offset, length)
	})
	if err != nil {
		return Stats{}, err
	}

	if err := w.Finish(); err != nil {
		return Stats{}, err
	}

	dbsize := uint64(0)
	if zs != nil {
		dbsize = zs.Size()
		if err := zs.Finish(); err != nil {
			return Stats{}, err
		}
	} else {
		fi, err := in.Stat()
		if err != nil {
			return Stats{}, ferr.IORead("build: stat %s: %s", cfg.InputPath, err)
		}
		dbsize = uint64(fi.Size())
	}

	dbname := cfg.InputPath
	if cfg.CompressTo != "" {
		dbname = cfg.CompressTo
	}

	flags := cfg.trailerFlags()
	trailer := cdb.Trailer{
		Flags:      flags,
		NumRecords: uint32(ex.NumRecords),
		NumKeys:    uint32(ex.NumKeys),
		DBSize:     dbsize,
		DBName:     dbname,
	}
	if err := cdb.WriteTrailer(w.Fd(), trailer); err != nil {
		return Stats{}, err
	}

	if err := os.Remove(cfg.IndexPath); err != nil && !os.IsNotExist(err) {
		return Stats{}, ferr.IOWrite("build: remove old index: %s", err)
	}
	if err := os.Rename(idxTmp, cfg.IndexPath); err != nil {
		return Stats{}, ferr.IOWrite("build: rename %s -> %s: %s", idxTmp, cfg.IndexPath, err)
	}
	w = nil // don't Abort a file we just renamed into place

	if zs != nil {
		if err := zs.Rename(); err != nil {
			return Stats{}, err
		}
		zs = nil
	}

	return Stats{NumRecords: ex.NumRecords, NumKeys: ex.NumKeys, DBSize: dbsize}, nil
}

// trailerFlags derives the index flag bits from the configured
// policy.
func (c *Config) trailerFlags() uint32 {
	var f uint32
	if c.CompressTo != "" {
		f |= cdb.FlagCompress
	}
	switch c.Policy {
	case PolicyMulti, PolicyNumKeys, PolicyFields:
		f |= cdb.FlagMulti
	case PolicyCompact, PolicyCompactPlus:
		f |= cdb.FlagCompact
	case PolicyAccession, PolicyAccessionPlus:
		f |= cdb.FlagCompact | cdb.FlagCompactA
	}
	if c.Large {
		f |= cdb.FlagGSeq
	}
	return f
}

// cdbSink adapts a cdb.Writer to the keys.Sink interface, encoding
// (offset, length) into the appropriate narrow/wide payload shape.
type cdbSink struct {
	w *cdb.Writer
}

func (s *cdbSink) Add(key []byte, offset uint64, length uint32) error {
	return s.w.Add(key, cdb.EncodePayload(offset, length))
}
