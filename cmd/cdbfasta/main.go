// main.go -- cdbfasta command line driver
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// cdbfasta builds a constant hash index over a FASTA or FASTQ record
// file, keyed on tokens extracted from each record's header line.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	flag "github.com/opencoff/pflag"

	"github.com/opencoff/cdbfasta/build"
	"github.com/opencoff/cdbfasta/keys"
)

const version = "cdbfasta version 2.0 (go)"

func main() {
	var (
		indexPath  string
		marker     string
		compressTo string
		caseInsen  bool
		multi      bool
		numKeys    int
		fieldList  string
		compact    bool
		compactP   bool
		accession  bool
		accessionP bool
		delimFlag  bool
		delim      string
		stopwords  string
		junkSet    string
		fastq      bool
		large      bool
		showVer    bool
	)

	usage := fmt.Sprintf("%s <fastafile> [-o index_file] [-r record_marker]", os.Args[0])

	flag.StringVarP(&indexPath, "output", "o", "", "Write index to `FILE` (default: <fastafile>.cidx)")
	flag.StringVarP(&marker, "marker", "r", "", "Use `S` as the record start marker (default: '>', or '@' with -Q)")
	flag.StringVarP(&compressTo, "compress", "z", "", "Compress the database into `FILE` before indexing")
	flag.BoolVarP(&caseInsen, "icase", "i", false, "Also index the lowercased form of every key")
	flag.BoolVarP(&multi, "multi", "m", false, "Index every whitespace-delimited token in the header")
	flag.IntVarP(&numKeys, "numkeys", "n", 0, "Index only the first `N` header tokens")
	flag.StringVarP(&fieldList, "fields", "f", "", "Index header fields per `LIST` (cut(1) syntax)")
	flag.BoolVarP(&compact, "compact", "c", false, "Index only the first db|accession construct")
	flag.BoolVarP(&compactP, "compact-plus", "C", false, "Like -c, plus every subsequent db|accession and nrdb construct")
	flag.BoolVarP(&accession, "accession", "a", false, "Like -C, but index only the accession part of each construct")
	flag.BoolVarP(&accessionP, "accession-plus", "A", false, "Both -a and -C style keys")
	flag.BoolVarP(&delimFlag, "pipe-delim", "D", false, "Index each '|'-delimited token in the header")
	flag.StringVarP(&delim, "key-delim", "d", "", "Like -D, using `C` as the delimiter instead of '|'")
	flag.StringVarP(&stopwords, "stopwords", "w", "", "Exclude tokens found in `FILE` from -m/-n/-f indexing")
	flag.StringVarP(&junkSet, "strip", "s", keys.DefaultJunk, "Strip these `CHARS` from around each token")
	flag.BoolVarP(&fastq, "fastq", "Q", false, "Treat input as FASTQ (implies marker '@')")
	flag.BoolVarP(&large, "large-fasta", "G", false, "Check that no body line is longer than the one before it (large genomic records)")
	flag.BoolVarP(&showVer, "version", "v", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Printf("cdbfasta - build a constant hash index over a FASTA/FASTQ file\nUsage: %s\n", usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVer {
		fmt.Println(version)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		die("no input file given\nUsage: %s", usage)
	}
	input := args[0]

	cfg := &build.Config{
		InputPath:       input,
		IndexPath:       indexPath,
		CompressTo:      compressTo,
		FASTQ:           fastq,
		Large:           large,
		CaseInsensitive: caseInsen,
		JunkSet:         junkSet,
		MaxAccs:         keys.DefaultMaxAccs,
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = input + ".cidx"
	}
	if marker != "" {
		cfg.Marker = []byte(marker)
	}

	switch {
	case multi:
		cfg.Policy = build.PolicyMulti
	case accessionP:
		cfg.Policy = build.PolicyAccessionPlus
		if numKeys > 0 {
			cfg.MaxAccs = numKeys
		}
	case accession:
		cfg.Policy = build.PolicyAccession
		if numKeys > 0 {
			cfg.MaxAccs = numKeys
		}
	case numKeys > 0:
		cfg.Policy = build.PolicyNumKeys
		cfg.NumKeys = numKeys
	case fieldList != "":
		fs, err := keys.ParseFieldSelector(fieldList)
		if err != nil {
			die("bad -f list: %s", err)
		}
		cfg.Policy = build.PolicyFields
		cfg.Fields = fs
	case compactP:
		cfg.Policy = build.PolicyCompactPlus
	case compact:
		cfg.Policy = build.PolicyCompact
	case delim != "":
		if len(delim) != 1 {
			die("-d delimiter must be exactly one character")
		}
		cfg.Policy = build.PolicyKeyDelim
		cfg.Delim = delim[0]
	case delimFlag:
		cfg.Policy = build.PolicyKeyDelim
		cfg.Delim = '|'
	default:
		cfg.Policy = build.PolicyNone
	}

	if stopwords != "" {
		words, err := readStopwords(stopwords)
		if err != nil {
			die("can't read stopwords file %s: %s", stopwords, err)
		}
		cfg.Stop = keys.NewStopSet(words)
	}

	if err := cfg.Validate(); err != nil {
		die("%s", err)
	}

	stats, err := build.Run(cfg)
	if err != nil {
		die("%s", err)
	}

	fmt.Printf("%s: %s records, %s keys, %s database\n",
		cfg.IndexPath,
		humanize.Comma(int64(stats.NumRecords)),
		humanize.Comma(int64(stats.NumKeys)),
		humanize.Bytes(stats.DBSize))
}

func die(f string, v ...interface{}) {
	warn(f, v...)
	os.Exit(1)
}

func warn(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); n == 0 || s[n-1] != '\n' {
		s += "\n"
	}
	os.Stderr.WriteString(s)
}
