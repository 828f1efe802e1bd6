// stopwords.go -- stopword file loader
//
// (c) Sudhi Herle 2018
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package main

import (
	"bufio"
	"os"
	"strings"
)

// readStopwords tokenizes a stopword file into a flat word list: one
// token per whitespace run, blank lines and lines starting with '#'
// ignored. This is deliberately trivial -- spec.md carves the
// stopword file reader out of the indexable core.
func readStopwords(path string) ([]string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var words []string
	sc := bufio.NewScanner(fd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.Fields(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
