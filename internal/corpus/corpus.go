// Package corpus loads (raw text, tokens) entries from line-oriented files.
package corpus

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/happyhackingspace/detok"
)

const maxLineSize = 1 << 20

// Options controls how corpus files are read.
type Options struct {
	// NFC normalizes raw text and tokens to Unicode NFC before they are paired.
	NFC bool
	// Limit stops reading after this many entries; 0 reads everything.
	Limit int
}

// ReadParallel reads a raw file and a tokenized file line by line. Line i of
// the tokenized file holds the space-separated tokens of line i of the raw file.
func ReadParallel(rawPath, tokenizedPath string, opts Options) ([]detok.Entry, error) {
	raw, err := readLines(rawPath, opts.Limit)
	if err != nil {
		return nil, err
	}
	tokenized, err := readLines(tokenizedPath, opts.Limit)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(tokenized) {
		return nil, errors.Errorf("corpus: %q has %d lines but %q has %d", rawPath, len(raw), tokenizedPath, len(tokenized))
	}

	entries := make([]detok.Entry, len(raw))
	for i := range raw {
		entries[i] = newEntry(raw[i], strings.Fields(tokenized[i]), opts)
	}
	slog.Debug("Read parallel corpus", "raw", rawPath, "tokenized", tokenizedPath, "entries", len(entries))
	return entries, nil
}

// ReadWithTokenizer reads a raw file and tokenizes every line with tok.
func ReadWithTokenizer(rawPath string, tok Tokenizer, opts Options) ([]detok.Entry, error) {
	raw, err := readLines(rawPath, opts.Limit)
	if err != nil {
		return nil, err
	}
	entries := make([]detok.Entry, len(raw))
	for i, line := range raw {
		if opts.NFC {
			line = norm.NFC.String(line)
		}
		entries[i] = newEntry(line, tok.Tokenize(line), opts)
	}
	slog.Debug("Read tokenizer corpus", "raw", rawPath, "entries", len(entries))
	return entries, nil
}

// Split holds out the first testSize entries as the test set. The rest form
// the training set, capped at trainSize entries unless trainSize is 0.
func Split(entries []detok.Entry, testSize, trainSize int) (train, test []detok.Entry) {
	testSize = min(max(testSize, 0), len(entries))
	test = entries[:testSize]
	train = entries[testSize:]
	if trainSize > 0 && len(train) > trainSize {
		train = train[:trainSize]
	}
	return train, test
}

func newEntry(raw string, tokens []string, opts Options) detok.Entry {
	if opts.NFC {
		raw = norm.NFC.String(raw)
		for i, t := range tokens {
			tokens[i] = norm.NFC.String(t)
		}
	}
	return detok.Entry{Raw: raw, Tokens: tokens}
}

// ReadLines reads a text file, gzip-compressed when the path ends in ".gz".
func ReadLines(path string) ([]string, error) {
	return readLines(path, 0)
}

func readLines(path string, limit int) (lines []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open corpus %q", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "decompress corpus %q", path)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}
	return scanLines(r, limit, path)
}

func scanLines(r io.Reader, limit int, name string) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
		if limit > 0 && len(lines) >= limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read corpus %q", name)
	}
	return lines, nil
}
