// Package flatfile loads the pipeline's tabular inputs from TSV, BED and
// gzipped flat files. It is the default implementation of the source ports;
// the pipeline itself never sees a file path.
package flatfile

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/pgzip"

	"regulonet/domain/core"
	"regulonet/domain/genome"
)

// TissuePaths names one tissue's input files.
type TissuePaths struct {
	Footprints string // footprint caller output, TSV
	Replicate1 string // open-chromatin intervals, BED
	Replicate2 string // open-chromatin intervals, BED
}

// Store resolves tissues and shared tables to files on disk. Any path may
// end in .gz; decompression is transparent.
type Store struct {
	tissues        map[core.Tissue]TissuePaths
	coexprPath     string
	genePath       string
	tfPath         string
	expressionPath string
}

// NewStore creates a flat-file store.
func NewStore(tissues map[core.Tissue]TissuePaths, coexprPath, genePath, tfPath, expressionPath string) *Store {
	return &Store{
		tissues:        tissues,
		coexprPath:     coexprPath,
		genePath:       genePath,
		tfPath:         tfPath,
		expressionPath: expressionPath,
	}
}

// Tissues returns the configured tissue labels in sorted order.
func (s *Store) Tissues() []core.Tissue {
	out := make([]core.Tissue, 0, len(s.tissues))
	for tissue := range s.tissues {
		out = append(out, tissue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Store) paths(tissue core.Tissue) (TissuePaths, error) {
	paths, ok := s.tissues[tissue]
	if !ok {
		return TissuePaths{}, fmt.Errorf("%w: %s", core.ErrUnknownTissue, tissue)
	}
	return paths, nil
}

// open returns a line reader over a possibly-gzipped file.
func open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := pgzip.NewReader(f)
	if err != nil {
		// Fall back to stdlib gzip for streams pgzip refuses
		if zr, zerr := gzip.NewReader(f); zerr == nil {
			return &zipCloser{Reader: zr, file: f}, nil
		}
		f.Close()
		return nil, fmt.Errorf("opening gzip %s: %w", path, err)
	}
	return &zipCloser{Reader: gz, file: f}, nil
}

type zipCloser struct {
	io.Reader
	file *os.File
}

func (z *zipCloser) Close() error {
	if c, ok := z.Reader.(io.Closer); ok {
		c.Close()
	}
	return z.file.Close()
}

// readBED parses the first three BED columns into intervals and returns them
// coordinate-sorted, as the interval filter requires.
func readBED(path string) ([]genome.GenomicInterval, error) {
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var intervals []genome.GenomicInterval
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "track") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			return nil, core.NewParseError(path, line, "BED row needs at least 3 columns")
		}
		start, err := parseInt(fields[1])
		if err != nil {
			return nil, core.NewParseError(path, line, fmt.Sprintf("bad start %q", fields[1]))
		}
		end, err := parseInt(fields[2])
		if err != nil {
			return nil, core.NewParseError(path, line, fmt.Sprintf("bad end %q", fields[2]))
		}
		intervals = append(intervals, genome.GenomicInterval{Chrom: fields[0], Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Compare(intervals[j]) < 0 })
	return intervals, nil
}

// readSymbolList reads one symbol per line, skipping blanks and comments.
func readSymbolList(path string) ([]string, error) {
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var symbols []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		symbols = append(symbols, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return symbols, nil
}
