// Package filescan classifies the user's input files by content rather than
// by extension: a gzip-aware peek at the first byte distinguishes FASTA from
// fastq, read headers identify Illumina data, and file name conventions pair
// R1/R2 fastqs and derive sample names.
package filescan

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FileType is the detected content type of an input file.
type FileType int

const (
	TypeOther FileType = iota
	TypeFasta
	TypeFastq
)

var (
	// Illumina fastq naming convention, e.g. sample_S1_L001_R1_001.fastq.gz.
	// The non-greedy group keeps the sample name from eating the suffixes.
	illuminaNameRe = regexp.MustCompile(`^(.*?)_S[0-9]+_L[0-9]+_R[12]_[0-9]+\.fastq\.gz$`)
	generalNameRe  = regexp.MustCompile(`^(.*?)(\.f(q|astq|a|as|sa|na|asta))?(\.gz)?$`)

	// Illumina read header, e.g. @M01234:55:000000000-A1B2C:1:1101:15589:1770 1:N:0:18.
	illuminaHeaderRe = regexp.MustCompile(`^@[^:]+:\d+:[^:]+:\d+:\d+:\d+:\d+ [12]:[YN]:\d+:[^:]+$`)
)

// DetectFileType peeks at the first content byte, transparently decompressing
// gzip: '>' means FASTA, '@' means fastq, anything else is other.
func DetectFileType(path string) (FileType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeOther, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(2)
	if err != nil && len(head) == 0 {
		return TypeOther, nil // empty file
	}
	if len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return TypeOther, nil
		}
		defer gz.Close()
		buf := make([]byte, 1)
		if n, _ := gz.Read(buf); n == 0 {
			return TypeOther, nil
		}
		head = buf
	}
	switch head[0] {
	case '>':
		return TypeFasta, nil
	case '@':
		return TypeFastq, nil
	default:
		return TypeOther, nil
	}
}

// IsIlluminaFastq reports whether the file's first read header matches the
// Illumina convention.
func IsIlluminaFastq(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(2)
	var scanner *bufio.Scanner
	if len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return false
		}
		defer gz.Close()
		scanner = bufio.NewScanner(gz)
	} else {
		scanner = bufio.NewScanner(br)
	}
	if !scanner.Scan() {
		return false
	}
	return illuminaHeaderRe.MatchString(scanner.Text())
}

// isFastqPair reports whether two file names form an R1/R2 pair: the names
// differ only in a '1' vs '2' at the first divergent position.
func isFastqPair(fn1, fn2 string) bool {
	bn1, bn2 := filepath.Base(fn1), filepath.Base(fn2)
	pfx := commonPrefix(bn1, bn2)
	s1, s2 := bn1[len(pfx):], bn2[len(pfx):]
	return len(s1) > 0 && len(s2) > 0 && s1[0] == '1' && s2[0] == '2' && s1[1:] == s2[1:]
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// SampleName derives a sample name from a FASTA or singleton fastq file
// name, stripping extensions, and for Illumina names everything from _S on.
func SampleName(path string) string {
	bn := filepath.Base(path)
	if m := illuminaNameRe.FindStringSubmatch(bn); m != nil {
		return m[1]
	}
	if m := generalNameRe.FindStringSubmatch(bn); m != nil {
		return m[1]
	}
	return bn
}

// PairName derives a sample name for an R1/R2 pair: the Illumina sample
// part when the convention matches, else the common prefix with the read
// indicator and trailing separators chopped.
func PairName(fq1, fq2 string) string {
	bn1, bn2 := filepath.Base(fq1), filepath.Base(fq2)
	if m := illuminaNameRe.FindStringSubmatch(bn1); m != nil {
		return m[1]
	}
	pfx := commonPrefix(bn1, bn2)
	pfx = strings.TrimRight(pfx, "R")
	return strings.TrimRight(pfx, "._-@")
}

// Inputs is the classified view over the user's input files.
type Inputs struct {
	// Fastas maps sample name to FASTA path (contigs).
	Fastas map[string]string
	// Singles maps sample name to an unpaired fastq path.
	Singles map[string]string
	// Pairs maps sample name to the [R1, R2] fastq paths.
	Pairs map[string][2]string
}

// ScanInputs classifies the given files. Every file must be FASTA or fastq;
// fastqs are paired greedily over their sorted names; duplicate sample
// names across files are an error.
func ScanInputs(paths []string) (*Inputs, error) {
	in := &Inputs{
		Fastas:  make(map[string]string),
		Singles: make(map[string]string),
		Pairs:   make(map[string][2]string),
	}

	var fastqs []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		t, err := DetectFileType(abs)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", path, err)
		}
		switch t {
		case TypeFasta:
			if err := addSample(in.Fastas, SampleName(abs), abs); err != nil {
				return nil, err
			}
		case TypeFastq:
			fastqs = append(fastqs, abs)
		default:
			return nil, fmt.Errorf("input is neither FASTA nor fastq: %s", path)
		}
	}

	sort.Slice(fastqs, func(i, j int) bool {
		return filepath.Base(fastqs[i]) < filepath.Base(fastqs[j])
	})

	// Walk sorted fastqs, emitting a pair when two neighbors match and a
	// singleton otherwise.
	var held string
	flush := func() error {
		if held == "" {
			return nil
		}
		err := addSample(in.Singles, SampleName(held), held)
		held = ""
		return err
	}
	for _, fq := range fastqs {
		if held != "" && isFastqPair(held, fq) {
			name := PairName(held, fq)
			if _, dup := in.Pairs[name]; dup {
				return nil, fmt.Errorf("duplicate sample name %q", name)
			}
			in.Pairs[name] = [2]string{held, fq}
			held = ""
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		held = fq
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return in, nil
}

func addSample(m map[string]string, name, path string) error {
	if prev, dup := m[name]; dup {
		return fmt.Errorf("duplicate sample name %q for files %s and %s", name, prev, path)
	}
	m[name] = path
	return nil
}
