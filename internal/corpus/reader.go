// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus streams gzip-compressed JSONL discipline corpora and
// yields validated paper records one line at a time.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"

	"github.com/pdiddy/paper-pipeline/pkg/types"
)

// ErrNotFound reports that a discipline corpus file does not exist.
var ErrNotFound = errors.New("corpus file not found")

const (
	readBufferSize = 1 << 20

	// maxYear bounds metadata.year to four digits.
	maxYear = 9999
)

// Options controls record filtering.
type Options struct {
	// MinYear is the earliest publication year kept.
	MinYear int

	// TitleMaxRunes truncates derived titles.
	TitleMaxRunes int
}

// OptionsFrom builds reader options from the reader configuration.
func OptionsFrom(cfg types.ReaderConfig) Options {
	return Options{MinYear: cfg.MinYear, TitleMaxRunes: cfg.TitleMaxRunes}
}

// line is the subset of a corpus line the reader decodes.
type line struct {
	ID       json.RawMessage `json:"id"`
	Text     string          `json:"text"`
	Metadata struct {
		Year      json.RawMessage `json:"year"`
		Citations json.RawMessage `json:"citations"`
	} `json:"metadata"`
}

// Reader is a forward-only sequence of RawPaperRecords read from one
// corpus file. Memory use is bounded by the longest line. Re-reading a
// corpus requires opening a new Reader.
type Reader struct {
	discipline string
	opts       Options

	file *os.File
	gz   *gzip.Reader
	br   *bufio.Reader

	rec     types.RawPaperRecord
	err     error
	done    bool
	lines   int
	skipped int
}

// Open opens the corpus at path for the discipline with the given
// display name. A missing file returns an error wrapping ErrNotFound.
func Open(path, discipline string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip reader for %s: %w", path, err)
	}

	return &Reader{
		discipline: discipline,
		opts:       opts,
		file:       f,
		gz:         gz,
		br:         bufio.NewReaderSize(gz, readBufferSize),
	}, nil
}

// Next advances to the next valid record. It returns false at the end of
// the stream or on a read error; Err distinguishes the two.
func (r *Reader) Next() bool {
	for !r.done {
		raw, err := r.br.ReadBytes('\n')
		if len(raw) > 0 {
			r.lines++
			if rec, ok := ParseLine(raw, r.discipline, r.opts); ok {
				r.rec = rec
				if err != nil {
					r.finish(err)
				}
				return true
			}
			r.skipped++
		}
		if err != nil {
			r.finish(err)
		}
	}
	return false
}

func (r *Reader) finish(err error) {
	r.done = true
	if !errors.Is(err, io.EOF) {
		r.err = fmt.Errorf("reading line %d: %w", r.lines+1, err)
	}
}

// Record returns the record produced by the last successful Next.
func (r *Reader) Record() types.RawPaperRecord {
	return r.rec
}

// Err returns the first read or decompression error, if any. Reaching
// the end of the stream is not an error.
func (r *Reader) Err() error {
	return r.err
}

// Lines returns the number of lines read so far.
func (r *Reader) Lines() int {
	return r.lines
}

// Skipped returns the number of lines dropped by the filtering rules.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Close releases the decompressor and the underlying file.
func (r *Reader) Close() error {
	gzErr := r.gz.Close()
	fileErr := r.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// ParseLine decodes one corpus line. It reports false when the line is not
// valid JSON, has no id, or has a missing, too-early, or beyond-four-digit
// metadata.year.
func ParseLine(raw []byte, discipline string, opts Options) (types.RawPaperRecord, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return types.RawPaperRecord{}, false
	}

	var l line
	if err := json.Unmarshal(raw, &l); err != nil {
		return types.RawPaperRecord{}, false
	}

	id := decodeID(l.ID)
	if id == "" {
		return types.RawPaperRecord{}, false
	}

	year, ok := decodeInt(l.Metadata.Year, false)
	if !ok || year == 0 || year < opts.MinYear || year > maxYear {
		return types.RawPaperRecord{}, false
	}

	citations, _ := decodeInt(l.Metadata.Citations, true)

	return types.RawPaperRecord{
		ID:         id,
		Title:      Title(l.Text, opts.TitleMaxRunes),
		Year:       year,
		Text:       l.Text,
		Citations:  citations,
		Discipline: discipline,
	}, true
}

// Title derives a title from the first paragraph of text.
func Title(text string, maxRunes int) string {
	first, _, _ := strings.Cut(text, "\n\n")
	title := strings.TrimSpace(first)
	if title == "" {
		return types.UntitledPlaceholder
	}
	if maxRunes > 0 && utf8.RuneCountInString(title) > maxRunes {
		title = string([]rune(title)[:maxRunes])
	}
	return title
}

// decodeID accepts a JSON string or number.
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

// decodeInt accepts a JSON number with an integral value. When
// allowString is set, a string holding an integer is accepted too.
func decodeInt(raw json.RawMessage, allowString bool) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	if raw[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		return numberToInt(n.String())
	}
	if !allowString {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func numberToInt(s string) (int, bool) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt) rounds up to 2^63, which does not fit in an int.
	if f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}
