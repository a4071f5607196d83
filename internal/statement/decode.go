// Package statement turns raw statement bytes into header-keyed rows and
// converts each row into a classified transaction.
package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"kakeibo/kakeibo-csv/internal/fileutils"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
)

// Row is one data row keyed by header name.
type Row struct {
	Line   int // physical line in the decoded file, 1-based
	Fields map[string]string
}

// Get returns the trimmed cell for column.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Fields[column])
}

// Statement is a decoded CSV export.
type Statement struct {
	Path     string
	Encoding string // canonical encoding name actually used
	Header   []string
	Rows     []Row
}

// encodingAliases maps labels common in Python-era exports to WHATWG labels.
var encodingAliases = map[string]string{
	"utf-8-sig": "utf-8",
	"utf_8_sig": "utf-8",
	"utf8-sig":  "utf-8",
	"utf_8":     "utf-8",
	"cp932":     "shift_jis",
	"ms932":     "shift_jis",
	"sjis":      "shift_jis",
	"shift-jis": "shift_jis",
	"euc_jp":    "euc-jp",
}

// LookupEncoding resolves an encoding label to a decoder and its canonical name.
func LookupEncoding(label string) (encoding.Encoding, string, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		key = "utf-8"
	}
	if alias, ok := encodingAliases[key]; ok {
		key = alias
	}
	enc, name := charset.Lookup(key)
	if enc == nil {
		return nil, "", fmt.Errorf("%w: %q", parsererror.ErrUnsupportedEncoding, label)
	}
	return enc, name, nil
}

// ReadFile reads and decodes the statement at path. Every failure is a
// *parsererror.FatalImportError.
func ReadFile(path string, profile models.FormatProfile) (*Statement, error) {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return nil, &parsererror.FatalImportError{
			FilePath: path,
			Reason:   "unreadable file",
			Err:      fmt.Errorf("%w: %v", parsererror.ErrUnreadableFile, err),
		}
	}

	st, err := Decode(data, profile)
	if err != nil {
		var fatal *parsererror.FatalImportError
		if errors.As(err, &fatal) {
			fatal.FilePath = path
		}
		return nil, err
	}
	st.Path = path
	return st, nil
}

var replacementChar = []byte(string(utf8.RuneError))

// invalidLine returns the 1-based line of the first byte the decoder had to
// replace. U+FFFD present in valid UTF-8 input is not an error.
func invalidLine(data, decoded []byte, name string) int {
	src, at := decoded, bytes.IndexRune(decoded, utf8.RuneError)
	if name == "utf-8" {
		for i := 0; i < len(data); {
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size == 1 {
				src, at = data, i
				break
			}
			i += size
		}
	}
	if at < 0 {
		return 1
	}
	return 1 + bytes.Count(src[:at], []byte("\n"))
}

// Decode converts data with the profile's encoding, skips profile.SkipRows
// records, takes the next record as the header and returns the remaining
// non-blank records as rows. The header is not checked against the profile's
// columns; see ValidateColumns.
func Decode(data []byte, profile models.FormatProfile) (*Statement, error) {
	enc, name, err := LookupEncoding(profile.Encoding)
	if err != nil {
		return nil, &parsererror.FatalImportError{Reason: "unsupported encoding", Err: err}
	}

	// BOMOverride strips a UTF-8 or UTF-16 byte order mark whatever the
	// configured encoding, which also covers "utf-8-sig".
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(enc.NewDecoder())))
	if err != nil {
		return nil, &parsererror.FatalImportError{
			Reason: "undecodable input",
			Err:    fmt.Errorf("%w: %s: %v", parsererror.ErrUndecodable, name, err),
		}
	}
	if bytes.Count(decoded, replacementChar) > bytes.Count(data, replacementChar) {
		line := invalidLine(data, decoded, name)
		return nil, &parsererror.FatalImportError{
			Reason: "undecodable input",
			Err:    fmt.Errorf("%w: %s (first invalid byte on line %d)", parsererror.ErrUndecodable, name, line),
		}
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	st := &Statement{Encoding: name}
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &parsererror.FatalImportError{
				Reason: "malformed csv",
				Err:    fmt.Errorf("%w: %v", parsererror.ErrUndecodable, err),
			}
		}
		line, _ := reader.FieldPos(0)

		if skipped < profile.SkipRows {
			skipped++
			continue
		}
		if st.Header == nil {
			st.Header = trimCells(record)
			continue
		}
		if isBlank(record) {
			continue
		}
		st.Rows = append(st.Rows, newRow(line, st.Header, record))
	}

	if st.Header == nil || isBlank(st.Header) {
		return nil, &parsererror.FatalImportError{
			Reason: "empty file",
			Err:    fmt.Errorf("%w after skipping %d rows", parsererror.ErrEmptyFile, profile.SkipRows),
		}
	}
	return st, nil
}

// ValidateColumns checks that every required column is present in header.
func ValidateColumns(header []string, required ...string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, fmt.Sprintf("%q", col))
		}
	}
	if len(missing) > 0 {
		return &parsererror.FatalImportError{
			Reason: "missing column",
			Err: fmt.Errorf("%w: %s (header: %s)", parsererror.ErrMissingColumn,
				strings.Join(missing, ", "), strings.Join(header, ", ")),
		}
	}
	return nil
}

func newRow(line int, header, record []string) Row {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if _, dup := fields[name]; dup {
			continue
		}
		if i < len(record) {
			fields[name] = record[i]
		} else {
			fields[name] = ""
		}
	}
	return Row{Line: line, Fields: fields}
}

func trimCells(record []string) []string {
	out := make([]string, len(record))
	for i, c := range record {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
