// Package brochure loads brochure text from plain text, HTML pages and JSONL
// batches.
package brochure

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
)

// Brochure is one unit of extraction input.
type Brochure struct {
	Source   string `json:"source"`
	Retailer string `json:"retailer,omitempty"`
	Text     string `json:"text"`
	HTML     string `json:"html,omitempty"`
}

// maxLineSize bounds one JSONL record.
const maxLineSize = 16 << 20

// Load reads brochures from path, choosing the loader by file extension.
func Load(path string) ([]Brochure, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text", "":
		b, err := LoadText(path)
		if err != nil {
			return nil, err
		}
		return []Brochure{b}, nil
	case ".html", ".htm":
		b, err := LoadHTML(path)
		if err != nil {
			return nil, err
		}
		return []Brochure{b}, nil
	case ".jsonl", ".ndjson":
		return LoadJSONL(path)
	default:
		return nil, eris.Wrapf(internalerr.ErrUnsupportedFormat, "brochure: %s", path)
	}
}

// LoadText reads a plain-text brochure, typically OCR output.
func LoadText(path string) (Brochure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Brochure{}, eris.Wrapf(err, "brochure: read %s", path)
	}
	return Brochure{
		Source:   path,
		Retailer: RetailerFromSource(path),
		Text:     Decode(data),
	}, nil
}

// LoadHTML reads a saved brochure page and flattens it to one line per
// block element.
func LoadHTML(path string) (Brochure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Brochure{}, eris.Wrapf(err, "brochure: read %s", path)
	}
	text, err := HTMLToText(strings.NewReader(Decode(data)))
	if err != nil {
		return Brochure{}, eris.Wrapf(err, "brochure: parse %s", path)
	}
	return Brochure{
		Source:   path,
		Retailer: RetailerFromSource(path),
		Text:     text,
	}, nil
}

// LoadJSONL loads brochures from a JSONL file, one object per line.
// Malformed lines are logged and skipped; a file with no usable record is
// an error.
func LoadJSONL(path string) ([]Brochure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "brochure: open %s", path)
	}
	defer f.Close()

	var out []Brochure
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var b Brochure
		if err := json.Unmarshal(line, &b); err != nil {
			zap.L().Warn("skipping malformed brochure record",
				zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if b.HTML != "" && strings.TrimSpace(b.Text) == "" {
			text, err := HTMLToText(strings.NewReader(b.HTML))
			if err != nil {
				zap.L().Warn("skipping brochure record with unparsable html",
					zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
				continue
			}
			b.Text = text
		}
		b.HTML = ""
		if strings.TrimSpace(b.Text) == "" {
			zap.L().Warn("skipping empty brochure record",
				zap.String("path", path), zap.Int("line", lineNo))
			continue
		}
		if b.Source == "" {
			b.Source = path + "#" + strconv.Itoa(lineNo)
		}
		if b.Retailer == "" {
			b.Retailer = RetailerFromSource(path)
		}
		out = append(out, b)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "brochure: scan %s", path)
	}

	if len(out) == 0 {
		return nil, eris.Wrapf(internalerr.ErrInvalidInput, "brochure: no valid records in %s", path)
	}
	return out, nil
}

// Decode returns data as UTF-8 text. Input that is not valid UTF-8 is taken
// to be Windows-1251, the usual legacy encoding of Bulgarian text.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

// RetailerFromSource guesses the retailer from a file name such as
// "billa-2025-10.txt" or "kaufland_week40.html".
func RetailerFromSource(path string) string {
	base := strings.ToLower(filepath.Base(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.IndexAny(base, "-_. "); i > 0 {
		base = base[:i]
	}
	for _, r := range base {
		if r >= '0' && r <= '9' {
			return ""
		}
	}
	return base
}
