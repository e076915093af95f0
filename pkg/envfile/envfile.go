// pkg/envfile/envfile.go

// Package envfile implements the newline-delimited KEY=VALUE configuration
// document format. Values are literal text after the first '='; there are
// no quoting or escaping rules. Ordering of pairs is preserved.
package envfile

import (
	"bytes"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

type entryKind int

const (
	kindPair entryKind = iota
	kindComment
	kindBlank
)

type entry struct {
	kind  entryKind
	key   string
	value string
	text  string // comment text without the leading '#'
}

// Document is an ordered sequence of key/value pairs, comment lines and
// blank lines. Documents are produced fresh and never mutated in place;
// regeneration replaces the whole document.
type Document struct {
	entries []entry
	index   map[string]int
}

// New returns an empty document.
func New() *Document {
	return &Document{index: make(map[string]int)}
}

// Parse reads a serialized document. Lines that are neither blank, comment
// nor KEY=VALUE are rejected.
func Parse(data []byte) (*Document, error) {
	doc := New()
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			// trailing newline produces one final blank; drop it on
			// serialize round-trip by keeping interior blanks only
			doc.entries = append(doc.entries, entry{kind: kindBlank})
		case strings.HasPrefix(trimmed, "#"):
			doc.entries = append(doc.entries, entry{
				kind: kindComment,
				text: strings.TrimPrefix(trimmed, "#"),
			})
		default:
			eq := strings.Index(line, "=")
			if eq <= 0 {
				return nil, cerr.Newf("line %d: not a KEY=VALUE pair: %q", i+1, line)
			}
			key := strings.TrimSpace(line[:eq])
			value := line[eq+1:]
			if err := doc.Append(key, value); err != nil {
				return nil, cerr.Wrapf(err, "line %d", i+1)
			}
		}
	}
	// drop the artifact blank from the trailing newline
	if n := len(doc.entries); n > 0 && doc.entries[n-1].kind == kindBlank {
		doc.entries = doc.entries[:n-1]
	}
	return doc, nil
}

// Append adds a key/value pair. Duplicate keys are rejected; the document
// invariant is that every key appears exactly once.
func (d *Document) Append(key, value string) error {
	if key == "" {
		return cerr.New("empty key")
	}
	if _, dup := d.index[key]; dup {
		return cerr.Newf("duplicate key %s", key)
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, entry{kind: kindPair, key: key, value: value})
	return nil
}

// AppendComment adds a '#'-prefixed comment line.
func (d *Document) AppendComment(text string) {
	d.entries = append(d.entries, entry{kind: kindComment, text: " " + text})
}

// AppendBlank adds an empty separator line.
func (d *Document) AppendBlank() {
	d.entries = append(d.entries, entry{kind: kindBlank})
}

// Get returns the value for key and whether it is present.
func (d *Document) Get(key string) (string, bool) {
	i, ok := d.index[key]
	if !ok {
		return "", false
	}
	return d.entries[i].value, true
}

// Keys returns all keys in document order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.index))
	for _, e := range d.entries {
		if e.kind == kindPair {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Pairs returns the key/value mapping. Ordering is not carried; use Keys
// when order matters.
func (d *Document) Pairs() map[string]string {
	pairs := make(map[string]string, len(d.index))
	for _, e := range d.entries {
		if e.kind == kindPair {
			pairs[e.key] = e.value
		}
	}
	return pairs
}

// Len returns the number of key/value pairs.
func (d *Document) Len() int { return len(d.index) }

// Serialize renders the document. Re-parsing the output reproduces the
// same key/value pairs.
func (d *Document) Serialize() []byte {
	var buf bytes.Buffer
	for _, e := range d.entries {
		switch e.kind {
		case kindPair:
			buf.WriteString(e.key)
			buf.WriteByte('=')
			buf.WriteString(e.value)
		case kindComment:
			buf.WriteByte('#')
			buf.WriteString(e.text)
		case kindBlank:
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
