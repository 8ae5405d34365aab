package translation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Entry is one catalog message.
type Entry struct {
	Context    string
	MsgID      string
	MsgStr     string
	References []string
}

// Sink receives message definitions during catalog export.
type Sink interface {
	Define(context, msgid string)
}

// Catalog is an ordered, de-duplicated gettext catalog.
type Catalog struct {
	Header  map[string]string
	entries []Entry
	index   map[[2]string]int
}

// NewCatalog returns a template catalog with the standard header fields.
func NewCatalog(version string) *Catalog {
	return &Catalog{
		Header: map[string]string{
			"Project-Id-Version":        version,
			"POT-Creation-Date":         time.Now().UTC().Format("2006-01-02 15:04-0700"),
			"MIME-Version":              "1.0",
			"Content-Type":              "text/plain; charset=utf-8",
			"Content-Transfer-Encoding": "8bit",
		},
		index: make(map[[2]string]int),
	}
}

// Define registers (context, msgid) once. Empty messages are ignored.
func (c *Catalog) Define(context, msgid string) {
	c.Add(Entry{Context: context, MsgID: msgid})
}

// Add registers e, keeping the first msgstr seen and merging references.
func (c *Catalog) Add(e Entry) {
	if strings.TrimSpace(e.MsgID) == "" {
		return
	}
	if c.index == nil {
		c.index = make(map[[2]string]int)
	}
	k := [2]string{e.Context, e.MsgID}
	if i, ok := c.index[k]; ok {
		cur := &c.entries[i]
		if cur.MsgStr == "" {
			cur.MsgStr = e.MsgStr
		}
		cur.References = appendUnique(cur.References, e.References...)
		return
	}
	c.index[k] = len(c.entries)
	e.References = appendUnique(nil, e.References...)
	c.entries = append(c.entries, e)
}

// Lookup returns the entry for (context, msgid).
func (c *Catalog) Lookup(context, msgid string) (Entry, bool) {
	i, ok := c.index[[2]string{context, msgid}]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// SetMsgStr updates the translation of an existing entry.
func (c *Catalog) SetMsgStr(context, msgid, msgstr string) bool {
	i, ok := c.index[[2]string{context, msgid}]
	if !ok {
		return false
	}
	c.entries[i].MsgStr = msgstr
	return true
}

// Entries returns a copy of the entries in definition order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Untranslated returns the entries without msgstr.
func (c *Catalog) Untranslated() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.MsgStr == "" {
			out = append(out, e)
		}
	}
	return out
}

// WriteTo writes the catalog in PO syntax.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	bw := &countingWriter{w: w}
	fmt.Fprintf(bw, "msgid \"\"\nmsgstr \"\"\n")
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, "%s\n", quote(k+": "+c.Header[k]+"\n"))
	}
	for _, e := range c.entries {
		bw.WriteString("\n")
		for _, ref := range e.References {
			fmt.Fprintf(bw, "#: %s\n", ref)
		}
		if e.Context != "" {
			fmt.Fprintf(bw, "msgctxt %s\n", quote(e.Context))
		}
		fmt.Fprintf(bw, "msgid %s\n", quote(e.MsgID))
		fmt.Fprintf(bw, "msgstr %s\n", quote(e.MsgStr))
	}
	return bw.n, bw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

func (c *countingWriter) WriteString(s string) {
	_, _ = c.Write([]byte(s))
}

func quote(s string) string {
	return strconv.Quote(s)
}

// ReadCatalog parses PO syntax: msgctxt, msgid, msgstr, continuation
// strings, reference comments and the header entry.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	c := &Catalog{Header: map[string]string{}, index: make(map[[2]string]int)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cur     Entry
		field   *string
		started bool
		line    int
	)
	flush := func() {
		if !started {
			return
		}
		if cur.MsgID == "" && cur.Context == "" {
			parseHeader(c.Header, cur.MsgStr)
		} else {
			c.Add(cur)
		}
		cur = Entry{}
		field = nil
		started = false
	}

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "":
			flush()
		case strings.HasPrefix(text, "#:"):
			if started && field != nil && field == &cur.MsgStr {
				flush()
			}
			cur.References = append(cur.References, strings.Fields(text[2:])...)
		case strings.HasPrefix(text, "#"):
		case strings.HasPrefix(text, "msgctxt "):
			if started && field == &cur.MsgStr {
				flush()
			}
			started = true
			v, err := unquote(text[len("msgctxt "):], line)
			if err != nil {
				return nil, err
			}
			cur.Context, field = v, &cur.Context
		case strings.HasPrefix(text, "msgid "):
			if started && field == &cur.MsgStr {
				flush()
			}
			started = true
			v, err := unquote(text[len("msgid "):], line)
			if err != nil {
				return nil, err
			}
			cur.MsgID, field = v, &cur.MsgID
		case strings.HasPrefix(text, "msgstr "):
			v, err := unquote(text[len("msgstr "):], line)
			if err != nil {
				return nil, err
			}
			cur.MsgStr, field = v, &cur.MsgStr
		case strings.HasPrefix(text, `"`):
			if field == nil {
				return nil, fmt.Errorf("translation: line %d: continuation without keyword", line)
			}
			v, err := unquote(text, line)
			if err != nil {
				return nil, err
			}
			*field += v
		default:
			return nil, fmt.Errorf("translation: line %d: unexpected %q", line, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return c, nil
}

func unquote(s string, line int) (string, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Unquote(s)
	if err != nil {
		return "", fmt.Errorf("translation: line %d: %w", line, errors.Join(errBadString, err))
	}
	return v, nil
}

var errBadString = errors.New("malformed string")

func parseHeader(h map[string]string, raw string) {
	for _, l := range strings.Split(raw, "\n") {
		k, v, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		h[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
