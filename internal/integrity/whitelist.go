package integrity

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
)

// lineKey obfuscates each whitelist line.
const lineKey = "TinyPlay"

// maxLineLength guards against corrupt length prefixes.
const maxLineLength = 1 << 20

// ErrMalformedWhitelist is returned for resources that cannot be parsed.
var ErrMalformedWhitelist = errors.New("malformed whitelist")

// AllowedModule is a module name with every hash known to be genuine.
type AllowedModule struct {
	Name   string
	Hashes []int32
}

// Whitelist maps module names to their accepted hashes. Entries are only
// appended while a whitelist is being built; the detector reads it.
type Whitelist struct {
	entries []AllowedModule
	index   map[string]map[int32]struct{}
}

// NewWhitelist builds a whitelist from entries. Entries sharing a name are
// merged for lookups but kept separately for encoding.
func NewWhitelist(entries ...AllowedModule) *Whitelist {
	w := &Whitelist{index: make(map[string]map[int32]struct{})}
	for _, e := range entries {
		w.Add(e.Name, e.Hashes...)
	}
	return w
}

// Add appends hashes for name. Repeated hashes are ignored.
func (w *Whitelist) Add(name string, hashes ...int32) {
	set, ok := w.index[name]
	if !ok {
		set = make(map[int32]struct{})
		w.index[name] = set
	}
	var fresh []int32
	for _, h := range hashes {
		if _, seen := set[h]; seen {
			continue
		}
		set[h] = struct{}{}
		fresh = append(fresh, h)
	}
	for i := range w.entries {
		if w.entries[i].Name == name {
			w.entries[i].Hashes = append(w.entries[i].Hashes, fresh...)
			return
		}
	}
	w.entries = append(w.entries, AllowedModule{Name: name, Hashes: fresh})
}

// Allowed reports whether name is listed with hash.
func (w *Whitelist) Allowed(name string, hash int32) bool {
	_, ok := w.index[name][hash]
	return ok
}

// Knows reports whether name is listed at all.
func (w *Whitelist) Knows(name string) bool {
	_, ok := w.index[name]
	return ok
}

// Entries returns a copy of the entries in insertion order.
func (w *Whitelist) Entries() []AllowedModule {
	out := make([]AllowedModule, len(w.entries))
	for i, e := range w.entries {
		out[i] = AllowedModule{Name: e.Name, Hashes: append([]int32(nil), e.Hashes...)}
	}
	return out
}

// Len returns the number of distinct module names.
func (w *Whitelist) Len() int {
	return len(w.entries)
}

// ParseEntry parses a plain "name:hash[:hash...]" line. Empty fields are
// skipped; a line without at least one hash is malformed.
func ParseEntry(line string) (AllowedModule, error) {
	var parts []string
	for _, p := range strings.Split(line, ":") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return AllowedModule{}, fmt.Errorf("%w: entry %q has no hashes", ErrMalformedWhitelist, line)
	}
	entry := AllowedModule{Name: parts[0], Hashes: make([]int32, 0, len(parts)-1)}
	for _, p := range parts[1:] {
		h, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return AllowedModule{}, fmt.Errorf("%w: entry %q: %w", ErrMalformedWhitelist, entry.Name, err)
		}
		entry.Hashes = append(entry.Hashes, int32(h))
	}
	return entry, nil
}

// FormatEntry is the inverse of ParseEntry.
func FormatEntry(e AllowedModule) string {
	var b strings.Builder
	b.WriteString(e.Name)
	for _, h := range e.Hashes {
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(int64(h), 10))
	}
	return b.String()
}

// DecodeWhitelist reads the packaged resource format: a little-endian int32
// entry count followed by that many 7-bit length-prefixed UTF-8 strings,
// each an obfuscated "name:hash..." line.
func DecodeWhitelist(r io.Reader) (*Whitelist, error) {
	br := bufio.NewReader(r)

	var count int32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: read count: %w", ErrMalformedWhitelist, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrMalformedWhitelist, count)
	}

	w := NewWhitelist()
	for i := int32(0); i < count; i++ {
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d length: %w", ErrMalformedWhitelist, i, err)
		}
		if n > maxLineLength {
			return nil, fmt.Errorf("%w: entry %d length %d", ErrMalformedWhitelist, i, n)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformedWhitelist, i, err)
		}
		entry, err := ParseEntry(obfuscateLine(string(buf)))
		if err != nil {
			return nil, err
		}
		w.Add(entry.Name, entry.Hashes...)
	}
	return w, nil
}

// EncodeWhitelist writes w in the format DecodeWhitelist reads.
func EncodeWhitelist(out io.Writer, w *Whitelist) error {
	bw := bufio.NewWriter(out)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(w.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range w.entries {
		if len(e.Hashes) == 0 {
			return fmt.Errorf("%w: entry %q has no hashes", ErrMalformedWhitelist, e.Name)
		}
		line := obfuscateLine(FormatEntry(e))
		if _, err := bw.Write(binary.AppendUvarint(nil, uint64(len(line)))); err != nil {
			return fmt.Errorf("write entry %q: %w", e.Name, err)
		}
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("write entry %q: %w", e.Name, err)
		}
	}
	return bw.Flush()
}

// obfuscateLine XORs each UTF-16 unit of s with the repeating line key. It
// is its own inverse.
func obfuscateLine(s string) string {
	key := utf16.Encode([]rune(lineKey))
	units := utf16.Encode([]rune(s))
	for i := range units {
		units[i] ^= key[i%len(key)]
	}
	return string(utf16.Decode(units))
}
