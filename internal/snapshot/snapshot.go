// Package snapshot is the external persistence collaborator named in the
// civs package's design: civs itself never touches disk, so anything that
// wants a durable copy of a map's live contents owns its own file format,
// its own atomicity guarantees, and its own corruption checks. This
// package demonstrates that boundary for the common case of a
// string-keyed, string-valued map, as used by cmd/civs-repl's save/load
// commands.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"github.com/natefinch/atomic"
	"github.com/spaolacci/murmur3"
)

const magic = "civ1"

type entry struct {
	Key   string
	Value string
}

type file struct {
	Magic       string
	Fingerprint uint64
	Entries     []entry
}

// Save writes entries to path as a single atomically-renamed file. A
// concurrent reader of path will only ever observe a complete prior
// snapshot or a complete new one, never a partial write.
func Save(path string, entries map[string]string) error {
	ordered := make([]entry, 0, len(entries))
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ordered = append(ordered, entry{Key: k, Value: entries[k]})
	}

	f := file{
		Magic:       magic,
		Fingerprint: fingerprint(ordered),
		Entries:     ordered,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&f); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return atomic.WriteFile(path, &buf)
}

// Load reads a snapshot previously written by Save and rejects it if its
// recorded fingerprint does not match its recorded entries - the
// signature of truncation or bit-level corruption.
func Load(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	var f file
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&f); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if f.Magic != magic {
		return nil, fmt.Errorf("snapshot: bad magic %q", f.Magic)
	}
	if want := fingerprint(f.Entries); want != f.Fingerprint {
		return nil, fmt.Errorf("snapshot: fingerprint mismatch, file is corrupt")
	}
	out := make(map[string]string, len(f.Entries))
	for _, e := range f.Entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

func fingerprint(entries []entry) uint64 {
	h := murmur3.New64()
	for _, e := range entries {
		fmt.Fprintf(h, "%s=%s;", e.Key, e.Value)
	}
	return h.Sum64()
}
