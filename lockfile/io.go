package lockfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// lockfilePermissions is the file permission mode for lock documents.
const lockfilePermissions = 0o600

// Filename is the conventional lock document filename inside a registry root.
const Filename = "lock.json"

// ReadFile reads and parses a lock document from the given path.
// A missing file is a hard error; callers wanting create-if-absent
// semantics must check os.IsNotExist and construct New() explicitly.
func ReadFile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lockfile: %w", err)
	}
	return Parse(data)
}

// Parse parses lock document JSON data and validates every entry hash.
func Parse(data []byte) (*Lockfile, error) {
	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse lockfile JSON: %w", err)
	}

	if lf.Schemas == nil {
		lf.Schemas = make(map[string]Entry)
	}
	if lf.Transforms == nil {
		lf.Transforms = make(map[string]Entry)
	}

	for r, e := range lf.Schemas {
		if err := ValidateHash(e.Hash); err != nil {
			return nil, fmt.Errorf("schema entry %q: %w", r, err)
		}
	}
	for r, e := range lf.Transforms {
		if err := ValidateHash(e.Hash); err != nil {
			return nil, fmt.Errorf("transform entry %q: %w", r, err)
		}
	}

	return &lf, nil
}

// WriteFile writes the lock document to the given path, stamping a fresh
// UpdatedAt. Output has deterministic key ordering.
func (l *Lockfile) WriteFile(path string) error {
	l.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create lockfile directory: %w", err)
	}
	return os.WriteFile(path, data, lockfilePermissions)
}

// Marshal serializes the lock document to JSON with sorted map keys for
// reproducible output.
func (l *Lockfile) Marshal() ([]byte, error) {
	ordered := orderedLockfile{
		Version:    l.Version,
		UpdatedAt:  l.UpdatedAt,
		Schemas:    sortedEntryMap(l.Schemas),
		Transforms: sortedEntryMap(l.Transforms),
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ordered); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Exists returns true if a lock document exists at the given path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// orderedLockfile is used for deterministic JSON output.
type orderedLockfile struct {
	Version    string          `json:"version"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
	Schemas    orderedEntryMap `json:"schemas"`
	Transforms orderedEntryMap `json:"transforms"`
}

// orderedEntryMap marshals a reference-to-entry map with sorted keys.
type orderedEntryMap struct {
	keys   []string
	values map[string]Entry
}

func sortedEntryMap(m map[string]Entry) orderedEntryMap {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return orderedEntryMap{keys: keys, values: m}
}

func (o orderedEntryMap) MarshalJSON() ([]byte, error) {
	if len(o.keys) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
