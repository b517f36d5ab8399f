// Package roster holds the fixed set of patient names the dashboard accepts.
package roster

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Set is an immutable roster. It is safe for concurrent reads.
type Set struct {
	names map[string]struct{}
}

// New builds a roster, dropping blank names and duplicates.
func New(names ...string) *Set {
	s := &Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		s.names[n] = struct{}{}
	}
	return s
}

func (s *Set) Contains(patient string) bool {
	_, ok := s.names[patient]
	return ok
}

func (s *Set) Len() int {
	return len(s.names)
}

// Names returns the roster sorted for display.
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LoadFile reads a JSON array of names (.json) or one name per line.
// Blank lines and lines starting with # are skipped in the text form.
func LoadFile(path string) (*Set, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return nil, fmt.Errorf("decode roster %s: %w", path, err)
		}
		return New(names...), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan roster %s: %w", path, err)
	}
	return New(names...), nil
}
