// Package stattrak implements a hierarchical counter: a nested-map
// accumulator addressed by key paths, with YAML, JSON, and binary
// serialization. It is an independent in-memory utility with no
// coupling to file ingestion.
//
//	stats := stattrak.New()
//	stats.Increment([]string{"alice"}, 3)
//	stats.Increment([]string{"alice", "sword"}, 2)
//	stats.Increment([]string{"bob", "bow"}, 5)
//
//	stats.Get("alice", "sword") // 2
//	stats.Total()               // 10
package stattrak

import (
	"encoding/gob"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// StatTrak is one node of a hierarchical counter. Every node carries
// its own count plus named children; a path addresses exactly one node.
type StatTrak struct {
	Count    int64                `yaml:"count" json:"count"`
	Children map[string]*StatTrak `yaml:"children,omitempty" json:"children,omitempty"`
}

// New creates an empty counter.
func New() *StatTrak {
	return &StatTrak{}
}

// Increment adds n to the counter addressed by path, creating
// intermediate nodes as needed. An empty path addresses the root.
func (s *StatTrak) Increment(path []string, n int64) {
	node := s
	for _, key := range path {
		if node.Children == nil {
			node.Children = make(map[string]*StatTrak)
		}
		child, ok := node.Children[key]
		if !ok {
			child = &StatTrak{}
			node.Children[key] = child
		}
		node = child
	}
	node.Count += n
}

// Get returns the count of the node addressed by path, or zero if the
// path does not exist.
func (s *StatTrak) Get(path ...string) int64 {
	node := s
	for _, key := range path {
		child, ok := node.Children[key]
		if !ok {
			return 0
		}
		node = child
	}
	return node.Count
}

// Total sums the counts of this node and its entire subtree.
func (s *StatTrak) Total() int64 {
	total := s.Count
	for _, child := range s.Children {
		total += child.Total()
	}
	return total
}

// Merge adds the counts of other into s, node by node.
func (s *StatTrak) Merge(other *StatTrak) {
	s.Count += other.Count
	for key, child := range other.Children {
		if s.Children == nil {
			s.Children = make(map[string]*StatTrak)
		}
		mine, ok := s.Children[key]
		if !ok {
			mine = &StatTrak{}
			s.Children[key] = mine
		}
		mine.Merge(child)
	}
}

// Walk visits every node with a non-zero count in depth-first order
// with sorted child keys, calling fn with the node's path and count.
func (s *StatTrak) Walk(fn func(path []string, count int64)) {
	s.walk(nil, fn)
}

func (s *StatTrak) walk(path []string, fn func(path []string, count int64)) {
	if s.Count != 0 {
		fn(path, s.Count)
	}

	keys := make([]string, 0, len(s.Children))
	for key := range s.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		next := make([]string, len(path)+1)
		copy(next, path)
		next[len(path)] = key
		s.Children[key].walk(next, fn)
	}
}

// MarshalYAML is implemented by the struct tags; these helpers cover
// whole-counter round trips.

// ToYAML serializes the counter to YAML.
func (s *StatTrak) ToYAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// FromYAML deserializes a counter from YAML.
func FromYAML(data []byte) (*StatTrak, error) {
	var s StatTrak
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ToJSON serializes the counter to JSON.
func (s *StatTrak) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON deserializes a counter from JSON.
func FromJSON(data []byte) (*StatTrak, error) {
	var s StatTrak
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteBin writes the counter to path in binary form.
func (s *StatTrak) WriteBin(path string) error {
	f, err := os.Create(path) //nolint:gosec // G304: caller-controlled path
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(s); err != nil {
		return err
	}
	return f.Close()
}

// ReadBin reads a counter previously written with WriteBin.
func ReadBin(path string) (*StatTrak, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller-controlled path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s StatTrak
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
