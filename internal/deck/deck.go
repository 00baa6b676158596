// Package deck reads deck lists from YAML.
package deck

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/chainduel/internal/card"
	"github.com/peterkuimelis/chainduel/internal/state"
)

var ErrNotFound = errors.New("deck not found")

// File represents the top-level YAML structure.
type File struct {
	Decks []Entry `yaml:"decks"`
}

// Entry represents a single deck in the YAML file.
type Entry struct {
	Name  string      `yaml:"name"`
	Main  []CardEntry `yaml:"main"`
	Extra []CardEntry `yaml:"extra,omitempty"`
}

// CardEntry is a card and its count. Either ID or Name identifies the card;
// a missing count means one copy.
type CardEntry struct {
	ID    int    `yaml:"id,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Resolver finds cards by id or name.
type Resolver interface {
	card.Provider
	ByName(name string) (card.Data, bool)
}

// Parse decodes a deck file, rejecting unknown keys.
func Parse(data []byte) (File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	return f, nil
}

// Load reads and parses the deck file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(data)
}

// ByNumber returns the Nth deck (1-indexed).
func (f File) ByNumber(n int) (Entry, error) {
	if n < 1 || n > len(f.Decks) {
		return Entry{}, fmt.Errorf("deck %d (have %d decks): %w", n, len(f.Decks), ErrNotFound)
	}
	return f.Decks[n-1], nil
}

func (f File) ByName(name string) (Entry, error) {
	for _, d := range f.Decks {
		if d.Name == name {
			return d, nil
		}
	}
	return Entry{}, fmt.Errorf("deck %q: %w", name, ErrNotFound)
}

// Names lists the decks in file order.
func (f File) Names() []string {
	names := make([]string, len(f.Decks))
	for i, d := range f.Decks {
		names[i] = d.Name
	}
	return names
}

// Build expands the entry into card ids, in listed order.
func (e Entry) Build(r Resolver) (state.DeckList, error) {
	main, err := expand(r, e.Main)
	if err != nil {
		return state.DeckList{}, fmt.Errorf("deck %q main: %w", e.Name, err)
	}
	extra, err := expand(r, e.Extra)
	if err != nil {
		return state.DeckList{}, fmt.Errorf("deck %q extra: %w", e.Name, err)
	}
	return state.DeckList{Main: main, Extra: extra}, nil
}

func expand(r Resolver, entries []CardEntry) ([]int, error) {
	var ids []int
	for _, ce := range entries {
		id, err := resolve(r, ce)
		if err != nil {
			return nil, err
		}
		count := ce.Count
		if count == 0 {
			count = 1
		}
		if count < 0 {
			return nil, fmt.Errorf("card %d: negative count %d", id, count)
		}
		for range count {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func resolve(r Resolver, ce CardEntry) (int, error) {
	if ce.ID != 0 {
		if _, ok := r.Lookup(ce.ID); !ok {
			return 0, fmt.Errorf("unknown card id %d", ce.ID)
		}
		return ce.ID, nil
	}
	if d, ok := r.ByName(ce.Name); ok {
		return d.ID, nil
	}
	return 0, fmt.Errorf("unknown card %q", ce.Name)
}
