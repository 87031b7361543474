// Package creature defines creature types and the concealed creature multiset
// held by a legion.
package creature

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNameRequired indicates an empty creature type name.
var ErrNameRequired = errors.New("creature name is required")

// Type identifies a creature species, such as Ogre or Troll. Instances of the
// same type are interchangeable. The zero Type means "no creature".
type Type struct {
	name string
}

// New returns the creature type with the given name. Surrounding space is
// trimmed and each word's first letter is upper-cased, so "ogre" and "Ogre"
// are the same type. The rest of the name is kept as given.
func New(name string) (Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Type{}, ErrNameRequired
	}
	return Type{name: canonicalName(name)}, nil
}

// MustNew is New for fixtures and literals; it panics on an empty name.
func MustNew(name string) Type {
	t, err := New(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the canonical creature name.
func (t Type) Name() string {
	return t.name
}

// String implements fmt.Stringer.
func (t Type) String() string {
	return t.name
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t.name == ""
}

func canonicalName(name string) string {
	// Casers are stateful; one per call keeps New safe for concurrent use.
	caser := cases.Title(language.English, cases.NoLower)
	words := strings.Fields(name)
	for i, word := range words {
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}

// Names returns the names of types in order.
func Names(types []Type) []string {
	if len(types) == 0 {
		return nil
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.name
	}
	return names
}

// ParseNames converts names back into types.
func ParseNames(names []string) ([]Type, error) {
	if len(names) == 0 {
		return nil, nil
	}
	types := make([]Type, len(names))
	for i, name := range names {
		t, err := New(name)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}
