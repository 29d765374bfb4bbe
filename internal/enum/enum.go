// Package enum holds the closed value sets used across report descriptors.
// Each kind is a named string type so the compiler keeps kinds apart, and each
// kind has a Parse function that accepts either the wire value or the
// constant name in any letter case.
package enum

import (
	"strings"

	"github.com/dharsanguruparan/rreport/internal/errs"
)

type member[T ~string] struct {
	name  string
	value T
}

// set is the lookup table behind every Parse function.
type set[T ~string] struct {
	kind    string
	members []member[T]
}

func newSet[T ~string](kind string, members ...member[T]) set[T] {
	return set[T]{kind: kind, members: members}
}

// parse resolves an exact value first, then a case-insensitive name.
func (s set[T]) parse(in string) (T, error) {
	for _, m := range s.members {
		if string(m.value) == in {
			return m.value, nil
		}
	}
	for _, m := range s.members {
		if strings.EqualFold(m.name, strings.TrimSpace(in)) {
			return m.value, nil
		}
	}
	var zero T
	return zero, errs.Enum("%s %q", s.kind, in)
}

func (s set[T]) contains(v T) bool {
	for _, m := range s.members {
		if m.value == v {
			return true
		}
	}
	return false
}

func (s set[T]) name(v T) string {
	for _, m := range s.members {
		if m.value == v {
			return m.name
		}
	}
	return ""
}

func (s set[T]) values() []T {
	out := make([]T, len(s.members))
	for i, m := range s.members {
		out[i] = m.value
	}
	return out
}
