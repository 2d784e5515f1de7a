// Package resource defines the closed set of tradeable resource kinds in an
// industrial park and fixed-size tables keyed by them.
package resource

import "fmt"

type Kind int

const (
	Heat Kind = iota
	Water
	Byproduct
	Energy
	Storage
	CO2

	KindCount = int(CO2) + 1
)

var kindNames = [KindCount]string{
	Heat:      "heat",
	Water:     "water",
	Byproduct: "byproduct",
	Energy:    "energy",
	Storage:   "storage",
	CO2:       "co2",
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < KindCount
}

// ParseKind resolves a config/wire name to a Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", name)
}

// Kinds returns every kind in declaration order.
func Kinds() [KindCount]Kind {
	var ks [KindCount]Kind
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// Table is a dense mapping from Kind to T. Using a fixed array instead of a
// map keeps access exhaustive: every kind always has an entry.
type Table[T any] [KindCount]T

func (t *Table[T]) Get(k Kind) T {
	return t[k]
}

func (t *Table[T]) Set(k Kind, v T) {
	t[k] = v
}

// Fill sets every kind to v.
func (t *Table[T]) Fill(v T) {
	for i := range t {
		t[i] = v
	}
}
