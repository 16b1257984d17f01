package features

import (
	"fmt"
	"sort"
)

// Vector holds the named numeric inputs describing one transaction.
type Vector map[string]float64

type MissingFeatureError struct {
	Name string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing required feature %q", e.Name)
}

func Zero(columns []string) Vector {
	v := make(Vector, len(columns))
	for _, c := range columns {
		v[c] = 0
	}
	return v
}

func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Merge overwrites v with every value in other.
func (v Vector) Merge(other Vector) {
	for k, x := range other {
		v[k] = x
	}
}

// Assemble lays the vector out in column order. Names not in columns are ignored;
// the first column absent from v is reported as a *MissingFeatureError.
func (v Vector) Assemble(columns []string) ([]float64, error) {
	row := make([]float64, len(columns))
	for i, c := range columns {
		x, ok := v[c]
		if !ok {
			return nil, &MissingFeatureError{Name: c}
		}
		row[i] = x
	}
	return row, nil
}

func (v Vector) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
