// Package session holds the interaction state of one dashboard connection: the
// threshold slider, the entry mode and the cached input values. A State is owned
// by a single connection and is not safe for concurrent use.
package session

import (
	"fmt"
	"math"

	"fraud-dashboard/internal/common"
	"fraud-dashboard/internal/features"
	"fraud-dashboard/internal/ml"
	"fraud-dashboard/internal/presets"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeSimplified Mode = "simplified"
	ModeExpert     Mode = "expert"
)

// simplifiedFields are the inputs editable in simplified mode.
var simplifiedFields = []string{common.FeatureTime, common.FeatureAmount}

type State struct {
	ID        string
	Threshold float64
	Mode      Mode
	Inputs    features.Vector

	columns []string
}

// Snapshot is the JSON view of a State sent to the browser.
type Snapshot struct {
	ID        string          `json:"id"`
	Threshold float64         `json:"threshold"`
	Mode      Mode            `json:"mode"`
	Fields    []string        `json:"fields"`
	Inputs    features.Vector `json:"inputs"`
}

func New(bundle *ml.Bundle) *State {
	return &State{
		ID:        uuid.NewString(),
		Threshold: bundle.Threshold,
		Mode:      ModeSimplified,
		Inputs:    features.Zero(bundle.FeatureColumns),
		columns:   bundle.FeatureColumns,
	}
}

// SetThreshold clamps t into [0, 1] and returns the stored value. NaN is ignored.
func (s *State) SetThreshold(t float64) float64 {
	if !math.IsNaN(t) {
		s.Threshold = math.Min(1, math.Max(0, t))
	}
	return s.Threshold
}

func (s *State) SetMode(m Mode) error {
	switch m {
	case ModeSimplified, ModeExpert:
		s.Mode = m
		return nil
	default:
		return fmt.Errorf("unknown mode %q", m)
	}
}

// LoadPreset replaces every cached input with the preset's values.
func (s *State) LoadPreset(name string) error {
	v, err := presets.Build(name, s.columns)
	if err != nil {
		return err
	}
	s.Inputs = v
	return nil
}

// SetInput updates one cached input. Only fields editable in the current mode
// are accepted; the others keep their cached values.
func (s *State) SetInput(name string, value float64) error {
	for _, f := range s.EditableFields() {
		if f == name {
			s.Inputs[name] = value
			return nil
		}
	}
	return fmt.Errorf("field %q is not editable in %s mode", name, s.Mode)
}

// EditableFields lists the inputs shown for the current mode, in column order.
func (s *State) EditableFields() []string {
	if s.Mode == ModeExpert {
		return append([]string(nil), s.columns...)
	}
	var fields []string
	for _, c := range s.columns {
		for _, f := range simplifiedFields {
			if c == f {
				fields = append(fields, c)
			}
		}
	}
	return fields
}

// Vector returns a copy of the cached inputs for evaluation.
func (s *State) Vector() features.Vector {
	return s.Inputs.Clone()
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Threshold: s.Threshold,
		Mode:      s.Mode,
		Fields:    s.EditableFields(),
		Inputs:    s.Inputs.Clone(),
	}
}
