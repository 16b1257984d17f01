package session

import "fmt"

// Action types sent by the dashboard, one per user interaction.
const (
	ActionThreshold = "threshold"
	ActionMode      = "mode"
	ActionPreset    = "preset"
	ActionInput     = "input"
	ActionAnalyze   = "analyze"
)

type Action struct {
	Type      string   `json:"type"`
	Threshold *float64 `json:"threshold,omitempty"`
	Mode      Mode     `json:"mode,omitempty"`
	Preset    string   `json:"preset,omitempty"`
	Name      string   `json:"name,omitempty"`
	Value     *float64 `json:"value,omitempty"`
}

// Apply mutates the state for a. It reports whether the caller should evaluate
// the current inputs.
func (s *State) Apply(a Action) (bool, error) {
	switch a.Type {
	case ActionThreshold:
		if a.Threshold == nil {
			return false, fmt.Errorf("threshold action without value")
		}
		s.SetThreshold(*a.Threshold)
	case ActionMode:
		return false, s.SetMode(a.Mode)
	case ActionPreset:
		return false, s.LoadPreset(a.Preset)
	case ActionInput:
		if a.Value == nil {
			return false, fmt.Errorf("input action for %q without value", a.Name)
		}
		return false, s.SetInput(a.Name, *a.Value)
	case ActionAnalyze:
		return true, nil
	default:
		return false, fmt.Errorf("unknown action %q", a.Type)
	}
	return false, nil
}
