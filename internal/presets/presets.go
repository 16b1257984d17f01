// Package presets provides the example transactions offered by the dashboard.
package presets

import (
	"fmt"

	"fraud-dashboard/internal/common"
	"fraud-dashboard/internal/features"
)

const (
	Zero   = "zero"
	Normal = "normal"
	Fraud  = "fraud"
)

// fraudLike carries typical extreme values on several PCA components.
var fraudLike = features.Vector{
	"Time": 40000.0, "Amount": 1200.0,
	"V1": -3.5, "V2": 2.8, "V3": -4.2, "V4": 2.1, "V5": -1.9, "V6": -2.0,
	"V7": -3.1, "V8": 1.2, "V9": -2.5, "V10": -4.0, "V11": 2.7, "V12": -3.6,
	"V13": 0.5, "V14": -4.5, "V15": 0.2, "V16": -2.8, "V17": -3.9, "V18": -1.1,
	"V19": 0.6, "V20": 1.9, "V21": 0.8, "V22": 0.4, "V23": -0.6, "V24": 0.3,
	"V25": -0.2, "V26": -0.1, "V27": 0.5, "V28": -0.3,
}

// Names lists the available presets in display order.
func Names() []string {
	return []string{Zero, Normal, Fraud}
}

// Build returns a fresh vector for the named preset. Every column starts at zero;
// preset values for names outside columns are kept and later ignored by scoring.
func Build(name string, columns []string) (features.Vector, error) {
	v := features.Zero(columns)
	switch name {
	case Zero:
	case Normal:
		v[common.FeatureTime] = 10000.0
		v[common.FeatureAmount] = 50.0
	case Fraud:
		v.Merge(fraudLike)
	default:
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return v, nil
}
