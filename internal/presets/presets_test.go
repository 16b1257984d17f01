package presets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creditCardColumns() []string {
	cols := []string{"Time"}
	for i := 1; i <= 28; i++ {
		cols = append(cols, fmt.Sprintf("V%d", i))
	}
	return append(cols, "Amount")
}

func TestBuild_Zero(t *testing.T) {
	cols := creditCardColumns()
	v, err := Build(Zero, cols)
	require.NoError(t, err)

	assert.Len(t, v, len(cols))
	for _, c := range cols {
		assert.Equal(t, 0.0, v[c], c)
	}
}

func TestBuild_Normal(t *testing.T) {
	v, err := Build(Normal, creditCardColumns())
	require.NoError(t, err)

	assert.Equal(t, 10000.0, v["Time"])
	assert.Equal(t, 50.0, v["Amount"])
	assert.Equal(t, 0.0, v["V14"])
}

func TestBuild_Fraud(t *testing.T) {
	cols := creditCardColumns()
	v, err := Build(Fraud, cols)
	require.NoError(t, err)

	assert.Equal(t, 40000.0, v["Time"])
	assert.Equal(t, 1200.0, v["Amount"])
	assert.Equal(t, -4.5, v["V14"])
	assert.Equal(t, -0.3, v["V28"])

	row, err := v.Assemble(cols)
	require.NoError(t, err)
	assert.Len(t, row, 30)
}

func TestBuild_ReturnsFreshVectors(t *testing.T) {
	a, err := Build(Fraud, creditCardColumns())
	require.NoError(t, err)
	a["V14"] = 0

	b, err := Build(Fraud, creditCardColumns())
	require.NoError(t, err)
	assert.Equal(t, -4.5, b["V14"])
}

func TestBuild_UnknownPreset(t *testing.T) {
	_, err := Build("suspicious", creditCardColumns())
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"zero", "normal", "fraud"}, Names())
}
