package version

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "simple", input: "1.2.3", expected: "001.002.003"},
		{name: "already padded", input: "001.002.003", expected: "001.002.003"},
		{name: "large segments", input: "10.20.300", expected: "010.020.300"},
		{name: "zero version", input: "0.0.0", expected: "000.000.000"},
		{name: "two parts", input: "1.2", wantErr: true},
		{name: "four parts", input: "1.2.3.4", wantErr: true},
		{name: "non-numeric part", input: "1.x.3", wantErr: true},
		{name: "empty part", input: "1..3", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "negative part", input: "1.-2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var fe *FormatError
				require.ErrorAs(t, err, &fe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	once, err := Format("1.2.3")
	require.NoError(t, err)
	twice, err := Format(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

// Formatted lexicographic order must match numeric version order.
func TestFormat_OrderPreserving(t *testing.T) {
	versions := []string{"1.1.14", "1.1.15", "1.2.0", "1.10.0", "2.0.0", "10.0.0"}

	formatted := make([]string, len(versions))
	for i, v := range versions {
		f, err := Format(v)
		require.NoError(t, err)
		formatted[i] = f
	}

	sorted := append([]string(nil), formatted...)
	sort.Strings(sorted)
	assert.Equal(t, formatted, sorted, "lexicographic order should equal numeric order")
}
