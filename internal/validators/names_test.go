package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPackageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple name", "erc20", true},
		{"hyphenated name", "safe-math-lib", true},
		{"digits only", "4626", true},
		{"leading hyphen allowed", "-lib", true},
		{"trailing hyphen allowed", "lib-", true},
		{"empty", "", false},
		{"uppercase", "SafeMathLib", false},
		{"underscore", "Invalid_Name", false},
		{"dot", "safe.math", false},
		{"slash", "org/lib", false},
		{"whitespace", "safe math", false},
		{"unicode", "säfe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsValidPackageName(tt.input))
		})
	}
}

func TestValidatePackageName(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidatePackageName("safe-math-lib"))

	err := ValidatePackageName("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	err = ValidatePackageName("Invalid_Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid_Name")
}

func TestIsValidContractName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple name", "SafeMathLib", true},
		{"underscore-led", "_MyContract", true},
		{"dollar-led", "$proxy", true},
		{"single letter", "a", true},
		{"digits after first", "Token2", true},
		{"max length", strings.Repeat("a", 256), true},
		{"empty", "", false},
		{"digit-led", "123Contract", false},
		{"hyphen", "my-contract", false},
		{"too long", strings.Repeat("a", 257), false},
		{"whitespace", "My Contract", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsValidContractName(tt.input))
		})
	}
}

func TestIsValidContractAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple alias", "safe-math", true},
		{"underscore", "safe_math", true},
		{"digit-led alias", "0xDeposit", true},
		{"hyphen-led alias", "-alias", true},
		{"max length", strings.Repeat("z", 256), true},
		{"empty", "", false},
		{"dollar sign", "$alias", false},
		{"dot", "alias.v2", false},
		{"too long", strings.Repeat("z", 257), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsValidContractAlias(tt.input))
		})
	}
}
