package accountnum

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	number := Generate()
	require.Len(t, number, 16)
	require.True(t, strings.HasPrefix(number, bankCode+branchCode))
	for _, r := range number {
		require.True(t, r >= '0' && r <= '9', "non-digit in account number: %q", number)
	}
}
