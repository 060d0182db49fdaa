package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "birthdaygift", NormalizeName("  Birthday Gift\n"))
	require.Equal(t, "誕生日プレゼント", NormalizeName("誕生日 プレゼント"))
}

func TestTokenize(t *testing.T) {
	require.Equal(t,
		[]string{"top", "10", "gift", "ideas"},
		Tokenize("Top 10 Gift Ideas!"),
	)
	require.Equal(t,
		[]string{"誕生日プレゼント", "おすすめ"},
		Tokenize("誕生日プレゼント・おすすめ"),
	)
	require.Empty(t, Tokenize("!!! ---"))
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c "))
}
