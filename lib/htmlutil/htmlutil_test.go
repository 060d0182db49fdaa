package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestVisibleText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(
		`<html><head><style>p{color:red}</style></head>` +
			`<body><p>hello</p><script>var x = 1;</script><p>world</p></body></html>`,
	))
	require.NoError(t, err)

	text := CleanText(VisibleText(doc))
	require.Equal(t, "hello world", text)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b", CleanText("  a \n\n b\t"))
}
