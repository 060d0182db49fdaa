package notion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownToBlocks(t *testing.T) {
	blocks := MarkdownToBlocks(`# Monthly Report

## Traffic

- sessions: 1200
- users: 900

---

normal paragraph`)

	types := make([]string, len(blocks))
	for i, b := range blocks {
		types[i] = b["type"].(string)
	}
	require.Equal(t, []string{
		"heading_1",
		"heading_2",
		"bulleted_list_item",
		"bulleted_list_item",
		"divider",
		"paragraph",
	}, types)
}

func TestRichTextChunking(t *testing.T) {
	long := strings.Repeat("あ", 4500)
	fragments := richTextContent(long)
	require.Len(t, fragments, 3)

	var total int
	for _, f := range fragments {
		content := f["text"].(map[string]any)["content"].(string)
		require.LessOrEqual(t, len([]rune(content)), maxTextLength)
		total += len([]rune(content))
	}
	require.Equal(t, 4500, total)
}

func TestRichTextEmpty(t *testing.T) {
	require.Empty(t, richTextContent(""))
	require.NotNil(t, richTextContent(""))
}
