package notion

import "strings"

// notion rejects rich text fragments over 2000 characters
const maxTextLength = 2000

func richTextContent(text string) []map[string]any {
	var out []map[string]any
	runes := []rune(text)
	for len(runes) > 0 {
		n := min(len(runes), maxTextLength)
		out = append(out, map[string]any{
			"type": "text",
			"text": map[string]any{"content": string(runes[:n])},
		})
		runes = runes[n:]
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out
}

func richText(text string) []map[string]any {
	return richTextContent(text)
}

func block(blockType string, text string) map[string]any {
	return map[string]any{
		"object":  "block",
		"type":    blockType,
		blockType: map[string]any{"rich_text": richTextContent(text)},
	}
}

// MarkdownToBlocks converts the markdown report layout into notion
// blocks: #/##/### headings, - bullets, --- dividers, everything else
// a paragraph. blank lines are dropped.
func MarkdownToBlocks(markdown string) []map[string]any {
	var blocks []map[string]any

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case trimmed == "---":
			blocks = append(blocks, map[string]any{
				"object":  "block",
				"type":    "divider",
				"divider": map[string]any{},
			})
		case strings.HasPrefix(trimmed, "### "):
			blocks = append(blocks, block("heading_3", strings.TrimPrefix(trimmed, "### ")))
		case strings.HasPrefix(trimmed, "## "):
			blocks = append(blocks, block("heading_2", strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "# "):
			blocks = append(blocks, block("heading_1", strings.TrimPrefix(trimmed, "# ")))
		case strings.HasPrefix(trimmed, "- "):
			blocks = append(blocks, block("bulleted_list_item", strings.TrimPrefix(trimmed, "- ")))
		default:
			blocks = append(blocks, block("paragraph", trimmed))
		}
	}

	return blocks
}
