package htmlgen

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCSV = `タグ,title or description or heedline,見出し下に＜p＞タグを入れる場合のテキスト,URL（商品・リンク）①,alt（商品名）①,span（商品名）①,URL（商品・リンク）②,span（商品名）②
title,結婚祝いに人気のお菓子ランキング＆おすすめスイーツギフト特集,,,,,,
description,結婚祝いに喜ばれるお菓子を厳選して紹介します。,,,,,,
H2,結婚祝いに人気のお菓子ランキング,編集部が選んだランキングです。,,,,,
H3,【1位】バターサンド,濃厚なバタークリームが人気。,https://example.com/products/MM-0410771005508.html,バターサンド詰め合わせ,バターサンド 5個入,,
H3,【2位】フィナンシェ,焼きたての香りが楽しめます。,https://example.com/products/MM-0410771005509.html,フィナンシェセット,nan,,
H2,シーン別のおすすめスイーツ,贈る相手に合わせて選びましょう。,,,,,
H3,職場への結婚祝い,配りやすい個包装が便利です。,,,,,
H4,個包装クッキーセット,上品な味わいのクッキーです。,https://example.com/products/MM-0410771005510.html,クッキーセット,クッキー 12枚入,https://example.com/products/MM-0410771005511.html,クッキー 24枚入
H4,のし対応について,のし紙の種類を選べます。,,,,,
`

func TestParseCSV(t *testing.T) {
	article, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Equal(t, "結婚祝いに人気のお菓子ランキング＆おすすめスイーツギフト特集", article.Title)
	require.Equal(t, "結婚祝いに喜ばれるお菓子を厳選して紹介します。", article.Description)
	require.Len(t, article.Sections, 2)

	ranking := article.Sections[0]
	require.Equal(t, "article_01", ranking.ID)
	require.True(t, ranking.HasRanking())
	require.Len(t, ranking.H3Items, 2)
	require.NotNil(t, ranking.H3Items[0].Ranking)
	require.Equal(t, "バターサンド 5個入", ranking.H3Items[0].Ranking.Span)
	// missing span falls back to alt
	require.Equal(t, "フィナンシェセット", ranking.H3Items[1].Ranking.Span)

	regular := article.Sections[1]
	require.Equal(t, "article_02", regular.ID)
	require.False(t, regular.HasRanking())
	require.Len(t, regular.H3Items, 1)
	require.Len(t, regular.H3Items[0].H4Items, 2)

	products := regular.H3Items[0].H4Items[0].Products
	require.Len(t, products, 2)
	// the alt column is shared between both products
	require.Equal(t, "クッキーセット", products[0].Alt)
	require.Equal(t, "クッキーセット", products[1].Alt)
	require.Equal(t, "クッキー 24枚入", products[1].Span)

	require.Empty(t, regular.H3Items[0].H4Items[1].Products)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("タグ,text\ndescription,no title here\n"))
	require.Error(t, err)

	_, err = ParseCSV(strings.NewReader("タグ,text\ntitle,t\nH3,orphan heading\n"))
	require.Error(t, err)

	_, err = ParseCSV(strings.NewReader("タグ,text\ntitle,t\nH2,section\nH4,orphan item\n"))
	require.Error(t, err)
}

func TestExtractProductID(t *testing.T) {
	require.Equal(t, "MM-0410771005508", ExtractProductID("https://example.com/products/MM-0410771005508.html"))
	require.Equal(t, "dummy", ExtractProductID("https://example.com/products/other.html"))
	require.Equal(t, "dummy", ExtractProductID(""))
}

func TestSplitTitle(t *testing.T) {
	p1, p2 := splitTitle("結婚祝いに人気のお菓子ランキング＆おすすめスイーツギフト特集")
	require.Equal(t, "結婚祝いに", p1)
	require.Equal(t, "人気のお菓子ランキング＆おすすめスイーツギフト特集", p2)

	p1, p2 = splitTitle("ブランド一覧｜お菓子特集")
	require.Equal(t, "ブランド一覧", p1)
	require.Equal(t, "お菓子特集", p2)

	p1, p2 = splitTitle("シンプルなタイトル")
	require.Equal(t, "シンプルなタイトル", p1)
	require.Empty(t, p2)
}

// tagBalance counts opening vs closing occurrences of each element.
func tagBalance(t *testing.T, html string) {
	t.Helper()
	for _, tag := range []string{"div", "section", "ul", "ol", "li", "a", "p", "span", "h1", "h2", "h3", "h4", "time"} {
		open := len(regexp.MustCompile(fmt.Sprintf(`<%s[\s>]`, tag)).FindAllString(html, -1))
		closed := strings.Count(html, fmt.Sprintf("</%s>", tag))
		require.Equal(t, open, closed, "unbalanced <%s> tags", tag)
	}
}

func TestRender(t *testing.T) {
	article, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf strings.Builder
	err = Render(&buf, article)
	require.NoError(t, err)
	html := buf.String()

	require.Contains(t, html, `id="article_01"`)
	require.Contains(t, html, `id="article_02"`)
	require.Contains(t, html, `href="#article_01"`)
	require.Contains(t, html, "RANKING")
	require.Contains(t, html, "【1位】バターサンド")
	require.Contains(t, html, "MM-0410771005508")
	// product boxes for the non-ranking section
	require.Contains(t, html, "item-box-subtitle")
	require.Contains(t, html, "MM-0410771005511")
	require.Contains(t, html, "更新")

	tagBalance(t, html)
}
