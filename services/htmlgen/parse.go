package htmlgen

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Product is one linked catalog item inside an article row.
type Product struct {
	URL  string
	Alt  string
	Span string
}

// H4Item is a product box (up to two linked products) or a bare
// sub-subheading when no product url is present.
type H4Item struct {
	Title       string
	Description string
	Products    []Product
}

// H3Item is a subheading. ranking items (【N位】 prefix) carry a single
// product and render into the section's ranking slider instead of the
// regular flow.
type H3Item struct {
	Title       string
	Description string
	IsRanking   bool
	Ranking     *Product
	H4Items     []H4Item
}

// Section is one H2 block with an anchor id collected into the INDEX.
type Section struct {
	ID          string
	Title       string
	Description string
	H3Items     []H3Item
}

// HasRanking reports whether the section renders as a ranking slider.
func (s Section) HasRanking() bool {
	for _, h3 := range s.H3Items {
		if h3.IsRanking {
			return true
		}
	}
	return false
}

// Article is the parsed form of a tag-typed article spreadsheet.
type Article struct {
	Title       string
	Description string
	Sections    []Section
}

// csv column layout: tag, heading text, paragraph text, product url 1,
// alt 1, span 1, product url 2, span 2
const (
	colTag = iota
	colText
	colParagraph
	colURL1
	colAlt1
	colSpan1
	colURL2
	colSpan2
	columnCount
)

func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	v := strings.TrimSpace(record[idx])
	// spreadsheet exports leave "nan" in empty cells
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

func fallback(v, alt string) string {
	if v == "" {
		return alt
	}
	return v
}

var rankingRegex = regexp.MustCompile(`^【\d+位】`)

// ParseCSV reads a tag-typed article spreadsheet. the first row is
// skipped when it looks like a header.
func ParseCSV(r io.Reader) (*Article, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	article := &Article{}
	var section *Section
	var h3 *H3Item

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse article csv: %w", err)
		}

		tag := cell(record, colTag)
		if first {
			first = false
			if tag == "タグ" || strings.EqualFold(tag, "tag") {
				continue
			}
		}

		text := cell(record, colText)
		paragraph := cell(record, colParagraph)

		switch tag {
		case "title":
			article.Title = text
		case "description":
			article.Description = text
		case "H2":
			if section != nil {
				article.Sections = append(article.Sections, *section)
			}
			h3 = nil
			section = &Section{
				ID:          fmt.Sprintf("article_%02d", len(article.Sections)+1),
				Title:       text,
				Description: paragraph,
			}
		case "H3":
			if section == nil {
				return nil, fmt.Errorf("H3 row %q before any H2 section", text)
			}
			item := H3Item{
				Title:       text,
				Description: paragraph,
				IsRanking:   rankingRegex.MatchString(text),
			}
			if item.IsRanking {
				url1 := cell(record, colURL1)
				if url1 != "" {
					alt1 := cell(record, colAlt1)
					item.Ranking = &Product{
						URL:  url1,
						Alt:  alt1,
						Span: fallback(cell(record, colSpan1), alt1),
					}
				}
			}
			section.H3Items = append(section.H3Items, item)
			h3 = &section.H3Items[len(section.H3Items)-1]
		case "H4":
			if h3 == nil {
				return nil, fmt.Errorf("H4 row %q before any H3 heading", text)
			}
			item := H4Item{
				Title:       text,
				Description: paragraph,
			}
			alt1 := cell(record, colAlt1)
			if url1 := cell(record, colURL1); url1 != "" {
				item.Products = append(item.Products, Product{
					URL:  url1,
					Alt:  alt1,
					Span: fallback(cell(record, colSpan1), alt1),
				})
			}
			if url2 := cell(record, colURL2); url2 != "" {
				// the alt column is shared between both products
				item.Products = append(item.Products, Product{
					URL:  url2,
					Alt:  alt1,
					Span: fallback(cell(record, colSpan2), alt1),
				})
			}
			h3.H4Items = append(h3.H4Items, item)
		}
	}
	if section != nil {
		article.Sections = append(article.Sections, *section)
	}

	if article.Title == "" {
		return nil, fmt.Errorf("article csv has no title row")
	}
	return article, nil
}

var productIDRegex = regexp.MustCompile(`MM-[\w-]+`)

// ExtractProductID pulls the catalog code out of a product url for
// image paths and price includes. unknown urls map to "dummy".
func ExtractProductID(url string) string {
	match := productIDRegex.FindString(url)
	if match == "" {
		return "dummy"
	}
	return match
}
