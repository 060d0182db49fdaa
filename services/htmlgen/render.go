package htmlgen

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"searchlight-backend/lib/timezone"
)

// the storefront layout breaks long titles onto a second line before
// the trailing "人気の...特集" phrase.
func splitTitle(title string) (string, string) {
	if idx := strings.Index(title, "｜"); idx >= 0 {
		return title[:idx], title[idx+len("｜"):]
	}
	if strings.HasSuffix(title, "特集") {
		if idx := strings.LastIndex(title, "人気の"); idx > 0 {
			return title[:idx], title[idx:]
		}
	}
	return title, ""
}

type renderData struct {
	TitlePart1  string
	TitlePart2  string
	Date        string
	DateDisplay string
	Article     *Article
}

var articleTemplate = template.Must(template.New("article").Funcs(template.FuncMap{
	"productID": ExtractProductID,
}).Parse(`<link rel="stylesheet" type="text/css" href="assets/css/c_article.css?$staticlink$">
<script src="assets/js/jquery.min.js?$staticlink$"></script>
<div class="breadcrumb">
  <ol>
    <li><a href="$url('Home-Show')$">HOME</a></li>
    <li>{{.Article.Title}}</li>
  </ol>
</div>
<section class="article_c article">

  <div class="article_title">
    <h1 class="article_title_txt">{{.TitlePart1}}{{if .TitlePart2}}<br class="pc">{{.TitlePart2}}{{end}}</h1>
  </div>

  <div class="article_container">
    <div class="article_container_box">

      <div class="day">
        <p class="text">
          <time datetime="{{.Date}}">{{.DateDisplay}}</time>
        </p>
      </div>

      <p class="article_container_box_txt mv">
        {{.Article.Description}}
      </p>

      <div class="article_container_box_index">
        <p class="article_container_box_index_title">INDEX</p>
        <ul class="article_container_box_index_list">
{{- range .Article.Sections}}
          <li>
            <a href="#{{.ID}}">{{.Title}}</a>
          </li>
{{- end}}
        </ul>
      </div>
    </div>
  </div>

{{- range .Article.Sections}}

  <h2 class="section-title" id="{{.ID}}">{{.Title}}</h2>
  <p class="text">
    {{.Description}}
  </p>
{{- if .HasRanking}}

  <div class="slider-container">
    <h3 class="slider-title">
      <span class="sub"></span>
      <span class="main">
        <span class="text">RANKING</span>
      </span>
    </h3>
    <div class="box-slider">
      <ul class="slider slider-type11">
{{- range .H3Items}}
{{- if and .IsRanking .Ranking}}
        <li class="slide">
          <a href="{{.Ranking.URL}}">
            <div class="img">
              <img alt="{{.Ranking.Alt}}" data-echo="assets/images/s_article/{{productID .Ranking.URL}}.jpg?$staticlink$" src="assets/images/top/img_dummy.gif?$staticlink$">
            </div>
            <div class="texts">
              <p class="title">{{.Title}}</p>
              <p class="price">
                $include('Product-GetIncTaxPrice', 'pid', '{{productID .Ranking.URL}}')$
              </p>
              <div class="tags">
                $include('Product-GetProductTags', 'pid', '{{productID .Ranking.URL}}')$
              </div>
            </div>
          </a>
        </li>
{{- end}}
{{- end}}
      </ul>
      <div class="slider-dots gray"></div>
    </div>
  </div>
{{- else}}
{{- range .H3Items}}

  <h3 class="section-subtitle">{{.Title}}</h3>
  <p class="text">{{.Description}}</p>
{{- range .H4Items}}
{{- if .Products}}
  <div class="item-box">
    <div class="box">
      <h4 class="item-box-subtitle">{{.Title}}</h4>
      <p class="text">{{.Description}}</p>
      <div class="img-box">
        <img src="assets/images/top/img_dummy.gif?$staticlink$" data-echo="assets/images/s_article/{{productID (index .Products 0).URL}}.jpg?$staticlink$" alt="{{(index .Products 0).Alt}}" class="img">
      </div>
      <div class="link">
{{- range .Products}}
        <a href="{{.URL}}" class="item">
          <span class="text">{{.Span}}</span>
          <img src="assets/images/s_article/ico_circle_arrow.svg?$staticlink$" alt="詳しくはこちら" class="img">
        </a>
        <p class="price">
          $include('Product-GetIncTaxPrice', 'pid', '{{productID .URL}}')$
        </p>
        <div class="tags">
          $include('Product-GetProductTags', 'pid', '{{productID .URL}}')$
        </div>
{{- end}}
      </div>
    </div>
  </div>
{{- else}}
  <h4 class="item-box-subtitle">{{.Title}}</h4>
  <p class="text">{{.Description}}</p>
{{- end}}
{{- end}}
{{- end}}
{{- end}}

  <hr class="gray s_article">
{{- end}}
</section>
`))

// Render writes the storefront html document for a parsed article.
func Render(w io.Writer, article *Article) error {
	now := timezone.Now()
	part1, part2 := splitTitle(article.Title)
	return articleTemplate.Execute(w, renderData{
		TitlePart1:  part1,
		TitlePart2:  part2,
		Date:        now.Format("2006-01-02T15:04"),
		DateDisplay: fmt.Sprintf("%d年%d月%d日 更新", now.Year(), int(now.Month()), now.Day()),
		Article:     article,
	})
}
