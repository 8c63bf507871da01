package yahoo

import (
	"fmt"
	"strings"
	"yahoomovie/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseDetail parses the supplemental fields of a movie's detail page.
func ParseDetail(doc *goquery.Document) (MovieDetail, error) {
	intro, err := htmlutil.FromDocument(doc).Find("div.movie_intro_info_r").Require()
	if err != nil {
		return MovieDetail{}, err
	}

	runtime, err := labeledSpan(intro, labelRuntime)
	if err != nil {
		return MovieDetail{}, err
	}
	distributor, err := labeledSpan(intro, labelDistributor)
	if err != nil {
		return MovieDetail{}, err
	}
	imdb, err := labeledSpan(intro, labelImdb)
	if err != nil {
		imdb = ImdbUnavailable
	}

	directorBlock, err := intro.Find("span.movie_intro_list").Require()
	if err != nil {
		return MovieDetail{}, err
	}
	director := parseCredit(directorBlock, labelDirector, "")
	if len(director.Names) > 1 {
		director.Names = director.Names[:1]
	}

	castBlock, err := directorBlock.NextSibling("span").Require()
	if err != nil {
		return MovieDetail{}, fmt.Errorf("cast: %w", err)
	}
	cast := parseCredit(castBlock, labelCast, castSeparator)

	return MovieDetail{
		Runtime:     runtime,
		Distributor: distributor,
		ImdbScore:   imdb,
		Director:    director,
		Cast:        cast,
	}, nil
}

func labeledSpan(intro htmlutil.Node, label string) (string, error) {
	span, err := intro.FindContaining("span", label).Require()
	if err != nil {
		return "", err
	}
	return htmlutil.StripLabel(span.Text(), label), nil
}

// parseCredit reads a credit block that either links every person or lists
// them as plain text after `label`. Anchors win when both are present.
// An empty `sep` keeps the plain text as a single name.
func parseCredit(block htmlutil.Node, label, sep string) Credit {
	var linked []string
	for _, a := range block.FindAll("a") {
		name := htmlutil.CleanText(a.Text())
		if name != "" {
			linked = append(linked, name)
		}
	}
	if len(linked) > 0 {
		return Credit{Shape: CreditLinked, Names: linked}
	}

	text := htmlutil.StripLabel(block.Text(), label)
	if text == "" {
		return Credit{Shape: CreditLabeledText}
	}
	if sep == "" {
		return Credit{Shape: CreditLabeledText, Names: []string{text}}
	}
	var names []string
	for _, name := range strings.Split(text, sep) {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return Credit{Shape: CreditLabeledText, Names: names}
}
