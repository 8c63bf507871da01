package yahoo

import (
	"strings"
	"yahoomovie/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var phoneReplacer = strings.NewReplacer("(", "", ")", "-")

// NormalizePhone rewrites "(02)1234-5678" as "02-1234-5678".
func NormalizePhone(phone string) string {
	return phoneReplacer.Replace(strings.TrimSpace(phone))
}

// RegionOf derives the region of an address from its first two characters,
// writing the archaic "臺" as "台".
func RegionOf(address string) string {
	runes := []rune(strings.TrimSpace(address))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ReplaceAll(string(runes), "臺", "台")
}

// ParseTheater parses a theater's page.
func ParseTheater(doc *goquery.Document) (TheaterInfo, error) {
	list, err := htmlutil.FromDocument(doc).Find("div.theaterlist_area ul").Require()
	if err != nil {
		return TheaterInfo{}, err
	}

	address, err := list.FindContaining("li", labelAddress).Require()
	if err != nil {
		return TheaterInfo{}, err
	}
	phone, err := list.FindContaining("li", labelPhone).Require()
	if err != nil {
		return TheaterInfo{}, err
	}

	addressText := htmlutil.StripLabel(address.Text(), labelAddress)
	return TheaterInfo{
		Address: addressText,
		Phone:   NormalizePhone(htmlutil.StripLabel(phone.Text(), labelPhone)),
		Region:  RegionOf(addressText),
	}, nil
}
