package fragment

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// hashStrategies are tried in order of specificity; the first match wins.
// The marketplace rotates the token and has moved it between a query-string
// assignment, a JSON blob, and the apiUrl declaration over time, so all
// known shapes stay in the list.
var hashStrategies = []*regexp.Regexp{
	regexp.MustCompile(`hash=([a-fA-F0-9]{64})`),
	regexp.MustCompile(`"hash"\s*:\s*"([a-fA-F0-9]{64})"`),
	regexp.MustCompile(`apiUrl[^;]*?hash=([a-fA-F0-9]+)`),
}

// extractHash scans the landing page for the rotating API token. Inline
// scripts mentioning apiUrl are searched first; if the markup parse fails or
// no script matches, the raw document is scanned as a fallback.
func extractHash(page []byte) (string, bool) {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page)); err == nil {
		var found string
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if !strings.Contains(text, "apiUrl") && !strings.Contains(text, "hash") {
				return true
			}
			for _, re := range hashStrategies {
				if m := re.FindStringSubmatch(text); m != nil {
					found = m[1]
					return false
				}
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}

	for _, re := range hashStrategies {
		if m := re.FindSubmatch(page); m != nil {
			return string(m[1]), true
		}
	}
	return "", false
}

// extractValues pulls the ordered tm-value cells out of the HTML fragment the
// auction API embeds in its JSON envelope. Position is the only contract:
// [0] display tag, [1] price, [2] listing status.
func extractValues(fragmentHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragmentHTML))
	if err != nil {
		return nil
	}
	var values []string
	doc.Find("div.tm-value").Each(func(_ int, s *goquery.Selection) {
		values = append(values, strings.TrimSpace(s.Text()))
	})
	return values
}
