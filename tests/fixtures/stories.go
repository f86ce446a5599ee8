// Package fixtures provides reusable DJNML documents for package tests.
// It keeps NML markup in one place so tests across packages build stories,
// delete notices and modify sections the same way.
package fixtures

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// StoryOptions configures a generated story document.
type StoryOptions struct {
	Publisher string
	Product   string
	DocDate   string
	Seq       int
	Lang      string

	Headline string
	// Paragraphs become <p> elements of the body text
	Paragraphs []string

	Urgency   string
	Companies []string
	Subjects  []string
	Geo       []string

	// Retracts adds a doc-delete notice per seq, same product and date
	Retracts []int
}

// DefaultStory returns options for a small English story.
func DefaultStory() StoryOptions {
	return StoryOptions{
		Publisher:  "DJN",
		Product:    "DN",
		DocDate:    "20080506",
		Seq:        785,
		Lang:       "en-us",
		Headline:   "Adidas 1Q Net Profit Rises, Confirms Outlook",
		Paragraphs: []string{"FRANKFURT (Dow Jones)--Adidas AG said Tuesday its first-quarter net profit rose."},
		Urgency:    "0",
		Companies:  []string{"ADDYY", "ADS.XE"},
		Subjects:   []string{"N/ERN", "N/DJN"},
		Geo:        []string{"R/EU", "R/GE"},
	}
}

// GenerateStory renders a complete story document.
//
// Example:
//
//	opts := fixtures.DefaultStory()
//	opts.Seq = 42
//	nml := fixtures.GenerateStory(opts)
func GenerateStory(opts StoryOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<doc msize="2048" md5="7abbf5047fee493e144efefbdf28c9f0" sysId="dcmn2p1" destination="AW" distId="AMD6" transmission-date="%sT053501Z">
  <djnml publisher="%s" docdate="%s" product="%s" seq="%d" lang="%s">
%s    <head>
      <docdata>
        <djn>
          <djn-newswires news-source="DJDN" origin="DJ" service-id="CO">
            <djn-urgency>%s</djn-urgency>
            <djn-mdata brand="DJ" temp-perm="P" retention="N" hot="N" original-source="T" accession-number="%s%06d" page-citation="" display-date="%sT0535Z">
              <djn-coding>
`, opts.DocDate, opts.Publisher, opts.DocDate, opts.Product, opts.Seq, opts.Lang, retractions(opts),
		html.EscapeString(opts.Urgency), opts.DocDate, opts.Seq, opts.DocDate)
	writeCodes(&b, "djn-company", opts.Companies)
	writeCodes(&b, "djn-subject", opts.Subjects)
	writeCodes(&b, "djn-geo", opts.Geo)
	fmt.Fprintf(&b, `              </djn-coding>
            </djn-mdata>
          </djn-newswires>
        </djn>
      </docdata>
    </head>
    <body>
      <headline>%s</headline>
      <text>`, html.EscapeString(opts.Headline))
	for _, p := range opts.Paragraphs {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(p))
	}
	b.WriteString(`</text>
    </body>
  </djnml>
</doc>
`)
	return b.String()
}

func retractions(opts StoryOptions) string {
	if len(opts.Retracts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("    <administration>\n")
	for _, seq := range opts.Retracts {
		fmt.Fprintf(&b, "      <doc-delete publisher=%q docdate=%q product=%q seq=\"%d\" reason=\"kill\"/>\n",
			opts.Publisher, opts.DocDate, opts.Product, seq)
	}
	b.WriteString("    </administration>\n")
	return b.String()
}

func writeCodes(b *strings.Builder, elem string, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	fmt.Fprintf(b, "                <%s>", elem)
	for _, s := range symbols {
		fmt.Fprintf(b, "<c>%s</c>", html.EscapeString(s))
	}
	fmt.Fprintf(b, "</%s>\n", elem)
}

// GenerateDeletes renders an administrative document retracting count
// stories of the given product, starting at firstSeq.
func GenerateDeletes(product, docDate string, firstSeq, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<doc msize="512" transmission-date="%sT235901Z">
  <djnml publisher="DJN" docdate="%s" product="%s" seq="%d">
    <administration>
`, docDate, docDate, product, firstSeq+count)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, `      <doc-delete product="%s" docdate="%s" seq="%d" publisher="DJN" reason="expire"/>
`, product, docDate, firstSeq+i)
	}
	b.WriteString(`    </administration>
  </djnml>
</doc>
`)
	return b.String()
}

// GenerateHeadlineModification renders a doc-modify section replacing the
// headline of the story identified by product, docDate and seq.
func GenerateHeadlineModification(product, docDate string, seq int, headline string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<doc msize="512" transmission-date="%sT141502Z">
  <djnml publisher="DJN" docdate="%s" product="%s" seq="%d">
    <administration>
      <doc-modify docdate="%s" product="%s" publisher="DJN" seq="%d">
        <modify-replace xpath="djnml/body/headline"><headline>%s</headline></modify-replace>
      </doc-modify>
    </administration>
  </djnml>
</doc>
`, docDate, docDate, product, seq+1, docDate, product, seq, html.EscapeString(headline))
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}
