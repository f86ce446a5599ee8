package parse

import (
	"testing"

	"djnml-feed/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

const contactFooter = `Die Vossloh AG hat im ersten Quartal ihren Umsatz gesteigert.
Kontakt:
Company:    Vossloh AG
            Vosslohstr. 4
            58791  Werdohl
            Deutschland
Internet:   www.vossloh.com
Ende der Mitteilung`

func TestExtractWebsite(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *string
	}{
		{name: "footer", text: contactFooter, want: strPtr("www.vossloh.com")},
		{name: "trailing spaces", text: "Internet: http://example.com   \nmore", want: strPtr("http://example.com")},
		{name: "last line", text: "Internet:  example.org", want: strPtr("example.org")},
		{name: "no label", text: "Visit www.example.com for more", want: nil},
		{name: "label without value", text: "Internet:\n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractWebsite(tt.text))
		})
	}
}

func TestExtractCompany(t *testing.T) {
	got := ExtractCompany(contactFooter)
	assert.Equal(t, &entity.CompanyBlock{
		Name:    "Vossloh AG",
		Address: "Vosslohstr. 4",
		Zip:     "58791",
		City:    "Werdohl",
	}, got)
}

func TestExtractCompany_AllOrNothing(t *testing.T) {
	tests := map[string]string{
		"no zip line":   "Company:    Vossloh AG\n            Vosslohstr. 4\n",
		"zip not digit": "Company:    Vossloh AG\n            Vosslohstr. 4\n            D-58791 Werdohl\n",
		"no newline":    "Company: Vossloh AG Vosslohstr. 4 58791 Werdohl",
		"empty":         "",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, ExtractCompany(text))
		})
	}
}

func TestParseUrgency(t *testing.T) {
	tests := map[string]int{
		"0":      0,
		" 1 ":    1,
		"\n 3\n": 3,
		"high":   0,
		"1 2":    0,
		"":       0,
		"-1":     -1,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseUrgency(in), "input %q", in)
	}
}

func strPtr(s string) *string { return &s }
