package parse

import (
	"regexp"
	"strings"

	"djnml-feed/internal/domain/entity"
)

// Press releases close with a contact footer. These patterns are
// best-effort and only ever run against the plain body text.
var (
	websitePattern = regexp.MustCompile(`(?m)Internet:\s+(.+?)$`)
	companyPattern = regexp.MustCompile(`Company:\s+(\S.+?)\s*\n+\s+(\b.+?)\n+\s+(\d+)\s+(\b.+?)\n+`)
)

// ExtractWebsite returns the trimmed value of the first "Internet:" line.
func ExtractWebsite(text string) *string {
	m := websitePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	site := strings.TrimSpace(m[1])
	if site == "" {
		return nil
	}
	return &site
}

// ExtractCompany returns the "Company:" block as name, street address,
// postal code and city. All four parts match or none is returned.
func ExtractCompany(text string) *entity.CompanyBlock {
	m := companyPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return &entity.CompanyBlock{
		Name:    strings.TrimSpace(m[1]),
		Address: strings.TrimSpace(m[2]),
		Zip:     strings.TrimSpace(m[3]),
		City:    strings.TrimSpace(m[4]),
	}
}
