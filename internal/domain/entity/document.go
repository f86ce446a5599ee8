// Package entity defines the parsed DJNML data model: the story document,
// its coding lists, and the administrative delete and modify notices.
//
// Optional scalars are pointers; nil means the value was absent or could not
// be extracted. Numeric fields that the feed always carries default to 0.
package entity

import "time"

// Envelope holds the transmission attributes of the root doc element.
type Envelope struct {
	Size             int
	MD5              *string
	SysID            *string
	Destination      *string
	DistID           *string
	TransmissionDate *time.Time
}

// Routing holds the attributes of the djnml element.
type Routing struct {
	Publisher *string
	DocDate   *time.Time
	Product   *string
	Seq       int
	Lang      *string
}

// Attribution holds the djn-newswires source attributes.
type Attribution struct {
	NewsSource *string
	Origin     *string
	ServiceID  *string
}

// Metadata holds the djn-mdata attributes.
type Metadata struct {
	Brand           *string
	TempPerm        *string
	Retention       *string
	Hot             *string
	OriginalSource  *string
	AccessionNumber *string
	PageCitation    *string
	DisplayDate     *time.Time
}

// Copyright holds the head copyright element.
type Copyright struct {
	Year   int
	Holder *string
}

// CompanyBlock is the company contact block found in press release text.
// It is either fully populated or absent.
type CompanyBlock struct {
	Name    string
	Address string
	Zip     string
	City    string
}

// Document is the result of parsing one DJNML file.
type Document struct {
	Envelope
	Routing
	Attribution
	Metadata
	Copyright
	Coding

	Urgency int

	Headline      *string
	HeadlineBrand *string
	Text          *string
	HTML          *string

	Website  *string
	Company  *CompanyBlock
	Language *string

	Deletes       []DeleteNotice
	Modifications []Modification
}

// HasContent reports whether a body text was extracted.
func (d *Document) HasContent() bool {
	return d.Text != nil
}

// Key returns the story identity carried by the djnml element.
func (d *Document) Key() (StoryKey, error) {
	seq := d.Seq
	return NewStoryKey(d.Publisher, d.Routing.Product, d.DocDate, &seq)
}

// IsAdministrative reports whether the document only carries notices.
func (d *Document) IsAdministrative() bool {
	return !d.HasContent() && (len(d.Deletes) > 0 || len(d.Modifications) > 0)
}
