package entity

import (
	"strconv"
	"strings"
	"time"
)

// DeleteNotice asks consumers to retract a previously published story.
type DeleteNotice struct {
	Product   *string
	DocDate   *time.Time
	Seq       *int
	Publisher *string
	Reason    *string
}

// Key returns the identity of the story to retract.
func (n DeleteNotice) Key() (StoryKey, error) {
	return NewStoryKey(n.Publisher, n.Product, n.DocDate, n.Seq)
}

// TextChange is a replacement body: plain text plus its markup.
type TextChange struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// Field names a part of a story a Modification can replace.
type Field string

const (
	FieldMetadata    Field = "mdata"
	FieldHeadline    Field = "headline"
	FieldText        Field = "text"
	FieldUrgency     Field = "urgency"
	FieldPressCutout Field = "press_cutout"
	FieldSummary     Field = "summary"
)

// Modification is one modify-replace patch against a published story.
type Modification struct {
	Publisher *string
	DocDate   *time.Time
	Product   *string
	Seq       *int

	// Path is the replace target as written in the feed.
	Path *string

	Metadata    *Coding
	Headline    *string
	Text        *TextChange
	Summary     *TextChange
	PressCutout *string
	Urgency     *string
}

// Key returns the identity of the story being patched.
func (m Modification) Key() (StoryKey, error) {
	return NewStoryKey(m.Publisher, m.Product, m.DocDate, m.Seq)
}

// FieldsToModify lists the present replacement fields in a fixed order:
// metadata, headline, text, urgency, press cutout, summary.
func (m Modification) FieldsToModify() []Field {
	fields := make([]Field, 0, 6)
	if m.Metadata != nil {
		fields = append(fields, FieldMetadata)
	}
	if m.Headline != nil {
		fields = append(fields, FieldHeadline)
	}
	if m.Text != nil {
		fields = append(fields, FieldText)
	}
	if m.Urgency != nil {
		fields = append(fields, FieldUrgency)
	}
	if m.PressCutout != nil {
		fields = append(fields, FieldPressCutout)
	}
	if m.Summary != nil {
		fields = append(fields, FieldSummary)
	}
	return fields
}

// UrgencyLevel reads the replacement urgency. ok is false when the patch
// does not carry one.
func (m Modification) UrgencyLevel() (level int, ok bool) {
	if m.Urgency == nil {
		return 0, false
	}
	return ParseUrgency(*m.Urgency), true
}

// ParseUrgency collapses whitespace runs before reading the number, so
// " 1 " is 1 and anything unreadable is 0.
func ParseUrgency(s string) int {
	i, err := strconv.Atoi(strings.Join(strings.Fields(s), " "))
	if err != nil {
		return 0
	}
	return i
}
