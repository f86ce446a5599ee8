// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"djnml-feed/internal/domain/entity"

	"github.com/lib/pq"
)

// StoryUpdateBuilder builds the SET clause of a modification UPDATE.
// Only the fields a patch carries are written; placeholders are numbered
// from 1 so the caller appends the key arguments after them.
type StoryUpdateBuilder struct{}

// NewStoryUpdateBuilder creates a new builder instance.
func NewStoryUpdateBuilder() *StoryUpdateBuilder {
	return &StoryUpdateBuilder{}
}

// BuildSetClause returns "col = $1, ..., updated_at = now()" and its
// arguments. The clause always touches updated_at, so a patch without
// fields still reports whether the story exists.
func (b *StoryUpdateBuilder) BuildSetClause(mod entity.Modification) (clause string, args []interface{}, err error) {
	var sets []string
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	for _, field := range mod.FieldsToModify() {
		switch field {
		case entity.FieldMetadata:
			coding, err := json.Marshal(mod.Metadata)
			if err != nil {
				return "", nil, fmt.Errorf("marshal coding: %w", err)
			}
			add("coding", string(coding))
			add("subject_codes", pq.Array(mod.Metadata.SubjectSymbols()))
			add("company_codes", pq.Array(nonNil(mod.Metadata.CompanyCodes)))
		case entity.FieldHeadline:
			add("headline", *mod.Headline)
		case entity.FieldText:
			add("body_text", mod.Text.Text)
			add("body_html", mod.Text.HTML)
		case entity.FieldUrgency:
			level, _ := mod.UrgencyLevel()
			add("urgency", level)
		case entity.FieldPressCutout:
			add("press_cutout", *mod.PressCutout)
		case entity.FieldSummary:
			add("summary_text", mod.Summary.Text)
			add("summary_html", mod.Summary.HTML)
		}
	}
	sets = append(sets, "updated_at = now()")

	return strings.Join(sets, ", "), args, nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
