// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// SectionType identifies one of the fixed content-block kinds a careers
// page is assembled from. The set is closed; a section's type is immutable
// after creation.
type SectionType string

// Section types
const (
	SectionTypeHero      SectionType = "hero"
	SectionTypeAbout     SectionType = "about"
	SectionTypeValues    SectionType = "values"
	SectionTypeBenefits  SectionType = "benefits"
	SectionTypeVideo     SectionType = "video"
	SectionTypeLocations SectionType = "locations"
	SectionTypeJobList   SectionType = "job_list"
)

// ValidSectionTypes lists all known section types.
var ValidSectionTypes = []SectionType{
	SectionTypeHero,
	SectionTypeAbout,
	SectionTypeValues,
	SectionTypeBenefits,
	SectionTypeVideo,
	SectionTypeLocations,
	SectionTypeJobList,
}

// IsValidSectionType reports whether t is a known section type.
func IsValidSectionType(t SectionType) bool {
	for _, v := range ValidSectionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Section represents one typed content block of a careers page. The draft
// triple (Data, Position, Enabled) is what editors work on; the published
// triple is the last snapshot promoted by a Publish. A section that has
// never survived a Publish has a nil PublishedData, and the other two
// published fields are null with it: the snapshot is all-or-nothing.
type Section struct {
	ID                string          `json:"id"`
	PageID            string          `json:"page_id"`
	Type              SectionType     `json:"type"`
	Position          int64           `json:"position"`
	Enabled           bool            `json:"enabled"`
	Data              json.RawMessage `json:"data"`
	PublishedData     json.RawMessage `json:"published_data,omitempty"`
	PublishedPosition sql.NullInt64   `json:"-"`
	PublishedEnabled  sql.NullBool    `json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// HasSnapshot reports whether the section has survived at least one
// Publish. A single null check decides this: the published triple is
// written together or not at all.
func (s *Section) HasSnapshot() bool {
	return s.PublishedData != nil
}

// fieldKind describes how a payload field is validated.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldRichText
	fieldBool
	fieldItemList
)

// sectionSchema describes the payload shape of one section type.
type sectionSchema struct {
	required map[string]fieldKind
	optional map[string]fieldKind

	// Item field specs for fieldItemList fields. Every section type has at
	// most one list field, so one item schema per type is enough.
	itemRequired []string
	itemOptional []string
}

// richTextPolicy strips script tags, event handlers and other dangerous
// markup from user-supplied rich text while keeping common formatting.
var richTextPolicy = bluemonday.UGCPolicy()

// sectionSchemas is the closed registry of payload schemas by section type.
var sectionSchemas = map[SectionType]sectionSchema{
	SectionTypeHero: {
		required: map[string]fieldKind{"title": fieldText},
		optional: map[string]fieldKind{"subtitle": fieldText, "image_url": fieldText},
	},
	SectionTypeAbout: {
		required: map[string]fieldKind{"body": fieldRichText},
		optional: map[string]fieldKind{"heading": fieldText},
	},
	SectionTypeValues: {
		required:     map[string]fieldKind{"items": fieldItemList},
		optional:     map[string]fieldKind{"heading": fieldText},
		itemRequired: []string{"title"},
		itemOptional: []string{"description"},
	},
	SectionTypeBenefits: {
		required:     map[string]fieldKind{"items": fieldItemList},
		optional:     map[string]fieldKind{"heading": fieldText},
		itemRequired: []string{"title"},
		itemOptional: []string{"description", "icon"},
	},
	SectionTypeVideo: {
		required: map[string]fieldKind{"url": fieldText},
		optional: map[string]fieldKind{"caption": fieldText, "autoplay": fieldBool},
	},
	SectionTypeLocations: {
		required:     map[string]fieldKind{"items": fieldItemList},
		optional:     map[string]fieldKind{"heading": fieldText},
		itemRequired: []string{"name"},
		itemOptional: []string{"address", "map_url"},
	},
	SectionTypeJobList: {
		required: map[string]fieldKind{},
		optional: map[string]fieldKind{"heading": fieldText, "group_by_department": fieldBool},
	},
}

// ValidateSectionData validates raw payload data against the schema for the
// given section type and returns the canonical payload to persist. Rich
// text fields are sanitized in the returned copy. On failure the returned
// *ValidationError lists every offending field.
func ValidateSectionData(t SectionType, raw json.RawMessage) (json.RawMessage, *ValidationError) {
	verr := NewValidationError()

	schema, ok := sectionSchemas[t]
	if !ok {
		verr.Add("type", fmt.Sprintf("unknown section type %q", t))
		return nil, verr
	}

	var payload map[string]any
	if len(raw) == 0 {
		payload = make(map[string]any)
	} else if err := json.Unmarshal(raw, &payload); err != nil {
		verr.Add("data", "must be a JSON object")
		return nil, verr
	}

	// Reject fields the schema does not know about.
	for field := range payload {
		if _, ok := schema.required[field]; ok {
			continue
		}
		if _, ok := schema.optional[field]; ok {
			continue
		}
		verr.Add(field, "unknown field")
	}

	for field, kind := range schema.required {
		value, present := payload[field]
		if !present {
			verr.Add(field, "required")
			continue
		}
		validateField(&schema, field, kind, value, true, payload, verr)
	}

	for field, kind := range schema.optional {
		value, present := payload[field]
		if !present {
			continue
		}
		validateField(&schema, field, kind, value, false, payload, verr)
	}

	if verr.HasErrors() {
		return nil, verr
	}

	canonical, err := json.Marshal(payload)
	if err != nil {
		verr.Add("data", "cannot be encoded")
		return nil, verr
	}
	return canonical, nil
}

// validateField checks a single payload field and normalizes it in place.
func validateField(schema *sectionSchema, field string, kind fieldKind, value any, required bool, payload map[string]any, verr *ValidationError) {
	switch kind {
	case fieldText:
		s, ok := value.(string)
		if !ok {
			verr.Add(field, "must be a string")
			return
		}
		if required && s == "" {
			verr.Add(field, "required")
		}

	case fieldRichText:
		s, ok := value.(string)
		if !ok {
			verr.Add(field, "must be a string")
			return
		}
		if required && s == "" {
			verr.Add(field, "required")
			return
		}
		payload[field] = richTextPolicy.Sanitize(s)

	case fieldBool:
		if _, ok := value.(bool); !ok {
			verr.Add(field, "must be a boolean")
		}

	case fieldItemList:
		items, ok := value.([]any)
		if !ok {
			verr.Add(field, "must be a list")
			return
		}
		if required && len(items) == 0 {
			verr.Add(field, "must not be empty")
			return
		}
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				verr.Add(fmt.Sprintf("%s[%d]", field, i), "must be an object")
				continue
			}
			validateItem(schema, field, i, obj, verr)
		}
	}
}

// validateItem checks one entry of a list field against the item schema.
func validateItem(schema *sectionSchema, field string, index int, obj map[string]any, verr *ValidationError) {
	known := make(map[string]bool, len(schema.itemRequired)+len(schema.itemOptional))
	for _, f := range schema.itemRequired {
		known[f] = true
	}
	for _, f := range schema.itemOptional {
		known[f] = true
	}

	for key := range obj {
		if !known[key] {
			verr.Add(fmt.Sprintf("%s[%d].%s", field, index, key), "unknown field")
		}
	}

	for _, f := range schema.itemRequired {
		s, ok := obj[f].(string)
		if !ok || s == "" {
			verr.Add(fmt.Sprintf("%s[%d].%s", field, index, f), "required")
		}
	}

	for _, f := range schema.itemOptional {
		if v, present := obj[f]; present {
			if _, ok := v.(string); !ok {
				verr.Add(fmt.Sprintf("%s[%d].%s", field, index, f), "must be a string")
			}
		}
	}
}
