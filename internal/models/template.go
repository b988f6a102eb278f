// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IntroItem is one emoji-prefixed line in a template's intro block.
type IntroItem struct {
	Emoji string `json:"emoji"`
	Text  string `json:"text"`
}

// ButtonType identifies the contact channel a footer button opens.
type ButtonType string

const (
	ButtonKakao     ButtonType = "kakao"
	ButtonPhone     ButtonType = "phone"
	ButtonBlog      ButtonType = "blog"
	ButtonInstagram ButtonType = "instagram"
)

// Footer2Button is one contact button in a template's secondary footer.
type Footer2Button struct {
	Type  ButtonType `json:"type"`
	Label string     `json:"label"`
	URL   string     `json:"url"`
}

// IntroItems is a JSONB-backed ordered list of intro lines.
type IntroItems []IntroItem

// StringList is a JSONB-backed ordered list of strings (checklists, galleries).
type StringList []string

// Footer2Buttons is a JSONB-backed ordered list of footer contact buttons.
type Footer2Buttons []Footer2Button

// decodeJSONColumn decodes a JSONB column value into dst. It tolerates both
// the plain encoded form and a double-encoded JSON string — legacy rows were
// written by a client that stringified arrays before insert, so either shape
// can come back. NULL columns leave dst untouched.
func decodeJSONColumn(src, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("decode json column: unsupported type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, dst); err == nil {
		return nil
	}

	// The column may hold a JSON string wrapping the real document.
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	if inner == "" {
		return nil
	}
	return json.Unmarshal([]byte(inner), dst)
}

// encodeJSONColumn marshals a list for storage, mapping nil to SQL NULL so
// an absent list round-trips as absent.
func encodeJSONColumn(v any, isNil bool) (driver.Value, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (l *IntroItems) Scan(src any) error     { return decodeJSONColumn(src, l) }
func (l *StringList) Scan(src any) error     { return decodeJSONColumn(src, l) }
func (l *Footer2Buttons) Scan(src any) error { return decodeJSONColumn(src, l) }

func (l IntroItems) Value() (driver.Value, error)     { return encodeJSONColumn(l, l == nil) }
func (l StringList) Value() (driver.Value, error)     { return encodeJSONColumn(l, l == nil) }
func (l Footer2Buttons) Value() (driver.Value, error) { return encodeJSONColumn(l, l == nil) }

// ProfileTemplate is an admin-authored, slug-addressed landing page
// describing one person's offering. Sections and footer items are owned
// rows loaded alongside the template for page rendering.
type ProfileTemplate struct {
	ID                   uuid.UUID      `json:"id"`
	Slug                 string         `json:"slug"`
	Name                 string         `json:"name"`
	Description          *string        `json:"description"`
	HeroImage            *string        `json:"heroImage"`
	HeroImagePosition    *string        `json:"heroImagePosition"`
	KakaoLink            *string        `json:"kakaoLink"`
	PhoneLink            *string        `json:"phoneLink"`
	IntroMessage         *string        `json:"introMessage"`
	IntroItems           IntroItems     `json:"introItems"`
	PhoneNumber          *string        `json:"phoneNumber"`
	FooterText           *string        `json:"footerText"`
	FooterChecklistItems StringList     `json:"footerChecklistItems"`
	Footer2Title         *string        `json:"footer2Title"`
	Footer2Buttons       Footer2Buttons `json:"footer2Buttons"`
	SectionTitle         *string        `json:"sectionTitle"` // trusted HTML heading
	Verified             bool           `json:"verified"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`

	Sections    []TemplateSection    `json:"sections,omitempty"`
	FooterItems []TemplateFooterItem `json:"footerItems,omitempty"`
}

// TemplateSection is a titled group of short text chips within a template.
type TemplateSection struct {
	ID         uuid.UUID             `json:"id"`
	TemplateID uuid.UUID             `json:"templateId"`
	Title      string                `json:"title"`
	OrderIndex int                   `json:"orderIndex"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
	Items      []TemplateSectionItem `json:"items,omitempty"`
}

// TemplateSectionItem is a single text chip inside a section.
type TemplateSectionItem struct {
	ID         uuid.UUID `json:"id"`
	SectionID  uuid.UUID `json:"sectionId"`
	Text       string    `json:"text"`
	OrderIndex int       `json:"orderIndex"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TemplateFooterItem is a richer content block with an optional icon and an
// ordered, swipeable image gallery.
type TemplateFooterItem struct {
	ID          uuid.UUID  `json:"id"`
	TemplateID  uuid.UUID  `json:"templateId"`
	Emoji       *string    `json:"emoji"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Image       *string    `json:"image"`
	Images      StringList `json:"images"`
	OrderIndex  int        `json:"orderIndex"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MoveDirection selects which neighbor a gallery image swaps with.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// MoveImage swaps the gallery image at index with its immediate neighbor in
// the given direction. Moving the first image up or the last image down is a
// no-op. Returns true if the gallery changed.
func (f *TemplateFooterItem) MoveImage(index int, dir MoveDirection) bool {
	if index < 0 || index >= len(f.Images) {
		return false
	}
	switch dir {
	case MoveUp:
		if index == 0 {
			return false
		}
		f.Images[index-1], f.Images[index] = f.Images[index], f.Images[index-1]
	case MoveDown:
		if index == len(f.Images)-1 {
			return false
		}
		f.Images[index], f.Images[index+1] = f.Images[index+1], f.Images[index]
	default:
		return false
	}
	return true
}
