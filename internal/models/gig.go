package models

import (
	"strings"
	"time"
)

type GigType string

const (
	GigService GigType = "service"
	GigRequest GigType = "request"
)

func (t GigType) Valid() bool { return t == GigService || t == GigRequest }

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

type CollaborationType string

const (
	CollabIndividual CollaborationType = "individual"
	CollabTeam       CollaborationType = "team"
)

func (c CollaborationType) Valid() bool { return c == CollabIndividual || c == CollabTeam }

// MinGigPrice is the lowest price a listing may ask.
const MinGigPrice = 50

// Gig is a listing: either a service offer or a help request.
type Gig struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	CategoryID        string            `json:"category_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Requirements      string            `json:"requirements,omitempty"`
	GigType           GigType           `json:"gig_type"`
	Price             int64             `json:"price"`
	DeliveryDays      int               `json:"delivery_days"`
	Rating            float64           `json:"rating"`
	TotalOrders       int               `json:"total_orders"`
	Tags              []string          `json:"tags"`
	IsActive          bool              `json:"is_active"`
	SkillLevel        SkillLevel        `json:"skill_level"`
	CollaborationType CollaborationType `json:"collaboration_type"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	Seller *UserSummary `json:"seller,omitempty"`
}

// DisplayRating is the rating as it should be shown: zero until the gig has
// completed orders.
func (g Gig) DisplayRating() float64 {
	if g.TotalOrders == 0 {
		return 0
	}
	return g.Rating
}

// GigInput is the owner-supplied part of a gig.
type GigInput struct {
	CategoryID        string            `json:"category_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Requirements      string            `json:"requirements"`
	GigType           GigType           `json:"gig_type"`
	Price             int64             `json:"price"`
	DeliveryDays      int               `json:"delivery_days"`
	Tags              []string          `json:"tags"`
	SkillLevel        SkillLevel        `json:"skill_level"`
	CollaborationType CollaborationType `json:"collaboration_type"`
}

// Normalize trims text fields, drops blank tags and fills enum defaults.
func (in *GigInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Requirements = strings.TrimSpace(in.Requirements)
	tags := in.Tags[:0]
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
	if in.SkillLevel == "" {
		in.SkillLevel = SkillBeginner
	}
	if in.CollaborationType == "" {
		in.CollaborationType = CollabIndividual
	}
}

// Problem returns a description of the first invalid field, or "".
func (in GigInput) Problem() string {
	switch {
	case in.Title == "":
		return "title is required"
	case in.Description == "":
		return "description is required"
	case in.CategoryID == "":
		return "category is required"
	case !in.GigType.Valid():
		return "gig_type must be service or request"
	case in.Price < MinGigPrice:
		return "minimum price is 50"
	case in.DeliveryDays < 1:
		return "delivery time must be at least 1 day"
	case len(in.Tags) == 0:
		return "at least one tag is required"
	case !in.SkillLevel.Valid():
		return "invalid skill_level"
	case !in.CollaborationType.Valid():
		return "invalid collaboration_type"
	}
	return ""
}

// GigPatch carries owner edits. Nil means unchanged.
type GigPatch struct {
	CategoryID        *string            `json:"category_id"`
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	Requirements      *string            `json:"requirements"`
	Price             *int64             `json:"price"`
	DeliveryDays      *int               `json:"delivery_days"`
	Tags              *[]string          `json:"tags"`
	SkillLevel        *SkillLevel        `json:"skill_level"`
	CollaborationType *CollaborationType `json:"collaboration_type"`
}

// Apply returns g with the patch applied, as a GigInput ready for validation.
func (p GigPatch) Apply(g Gig) GigInput {
	in := GigInput{
		CategoryID:        g.CategoryID,
		Title:             g.Title,
		Description:       g.Description,
		Requirements:      g.Requirements,
		GigType:           g.GigType,
		Price:             g.Price,
		DeliveryDays:      g.DeliveryDays,
		Tags:              append([]string(nil), g.Tags...),
		SkillLevel:        g.SkillLevel,
		CollaborationType: g.CollaborationType,
	}
	if p.CategoryID != nil {
		in.CategoryID = *p.CategoryID
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Requirements != nil {
		in.Requirements = *p.Requirements
	}
	if p.Price != nil {
		in.Price = *p.Price
	}
	if p.DeliveryDays != nil {
		in.DeliveryDays = *p.DeliveryDays
	}
	if p.Tags != nil {
		in.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.SkillLevel != nil {
		in.SkillLevel = *p.SkillLevel
	}
	if p.CollaborationType != nil {
		in.CollaborationType = *p.CollaborationType
	}
	return in
}
