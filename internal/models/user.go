package models

import "time"

// User is a marketplace member. Reputation, earnings and wallet balance are
// aggregates owned by the transaction engines.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	College         string    `json:"college"`
	Major           string    `json:"major"`
	Year            string    `json:"year"`
	City            string    `json:"city"`
	Bio             string    `json:"bio"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	Skills          []string  `json:"skills"`
	IsVerified      bool      `json:"is_verified"`
	ReputationScore int       `json:"reputation_score"`
	TotalEarnings   int64     `json:"total_earnings"`
	WalletBalance   int64     `json:"wallet_balance"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserSummary is the public slice of a user embedded in other payloads.
type UserSummary struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	College         string `json:"college"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	ReputationScore int    `json:"reputation_score"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		FullName:        u.FullName,
		College:         u.College,
		AvatarURL:       u.AvatarURL,
		ReputationScore: u.ReputationScore,
	}
}

// ProfilePatch carries the user-editable profile fields. Nil means unchanged.
type ProfilePatch struct {
	FullName  *string   `json:"full_name"`
	College   *string   `json:"college"`
	Major     *string   `json:"major"`
	Year      *string   `json:"year"`
	City      *string   `json:"city"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	Skills    *[]string `json:"skills"`
}

// Apply copies the set fields onto u.
func (p ProfilePatch) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.College != nil {
		u.College = *p.College
	}
	if p.Major != nil {
		u.Major = *p.Major
	}
	if p.Year != nil {
		u.Year = *p.Year
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Skills != nil {
		u.Skills = append([]string(nil), (*p.Skills)...)
	}
}

// Category is a node of the static gig taxonomy.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Trending bool   `json:"trending,omitempty"`
	GigCount int    `json:"gig_count,omitempty"`
}

// SignUpProfile is the profile captured at registration.
type SignUpProfile struct {
	FullName string `json:"full_name"`
	College  string `json:"college"`
	Major    string `json:"major"`
	Year     string `json:"year"`
	City     string `json:"city"`
}
