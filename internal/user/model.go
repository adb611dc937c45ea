package user

import (
	"time"

	"github.com/sudo-init-do/studentmarket/internal/models"
)

// PublicProfile is what any visitor may see of a user. Email and wallet
// figures are left out.
type PublicProfile struct {
	ID              string               `json:"id"`
	FullName        string               `json:"full_name"`
	College         string               `json:"college"`
	Major           string               `json:"major"`
	Year            string               `json:"year"`
	City            string               `json:"city"`
	Bio             string               `json:"bio"`
	AvatarURL       string               `json:"avatar_url,omitempty"`
	Skills          []string             `json:"skills"`
	IsVerified      bool                 `json:"is_verified"`
	ReputationScore int                  `json:"reputation_score"`
	Reviews         models.ReviewSummary `json:"reviews"`
	CreatedAt       time.Time            `json:"created_at"`
}

func publicProfile(u models.User, reviews []models.Review) PublicProfile {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return PublicProfile{
		ID:              u.ID,
		FullName:        u.FullName,
		College:         u.College,
		Major:           u.Major,
		Year:            u.Year,
		City:            u.City,
		Bio:             u.Bio,
		AvatarURL:       u.AvatarURL,
		Skills:          skills,
		IsVerified:      u.IsVerified,
		ReputationScore: u.ReputationScore,
		Reviews:         models.Summarize(reviews),
		CreatedAt:       u.CreatedAt,
	}
}
