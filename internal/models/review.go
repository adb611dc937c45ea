package models

import (
	"math"
	"time"
)

// MaxReviewComment caps the review comment length in characters.
const MaxReviewComment = 1000

// MaxReputation is the upper bound of User.ReputationScore.
const MaxReputation = 1000

// Review is feedback tied to exactly one completed order.
type Review struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	GigID      string    `json:"gig_id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`

	GigTitle string       `json:"gig_title,omitempty"`
	Reviewer *UserSummary `json:"reviewer,omitempty"`
}

// GigRating is the mean rating of reviews, rounded to one decimal. It is
// recomputed from the full review set rather than adjusted incrementally.
func GigRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

// ReputationScore maps the mean received rating onto 0..MaxReputation.
func ReputationScore(received []Review) int {
	if len(received) == 0 {
		return 0
	}
	var sum int
	for _, r := range received {
		sum += r.Rating
	}
	score := int(math.Round(float64(sum) / float64(len(received)) * 200))
	if score < 0 {
		return 0
	}
	if score > MaxReputation {
		return MaxReputation
	}
	return score
}

// ReviewSummary aggregates the reviews shown on a profile.
type ReviewSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

func Summarize(reviews []Review) ReviewSummary {
	return ReviewSummary{Count: len(reviews), Average: GigRating(reviews)}
}
