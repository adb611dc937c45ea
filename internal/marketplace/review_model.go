package marketplace

// CreateReviewRequest is the payload for rating a completed order.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
