package marketplace

import "github.com/sudo-init-do/studentmarket/internal/models"

// Request payloads accepted by the handlers.

type createOrderRequest struct {
	GigID        string `json:"gig_id"`
	Requirements string `json:"requirements"`
}

type payRequest struct {
	Method models.PaymentMethod `json:"method"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}
