package store

import (
	"sort"
	"strings"

	"github.com/sudo-init-do/studentmarket/internal/models"
)

type SortBy string

const (
	SortCreatedAt SortBy = "created_at"
	SortPopular   SortBy = "popular"
	SortRating    SortBy = "rating"
	SortPriceLow  SortBy = "price_low"
	SortPriceHigh SortBy = "price_high"
)

// ParseSortBy maps unknown values to SortCreatedAt.
func ParseSortBy(s string) SortBy {
	switch v := SortBy(strings.TrimSpace(s)); v {
	case SortPopular, SortRating, SortPriceLow, SortPriceHigh:
		return v
	}
	return SortCreatedAt
}

// PriceRange is inclusive on both ends. A nil bound is open.
type PriceRange struct {
	Min *int64
	Max *int64
}

type GigFilter struct {
	Search     string
	CategoryID string
	PriceRange PriceRange
	SortBy     SortBy
	OwnerID    string
	GigType    models.GigType
	// IncludeInactive also returns deactivated gigs. Only owner views set it.
	IncludeInactive bool
}

type BidFilter struct {
	GigID    string
	BidderID string
	Status   models.BidStatus
}

// OrderFilter matches orders by participant. UserID matches either side.
type OrderFilter struct {
	UserID   string
	BuyerID  string
	SellerID string
	GigID    string
}

// ReviewFilter selects reviews. GigOwnerID matches reviews on any gig owned
// by that user.
type ReviewFilter struct {
	OrderID    string
	GigID      string
	RevieweeID string
	GigOwnerID string
}

// MatchGig reports whether g passes every predicate of f.
func MatchGig(g models.Gig, f GigFilter) bool {
	if !f.IncludeInactive && !g.IsActive {
		return false
	}
	if f.OwnerID != "" && g.UserID != f.OwnerID {
		return false
	}
	if f.CategoryID != "" && g.CategoryID != f.CategoryID {
		return false
	}
	if f.GigType != "" && g.GigType != f.GigType {
		return false
	}
	if f.PriceRange.Min != nil && g.Price < *f.PriceRange.Min {
		return false
	}
	if f.PriceRange.Max != nil && g.Price > *f.PriceRange.Max {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(g.Title), q) &&
			!strings.Contains(strings.ToLower(g.Description), q) {
			return false
		}
	}
	return true
}

// SortGigs orders gigs in place. Ties fall back to newest first.
func SortGigs(gigs []models.Gig, by SortBy) {
	newer := func(a, b models.Gig) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	var less func(a, b models.Gig) bool
	switch by {
	case SortPriceLow:
		less = func(a, b models.Gig) bool {
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return newer(a, b)
		}
	case SortPriceHigh:
		less = func(a, b models.Gig) bool {
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return newer(a, b)
		}
	case SortRating:
		less = func(a, b models.Gig) bool {
			if a.DisplayRating() != b.DisplayRating() {
				return a.DisplayRating() > b.DisplayRating()
			}
			return newer(a, b)
		}
	case SortPopular:
		less = func(a, b models.Gig) bool {
			if a.TotalOrders != b.TotalOrders {
				return a.TotalOrders > b.TotalOrders
			}
			return newer(a, b)
		}
	default:
		less = newer
	}
	sort.SliceStable(gigs, func(i, j int) bool { return less(gigs[i], gigs[j]) })
}

// ApplyGigFilter returns the gigs matching f in f.SortBy order.
func ApplyGigFilter(gigs []models.Gig, f GigFilter) []models.Gig {
	out := make([]models.Gig, 0, len(gigs))
	for _, g := range gigs {
		if MatchGig(g, f) {
			out = append(out, g)
		}
	}
	SortGigs(out, ParseSortBy(string(f.SortBy)))
	return out
}
