package postgres

import (
	"context"

	"github.com/sudo-init-do/studentmarket/internal/apperr"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

// txStore implements store.Tx on an open pgx transaction.
type txStore struct {
	reader
}

var _ store.Tx = (*txStore)(nil)

// exec runs a single-row write and reports NotFound when nothing matched.
func (t *txStore) exec(ctx context.Context, op, what, id, sql string, args ...any) error {
	tag, err := t.q.Exec(ctx, sql, args...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound.With("%s %s not found", what, id)
	}
	return nil
}

func (t *txStore) CreateUser(ctx context.Context, u models.User) error {
	return t.exec(ctx, "create user", "user", u.ID,
		`INSERT INTO users (id, email, full_name, college, major, year, city, bio, avatar_url, skills,
		                    is_verified, reputation_score, total_earnings, wallet_balance, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		u.ID, u.Email, u.FullName, u.College, u.Major, u.Year, u.City, u.Bio, u.AvatarURL,
		nonNil(u.Skills), u.IsVerified, u.ReputationScore, u.TotalEarnings, u.WalletBalance,
		orNow(u.CreatedAt), orNow(u.UpdatedAt))
}

func (t *txStore) UpdateUser(ctx context.Context, u models.User) error {
	return t.exec(ctx, "update user", "user", u.ID,
		`UPDATE users SET full_name = $2, college = $3, major = $4, year = $5, city = $6, bio = $7,
		        avatar_url = $8, skills = $9, is_verified = $10, reputation_score = $11,
		        total_earnings = $12, wallet_balance = $13, updated_at = $14
		 WHERE id = $1`,
		u.ID, u.FullName, u.College, u.Major, u.Year, u.City, u.Bio, u.AvatarURL, nonNil(u.Skills),
		u.IsVerified, u.ReputationScore, u.TotalEarnings, u.WalletBalance, orNow(u.UpdatedAt))
}

func (t *txStore) UpsertCategory(ctx context.Context, c models.Category) error {
	_, err := t.q.Exec(ctx,
		`INSERT INTO categories (id, name, color, icon, trending, gig_count)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color,
		        icon = EXCLUDED.icon, trending = EXCLUDED.trending, gig_count = EXCLUDED.gig_count`,
		c.ID, c.Name, c.Color, c.Icon, c.Trending, c.GigCount)
	return classify("upsert category", err)
}

func (t *txStore) CreateGig(ctx context.Context, g models.Gig) error {
	return t.exec(ctx, "create gig", "gig", g.ID,
		`INSERT INTO gigs (id, user_id, category_id, title, description, requirements, gig_type, price,
		                   delivery_days, rating, total_orders, tags, is_active, skill_level,
		                   collaboration_type, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		g.ID, g.UserID, g.CategoryID, g.Title, g.Description, g.Requirements, string(g.GigType),
		g.Price, g.DeliveryDays, g.Rating, g.TotalOrders, nonNil(g.Tags), g.IsActive,
		string(g.SkillLevel), string(g.CollaborationType), orNow(g.CreatedAt), orNow(g.UpdatedAt))
}

func (t *txStore) UpdateGig(ctx context.Context, g models.Gig) error {
	return t.exec(ctx, "update gig", "gig", g.ID,
		`UPDATE gigs SET category_id = $2, title = $3, description = $4, requirements = $5, price = $6,
		        delivery_days = $7, rating = $8, total_orders = $9, tags = $10, is_active = $11,
		        skill_level = $12, collaboration_type = $13, updated_at = $14
		 WHERE id = $1`,
		g.ID, g.CategoryID, g.Title, g.Description, g.Requirements, g.Price, g.DeliveryDays,
		g.Rating, g.TotalOrders, nonNil(g.Tags), g.IsActive, string(g.SkillLevel),
		string(g.CollaborationType), orNow(g.UpdatedAt))
}

func (t *txStore) CreateBid(ctx context.Context, b models.Bid) error {
	return t.exec(ctx, "create bid", "bid", b.ID,
		`INSERT INTO bids (id, gig_id, bidder_id, amount, delivery_days, proposal, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		b.ID, b.GigID, b.BidderID, b.Amount, b.DeliveryDays, b.Proposal, string(b.Status),
		orNow(b.CreatedAt), orNow(b.UpdatedAt))
}

func (t *txStore) UpdateBid(ctx context.Context, b models.Bid) error {
	return t.exec(ctx, "update bid", "bid", b.ID,
		`UPDATE bids SET amount = $2, delivery_days = $3, proposal = $4, status = $5, updated_at = $6
		 WHERE id = $1`,
		b.ID, b.Amount, b.DeliveryDays, b.Proposal, string(b.Status), orNow(b.UpdatedAt))
}

func (t *txStore) CreateOrder(ctx context.Context, o models.Order) error {
	return t.exec(ctx, "create order", "order", o.ID,
		`INSERT INTO orders (id, gig_id, bid_id, buyer_id, seller_id, amount, platform_fee, requirements,
		                     status, payment_status, payment_method, cancel_reason, delivery_date,
		                     completed_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		o.ID, o.GigID, nullable(o.BidID), o.BuyerID, o.SellerID, o.Amount, o.PlatformFee,
		o.Requirements, string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod),
		o.CancelReason, o.DeliveryDate, o.CompletedAt, orNow(o.CreatedAt), orNow(o.UpdatedAt))
}

func (t *txStore) UpdateOrder(ctx context.Context, o models.Order) error {
	return t.exec(ctx, "update order", "order", o.ID,
		`UPDATE orders SET status = $2, payment_status = $3, payment_method = $4, cancel_reason = $5,
		        completed_at = $6, updated_at = $7
		 WHERE id = $1`,
		o.ID, string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod), o.CancelReason,
		o.CompletedAt, orNow(o.UpdatedAt))
}

func (t *txStore) CreateReview(ctx context.Context, r models.Review) error {
	return t.exec(ctx, "create review", "review", r.ID,
		`INSERT INTO reviews (id, order_id, gig_id, reviewer_id, reviewee_id, rating, comment, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.OrderID, r.GigID, r.ReviewerID, r.RevieweeID, r.Rating, r.Comment, orNow(r.CreatedAt))
}

func (t *txStore) CreateDispute(ctx context.Context, d models.Dispute) error {
	return t.exec(ctx, "create dispute", "dispute", d.ID,
		`INSERT INTO disputes (id, order_id, raised_by, reason, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.OrderID, d.RaisedBy, d.Reason, d.Status, orNow(d.CreatedAt))
}

func (t *txStore) CreateNotification(ctx context.Context, n models.Notification) error {
	return t.exec(ctx, "create notification", "notification", n.ID,
		`INSERT INTO notifications (id, user_id, type, title, body, reference, is_read, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Body, n.Reference, n.IsRead, orNow(n.CreatedAt))
}

func (t *txStore) MarkNotificationRead(ctx context.Context, id, userID string) error {
	return t.exec(ctx, "mark notification read", "notification", id,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
}

func (t *txStore) CreateConversation(ctx context.Context, c models.Conversation) error {
	return t.exec(ctx, "create conversation", "conversation", c.ID,
		`INSERT INTO conversations (id, participant_ids, gig_id, last_message, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, nonNil(c.ParticipantIDs), nullable(c.GigID), c.LastMessage, orNow(c.CreatedAt),
		orNow(c.UpdatedAt))
}

func (t *txStore) UpdateConversation(ctx context.Context, c models.Conversation) error {
	return t.exec(ctx, "update conversation", "conversation", c.ID,
		`UPDATE conversations SET last_message = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.LastMessage, orNow(c.UpdatedAt))
}

func (t *txStore) CreateMessage(ctx context.Context, m models.Message) error {
	return t.exec(ctx, "create message", "message", m.ID,
		`INSERT INTO messages (id, conversation_id, sender_id, content, is_read, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.IsRead, orNow(m.CreatedAt))
}

func (t *txStore) CreateWalletTransaction(ctx context.Context, wt models.WalletTransaction) error {
	return t.exec(ctx, "create wallet transaction", "wallet transaction", wt.ID,
		`INSERT INTO wallet_transactions (id, user_id, amount, type, reference, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		wt.ID, wt.UserID, wt.Amount, string(wt.Type), wt.Reference, orNow(wt.CreatedAt))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
