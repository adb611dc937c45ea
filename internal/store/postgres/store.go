// Package postgres is the live store. It talks to the hosted backend's
// Postgres database through pgx.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sudo-init-do/studentmarket/internal/models"
	"github.com/sudo-init-do/studentmarket/internal/store"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements store.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	reader
}

var _ store.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, reader: reader{q: pool}}
}

func (s *Store) Ping(ctx context.Context) error {
	return classify("ping", s.pool.Ping(ctx))
}

func (s *Store) Close() { s.pool.Close() }

// WithTx runs fn inside a READ COMMITTED transaction. Row locks taken by the
// Tx getters are held until commit or rollback.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify("begin", err)
	}
	defer pgtx.Rollback(context.Background())

	if err := fn(ctx, &txStore{reader: reader{q: pgtx, lock: true}}); err != nil {
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return classify("commit", err)
	}
	return nil
}

// reader implements store.Reader. With lock set, single-row getters and
// bid lists take FOR UPDATE locks.
type reader struct {
	q    querier
	lock bool
}

func (r reader) forUpdate(of string) string {
	if !r.lock {
		return ""
	}
	if of != "" {
		return " FOR UPDATE OF " + of
	}
	return " FOR UPDATE"
}

// =========================
// Users and categories
// =========================

const userColumns = `id, email, full_name, college, major, year, city, bio, avatar_url, skills,
	is_verified, reputation_score, total_earnings, wallet_balance, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.College, &u.Major, &u.Year, &u.City, &u.Bio,
		&u.AvatarURL, &u.Skills, &u.IsVerified, &u.ReputationScore, &u.TotalEarnings,
		&u.WalletBalance, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r reader) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`+r.forUpdate(""), id))
	return u, classify("get user", err)
}

func (r reader) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	return u, classify("get user by email", err)
}

func (r reader) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, color, icon, trending, gig_count FROM categories ORDER BY position`)
	if err != nil {
		return nil, classify("list categories", err)
	}
	return collect(rows, "list categories", func(row pgx.Rows) (models.Category, error) {
		var c models.Category
		err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.Trending, &c.GigCount)
		return c, err
	})
}

// collect drains rows with scan. Rows are always closed.
func collect[T any](rows pgx.Rows, op string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

// =========================
// Gigs
// =========================

const gigColumns = `id, user_id, category_id, title, description, requirements, gig_type, price,
	delivery_days, rating, total_orders, tags, is_active, skill_level, collaboration_type,
	created_at, updated_at`

func scanGig(row pgx.Row) (models.Gig, error) {
	var g models.Gig
	err := row.Scan(&g.ID, &g.UserID, &g.CategoryID, &g.Title, &g.Description, &g.Requirements,
		&g.GigType, &g.Price, &g.DeliveryDays, &g.Rating, &g.TotalOrders, &g.Tags, &g.IsActive,
		&g.SkillLevel, &g.CollaborationType, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r reader) GetGig(ctx context.Context, id string) (models.Gig, error) {
	g, err := scanGig(r.q.QueryRow(ctx,
		`SELECT `+gigColumns+` FROM gigs WHERE id = $1`+r.forUpdate(""), id))
	return g, classify("get gig", err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildGigQuery renders f as SQL. Its predicates and ordering match
// store.ApplyGigFilter.
func buildGigQuery(f store.GigFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeInactive {
		where = append(where, "is_active")
	}
	if f.OwnerID != "" {
		where = append(where, "user_id = "+arg(f.OwnerID))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = "+arg(f.CategoryID))
	}
	if f.GigType != "" {
		where = append(where, "gig_type = "+arg(string(f.GigType)))
	}
	if f.PriceRange.Min != nil {
		where = append(where, "price >= "+arg(*f.PriceRange.Min))
	}
	if f.PriceRange.Max != nil {
		where = append(where, "price <= "+arg(*f.PriceRange.Max))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		p := arg("%" + likeEscaper.Replace(q) + "%")
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	sql := `SELECT ` + gigColumns + ` FROM gigs`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	var order string
	switch store.ParseSortBy(string(f.SortBy)) {
	case store.SortPriceLow:
		order = "price ASC, "
	case store.SortPriceHigh:
		order = "price DESC, "
	case store.SortRating:
		order = "CASE WHEN total_orders > 0 THEN rating ELSE 0 END DESC, "
	case store.SortPopular:
		order = "total_orders DESC, "
	}
	sql += " ORDER BY " + order + "created_at DESC, id DESC"
	return sql, args
}

func (r reader) ListGigs(ctx context.Context, f store.GigFilter) ([]models.Gig, error) {
	sql, args := buildGigQuery(f)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify("list gigs", err)
	}
	return collect(rows, "list gigs", func(row pgx.Rows) (models.Gig, error) { return scanGig(row) })
}

// =========================
// Bids
// =========================

const bidColumns = `id, gig_id, bidder_id, amount, delivery_days, proposal, status, created_at, updated_at`

func scanBid(row pgx.Row) (models.Bid, error) {
	var b models.Bid
	err := row.Scan(&b.ID, &b.GigID, &b.BidderID, &b.Amount, &b.DeliveryDays, &b.Proposal,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r reader) GetBid(ctx context.Context, id string) (models.Bid, error) {
	b, err := scanBid(r.q.QueryRow(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE id = $1`+r.forUpdate(""), id))
	return b, classify("get bid", err)
}

func (r reader) ListBids(ctx context.Context, f store.BidFilter) ([]models.Bid, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+bidColumns+` FROM bids
		 WHERE ($1 = '' OR gig_id = $1) AND ($2 = '' OR bidder_id = $2) AND ($3 = '' OR status = $3)
		 ORDER BY created_at DESC, id DESC`+r.forUpdate(""),
		f.GigID, f.BidderID, string(f.Status))
	if err != nil {
		return nil, classify("list bids", err)
	}
	return collect(rows, "list bids", func(row pgx.Rows) (models.Bid, error) { return scanBid(row) })
}

// =========================
// Orders
// =========================

const orderColumns = `o.id, o.gig_id, COALESCE(o.bid_id, ''), o.buyer_id, o.seller_id, o.amount,
	o.platform_fee, o.requirements, o.status, o.payment_status, o.payment_method, o.cancel_reason,
	o.delivery_date, o.completed_at, o.created_at, o.updated_at, g.title`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.GigID, &o.BidID, &o.BuyerID, &o.SellerID, &o.Amount, &o.PlatformFee,
		&o.Requirements, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.CancelReason,
		&o.DeliveryDate, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt, &o.GigTitle)
	return o, err
}

func (r reader) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders o JOIN gigs g ON g.id = o.gig_id
		 WHERE o.id = $1`+r.forUpdate("o"), id))
	return o, classify("get order", err)
}

func (r reader) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders o JOIN gigs g ON g.id = o.gig_id
		 WHERE ($1 = '' OR o.buyer_id = $1 OR o.seller_id = $1)
		   AND ($2 = '' OR o.buyer_id = $2)
		   AND ($3 = '' OR o.seller_id = $3)
		   AND ($4 = '' OR o.gig_id = $4)
		 ORDER BY o.created_at DESC, o.id DESC`,
		f.UserID, f.BuyerID, f.SellerID, f.GigID)
	if err != nil {
		return nil, classify("list orders", err)
	}
	return collect(rows, "list orders", func(row pgx.Rows) (models.Order, error) { return scanOrder(row) })
}

// =========================
// Reviews
// =========================

func (r reader) ListReviews(ctx context.Context, f store.ReviewFilter) ([]models.Review, error) {
	rows, err := r.q.Query(ctx,
		`SELECT rv.id, rv.order_id, rv.gig_id, rv.reviewer_id, rv.reviewee_id, rv.rating, rv.comment,
		        rv.created_at, g.title
		 FROM reviews rv JOIN gigs g ON g.id = rv.gig_id
		 WHERE ($1 = '' OR rv.order_id = $1)
		   AND ($2 = '' OR rv.gig_id = $2)
		   AND ($3 = '' OR rv.reviewee_id = $3)
		   AND ($4 = '' OR g.user_id = $4)
		 ORDER BY rv.created_at DESC, rv.id DESC`,
		f.OrderID, f.GigID, f.RevieweeID, f.GigOwnerID)
	if err != nil {
		return nil, classify("list reviews", err)
	}
	return collect(rows, "list reviews", func(row pgx.Rows) (models.Review, error) {
		var rv models.Review
		err := row.Scan(&rv.ID, &rv.OrderID, &rv.GigID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating,
			&rv.Comment, &rv.CreatedAt, &rv.GigTitle)
		return rv, err
	})
}

// =========================
// Notifications, conversations, ledger
// =========================

func (r reader) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, user_id, type, title, body, reference, is_read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, classify("list notifications", err)
	}
	return collect(rows, "list notifications", func(row pgx.Rows) (models.Notification, error) {
		var n models.Notification
		err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Reference, &n.IsRead, &n.CreatedAt)
		return n, err
	})
}

const conversationColumns = `id, participant_ids, COALESCE(gig_id, ''), last_message, created_at, updated_at`

func scanConversation(row pgx.Row) (models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(&c.ID, &c.ParticipantIDs, &c.GigID, &c.LastMessage, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r reader) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	c, err := scanConversation(r.q.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1`+r.forUpdate(""), id))
	return c, classify("get conversation", err)
}

func (r reader) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+conversationColumns+` FROM conversations
		 WHERE $1 = ANY(participant_ids) ORDER BY updated_at DESC, id DESC`, userID)
	if err != nil {
		return nil, classify("list conversations", err)
	}
	return collect(rows, "list conversations", func(row pgx.Rows) (models.Conversation, error) {
		return scanConversation(row)
	})
}

func (r reader) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, conversation_id, sender_id, content, is_read, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC, id ASC`, conversationID)
	if err != nil {
		return nil, classify("list messages", err)
	}
	return collect(rows, "list messages", func(row pgx.Rows) (models.Message, error) {
		var m models.Message
		err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt)
		return m, err
	})
}

func (r reader) ListWalletTransactions(ctx context.Context, userID string) ([]models.WalletTransaction, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, user_id, amount, type, reference, created_at
		 FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, classify("list wallet transactions", err)
	}
	return collect(rows, "list wallet transactions", func(row pgx.Rows) (models.WalletTransaction, error) {
		var t models.WalletTransaction
		err := row.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Reference, &t.CreatedAt)
		return t, err
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
