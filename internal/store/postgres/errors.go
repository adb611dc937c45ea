package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sudo-init-do/studentmarket/internal/apperr"
)

// classify converts driver errors into application kinds. Anything that is
// not a definite answer from the server (network, timeout, shutdown) is
// transient.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrNotFound.With("%s: not found", op)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperr.ErrTransient.With("%s: backend temporarily unavailable", op).Wrap(err)
	}

	switch pgErr.Code {
	case "23505":
		switch pgErr.ConstraintName {
		case "bids_one_accepted_per_gig":
			return apperr.ErrAlreadyTerminal.With("gig already has an accepted bid")
		case "reviews_order_id_key":
			return apperr.ErrAlreadyReviewed
		case "users_email_key":
			return apperr.ErrInvalidInput.With("email already registered")
		}
	case "23514":
		if pgErr.ConstraintName == "users_wallet_balance_check" {
			return apperr.ErrInsufficientFunds
		}
	case "23503":
		return apperr.ErrNotFound.With("%s: referenced row does not exist", op)
	case "40001", "40P01", "55P03", "57014", "57P01", "57P02", "57P03":
		return apperr.ErrTransient.With("%s: backend temporarily unavailable", op).Wrap(err)
	}
	if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "53") {
		return apperr.ErrTransient.With("%s: backend temporarily unavailable", op).Wrap(err)
	}
	return apperr.New(apperr.Internal, "database", op).Wrap(err)
}
