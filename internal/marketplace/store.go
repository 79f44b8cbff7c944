package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Umary15/student-skill-share/internal/lifecycle"
	"github.com/Umary15/student-skill-share/internal/model"
)

// GigPatch carries the fields of a partial gig update; nil means leave
// the column untouched.
type GigPatch struct {
	Title        *string
	Description  *string
	PriceCents   *int64
	DeliveryDays *int
	Category     *model.GigCategory
	ImageURL     *string
	IsActive     *bool
}

// Store is the persistence contract used by the marketplace handlers.
type Store interface {
	CreateGig(ctx context.Context, g *model.Gig) (*model.Gig, error)
	GetGig(ctx context.Context, id string) (*model.Gig, error)
	ListGigs(ctx context.Context, category, search string) ([]model.Gig, error)
	ListGigsByOwner(ctx context.Context, ownerID string) ([]model.Gig, error)
	UpdateGig(ctx context.Context, id, ownerID string, patch GigPatch) (*model.Gig, error)
	DeactivateGig(ctx context.Context, id, ownerID string) error

	CreateOrder(ctx context.Context, o *model.Order) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, userID string, role lifecycle.Role) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus, paymentRef string) (*model.Order, error)

	CreateRating(ctx context.Context, r *model.Rating) (*model.Gig, error)
	ListRatings(ctx context.Context, gigID string) ([]model.Rating, error)
}

// PGStore implements Store on a pgx pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a Postgres-backed store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const gigColumns = `id, user_id, title, description, price_cents, delivery_days, category,
	COALESCE(image_url, ''), average_rating, total_reviews, is_active, created_at, updated_at`

func scanGig(row pgx.Row) (*model.Gig, error) {
	var g model.Gig
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.PriceCents, &g.DeliveryDays,
		&g.Category, &g.ImageURL, &g.AverageRating, &g.TotalReviews, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("scan gig: %w", err)
	}
	return &g, nil
}

// CreateGig inserts a new listing and returns the committed row.
func (s *PGStore) CreateGig(ctx context.Context, g *model.Gig) (*model.Gig, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO gigs (id, user_id, title, description, price_cents, delivery_days, category, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		 RETURNING `+gigColumns,
		g.ID, g.UserID, g.Title, g.Description, g.PriceCents, g.DeliveryDays, g.Category, g.ImageURL,
	)
	return scanGig(row)
}

// GetGig returns a gig by id, active or not.
func (s *PGStore) GetGig(ctx context.Context, id string) (*model.Gig, error) {
	return scanGig(s.pool.QueryRow(ctx, `SELECT `+gigColumns+` FROM gigs WHERE id = $1`, id))
}

// ListGigs returns active gigs, optionally filtered by category and a
// case-insensitive title/description search.
func (s *PGStore) ListGigs(ctx context.Context, category, search string) ([]model.Gig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+gigColumns+`
		 FROM gigs
		 WHERE is_active
		   AND ($1 = '' OR category = $1)
		   AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		 ORDER BY created_at DESC`,
		category, search,
	)
	if err != nil {
		return nil, fmt.Errorf("select gigs: %w", err)
	}
	defer rows.Close()
	return collectGigs(rows)
}

// ListGigsByOwner returns every gig of one seller, active or not.
func (s *PGStore) ListGigsByOwner(ctx context.Context, ownerID string) ([]model.Gig, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+gigColumns+` FROM gigs WHERE user_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select gigs by owner: %w", err)
	}
	defer rows.Close()
	return collectGigs(rows)
}

func collectGigs(rows pgx.Rows) ([]model.Gig, error) {
	var gigs []model.Gig
	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, err
		}
		gigs = append(gigs, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return gigs, nil
}

// UpdateGig applies a partial update to the caller's own gig.
func (s *PGStore) UpdateGig(ctx context.Context, id, ownerID string, patch GigPatch) (*model.Gig, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE gigs SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			price_cents = COALESCE($5, price_cents),
			delivery_days = COALESCE($6, delivery_days),
			category = COALESCE($7, category),
			image_url = COALESCE($8, image_url),
			is_active = COALESCE($9, is_active),
			updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+gigColumns,
		id, ownerID, patch.Title, patch.Description, patch.PriceCents,
		patch.DeliveryDays, patch.Category, patch.ImageURL, patch.IsActive,
	)
	return scanGig(row)
}

// DeactivateGig soft-deletes a listing. The row stays because open
// orders reference it.
func (s *PGStore) DeactivateGig(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE gigs SET is_active = FALSE, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deactivate gig: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return lifecycle.ErrNotFound
	}
	return nil
}

const orderColumns = `id, buyer_id, seller_id, gig_id, status, amount_cents,
	COALESCE(payment_ref, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.GigID, &o.Status,
		&o.AmountCents, &o.PaymentRef, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

// CreateOrder inserts a pending order and returns the committed row.
func (s *PGStore) CreateOrder(ctx context.Context, o *model.Order) (*model.Order, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO orders (id, buyer_id, seller_id, gig_id, status, amount_cents)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+orderColumns,
		o.ID, o.BuyerID, o.SellerID, o.GigID, o.Status, o.AmountCents,
	)
	created, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, lifecycle.ErrNotFound
		}
		return nil, err
	}
	return created, nil
}

// GetOrder returns an order by id.
func (s *PGStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// ListOrders returns the orders where userID acts as the given role,
// most recent first.
func (s *PGStore) ListOrders(ctx context.Context, userID string, role lifecycle.Role) ([]model.Order, error) {
	column := "buyer_id"
	if role == lifecycle.RoleSeller {
		column = "seller_id"
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+column+` = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order from one status to another with a
// compare-and-set on the current status. The per-row atomic UPDATE is
// the sole serialization point; a missed predicate on an existing row
// reports ErrConflict so the caller can re-read and decide whether the
// race was a benign retry. A transition into delivered credits the
// seller's cumulative earnings in the same transaction.
func (s *PGStore) UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus, paymentRef string) (*model.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`UPDATE orders
		 SET status = $3,
		     payment_ref = COALESCE(NULLIF($4, ''), payment_ref),
		     updated_at = now()
		 WHERE id = $1 AND status = $2
		 RETURNING `+orderColumns,
		id, from, to, paymentRef,
	)
	updated, err := scanOrder(row)
	if err != nil {
		if !errors.Is(err, lifecycle.ErrNotFound) {
			return nil, err
		}
		// Row missing or status moved under us; disambiguate.
		var exists bool
		if qerr := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); qerr != nil {
			return nil, fmt.Errorf("check order: %w", qerr)
		}
		if !exists {
			return nil, lifecycle.ErrNotFound
		}
		return nil, lifecycle.ErrConflict
	}

	if to == model.OrderStatusDelivered {
		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET total_earned_cents = total_earned_cents + $1, updated_at = now() WHERE id = $2`,
			updated.AmountCents, updated.SellerID,
		); err != nil {
			return nil, fmt.Errorf("credit seller earnings: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

const ratingColumns = `id, order_id, gig_id, reviewer_id, score, COALESCE(comment, ''), created_at`

func scanRating(row pgx.Row) (*model.Rating, error) {
	var r model.Rating
	err := row.Scan(&r.ID, &r.OrderID, &r.GigID, &r.ReviewerID, &r.Score, &r.Comment, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, fmt.Errorf("scan rating: %w", err)
	}
	return &r, nil
}

// CreateRating attaches a rating to an order and folds the score into
// the gig's running mean, all in one transaction so a duplicate leaves
// the aggregates untouched. Returns the updated gig.
func (s *PGStore) CreateRating(ctx context.Context, r *model.Rating) (*model.Gig, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO ratings (id, order_id, gig_id, reviewer_id, score, comment)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		r.ID, r.OrderID, r.GigID, r.ReviewerID, r.Score, r.Comment,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, lifecycle.ErrDuplicateRating
		}
		return nil, fmt.Errorf("insert rating: %w", err)
	}

	row := tx.QueryRow(ctx,
		`UPDATE gigs
		 SET average_rating = (average_rating * total_reviews + $2) / (total_reviews + 1),
		     total_reviews = total_reviews + 1,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+gigColumns,
		r.GigID, r.Score,
	)
	gig, err := scanGig(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return gig, nil
}

// ListRatings returns a gig's ratings, most recent first.
func (s *PGStore) ListRatings(ctx context.Context, gigID string) ([]model.Rating, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE gig_id = $1 ORDER BY created_at DESC`,
		gigID,
	)
	if err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	defer rows.Close()

	var ratings []model.Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ratings, nil
}
