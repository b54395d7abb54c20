package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (submission_id, total_amount)
		VALUES ($1, $2)
		ON CONFLICT (submission_id) DO NOTHING
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query, order.SubmissionID, order.TotalAmount).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Info().Msg("order submission already recorded")
			return ErrDuplicateSubmission
		}
		r.logger.Error().Err(err).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Msg("order created successfully")

	return nil
}

// CreateOrderItem inserts an order item within the provided transaction.
func (r *orderRepository) CreateOrderItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.Amount).Scan(&item.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("order_id", item.OrderID).
			Str("product_id", item.ProductID).
			Msg("failed to create order item")
		return fmt.Errorf("failed to create order item: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", item.OrderID).
		Int64("order_item_id", item.ID).
		Msg("order item created successfully")

	return nil
}

// CreateOrderItemAttributes links an order item to its selected attribute values.
func (r *orderRepository) CreateOrderItemAttributes(ctx context.Context, tx pgx.Tx, orderItemID int64, attributeValueIDs []int64) error {
	if len(attributeValueIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_item_attribute_values (order_item_id, attribute_value_id)
		VALUES ($1, $2)
	`

	batch := &pgx.Batch{}
	for _, id := range attributeValueIDs {
		batch.Queue(query, orderItemID, id)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, id := range attributeValueIDs {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Int64("order_item_id", orderItemID).
				Int64("attribute_value_id", id).
				Msg("failed to create order item attribute")
			return fmt.Errorf("failed to create order item attribute: %w", err)
		}
	}

	r.logger.Debug().
		Int64("order_item_id", orderItemID).
		Int("count", len(attributeValueIDs)).
		Msg("order item attributes created successfully")

	return nil
}

// FindBySubmissionID returns the order recorded for a submission id.
func (r *orderRepository) FindBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, submission_id, total_amount, created_at
		FROM orders
		WHERE submission_id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, query, submissionID).Scan(
		&order.ID,
		&order.SubmissionID,
		&order.TotalAmount,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("submission_id", submissionID.String()).Msg("failed to query order by submission")
		return nil, fmt.Errorf("failed to query order by submission: %w", err)
	}

	return &order, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.OrderDetails, error) {
	orderQuery := `
		SELECT id, submission_id, total_amount, created_at
		FROM orders
		WHERE id = $1
	`

	details := &model.OrderDetails{Items: []model.OrderItemDetails{}}
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&details.Order.ID,
		&details.Order.SubmissionID,
		&details.Order.TotalAmount,
		&details.Order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, amount
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	index := make(map[int64]int)
	for rows.Next() {
		var item model.OrderItemDetails
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Amount)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		item.AttributeValueIDs = []int64{}
		index[item.ID] = len(details.Items)
		details.Items = append(details.Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	attrQuery := `
		SELECT oiav.order_item_id, oiav.attribute_value_id
		FROM order_item_attribute_values oiav
		JOIN order_items oi ON oi.id = oiav.order_item_id
		WHERE oi.order_id = $1
		ORDER BY oiav.id
	`

	attrRows, err := r.pool.Query(ctx, attrQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order item attributes")
		return nil, fmt.Errorf("failed to query order item attributes: %w", err)
	}
	defer attrRows.Close()

	for attrRows.Next() {
		var itemID, valueID int64
		if err := attrRows.Scan(&itemID, &valueID); err != nil {
			return nil, fmt.Errorf("failed to scan order item attribute: %w", err)
		}
		if i, ok := index[itemID]; ok {
			details.Items[i].AttributeValueIDs = append(details.Items[i].AttributeValueIDs, valueID)
		}
	}

	if err := attrRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item attributes: %w", err)
	}

	return details, nil
}
