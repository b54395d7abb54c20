package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// SubmitStep names the stage of an order submission.
type SubmitStep string

const (
	StepValidation           SubmitStep = "validation"
	StepOrder                SubmitStep = "order"
	StepOrderItem            SubmitStep = "order_item"
	StepAttributeAssociation SubmitStep = "attribute_association"
	StepCommit               SubmitStep = "commit"
)

// checkoutNamespace derives submission ids for cart lines so a retried
// checkout of the same line is recognised.
var checkoutNamespace = uuid.MustParse("6f1c9b1e-4a53-4f0e-9d5c-2f3e8a7b1c40")

// SubmitError reports which step of a submission failed.
type SubmitError struct {
	Step      SubmitStep
	LineKey   string
	ProductID string
	Err       error
}

func (e *SubmitError) Error() string {
	if e.LineKey != "" {
		return fmt.Sprintf("%s step failed for line %s: %v", e.Step, e.LineKey, e.Err)
	}
	return fmt.Sprintf("%s step failed for product %s: %v", e.Step, e.ProductID, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// orderComposer implements OrderComposer.
type orderComposer struct {
	orderRepo repository.OrderRepository
	metrics   *metrics.Collectors
	logger    zerolog.Logger
}

// NewOrderComposer creates a new order composer.
func NewOrderComposer(
	orderRepo repository.OrderRepository,
	collectors *metrics.Collectors,
	logger zerolog.Logger,
) OrderComposer {
	return &orderComposer{
		orderRepo: orderRepo,
		metrics:   collectors,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Submit persists the order, its item and the item's attribute links in one
// transaction. A repeated submission id returns the recorded order.
func (s *orderComposer) Submit(ctx context.Context, sub *model.OrderSubmission) (int64, error) {
	start := time.Now()

	id, duplicate, err := s.submit(ctx, sub)

	switch {
	case err != nil:
		var se *SubmitError
		step := ""
		if errors.As(err, &se) {
			step = string(se.Step)
		}
		s.metrics.ObserveSubmission(metrics.OutcomeFailure, step, time.Since(start))
	case duplicate:
		s.metrics.ObserveSubmission(metrics.OutcomeDuplicate, "", time.Since(start))
	default:
		s.metrics.ObserveSubmission(metrics.OutcomeSuccess, "", time.Since(start))
	}

	return id, err
}

func (s *orderComposer) submit(ctx context.Context, sub *model.OrderSubmission) (int64, bool, error) {
	if err := s.validateSubmission(sub); err != nil {
		productID := ""
		if sub != nil {
			productID = sub.ProductID
		}
		return 0, false, &SubmitError{Step: StepValidation, ProductID: productID, Err: err}
	}

	if sub.SubmissionID != nil {
		existing, err := s.orderRepo.FindBySubmissionID(ctx, *sub.SubmissionID)
		if err != nil {
			return 0, false, &SubmitError{Step: StepOrder, ProductID: sub.ProductID, Err: err}
		}
		if existing != nil {
			s.logger.Info().
				Int64("order_id", existing.ID).
				Str("submission_id", sub.SubmissionID.String()).
				Msg("order submission already recorded")
			return existing.ID, true, nil
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, false, &SubmitError{Step: StepOrder, ProductID: sub.ProductID, Err: err}
	}

	// Ensure transaction is rolled back on error
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order := &model.Order{
		SubmissionID: sub.SubmissionID,
		TotalAmount:  model.RoundAmount(sub.TotalAmount),
	}
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			existing, findErr := s.orderRepo.FindBySubmissionID(ctx, *sub.SubmissionID)
			if findErr == nil && existing != nil {
				return existing.ID, true, nil
			}
		}
		s.logger.Error().Err(err).Str("product_id", sub.ProductID).Msg("failed to create order")
		return 0, false, &SubmitError{Step: StepOrder, ProductID: sub.ProductID, Err: err}
	}
	if order.ID == 0 {
		return 0, false, &SubmitError{Step: StepValidation, ProductID: sub.ProductID, Err: model.ErrMissingOrderID}
	}

	item := &model.OrderItem{
		OrderID:   order.ID,
		ProductID: sub.ProductID,
		Quantity:  sub.Quantity,
		Amount:    sub.Amount,
	}
	if err := s.orderRepo.CreateOrderItem(ctx, tx, item); err != nil {
		s.logger.Error().Err(err).
			Int64("order_id", order.ID).
			Str("product_id", sub.ProductID).
			Msg("failed to create order item")
		return 0, false, &SubmitError{Step: StepOrderItem, ProductID: sub.ProductID, Err: err}
	}
	if item.ID == 0 {
		return 0, false, &SubmitError{Step: StepValidation, ProductID: sub.ProductID, Err: model.ErrMissingOrderItemID}
	}

	if err := s.orderRepo.CreateOrderItemAttributes(ctx, tx, item.ID, sub.AttributeValueIDs); err != nil {
		s.logger.Error().Err(err).
			Int64("order_id", order.ID).
			Int64("order_item_id", item.ID).
			Msg("failed to associate attribute values")
		return 0, false, &SubmitError{Step: StepAttributeAssociation, ProductID: sub.ProductID, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return 0, false, &SubmitError{Step: StepCommit, ProductID: sub.ProductID, Err: err}
	}
	committed = true

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("product_id", sub.ProductID).
		Int("quantity", sub.Quantity).
		Int("attribute_count", len(sub.AttributeValueIDs)).
		Msg("order created successfully")

	return order.ID, false, nil
}

// validateSubmission checks the submission payload.
func (s *orderComposer) validateSubmission(sub *model.OrderSubmission) error {
	if sub == nil {
		return fmt.Errorf("%w: submission is nil", model.ErrInvalidSubmission)
	}

	if sub.Quantity <= 0 {
		s.logger.Warn().
			Str("product_id", sub.ProductID).
			Int("quantity", sub.Quantity).
			Msg("invalid quantity")
		return model.ErrInvalidQuantity
	}

	if err := validateStruct(sub, model.ErrInvalidSubmission); err != nil {
		return err
	}

	if sub.Amount.IsNegative() || sub.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: amounts cannot be negative", model.ErrInvalidSubmission)
	}

	expected := model.LineAmount(sub.Amount, sub.Quantity)
	if !model.RoundAmount(sub.TotalAmount).Equal(expected) {
		s.logger.Warn().
			Str("product_id", sub.ProductID).
			Str("total_amount", sub.TotalAmount.String()).
			Str("expected", expected.String()).
			Msg("total amount mismatch")
		return model.ErrAmountMismatch
	}

	return nil
}

// Checkout submits each cart line independently. Committed lines are
// removed from the cart; failed lines stay for the user to retry.
func (s *orderComposer) Checkout(ctx context.Context, c CheckoutCart) (*model.CheckoutResult, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	result := &model.CheckoutResult{OrderIDs: []int64{}}
	var errs error

	for _, line := range lines {
		sub := model.SubmissionFromLine(line)
		submissionID := lineSubmissionID(line)
		sub.SubmissionID = &submissionID

		orderID, err := s.Submit(ctx, &sub)
		if err != nil {
			step := StepOrder
			var se *SubmitError
			if errors.As(err, &se) {
				se.LineKey = line.Key
				step = se.Step
			}
			result.Failed = append(result.Failed, model.CheckoutFailure{
				LineKey:   line.Key,
				ProductID: line.Product.ID,
				Step:      string(step),
				Message:   userMessage(err),
			})
			errs = multierr.Append(errs, err)
			continue
		}

		result.OrderIDs = append(result.OrderIDs, orderID)

		if _, err := c.Remove(ctx, line.Identity()); err != nil && !errors.Is(err, model.ErrCartLineNotFound) {
			s.logger.Error().Err(err).
				Str("line_key", line.Key).
				Int64("order_id", orderID).
				Msg("failed to remove submitted line from cart")
			errs = multierr.Append(errs, fmt.Errorf("failed to remove line %s: %w", line.Key, err))
		}
	}

	s.logger.Info().
		Int("orders", len(result.OrderIDs)).
		Int("failed", len(result.Failed)).
		Msg("checkout finished")

	return result, errs
}

// GetByID retrieves an order with its items.
func (s *orderComposer) GetByID(ctx context.Context, id int64) (*model.OrderDetails, error) {
	details, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if details == nil {
		s.logger.Debug().Int64("order_id", id).Msg("order not found")
		return nil, nil
	}

	return details, nil
}

// lineSubmissionID is stable for a line key and quantity.
func lineSubmissionID(line model.CartLine) uuid.UUID {
	return uuid.NewSHA1(checkoutNamespace, []byte(fmt.Sprintf("%s:%d", line.Key, line.Quantity)))
}

// userMessage returns the domain message for err, or a generic one for
// persistence failures.
func userMessage(err error) string {
	var de *model.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "Order could not be saved, please try again"
}
