package orderControllers

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bimalmithran/storefront-api/models"
)

// Order and payment status are independent state machines; rows are only
// ever mutated through these transition funcs, never free-form updates.

var ErrInvalidTransition = errors.New("invalid status transition")

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusReturned},
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending:   {models.PaymentStatusCompleted, models.PaymentStatusFailed},
	models.PaymentStatusCompleted: {models.PaymentStatusRefunded},
}

// ParseOrderStatus maps a request string to a known order status.
func ParseOrderStatus(status string) (models.OrderStatus, error) {
	switch models.OrderStatus(strings.ToLower(status)) {
	case models.OrderStatusPending:
		return models.OrderStatusPending, nil
	case models.OrderStatusProcessing:
		return models.OrderStatusProcessing, nil
	case models.OrderStatusShipped:
		return models.OrderStatusShipped, nil
	case models.OrderStatusDelivered:
		return models.OrderStatusDelivered, nil
	case models.OrderStatusCancelled:
		return models.OrderStatusCancelled, nil
	case models.OrderStatusReturned:
		return models.OrderStatusReturned, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// ParsePaymentStatus maps a request string to a known payment status.
func ParsePaymentStatus(status string) (models.PaymentStatus, error) {
	switch models.PaymentStatus(strings.ToLower(status)) {
	case models.PaymentStatusPending:
		return models.PaymentStatusPending, nil
	case models.PaymentStatusCompleted:
		return models.PaymentStatusCompleted, nil
	case models.PaymentStatusFailed:
		return models.PaymentStatusFailed, nil
	case models.PaymentStatusRefunded:
		return models.PaymentStatusRefunded, nil
	default:
		return "", errors.New("invalid payment status")
	}
}

func transitionAllowed[S comparable](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionOrderStatus moves an order along the fulfillment machine.
// Re-entering the current state is a no-op; shipped_at/delivered_at are
// stamped only on first entry.
func TransitionOrderStatus(db *gorm.DB, orderID uint, next models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status == next {
			return nil
		}
		if !transitionAllowed(orderTransitions, order.Status, next) {
			return ErrInvalidTransition
		}

		order.Status = next
		now := time.Now()
		switch next {
		case models.OrderStatusShipped:
			if order.ShippedAt == nil {
				order.ShippedAt = &now
			}
		case models.OrderStatusDelivered:
			if order.DeliveredAt == nil {
				order.DeliveredAt = &now
			}
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionPaymentStatus moves an order along the payment machine.
// paid_at is stamped exactly once, on the transition to completed.
func TransitionPaymentStatus(db *gorm.DB, orderID uint, next models.PaymentStatus) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.PaymentStatus == next {
			return nil
		}
		if !transitionAllowed(paymentTransitions, order.PaymentStatus, next) {
			return ErrInvalidTransition
		}

		order.PaymentStatus = next
		if next == models.PaymentStatusCompleted && order.PaidAt == nil {
			now := time.Now()
			order.PaidAt = &now
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
