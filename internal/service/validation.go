package service

import (
	"fmt"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// ValidateStatusTransition checks a requested status change. Terminal orders
// yield ErrTerminalStatus; anything but the next status or a cancellation is
// a validation error.
func ValidateStatusTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return errors.NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	if from.IsTerminal() {
		return fmt.Errorf("order is %s: %w", from, errors.ErrTerminalStatus)
	}
	if !from.CanTransition(to) {
		return errors.NewValidationError("status", fmt.Sprintf("cannot move an order from %s to %s", from, to))
	}
	return nil
}

func invalidCategory(c models.Category) error {
	return errors.NewValidationError("category", fmt.Sprintf("unknown category %q", c))
}
