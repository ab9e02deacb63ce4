package orders

import "github.com/ariefcatur/go-marketplace/internal/apperr"

var (
	ErrUserNotFound      = apperr.New(apperr.KindNotFound, "User not found")
	ErrAddressNotSet     = apperr.New(apperr.KindValidation, "User address not set")
	ErrCartEmpty         = apperr.New(apperr.KindValidation, "Cart is empty")
	ErrInvalidQuantity   = apperr.New(apperr.KindValidation, "Invalid quantity")
	ErrInvalidStatus     = apperr.New(apperr.KindValidation, "Invalid status")
	ErrProductNotFound   = apperr.New(apperr.KindNotFound, "Product not found")
	ErrInsufficientStock = apperr.New(apperr.KindInsufficientStock, "Product does not have enough stock")

	ErrOrderNotFound     = apperr.New(apperr.KindNotFound, "Unable to find order")
	ErrProductNotInOrder = apperr.New(apperr.KindNotFound, "Product not found in order")

	ErrNotAllProductsOwned = apperr.New(apperr.KindOwnership, "User doesn't own all products in order")
	ErrProductNotOwned     = apperr.New(apperr.KindOwnership, "User cannot alter this product")

	ErrOrderAlreadyCancelled   = apperr.New(apperr.KindConflict, "Order already cancelled")
	ErrOrderBeingProcessed     = apperr.New(apperr.KindConflict, "Can't cancel an order being processed")
	ErrProductAlreadyCancelled = apperr.New(apperr.KindConflict, "Product already cancelled")
	ErrProductBeingProcessed   = apperr.New(apperr.KindConflict, "Can't cancel a product being processed")

	ErrCannotShipCancelled         = apperr.New(apperr.KindConflict, "Cannot ship a cancelled product")
	ErrCannotDisputeCancelled      = apperr.New(apperr.KindConflict, "Cannot dispute a cancelled product")
	ErrCannotShipCancelledOrder    = apperr.New(apperr.KindConflict, "Cannot ship a cancelled order")
	ErrCannotDisputeCancelledOrder = apperr.New(apperr.KindConflict, "Cannot dispute a cancelled order")
	ErrInvalidTransition           = apperr.New(apperr.KindConflict, "Product status can no longer change")
)

func cancelledLineErr(target Status) error {
	if target == StatusDisputed {
		return ErrCannotDisputeCancelled
	}
	return ErrCannotShipCancelled
}

func cancelledOrderErr(target Status) error {
	if target == StatusDisputed {
		return ErrCannotDisputeCancelledOrder
	}
	return ErrCannotShipCancelledOrder
}
