package quote

import "errors"

var (
	// ErrInvalidInput reports a malformed request (bad id, non-positive quantity).
	ErrInvalidInput = errors.New("quote: invalid input")
	// ErrNotFound reports a missing session, quote or product.
	ErrNotFound = errors.New("quote: not found")
	// ErrInsufficientStock is returned when the requested quantity exceeds the stock snapshot.
	ErrInsufficientStock = errors.New("quote: insufficient stock")
	// ErrDuplicateProduct is returned when the product already has a line.
	ErrDuplicateProduct = errors.New("quote: product already in quote")
	// ErrIncompleteSubmission is returned when the customer or the lines are missing.
	ErrIncompleteSubmission = errors.New("quote: customer and at least one line are required")
	// ErrPersistenceFailure wraps numbering, header and line write failures.
	ErrPersistenceFailure = errors.New("quote: persistence failure")
	// ErrRenderDataMissing is returned when the customer or company configuration is absent.
	ErrRenderDataMissing = errors.New("quote: render data missing")
	// ErrRenderFailed wraps document renderer failures.
	ErrRenderFailed = errors.New("quote: render failed")
)
