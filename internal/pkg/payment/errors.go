package payment

import "emperror.dev/errors"

var (
	// ErrAuthenticationRequired is returned before any remote call when the
	// caller is not logged in.
	ErrAuthenticationRequired = errors.NewPlain("authentication required")

	// ErrAuthorizationDenied is returned when a non-admin triggers an admin action.
	ErrAuthorizationDenied = errors.NewPlain("admin privileges required")

	// ErrCheckoutFailed wraps every remote or unexpected failure of the
	// checkout creation call. Callers show a generic retry message.
	ErrCheckoutFailed = errors.NewPlain("checkout failed")

	// ErrUnsupportedProvider is returned for payment methods other than
	// stripe and paypal.
	ErrUnsupportedProvider = errors.NewPlain("unsupported payment provider")

	// ErrInvalidRequest is returned when a checkout request fails validation.
	ErrInvalidRequest = errors.NewPlain("invalid checkout request")

	// ErrPackageNotFound is returned when the package does not exist, is
	// inactive or belongs to another slot.
	ErrPackageNotFound = errors.NewPlain("package not found")
)
