package model

import "errors"

var (
	// ErrMalformedNumericInput is returned for unparseable or negative numeric strings.
	ErrMalformedNumericInput = errors.New("malformed numeric input")
	// ErrUnrecognizedEstimateShape is returned when a payload is neither legacy nor fee market.
	ErrUnrecognizedEstimateShape = errors.New("unrecognized estimate shape")
	// ErrIncompatibleEstimateMode is returned when the requested fee mode does not match the active estimate set.
	ErrIncompatibleEstimateMode = errors.New("incompatible estimate mode")
	// ErrEstimatesUnavailable is returned when a fee market resolution has no estimates to use.
	ErrEstimatesUnavailable = errors.New("estimates unavailable")
	// ErrNegativeOrOverflowInput is returned when fee totals cannot be computed from the inputs.
	ErrNegativeOrOverflowInput = errors.New("negative or overflow input")
	ErrUnknownTier             = errors.New("unknown tier")
	ErrUnknownFeeMode          = errors.New("unknown fee mode")
	ErrPriorityFeeAboveMaxFee  = errors.New("max priority fee per gas higher than max fee per gas")
)
