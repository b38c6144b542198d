/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uschess

import (
	"errors"
)

// Invalid input; these are returned to callers before any request is issued.
var (
	ErrInvalidID   = errors.New("uscf id must be 7 or 8 digits")
	ErrMissingName = errors.New("at least a first or last name is required")
)

// Upstream and parse failures. The Client logs and records these but
// degrades them to "no result" for its callers.
var (
	ErrBlocked           = errors.New("upstream blocked the request")
	ErrUnrecognizedShape = errors.New("unrecognized response shape")
	ErrMalformed         = errors.New("malformed response")
	ErrUpstreamStatus    = errors.New("unexpected upstream status")
)

// Outcome classifies a single lookup attempt for logging and metrics.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeBlocked
	OutcomeTransportError
	OutcomeParseMismatch
	OutcomeInvalidInput
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeParseMismatch:
		return "parse_mismatch"
	case OutcomeInvalidInput:
		return "invalid_input"
	default:
		return "?"
	}
}

// classify maps the error from a fetch+extract attempt to its Outcome.
func classify(err error, found bool) Outcome {
	switch {
	case err == nil && found:
		return OutcomeFound
	case err == nil:
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrMissingName):
		return OutcomeInvalidInput
	case errors.Is(err, ErrBlocked):
		return OutcomeBlocked
	case errors.Is(err, ErrUnrecognizedShape), errors.Is(err, ErrMalformed):
		return OutcomeParseMismatch
	default:
		return OutcomeTransportError
	}
}
