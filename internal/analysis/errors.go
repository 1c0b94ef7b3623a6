// SPDX-License-Identifier: MIT
package analysis

import "errors"

var (
	// ErrInvalidInput marks a malformed waveform or configuration. It aborts
	// the whole run.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData marks a series too short for one analyzer. It is
	// contained to that analyzer's report.
	ErrInsufficientData = errors.New("insufficient data")
)
