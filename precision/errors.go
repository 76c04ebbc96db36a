// SPDX-License-Identifier: MIT
package precision

import "errors"

var (
	// ErrEmptyInput indicates fewer than two finite samples in every signal.
	ErrEmptyInput = errors.New("precision: not enough finite samples")

	// ErrConfiguration indicates a precision that was neither supplied nor
	// derivable from data.
	ErrConfiguration = errors.New("precision: could not extract precision: no data or set value")
)
