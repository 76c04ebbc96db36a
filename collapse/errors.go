// SPDX-License-Identifier: MIT
package collapse

import "errors"

var (
	// ErrBadConfig indicates an invalid edge, mode or measure.
	ErrBadConfig = errors.New("collapse: invalid configuration")

	// ErrEmptyInput names the zero-Range case. Collapsers do not return it;
	// they produce an empty Profile instead.
	ErrEmptyInput = errors.New("collapse: no range to collapse")
)
