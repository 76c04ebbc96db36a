// SPDX-License-Identifier: MIT
package stitch

import "errors"

// ErrBadConfig indicates an invalid fit length, order or overlap count.
var ErrBadConfig = errors.New("stitch: invalid configuration")
