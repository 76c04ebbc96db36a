// SPDX-License-Identifier: MIT
package events

import "errors"

// ErrBadConfig indicates an invalid parameter in one of the stage
// configurations.
var ErrBadConfig = errors.New("events: invalid configuration")

// ErrBadInterval indicates an interval outside [0, len(signal)) or with
// Stop ≤ Start.
var ErrBadInterval = errors.New("events: interval out of range")
