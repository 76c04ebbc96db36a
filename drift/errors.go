package drift

import "errors"

// ErrConfiguration reports an inconsistent Config: zero ≤ 2, no event
// detection with a mean collapse, an unknown method name or an invalid
// stage.
var ErrConfiguration = errors.New("drift: bad configuration")
