package pagination

import "errors"

// ErrTooManyPages is returned when a walk hits Config.MaxPages before a short page.
var ErrTooManyPages = errors.New("page limit reached")
