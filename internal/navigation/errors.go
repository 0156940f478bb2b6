package navigation

import "errors"

// ErrExtraction is returned when the page could not be evaluated or its DOM
// could not be parsed. It is never fatal to a crawl.
var ErrExtraction = errors.New("navigation extraction failed")
