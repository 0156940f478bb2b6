package explorer

import "errors"

var (
	// ErrConfiguration is returned before crawling starts when a required
	// setting is missing or invalid. It wraps the specific config error.
	ErrConfiguration = errors.New("invalid exploration settings")

	// ErrSession is returned when the browser session cannot be opened or
	// is lost mid-crawl. It ends the run.
	ErrSession = errors.New("browser session failed")

	// ErrAlreadyRun is returned when Explore is called more than once.
	ErrAlreadyRun = errors.New("explorer has already run")
)
