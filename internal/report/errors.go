package report

import "errors"

// ErrNilReport is returned when a writer is handed a nil report.
var ErrNilReport = errors.New("report is nil")
