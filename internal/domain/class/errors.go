package class

import "errors"

var (
	ErrClassNotFound = errors.New("class not found")
)
