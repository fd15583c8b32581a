package convert

import "errors"

// ErrExtract indicates a mapping's source paths do not match the shape of
// the parsed document.
var ErrExtract = errors.New("extract graph data")
