package recency

import "errors"

var errNotPresent = errors.New("recency: element not present")
