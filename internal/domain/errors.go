package domain

import (
	"fmt"
	"strings"
)

// ErrMissingFields reports semantic fields that header detection could not
// map for a dataset. The run fails closed until the caller resolves the
// mapping (manually, via configuration overrides).
type ErrMissingFields struct {
	Dataset string
	Fields  []string
}

func (e *ErrMissingFields) Error() string {
	return fmt.Sprintf("dataset %s: no column found for fields: %s", e.Dataset, strings.Join(e.Fields, ", "))
}
