package ids

import "github.com/segmentio/ksuid"

// New returns a K-sortable unique identifier.
func New() string {
	return ksuid.New().String()
}
