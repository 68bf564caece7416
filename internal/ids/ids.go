package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id for client-generated identifiers
// (device ids, socket client ids).
func New() string {
	return ksuid.New().String()
}
