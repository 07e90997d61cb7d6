package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// ULID produces lexicographically sortable ids, used to tag outgoing requests.
type ULID struct{}

func (ULID) New() string {
	v, err := ulid.New(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	if err != nil {
		return ulid.Make().String()
	}
	return v.String()
}
