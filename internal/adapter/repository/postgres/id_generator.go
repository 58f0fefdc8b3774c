package postgres

import "github.com/oklog/ulid/v2"

// ULIDGenerator issues lexicographically sortable IDs for accounts,
// transactions and loan requests.
type ULIDGenerator struct{}

// NewULIDGenerator creates a ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a fresh ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
