// Package gameid generates game identifiers: a UUIDv7 rendered as a
// 26-character Crockford base32 string, so identifiers sort by creation time.
package gameid

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the encoded length of an identifier.
const Length = 26

// Generator creates identifiers from a configurable entropy source.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator reading entropy from r. A nil reader uses
// crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new game ID from crypto/rand.
func Generate() string {
	id, err := NewGenerator(nil).Generate()
	if err != nil {
		panic("failed to generate game id: " + err.Error())
	}
	return id
}

// Generate creates a new game ID.
func (g *Generator) Generate() (string, error) {
	var (
		u   uuid.UUID
		err error
	)
	if g.rand != nil {
		u, err = uuid.NewV7FromReader(g.rand)
	} else {
		u, err = uuid.NewV7()
	}
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return Encode(u), nil
}

// Encode renders u as 26 base32 characters. The 128 bits are left-padded
// with two zero bits, so the first character is always 0-7.
func Encode(u uuid.UUID) string {
	n := new(big.Int).SetBytes(u[:])
	mask := big.NewInt(31)
	digit := new(big.Int)

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		digit.And(n, mask)
		out[i] = alphabet[digit.Int64()]
		n.Rsh(n, 5)
	}
	return string(out)
}

// Decode parses an identifier back into its UUID.
func Decode(id string) (uuid.UUID, error) {
	if err := Validate(id); err != nil {
		return uuid.Nil, err
	}

	n := new(big.Int)
	for _, c := range id {
		n.Lsh(n, 5)
		n.Or(n, big.NewInt(int64(strings.IndexRune(alphabet, c))))
	}

	var u uuid.UUID
	n.FillBytes(u[:])
	return u, nil
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	// Check first character doesn't exceed 7 (to ensure it represents ≤ 128 bits)
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
