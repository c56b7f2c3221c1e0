package accesscode

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
)

const (
	// Alphabet is the 36-symbol code alphabet. 6 characters give ~2.2e9
	// possible codes, so collisions among active links are vanishingly rare.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Length is the fixed access code length.
	Length = 6

	// MaxAttempts bounds the regeneration loop when a freshly minted code
	// collides with an existing active one.
	MaxAttempts = 10
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ExistsFunc reports whether a code is already taken by an active share link.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// IsValid reports whether s has the shape of an access code.
func IsValid(s string) bool {
	return codeRegex.MatchString(s)
}

// Generate mints a fresh access code that exists(ctx, code) does not know.
// It performs no reservation; the caller must still handle a duplicate
// rejection from the store when two generators race on the same code.
func Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code, err := random()
		if err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check access code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	// 36^6 codes make this unreachable unless the store is saturated or
	// the exists check is misconfigured.
	return "", apperrors.GenerationExhausted(MaxAttempts)
}

func random() (string, error) {
	buf := make([]byte, Length)
	max := big.NewInt(int64(len(Alphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = Alphabet[n.Int64()]
	}

	return string(buf), nil
}
