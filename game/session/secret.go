package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// SecretSource draws the secret number for a new game
type SecretSource interface {
	Draw(minRange, maxRange int) (int, error)
}

// CryptoSecretSource draws uniformly from [min, max] using crypto/rand
type CryptoSecretSource struct{}

// Draw returns a uniformly distributed integer in [minRange, maxRange]
func (CryptoSecretSource) Draw(minRange, maxRange int) (int, error) {
	if minRange > maxRange {
		return 0, fmt.Errorf("invalid range [%d, %d]", minRange, maxRange)
	}
	span := new(big.Int).Sub(big.NewInt(int64(maxRange)), big.NewInt(int64(minRange)))
	span.Add(span, big.NewInt(1))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, err
	}
	return minRange + int(n.Int64()), nil
}

// FixedSecret always returns the same value. It is meant for tests and demos.
type FixedSecret int

// Draw returns the fixed value
func (f FixedSecret) Draw(minRange, maxRange int) (int, error) {
	v := int(f)
	if v < minRange || v > maxRange {
		return 0, fmt.Errorf("fixed secret %d outside [%d, %d]", v, minRange, maxRange)
	}
	return v, nil
}
