// Package password hashes and verifies passwords with bcrypt. Hashing is
// deliberately slow, so both operations run behind a bounded semaphore:
// under concurrent load at most maxConcurrent hashes run at once and the
// rest wait, honoring context cancellation, instead of piling onto the
// request path.
package password

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// Hasher hashes and compares passwords with a concurrency bound
type Hasher struct {
	sem        chan struct{}
	bcryptCost int
}

// NewHasher creates a Hasher with the given bcrypt cost. maxConcurrent <= 0
// defaults to 4.
func NewHasher(bcryptCost, maxConcurrent int) *Hasher {
	if bcryptCost == 0 {
		bcryptCost = 10
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Hasher{
		sem:        make(chan struct{}, maxConcurrent),
		bcryptCost: bcryptCost,
	}
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.sem
}

// Hash returns the bcrypt hash of the plaintext password. The plaintext is
// never stored or logged.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies the plaintext against a stored hash, returning
// domain.ErrInvalidCredentials on mismatch.
func (h *Hasher) Compare(ctx context.Context, hashed, plaintext string) error {
	if err := h.acquire(ctx); err != nil {
		return err
	}
	defer h.release()

	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}
