// Package session implements the trust layer between admission and request
// handling: the per-process epoch, the signed claim cookie, durable session
// revival and the fence guarding protected handlers.
package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Epoch is the process-wide session validity marker. A fresh value is drawn
// once at startup, so every claim issued by a previous process stops
// validating after a restart and clients must re-authenticate.
type Epoch int64

// NewEpoch draws a random epoch in [0, bound) from the system CSPRNG.
func NewEpoch(bound int64) (Epoch, error) {
	if bound <= 1 {
		return 0, fmt.Errorf("epoch bound must be greater than 1, got %d", bound)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(bound))
	if err != nil {
		return 0, fmt.Errorf("error drawing session epoch: %w", err)
	}
	return Epoch(n.Int64()), nil
}
