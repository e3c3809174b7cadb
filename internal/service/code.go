package service

import (
	"crypto/rand"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateCode returns a random uppercase alphanumeric invite code.
// Uniqueness is enforced by the store; CreateRoom retries on collision.
func generateCode() string {
	buf := make([]byte, domain.CodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("room code entropy unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
