package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Алфавит без 0/O/1/I — коды диктуют по телефону.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeGroups    = 4
	codeGroupSize = 4
)

// NewActivationCode — код вида XXXX-XXXX-XXXX-XXXX (криптослучайный).
func NewActivationCode() (string, error) {
	raw := make([]byte, codeGroups*codeGroupSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("activation code: %w", err)
	}

	var b strings.Builder
	for i, c := range raw {
		if i > 0 && i%codeGroupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}
