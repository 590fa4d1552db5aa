package rooms

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Alphabet excludes ambiguous characters: 0, O, 1, I, L. DefaultCode
// contains an I, so a generated code can never shadow it.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codeLength   = 4
	codeAttempts = 10
)

var errCodesExhausted = errors.New("no free room code")

// newCode draws codes until one is not taken, giving up after codeAttempts.
func newCode(taken func(string) bool) (string, error) {
	for range codeAttempts {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if !taken(code) {
			return code, nil
		}
	}
	return "", errCodesExhausted
}

func randomCode() (string, error) {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}
