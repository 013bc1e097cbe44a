package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

var codeSpan = big.NewInt(900000)

// GenerateCode returns a uniformly random six digit code in 100000..999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
