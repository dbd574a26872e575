package test

import "math/rand"

const (
	hexDigits      = "0123456789abcdef"
	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

// RandomTxID returns a 64-char lowercase hex string shaped like a TRON transaction hash.
func RandomTxID() string {
	return randomFrom(hexDigits, 64)
}

// RandomTronAddress returns a 34-char base58 string starting with T. It is not checksummed.
func RandomTronAddress() string {
	return "T" + randomFrom(base58Alphabet, 33)
}

func randomFrom(alphabet string, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(buf)
}
