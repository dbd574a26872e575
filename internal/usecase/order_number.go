package usecase

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
)

const (
	orderNumberPrefix   = "FL"
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberSuffix   = 6
)

var orderNumberPattern = regexp.MustCompile(`^FL\d{13}[A-Z0-9]{6}$`)

// OrderNumberGenerator mints order numbers of the form FL<13-digit ms timestamp><6 base36 chars>.
type OrderNumberGenerator struct {
	now    func() time.Time
	random io.Reader
}

// NewOrderNumberGenerator constructs generator backed by crypto/rand.
func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{now: time.Now, random: rand.Reader}
}

// Generate returns a fresh order number.
func (g *OrderNumberGenerator) Generate() (string, error) {
	alphabetSize := big.NewInt(int64(len(orderNumberAlphabet)))
	suffix := make([]byte, orderNumberSuffix)
	for i := range suffix {
		n, err := rand.Int(g.random, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("order number entropy: %w", err)
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s%013d%s", orderNumberPrefix, g.now().UnixMilli(), suffix), nil
}

// Validate reports whether number has the generated shape.
func (g *OrderNumberGenerator) Validate(number string) bool {
	return orderNumberPattern.MatchString(number)
}

// ExtractTimestamp returns the mint time encoded in number.
func (g *OrderNumberGenerator) ExtractTimestamp(number string) (time.Time, error) {
	if !g.Validate(number) {
		return time.Time{}, domainErrors.ErrInvalidOrderNumber
	}
	ms, err := strconv.ParseInt(number[len(orderNumberPrefix):len(orderNumberPrefix)+13], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domainErrors.ErrInvalidOrderNumber, err)
	}
	return time.UnixMilli(ms), nil
}
