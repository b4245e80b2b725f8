package fiscal

import (
	"fmt"

	"github.com/nfehub/backend/internal/domain/shared"
)

// AccessKeyLength is the mandated length of an NFe access key
const AccessKeyLength = 44

// AccessKey is the 44-digit identifier that uniquely names a fiscal document.
// Layout: cUF(2) AAMM(4) CNPJ(14) mod(2) serie(3) nNF(9) tpEmis(1) cNF(8) cDV(1).
type AccessKey string

// Access key validation errors
var (
	ErrMalformedKey     = shared.NewDomainError("MALFORMED_KEY", "Access key must be exactly 44 numeric characters")
	ErrChecksumMismatch = shared.NewDomainError("CHECKSUM_MISMATCH", "Access key check digit does not match")
)

// NewAccessKey validates the given string and returns it as an AccessKey
func NewAccessKey(key string) (AccessKey, error) {
	if err := ValidateAccessKey(key); err != nil {
		return "", err
	}
	return AccessKey(key), nil
}

// ValidateAccessKey checks the structural shape and the embedded check digit
func ValidateAccessKey(key string) error {
	if len(key) != AccessKeyLength {
		return ErrMalformedKey
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return ErrMalformedKey
		}
	}
	if ComputeCheckDigit(key[:AccessKeyLength-1]) != int(key[AccessKeyLength-1]-'0') {
		return ErrChecksumMismatch
	}
	return nil
}

// ComputeCheckDigit computes the weighted modulo-11 check digit over the
// 43-digit prefix. Weights cycle 2..9 starting from the rightmost digit and
// moving left, wrapping back to 2 after 9.
func ComputeCheckDigit(prefix string) int {
	sum := 0
	weight := 2
	for i := len(prefix) - 1; i >= 0; i-- {
		sum += int(prefix[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// String returns the raw 44-digit key
func (k AccessKey) String() string {
	return string(k)
}

// UFCode returns the IBGE state code embedded in the key
func (k AccessKey) UFCode() string {
	return string(k[0:2])
}

// IssuePeriod returns the AAMM (year/month) segment of the key
func (k AccessKey) IssuePeriod() string {
	return string(k[2:6])
}

// EmitterCNPJ returns the emitter CNPJ embedded in the key
func (k AccessKey) EmitterCNPJ() string {
	return string(k[6:20])
}

// Model returns the fiscal document model code (55 for NFe, 65 for NFCe)
func (k AccessKey) Model() string {
	return string(k[20:22])
}

// Series returns the document series embedded in the key
func (k AccessKey) Series() string {
	return string(k[22:25])
}

// DocumentNumber returns the nine-digit document number embedded in the key
func (k AccessKey) DocumentNumber() string {
	return string(k[25:34])
}

// Masked returns the key grouped in blocks of four for display
func (k AccessKey) Masked() string {
	s := string(k)
	out := ""
	for i := 0; i < len(s); i += 4 {
		if i > 0 {
			out += " "
		}
		out += s[i : i+4]
	}
	return out
}

// MustAccessKey parses a key and panics on failure. Test helper.
func MustAccessKey(key string) AccessKey {
	k, err := NewAccessKey(key)
	if err != nil {
		panic(fmt.Sprintf("invalid access key %q: %v", key, err))
	}
	return k
}
