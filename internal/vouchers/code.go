package vouchers

import (
	"strings"

	"github.com/google/uuid"
)

// CodePrefix starts every voucher code.
const CodePrefix = "VCH"

const codeRandomLen = 8

// GenerateCode returns CodePrefix followed by 8 uppercase hex characters of a random UUID.
func GenerateCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return CodePrefix + strings.ToUpper(raw[:codeRandomLen])
}

// NormalizeCode trims and upper-cases a code supplied by a client.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
