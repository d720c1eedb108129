package verify

import (
	"time"

	"github.com/digitorus/timestamp"
)

// Signer holds the result of verifying one signature found in a PDF.
type Signer struct {
	Name        string
	Reason      string
	Location    string
	ContactInfo string

	ValidSignature   bool
	ValidationErrors []error
	TrustedIssuer    bool

	RevokedCertificate bool
	Certificates       []Certificate

	TimeStamp     *timestamp.Timestamp
	SignatureTime *time.Time

	// VerificationTime is the point in time chain validation and revocation
	// checks were evaluated at, and TimeSource records where it came from
	// ("embedded_timestamp", "signature_time", or "current_time").
	VerificationTime *time.Time
	TimeSource       string
	TimeWarnings     []string

	TimestampStatus  string
	TimestampTrusted bool
}

// NewSigner returns a zero-valued Signer ready to be filled in by VerifySignature.
func NewSigner() *Signer {
	return &Signer{}
}
