package verify

import (
	"crypto/x509"
	"time"

	"github.com/arcsign/pdfsig/common"
)

// Certificate reuses the common package's certificate validation result,
// shared with the signing side so both packages report the same shape.
type Certificate = common.Certificate

// TrustPredicate and Clock are the external-collaborator seams VerifyOptions
// exposes; see common.TrustPredicate/common.Clock.
type (
	TrustPredicate = common.TrustPredicate
	Clock          = common.Clock
)

// VerifyOptions contains options for PDF signature verification
type VerifyOptions struct {
	// RequiredEKUs specifies the Extended Key Usages that must be present
	// Default: Document Signing EKU (1.3.6.1.5.5.7.3.36) per RFC 9336
	RequiredEKUs []x509.ExtKeyUsage

	// AllowedEKUs specifies additional Extended Key Usages that are acceptable
	// Common alternatives: Email Protection (1.3.6.1.5.5.7.3.4), Client Auth (1.3.6.1.5.5.7.3.2)
	AllowedEKUs []x509.ExtKeyUsage

	// RequireDigitalSignatureKU requires the Digital Signature bit in Key Usage
	RequireDigitalSignatureKU bool

	// RequireNonRepudiation requires the Non-Repudiation bit in Key Usage (mandatory for highest security)
	RequireNonRepudiation bool

	// TrustSignatureTime when true, trusts the signature time embedded in the PDF if no timestamp is present
	// WARNING: This time is provided by the signatory and should be considered untrusted for security-critical applications.
	TrustSignatureTime bool

	// ValidateTimestampCertificates when true, validates the timestamp token's signing certificate
	// including building a proper certification path and checking revocation status.
	ValidateTimestampCertificates bool

	// AllowUntrustedRoots when true, allows using certificates embedded in the PDF as trusted roots
	// WARNING: This makes signatures appear valid even if they're self-signed or from untrusted CAs
	// Only enable this for testing or when you explicitly trust the embedded certificates
	AllowUntrustedRoots bool

	// TrustAnchor, when set, is consulted for every candidate root certificate
	// in the chain in addition to the system pool and AllowUntrustedRoots; a
	// true result trusts that root regardless of where it came from. This is
	// the pluggable trust-anchor seam - callers that manage their own trust
	// store (e.g. an internal CA) supply a predicate instead of disabling
	// chain validation outright.
	TrustAnchor TrustPredicate

	// ExternalChecker, when set, is consulted for OCSP/CRL lookups over the
	// network when a certificate has no revocation data embedded in the PDF.
	// The verify package never dials out on its own; a nil ExternalChecker
	// means external revocation checking is skipped.
	ExternalChecker ExternalRevocationChecker

	// Now supplies the current time for chain validation and revocation
	// checks when AtTime is zero. Defaults to time.Now.
	Now Clock

	// ValidateFullChain enforces AllowedAlgorithms/MinRSAKeySize/MinECDSAKeySize on every
	// certificate in the chain rather than only the leaf (signer) certificate.
	ValidateFullChain bool

	// AllowedAlgorithms restricts which public key algorithms are accepted. Empty means
	// no restriction.
	AllowedAlgorithms []x509.PublicKeyAlgorithm

	// MinRSAKeySize rejects RSA keys smaller than this many bits. Zero means no minimum.
	MinRSAKeySize int

	// MinECDSAKeySize rejects ECDSA keys on a curve smaller than this many bits. Zero means
	// no minimum.
	MinECDSAKeySize int

	// AtTime, if non-zero, overrides the time used for chain validation and revocation
	// checks instead of the embedded timestamp, signature time, or current time.
	AtTime time.Time
}

// DefaultVerifyOptions returns the options used when the root fluent API is given no
// overrides: the Document Signing EKU required, Non-Repudiation and untrusted embedded
// roots left unenforced, and timestamp certificate validation enabled.
func DefaultVerifyOptions() *VerifyOptions {
	return &VerifyOptions{
		RequiredEKUs: []x509.ExtKeyUsage{
			x509.ExtKeyUsage(36), // id-kp-documentSigning, 1.3.6.1.5.5.7.3.36 (RFC 9336)
		},
		AllowedEKUs: []x509.ExtKeyUsage{
			x509.ExtKeyUsageEmailProtection,
			x509.ExtKeyUsageClientAuth,
		},
		RequireDigitalSignatureKU:     true,
		ValidateTimestampCertificates: true,
		Now:                           time.Now,
	}
}

// DocumentInfo reuses the common package's PDF metadata shape.
type DocumentInfo = common.DocumentInfo

// Response is the result of verifying every signature found in a PDF.
type Response struct {
	Error string

	DocumentInfo DocumentInfo
	Signers      []Signer
}
