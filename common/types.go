package common

import (
	"context"
	"crypto/x509"
	"time"

	"github.com/digitorus/timestamp"
	"golang.org/x/crypto/ocsp"
)

// DocumentInfo contains document information that can be extracted from any PDF.
// This is moved from verify package since it represents generic PDF metadata.
type DocumentInfo struct {
	Author     string `json:"author"`
	Creator    string `json:"creator"`
	Hash       string `json:"hash"`
	Name       string `json:"name"`
	Permission string `json:"permission"`
	Producer   string `json:"producer"`
	Subject    string `json:"subject"`
	Title      string `json:"title"`

	Pages        int       `json:"pages"`
	Keywords     []string  `json:"keywords"`
	ModDate      time.Time `json:"mod_date"`
	CreationDate time.Time `json:"creation_date"`
}

// TrustPredicate decides whether cert should be accepted as a trust anchor
// when building a certificate chain, in place of (or in addition to) the
// system root pool. Verification calls it once per candidate root; a nil
// predicate means only the system pool is trusted.
type TrustPredicate func(cert *x509.Certificate) bool

// Clock returns the current time. Both signing and verification accept one
// instead of calling time.Now() directly, so a caller can pin "now" for
// deterministic tests or re-verify a signature as of a specific instant.
type Clock func() time.Time

// RandomSource fills out with cryptographically random bytes, in place of
// crypto/rand.Reader. No component currently requires a custom source, but
// the type is exposed so one can be threaded in without an interface break.
type RandomSource func(out []byte) error

// TimestampTransport delivers a DER-encoded RFC 3161 timestamp request to url
// and returns the raw response body. It replaces a baked-in *http.Client so a
// caller can substitute retries, proxying, or a stub for tests.
type TimestampTransport func(ctx context.Context, url string, body []byte) ([]byte, error)

// SignatureInfo contains information about the signer and signature.
// This consolidates the duplicated SignatureInfo types from both packages.
type SignatureInfo struct {
	Name          string               `json:"name"`
	Reason        string               `json:"reason"`
	Location      string               `json:"location"`
	ContactInfo   string               `json:"contact_info"`
	SignatureTime *time.Time           `json:"signature_time,omitempty"`
	TimeStamp     *timestamp.Timestamp `json:"time_stamp,omitempty"`
	DocumentHash  string               `json:"document_hash"`
	SignatureHash string               `json:"signature_hash"`
	HashAlgorithm string               `json:"hash_algorithm"`
}

// Certificate contains certificate information and validation results.
// This is moved from verify package but could be useful for signing operations too.
type Certificate struct {
	Certificate          *x509.Certificate `json:"certificate"`
	VerifyError          string            `json:"verify_error"`
	KeyUsageValid        bool              `json:"key_usage_valid"`
	KeyUsageError        string            `json:"key_usage_error,omitempty"`
	ExtKeyUsageValid     bool              `json:"ext_key_usage_valid"`
	ExtKeyUsageError     string            `json:"ext_key_usage_error,omitempty"`
	OCSPResponse         *ocsp.Response    `json:"ocsp_response"`
	OCSPEmbedded         bool              `json:"ocsp_embedded"`
	OCSPExternal         bool              `json:"ocsp_external"`
	CRLRevoked           time.Time         `json:"crl_revoked"`
	CRLEmbedded          bool              `json:"crl_embedded"`
	CRLExternal          bool              `json:"crl_external"`
	RevocationWarning    string            `json:"revocation_warning,omitempty"`
	RevocationTime       *time.Time        `json:"revocation_time,omitempty"` // When the certificate was revoked (if applicable)
	RevokedBeforeSigning bool              `json:"revoked_before_signing"`    // Whether revocation occurred before signing
}
