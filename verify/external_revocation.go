package verify

import "crypto/x509"

// ExternalRevocationChecker performs live OCSP/CRL lookups on behalf of
// VerifySignature when a certificate carries no revocation data embedded in
// the PDF. The verify package never dials out itself - callers that want
// external revocation checking supply an implementation and set it as
// VerifyOptions.ExternalChecker (see sign.RevocationCache for the symmetric
// seam on the signing side).
type ExternalRevocationChecker interface {
	// OCSP returns a DER-encoded OCSP response for cert (issued by issuer), or
	// false if none could be retrieved.
	OCSP(cert, issuer *x509.Certificate) ([]byte, bool)
	// CRL returns a DER-encoded CRL covering cert, or false if none could be
	// retrieved.
	CRL(cert *x509.Certificate) ([]byte, bool)
}
