package sign

import (
	"crypto/x509"
	"errors"

	"github.com/arcsign/pdfsig/revocation"
)

// RevocationCache supplies pre-fetched revocation material - OCSP responses
// and/or CRLs - for a certificate. Retrieving that material from a
// responder or distribution point over the network is the caller's
// responsibility; RevocationCache only looks up what the caller already has.
type RevocationCache interface {
	// OCSP returns a DER-encoded OCSP response for cert (issued by issuer), if cached.
	OCSP(cert, issuer *x509.Certificate) ([]byte, bool)
	// CRL returns a DER-encoded CRL covering cert, if cached.
	CRL(cert *x509.Certificate) ([]byte, bool)
}

// RevocationOptions configures the default RevocationFunction returned by
// NewRevocationFunction.
type RevocationOptions struct {
	// EmbedOCSP enables looking up and embedding a cached OCSP response.
	EmbedOCSP bool
	// EmbedCRL enables looking up and embedding a cached CRL.
	EmbedCRL bool
	// PreferCRL tries the CRL cache before the OCSP cache.
	PreferCRL bool
	// StopOnSuccess skips the second lookup once one kind of revocation
	// data has already been embedded.
	StopOnSuccess bool
	// Cache is consulted for both OCSP and CRL lookups. Required.
	Cache RevocationCache
}

// NewRevocationFunction builds a RevocationFunction that embeds revocation
// data already available in opts.Cache - it never makes network calls
// itself. Populate the cache ahead of time (e.g. by following the
// certificate's OCSPServer/CRLDistributionPoints URLs) and pass it via
// SignBuilder.RevocationCache.
func NewRevocationFunction(opts RevocationOptions) RevocationFunction {
	return func(cert, issuer *x509.Certificate, archival *revocation.InfoArchival) error {
		if opts.Cache == nil {
			return errors.New("sign: RevocationOptions.Cache is nil, nothing to embed")
		}

		tryOCSP := func() bool {
			if !opts.EmbedOCSP {
				return false
			}
			b, ok := opts.Cache.OCSP(cert, issuer)
			if !ok {
				return false
			}
			_ = archival.AddOCSP(b)
			return true
		}
		tryCRL := func() bool {
			if !opts.EmbedCRL {
				return false
			}
			b, ok := opts.Cache.CRL(cert)
			if !ok {
				return false
			}
			_ = archival.AddCRL(b)
			return true
		}

		var embeddedOCSP, embeddedCRL bool
		if opts.PreferCRL {
			embeddedCRL = tryCRL()
			if !embeddedCRL || !opts.StopOnSuccess {
				embeddedOCSP = tryOCSP()
			}
		} else {
			embeddedOCSP = tryOCSP()
			if !embeddedOCSP || !opts.StopOnSuccess {
				embeddedCRL = tryCRL()
			}
		}

		if !embeddedOCSP && !embeddedCRL {
			return errors.New("sign: no cached revocation data available for certificate")
		}
		return nil
	}
}
