package verify

import (
	"crypto/x509"
	"testing"

	"github.com/arcsign/pdfsig/revocation"
	"github.com/digitorus/pkcs7"
)

// TestBuildChains_ErrorHandling exercises the error-accumulation path in
// buildCertificateChainsWithOptions when the embedded OCSP/CRL bytes don't
// parse.
func TestBuildChains_ErrorHandling(t *testing.T) {
	p7 := &pkcs7.PKCS7{
		Certificates: []*x509.Certificate{{}},
	}
	signer := NewSigner()
	revInfo := revocation.InfoArchival{
		OCSP: revocation.OCSP{{FullBytes: []byte("garbage")}},
		CRL:  revocation.CRL{{FullBytes: []byte("garbage")}},
	}
	options := DefaultVerifyOptions()

	if _, err := buildCertificateChainsWithOptions(p7, signer, revInfo, options); err != nil {
		t.Logf("expected error from empty cert: %v", err)
	}
}

// TestBuildChains_ExternalCheckerConsulted confirms a configured
// ExternalRevocationChecker is actually invoked when a certificate carries no
// embedded revocation data but does carry distribution point URLs.
func TestBuildChains_ExternalCheckerConsulted(t *testing.T) {
	cert := &x509.Certificate{
		OCSPServer:            []string{"http://ocsp.example.test"},
		CRLDistributionPoints: []string{"http://crl.example.test"},
	}
	p7 := &pkcs7.PKCS7{
		Certificates: []*x509.Certificate{cert},
	}
	signer := NewSigner()
	options := DefaultVerifyOptions()
	checker := &fakeExternalChecker{}
	options.ExternalChecker = checker

	if _, err := buildCertificateChainsWithOptions(p7, signer, revocation.InfoArchival{}, options); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No issuer is present in the chain (self-contained single cert with no
	// valid chain), so the OCSP branch requires len(chain[0]) > 1 and won't
	// fire; the CRL branch has no such guard and should be consulted.
	if checker.crlCalls == 0 {
		t.Error("expected ExternalChecker.CRL to be consulted")
	}
}
