package pdfsign

import (
	"crypto"
	"crypto/x509"
	"errors"

	"golang.org/x/crypto/pkcs12"
)

// LoadPKCS12 decodes a PKCS#12 (.pfx/.p12) bundle into a signing key, its
// certificate, and any chain certificates bundled alongside it. The result
// can be passed directly to Document.Sign.
//
// LoadPKCS12 only decrypts bytes already in memory - retrieving the bundle
// from disk, an HSM, or a secret store is the caller's responsibility.
func LoadPKCS12(data []byte, password string) (signer crypto.Signer, cert *x509.Certificate, chain []*x509.Certificate, err error) {
	key, cert, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, nil, nil, err
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, nil, nil, errors.New("pdfsign: PKCS#12 private key does not implement crypto.Signer")
	}

	return signer, cert, chain, nil
}
