package verify

import "fmt"

// msgError is embedded by the verification error types below so each keeps a
// distinct type (for errors.As discrimination) while sharing one Error body.
type msgError struct {
	Msg string
}

func (e msgError) Error() string {
	return e.Msg
}

// ValidationError represents a general validation error in the verification process.
type ValidationError struct {
	msgError
}

// RevocationError represents an error during revocation checking (CRL/OCSP).
type RevocationError struct {
	msgError
	Err error
}

func (e *RevocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *RevocationError) Unwrap() error {
	return e.Err
}

// InvalidSignatureError indicates that the cryptographic signature verification failed.
type InvalidSignatureError struct {
	msgError
}

// PolicyError indicates a violation of validation policy (e.g. key size).
type PolicyError struct {
	msgError
}
