package sign

import (
	"bytes"
	stdcontext "context"
	"crypto"
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/digitorus/pkcs7"
	"github.com/digitorus/timestamp"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// byteRangePlaceholder reserves room in the signature dictionary for the
// four integers SignPDF patches in once the byte offsets are known.
const byteRangePlaceholder = "/ByteRange[0 ********** ********** **********]"

// digestMethodName maps a crypto.Hash to the /DigestMethod name PDF readers expect.
func digestMethodName(h crypto.Hash) string {
	switch h {
	case crypto.MD5:
		return "MD5"
	case crypto.SHA1:
		return "SHA1"
	case crypto.SHA256:
		return "SHA256"
	case crypto.SHA384:
		return "SHA384"
	case crypto.SHA512:
		return "SHA512"
	case crypto.RIPEMD160:
		return "RIPEMD160"
	default:
		return ""
	}
}

// Digest algorithm OIDs, as registered for CMS (RFC 3370/8017).
var (
	oidDigestAlgorithmMD5    = asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 5}
	oidDigestAlgorithmSHA1   = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}
	oidDigestAlgorithmSHA256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	oidDigestAlgorithmSHA384 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}
	oidDigestAlgorithmSHA512 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}
)

// getOIDFromHashAlgorithm maps a crypto.Hash to its CMS digest algorithm OID,
// for SignedData.SetDigestAlgorithm and the SigningCertificateV2 ESSCertID hash.
func getOIDFromHashAlgorithm(h crypto.Hash) asn1.ObjectIdentifier {
	switch h {
	case crypto.MD5:
		return oidDigestAlgorithmMD5
	case crypto.SHA1:
		return oidDigestAlgorithmSHA1
	case crypto.SHA384:
		return oidDigestAlgorithmSHA384
	case crypto.SHA512:
		return oidDigestAlgorithmSHA512
	default:
		return oidDigestAlgorithmSHA256
	}
}

// writeModificationTransform appends the /Reference entry describing which
// transform method guards the document against modification, per the
// signature's certification level.
func writeModificationTransform(buf *bytes.Buffer, sig SignDataSignature) {
	switch sig.CertType {
	case CertificationSignature, UsageRightsSignature:
		buf.WriteString(" /Reference [\n")
		buf.WriteString(" << /Type /SigRef\n")
	}

	switch sig.CertType {
	case CertificationSignature:
		// DocMDP: governs what changes a certification signature permits.
		buf.WriteString(" /TransformMethod /DocMDP\n")
		buf.WriteString(" /TransformParams <<\n")
		buf.WriteString("   /Type /TransformParams\n")
		buf.WriteString("   /P " + strconv.Itoa(int(sig.DocMDPPerm)))
		buf.WriteString("   /V /1.2\n")

	case UsageRightsSignature:
		// UR3 is deprecated as of PDF 2.0 but still accepted by readers.
		buf.WriteString("   /TransformMethod /UR3\n")
		buf.WriteString("   /TransformParams <<\n")
		buf.WriteString("     /Type /TransformParams\n")
		buf.WriteString("     /V /2.2\n")

	case ApprovalSignature:
		// FieldMDP: locks the form fields named in /Fields (here, all of them).
		buf.WriteString("   /TransformMethod /FieldMDP\n")
		buf.WriteString("   /TransformParams <<\n")
		buf.WriteString("     /Type /TransformParams\n")
		buf.WriteString("     /Action /All\n")
		buf.WriteString("     /V /1.2\n")
	}

	switch sig.CertType {
	case CertificationSignature, UsageRightsSignature:
		buf.WriteString("   >>\n") // close TransformParams
		buf.WriteString(" >>")     // close SigRef
		buf.WriteString(" ]")      // close Reference array
	case ApprovalSignature:
		buf.WriteString(" >>\n")
	}
}

// writeSignerMetadata appends the optional human-readable signing metadata
// fields (/Name, /Location, /Reason, /ContactInfo, /M) present on info.
func writeSignerMetadata(buf *bytes.Buffer, info SignDataSignatureInfo, omitDate bool) {
	if info.Name != "" {
		buf.WriteString(" /Name ")
		buf.WriteString(pdfString(info.Name))
		buf.WriteString("\n")
	}
	if info.Location != "" {
		buf.WriteString(" /Location ")
		buf.WriteString(pdfString(info.Location))
		buf.WriteString("\n")
	}
	if info.Reason != "" {
		buf.WriteString(" /Reason ")
		buf.WriteString(pdfString(info.Reason))
		buf.WriteString("\n")
	}
	if info.ContactInfo != "" {
		buf.WriteString(" /ContactInfo ")
		buf.WriteString(pdfString(info.ContactInfo))
		buf.WriteString("\n")
	}

	// /M only matters when there is no TSA: if SubFilter is ETSI.RFC3161 the
	// timestamp token itself carries the verifiable time and readers should
	// ignore /M entirely.
	if !omitDate && !info.Date.IsZero() {
		buf.WriteString(" /M ")
		buf.WriteString(pdfDateTime(info.Date))
		buf.WriteString("\n")
	}
}

// createSignaturePlaceholder builds the /Type /Sig dictionary with a
// zero-filled /Contents hex string and a dummy /ByteRange, both patched in
// once the real digest and offsets are known.
func (context *SignContext) createSignaturePlaceholder() []byte {
	var buf bytes.Buffer

	buf.WriteString("<<\n")
	buf.WriteString(" /Type /Sig\n")
	buf.WriteString(" /Filter /Adobe.PPKLite\n")
	buf.WriteString(" /SubFilter /adbe.pkcs7.detached\n")
	buf.WriteString(context.createPropBuild())
	buf.WriteString(" " + byteRangePlaceholder)
	buf.WriteString(" /Contents<")
	buf.Write(bytes.Repeat([]byte("0"), int(context.SignatureMaxLength)))
	buf.WriteString(">\n")

	writeModificationTransform(&buf, context.SignData.Signature)

	if method := digestMethodName(context.SignData.DigestAlgorithm); method != "" {
		buf.WriteString("   /DigestMethod /" + method + "\n")
	}

	writeSignerMetadata(&buf, context.SignData.Signature.Info, context.SignData.TSA.URL != "")

	buf.WriteString(">>\n")

	return buf.Bytes()
}

// createTimestampPlaceholder builds a bare /DocTimeStamp dictionary for a
// document-level (non-signature) timestamp, following the same
// placeholder-then-patch pattern as createSignaturePlaceholder.
func (context *SignContext) createTimestampPlaceholder() []byte {
	var buf bytes.Buffer

	buf.WriteString("<<\n")
	buf.WriteString(" /Type /DocTimeStamp\n")
	buf.WriteString(" /Filter /Adobe.PPKLite\n")
	buf.WriteString(" /SubFilter /ETSI.RFC3161\n")
	buf.WriteString(context.createPropBuild())
	buf.WriteString(" " + byteRangePlaceholder)
	buf.WriteString(" /Contents<")
	buf.Write(bytes.Repeat([]byte("0"), int(context.SignatureMaxLength)))
	buf.WriteString(">\n")
	buf.WriteString(">>\n")

	return buf.Bytes()
}

// fetchRevocationData runs the caller-supplied RevocationFunction once per
// certificate in the signing chain (pairing each with its issuer) so that
// OCSP/CRL material can be embedded as unsigned attributes, then grows
// SignatureMaxLength to make room for whatever came back.
func (context *SignContext) fetchRevocationData() error {
	if fn := context.SignData.RevocationFunction; fn != nil {
		if chains := context.SignData.CertificateChains; len(chains) > 0 {
			chain := chains[0]
			for i, cert := range chain {
				var issuer *x509.Certificate
				if i < len(chain)-1 {
					issuer = chain[i+1]
				}
				if err := fn(cert, issuer, &context.SignData.RevocationData); err != nil {
					return err
				}
			}
		}
	}

	for _, crl := range context.SignData.RevocationData.CRL {
		context.SignatureMaxLength += uint32(hex.EncodedLen(len(crl.FullBytes)))
	}
	for _, resp := range context.SignData.RevocationData.OCSP {
		context.SignatureMaxLength += uint32(hex.EncodedLen(len(resp.FullBytes)))
	}

	return nil
}

// signingCertificateV2OID and its predecessor identify the ESS attribute
// that binds the signing certificate's hash into the signed attributes,
// preventing substitution of a different certificate with the same key.
var (
	oidSigningCertificateV2 = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 47}
	oidSigningCertificate   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 12}
)

// createSigningCertificateAttribute builds the ESSCertID/ESSCertIDv2
// signed attribute binding the signer's certificate to this signature.
func (context *SignContext) createSigningCertificateAttribute() (*pkcs7.Attribute, error) {
	digestAlg := context.SignData.DigestAlgorithm
	hash := digestAlg.New()
	hash.Write(context.SignData.Certificate.Raw)

	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) { // SigningCertificate(V2)
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) { // certs
			b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) { // ESSCertID(v2)
				if digestAlg.HashFunc() != crypto.SHA1 && digestAlg.HashFunc() != crypto.SHA256 {
					b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
						b.AddASN1ObjectIdentifier(getOIDFromHashAlgorithm(digestAlg))
					})
				}
				b.AddASN1OctetString(hash.Sum(nil))
			})
		})
	})

	encoded, err := b.Bytes()
	if err != nil {
		return nil, err
	}

	attr := pkcs7.Attribute{
		Type:  oidSigningCertificateV2,
		Value: asn1.RawValue{FullBytes: encoded},
	}
	if digestAlg.HashFunc() == crypto.SHA1 {
		attr.Type = oidSigningCertificate
	}
	return &attr, nil
}

// signedContent returns the two byte ranges flanking the signature's
// /Contents placeholder, concatenated - this is what actually gets hashed
// and signed.
func (context *SignContext) signedContent() ([]byte, error) {
	if _, err := context.OutputBuffer.Seek(0, 0); err != nil {
		return nil, err
	}
	fileContent := context.OutputBuffer.Buff.Bytes()

	content := make([]byte, 0, context.ByteRangeValues[1]+context.ByteRangeValues[3])
	content = append(content, fileContent[context.ByteRangeValues[0]:context.ByteRangeValues[0]+context.ByteRangeValues[1]]...)
	content = append(content, fileContent[context.ByteRangeValues[2]:context.ByteRangeValues[2]+context.ByteRangeValues[3]]...)
	return content, nil
}

// createSignature produces the bytes that belong in /Contents: a bare RFC
// 3161 token for a document timestamp, or a detached PKCS#7/CMS SignedData
// blob (optionally carrying its own signature timestamp) otherwise.
func (context *SignContext) createSignature() ([]byte, error) {
	digestInput, err := context.signedContent()
	if err != nil {
		return nil, err
	}

	if context.SignData.Signature.CertType == TimeStampSignature {
		// ETSI EN 319 142-1: for ETSI.RFC3161, /Contents IS the TimeStampToken,
		// and its messageImprint covers the ByteRange-selected bytes directly.
		tsResp, err := context.GetTSA(digestInput)
		if err != nil {
			return nil, fmt.Errorf("get timestamp: %w", err)
		}
		ts, err := timestamp.ParseResponse(tsResp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		return ts.RawToken, nil
	}

	sd, err := pkcs7.NewSignedData(digestInput)
	if err != nil {
		return nil, fmt.Errorf("new signed data: %w", err)
	}
	sd.SetDigestAlgorithm(getOIDFromHashAlgorithm(context.SignData.DigestAlgorithm))

	signingCertAttr, err := context.createSigningCertificateAttribute()
	if err != nil {
		return nil, fmt.Errorf("new signed data: %w", err)
	}

	cfg := pkcs7.SignerInfoConfig{
		ExtraSignedAttributes: []pkcs7.Attribute{
			{
				Type:  asn1.ObjectIdentifier{1, 2, 840, 113583, 1, 1, 8},
				Value: context.SignData.RevocationData,
			},
			*signingCertAttr,
		},
	}

	// AddSignerChain wants the chain excluding the leaf certificate itself.
	var chain []*x509.Certificate
	if len(context.SignData.CertificateChains) > 0 && len(context.SignData.CertificateChains[0]) > 1 {
		chain = context.SignData.CertificateChains[0][1:]
	}

	if err := sd.AddSignerChain(context.SignData.Certificate, context.SignData.Signer, chain, cfg); err != nil {
		return nil, fmt.Errorf("add signer chain: %w", err)
	}

	// PDF signatures are always detached - the content is the document itself.
	sd.Detach()

	if context.SignData.TSA.URL != "" {
		if err := context.embedSignatureTimestamp(sd); err != nil {
			return nil, err
		}
	}

	return sd.Finish()
}

// embedSignatureTimestamp requests an RFC 3161 token over the signer's
// encrypted digest and attaches it as an unsigned attribute, producing a
// PAdES-B-T signature.
func (context *SignContext) embedSignatureTimestamp(sd *pkcs7.SignedData) error {
	data := sd.GetSignedData()

	tsResp, err := context.GetTSA(data.SignerInfos[0].EncryptedDigest)
	if err != nil {
		return fmt.Errorf("get timestamp: %w", err)
	}
	ts, err := timestamp.ParseResponse(tsResp)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	if _, err := pkcs7.Parse(ts.RawToken); err != nil {
		return fmt.Errorf("parse timestamp token: %w", err)
	}

	attr := pkcs7.Attribute{
		Type:  asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 14},
		Value: asn1.RawValue{FullBytes: ts.RawToken},
	}
	return data.SignerInfos[0].SetUnauthenticatedAttributes([]pkcs7.Attribute{attr})
}

// GetTSA requests an RFC 3161 timestamp token over content from the
// configured TSA. Delivery goes through SignData.TSA.Transport when set;
// otherwise it falls back to a plain HTTP POST, authenticating with basic
// auth when credentials are set.
func (context *SignContext) GetTSA(content []byte) ([]byte, error) {
	tsReqBytes, err := timestamp.CreateRequest(bytes.NewReader(content), &timestamp.RequestOptions{
		Hash:         context.SignData.DigestAlgorithm,
		Certificates: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	ctx := context.Context
	if ctx == nil {
		ctx = stdcontext.Background()
	}

	transport := context.SignData.TSA.Transport
	if transport == nil {
		transport = context.defaultTimestampTransport
	}

	return transport(ctx, context.SignData.TSA.URL, tsReqBytes)
}

// defaultTimestampTransport is the built-in TimestampTransport used when
// SignData.TSA.Transport is nil: a plain HTTP POST, with basic auth when
// credentials are configured.
func (context *SignContext) defaultTimestampTransport(ctx stdcontext.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare request (%s): %w", url, err)
	}
	req.Header.Add("Content-Type", "application/timestamp-query")
	req.Header.Add("Content-Transfer-Encoding", "binary")
	if context.SignData.TSA.Username != "" && context.SignData.TSA.Password != "" {
		req.SetBasicAuth(context.SignData.TSA.Username, context.SignData.TSA.Password)
	}

	resp, err := (&http.Client{}).Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil || status < 200 || status > 299 {
		if err == nil {
			defer func() { _ = resp.Body.Close() }()
			respBody, _ := io.ReadAll(resp.Body)
			return nil, errors.New("non success response (" + strconv.Itoa(status) + "): " + string(respBody))
		}
		return nil, errors.New("non success response (" + strconv.Itoa(status) + ")")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return respBody, nil
}

// replaceSignature computes the real signature, hex-encodes it into the
// reserved /Contents span, and zero-pads the remainder so the file's total
// length - and therefore every byte offset after it - never changes. If the
// real signature doesn't fit, SignPDF is retried with a larger placeholder.
func (context *SignContext) replaceSignature() error {
	signature, err := context.createSignature()
	if err != nil {
		return fmt.Errorf("failed to create signature: %w", err)
	}

	encoded := make([]byte, hex.EncodedLen(len(signature)))
	hex.Encode(encoded, signature)

	if uint32(len(encoded)) > context.SignatureMaxLength {
		log.Println("Signature too long, retrying with increased buffer size.")
		context.SignatureMaxLengthBase += (uint32(len(encoded)) - context.SignatureMaxLength) + 1
		return context.SignPDF()
	}

	if _, err := context.OutputBuffer.Seek(0, 0); err != nil {
		return err
	}
	fileContent := context.OutputBuffer.Buff.Bytes()

	if _, err := context.OutputBuffer.Write(fileContent[context.ByteRangeValues[0]:context.ByteRangeValues[1]]); err != nil {
		return err
	}
	if _, err := context.OutputBuffer.Write([]byte("<")); err != nil {
		return err
	}
	if _, err := context.OutputBuffer.Write(encoded); err != nil {
		return err
	}

	padding := bytes.Repeat([]byte("0"), int(context.SignatureMaxLength)-len(encoded))
	if _, err := context.OutputBuffer.Write(padding); err != nil {
		return err
	}
	if _, err := context.OutputBuffer.Write([]byte(">")); err != nil {
		return err
	}
	if _, err := context.OutputBuffer.Write(fileContent[context.ByteRangeValues[2] : context.ByteRangeValues[2]+context.ByteRangeValues[3]]); err != nil {
		return err
	}

	return nil
}

// fetchExistingSignatures scans the AcroForm's field array for existing
// signature fields, recording just enough (the field's object ID) to let
// SignPDF locate and extend them later.
func (context *SignContext) fetchExistingSignatures() ([]SignData, error) {
	var signatures []SignData

	acroForm := context.PDFReader.Trailer().Key("Root").Key("AcroForm")
	if acroForm.IsNull() {
		return signatures, nil
	}

	fields := acroForm.Key("Fields")
	if fields.IsNull() {
		return signatures, nil
	}

	for i := 0; i < fields.Len(); i++ {
		field := fields.Index(i)
		if field.Key("FT").Name() != "Sig" {
			continue
		}
		signatures = append(signatures, SignData{
			objectId: uint32(field.GetPtr().GetID()),
		})
	}

	return signatures, nil
}

// createPropBuild writes the /Prop_Build dictionary identifying the
// software that produced the signature, per the Adobe PDF Signature Build
// Dictionary Specification.
func (context *SignContext) createPropBuild() string {
	var buf bytes.Buffer
	buf.WriteString(" /Prop_Build <<\n")
	buf.WriteString("   /App << /Name /ArcSign#20PDFSig >>\n")
	buf.WriteString(" >>\n")
	return buf.String()
}
