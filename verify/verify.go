package verify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/digitorus/pdf"

	"github.com/arcsign/pdfsig/extract"
)

// VerifyFile opens a PDF file and verifies every signature it contains using
// the default options.
func VerifyFile(file *os.File) (*Response, error) {
	return VerifyFileContext(context.Background(), file)
}

// VerifyFileContext is VerifyFile with an explicit cancellation context.
func VerifyFileContext(ctx context.Context, file *os.File) (*Response, error) {
	fi, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return VerifyContext(ctx, file, fi.Size())
}

// Verify reads a PDF from file and verifies every signature it contains using
// the default options.
func Verify(file io.ReaderAt, size int64) (*Response, error) {
	return VerifyContext(context.Background(), file, size)
}

// VerifyContext is Verify with an explicit cancellation context.
func VerifyContext(ctx context.Context, file io.ReaderAt, size int64) (*Response, error) {
	return VerifyWithOptionsContext(ctx, file, size, DefaultVerifyOptions())
}

// VerifyWithOptions reads a PDF from file and verifies every signature it
// contains, honoring the given options.
func VerifyWithOptions(file io.ReaderAt, size int64, options *VerifyOptions) (*Response, error) {
	return VerifyWithOptionsContext(context.Background(), file, size, options)
}

// VerifyWithOptionsContext is VerifyWithOptions with an explicit cancellation
// context. The context is checked once per signature found in the document,
// so a caller can abort verification of a document with many signatures
// without waiting for every one to finish.
func VerifyWithOptionsContext(ctx context.Context, file io.ReaderAt, size int64, options *VerifyOptions) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	response := &Response{}

	rdr, err := pdf.NewReader(file, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	info := rdr.Trailer().Key("Info")
	if !info.IsNull() {
		parseDocumentInfo(info, &response.DocumentInfo)
	}
	pages := rdr.Trailer().Key("Root").Key("Pages").Key("Count")
	if !pages.IsNull() {
		response.DocumentInfo.Pages = int(pages.Int64())
	}

	for sig, err := range extract.Iter(rdr, file) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err != nil {
			response.Error = fmt.Sprintf("failed to walk signature fields: %v", err)
			return response, nil
		}

		signer, err := VerifySignature(sig.Object(), file, size, options)
		if err != nil {
			response.Signers = append(response.Signers, Signer{
				ValidSignature:   false,
				ValidationErrors: []error{err},
			})
			continue
		}

		response.Signers = append(response.Signers, *signer)
	}

	return response, nil
}
