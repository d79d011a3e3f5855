// Package formbridge materializes an inbound multipart upload and re-encodes it
// for the outbound call with a fresh boundary.
package formbridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/sufield/signbridge/internal/core/domain"
	bridgeerrors "github.com/sufield/signbridge/internal/core/errors"
)

// maxFieldBytes caps each scalar field.
const maxFieldBytes = 64 << 10

// Decode reads every part of a multipart/form-data body. The single file part is
// buffered in memory up to maxFileBytes; scalar parts are collected as strings.
// Any failure discards what was read and returns a MultipartParseError, or a
// PayloadTooLarge error when a size cap was hit.
func Decode(body io.Reader, contentType string, maxFileBytes int64) (domain.UploadPayload, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return domain.UploadPayload{}, bridgeerrors.NewMultipartParseError("content type must be multipart/form-data", err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return domain.UploadPayload{}, bridgeerrors.NewMultipartParseError("multipart boundary is missing", nil)
	}

	payload := domain.UploadPayload{Fields: map[string]string{}}
	reader := multipart.NewReader(body, boundary)
	for {
		part, err := reader.NextPart()
		// A bare io.EOF marks the closing boundary; wrapped EOFs are truncation.
		if err == io.EOF { //nolint:errorlint // sentinel identity is the signal here
			break
		}
		if err != nil {
			return domain.UploadPayload{}, readError("malformed multipart stream", err)
		}

		if err := collectPart(&payload, part, maxFileBytes); err != nil {
			_ = part.Close()
			return domain.UploadPayload{}, err
		}
		_ = part.Close()
	}

	if err := payload.Validate(); err != nil {
		return domain.UploadPayload{}, bridgeerrors.NewMultipartParseError(err.Error(), err)
	}
	return payload, nil
}

func collectPart(payload *domain.UploadPayload, part *multipart.Part, maxFileBytes int64) error {
	name := part.FormName()
	if name == "" {
		return bridgeerrors.NewMultipartParseError("multipart part without a field name", nil)
	}

	// A part is a file when it carries a filename parameter, even an empty one.
	// The parameter is read as sent: Part.FileName would strip any path.
	filename, isFile := fileParam(part)
	if isFile {
		if payload.File != nil {
			return bridgeerrors.NewMultipartParseError("only one file part is accepted", nil)
		}
		data, err := io.ReadAll(io.LimitReader(part, maxFileBytes+1))
		if err != nil {
			return readError("file part could not be read", err)
		}
		if int64(len(data)) > maxFileBytes {
			return bridgeerrors.NewPayloadTooLarge(maxFileBytes, nil)
		}
		if filename == "" && len(data) == 0 {
			// An empty file input: the browser had nothing selected.
			return nil
		}
		mimeType := part.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = domain.DefaultMIMEType
		}
		payload.File = &domain.UploadFile{
			Filename: filename,
			MIMEType: mimeType,
			Data:     data,
		}
		return nil
	}

	value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return readError("form field could not be read", err)
	}
	if len(value) > maxFieldBytes {
		return bridgeerrors.NewMultipartParseError(fmt.Sprintf("field %q is too long", name), nil)
	}
	if name == domain.UploadTitleField {
		payload.Title = string(value)
		return nil
	}
	payload.Fields[name] = string(value)
	return nil
}

func fileParam(part *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	filename, ok := params["filename"]
	return filename, ok
}

// readError maps a body read failure, distinguishing the request size cap.
func readError(detail string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return bridgeerrors.NewPayloadTooLarge(maxErr.Limit, err)
	}
	return bridgeerrors.NewMultipartParseError(detail, err)
}

// Body is an encoded outbound multipart body. It can be replayed, which the
// versioned/unversioned probe relies on.
type Body struct {
	data        []byte
	contentType string
}

// Reader returns a new reader over the encoded bytes.
func (b *Body) Reader() io.Reader {
	return bytes.NewReader(b.data)
}

// Bytes returns the encoded body.
func (b *Body) Bytes() []byte {
	return b.data
}

// ContentType carries the boundary generated for this body.
func (b *Body) ContentType() string {
	return b.contentType
}

// Len is the encoded length, used as the outbound Content-Length.
func (b *Body) Len() int64 {
	return int64(len(b.data))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes payload as a new multipart/form-data body: title first, the
// remaining scalar fields in key order, then the file with its original name and
// MIME type.
func Encode(payload domain.UploadPayload) (*Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(domain.UploadTitleField, payload.Title); err != nil {
		return nil, fmt.Errorf("failed to write title field: %w", err)
	}

	keys := make([]string, 0, len(payload.Fields))
	for k := range payload.Fields {
		if k == domain.UploadTitleField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, payload.Fields[k]); err != nil {
			return nil, fmt.Errorf("failed to write field %q: %w", k, err)
		}
	}

	if payload.File != nil {
		mimeType := payload.File.MIMEType
		if mimeType == "" {
			mimeType = domain.DefaultMIMEType
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			domain.UploadFileField, quoteEscaper.Replace(payload.File.Filename)))
		h.Set("Content-Type", mimeType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(payload.File.Data); err != nil {
			return nil, fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &Body{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}
