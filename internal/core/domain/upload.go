package domain

import (
	"errors"
	"strings"
)

// Form field names of the document upload.
const (
	UploadTitleField = "title"
	UploadFileField  = "file"
)

// DefaultMIMEType is used for file parts that declare no content type.
const DefaultMIMEType = "application/octet-stream"

// ErrMissingTitle is returned by Validate when the title field is absent or blank.
var ErrMissingTitle = errors.New("title is required")

// UploadFile is a file part held in memory for the duration of one upload.
type UploadFile struct {
	Filename string
	MIMEType string
	Data     []byte
}

// UploadPayload is a materialized multipart upload: at most one file and a flat
// set of scalar fields. Title is kept out of Fields.
type UploadPayload struct {
	Title  string
	Fields map[string]string
	File   *UploadFile
}

// Validate checks the invariants of an upload before it is forwarded.
func (p UploadPayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// Size is the number of file bytes carried, 0 when no file is present.
func (p UploadPayload) Size() int {
	if p.File == nil {
		return 0
	}
	return len(p.File.Data)
}
