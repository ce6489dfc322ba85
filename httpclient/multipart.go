package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"

	"github.com/gabriel-vasile/mimetype"
)

// FileUpload is a multipart/form-data body carrying a single file part.
// Pass it as Request.Body; the client sets the boundary Content-Type.
type FileUpload struct {
	// Field is the form field name.
	Field string
	// FileName is sent in the part's Content-Disposition.
	FileName string
	// ContentType of the part. Sniffed from Data when empty.
	ContentType string
	Data        []byte
}

func (f *FileUpload) encode() (io.Reader, string, error) {
	if f.Field == "" {
		return nil, "", fmt.Errorf("multipart field name is required")
	}
	disposition := mime.FormatMediaType("form-data", map[string]string{
		"name":     f.Field,
		"filename": f.FileName,
	})
	if disposition == "" {
		return nil, "", fmt.Errorf("invalid multipart field %q or file name %q", f.Field, f.FileName)
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(f.Data).String()
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", disposition)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
