// ABOUTME: Multipart form bodies for file-carrying calls
// ABOUTME: Fields and files are written in insertion order

package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

type formPart struct {
	name        string
	value       string
	filename    string
	contentType string
	data        []byte
}

// Form is a multipart/form-data body. It is never mixed with a JSON body.
type Form struct {
	parts []formPart
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Field appends a text field.
func (f *Form) Field(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// File appends a file part. contentType defaults to application/octet-stream.
func (f *Form) File(name, filename, contentType string, data []byte) *Form {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, formPart{name: name, filename: filename, contentType: contentType, data: data})
	return f
}

// Append copies the parts of other onto f, in order.
func (f *Form) Append(other *Form) *Form {
	f.parts = append(f.parts, other.parts...)
	return f
}

// Value returns the first text field named name.
func (f *Form) Value(name string) (string, bool) {
	for _, p := range f.parts {
		if p.name == name && p.filename == "" {
			return p.value, true
		}
	}
	return "", false
}

// Names returns part names in order.
func (f *Form) Names() []string {
	names := make([]string, len(f.parts))
	for i, p := range f.parts {
		names[i] = p.name
	}
	return names
}

// encode renders the form and returns the body and its content type.
func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if p.filename == "" {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("writing field %s: %w", p.name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.name, p.filename))
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %s: %w", p.name, err)
		}
		if _, err := pw.Write(p.data); err != nil {
			return nil, "", fmt.Errorf("writing part %s: %w", p.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
