// Package netx holds the multipart upload helper shared by the remote
// pinning services and the command line client.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload failed: %s; body: %s", e.Status, string(e.Body))
}

// Form describes a multipart upload: plain fields plus one file part.
type Form struct {
	Fields   map[string]string
	FileName string
	// FileType is the Content-Type of the file part; empty means
	// application/octet-stream.
	FileType string
	Data     []byte
}

// UploadMultipart POSTs data as the "file" part of a multipart form to url,
// authenticated with a bearer token, and returns the response body.
// Any non-2xx status is a *StatusError that quotes the start of the body.
func UploadMultipart(ctx context.Context, client *http.Client, url, token, filename string, data []byte) ([]byte, error) {
	return UploadForm(ctx, client, url, token, Form{FileName: filename, Data: data})
}

// UploadForm POSTs f as a multipart form. See UploadMultipart.
func UploadForm(ctx context.Context, client *http.Client, url, token string, f Form) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range f.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}

	fileType := f.FileType
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.FileName))
	h.Set("Content-Type", fileType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: b}
	}

	return io.ReadAll(resp.Body)
}
