package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// FilePart is a file attached to a multipart upload.
type FilePart struct {
	// Field is the form field name; "file" when empty.
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Upload POSTs a multipart form built from fields and an optional file, and
// decodes the response into T. The Content-Type header always comes from
// the multipart encoder, whatever the caller passes.
func Upload[T any](ctx context.Context, g *Gateway, path string, fields map[string]string, file *FilePart, opts ...CallOption) Result[T] {
	cfg := newCallConfig(opts)

	body, contentType, err := encodeMultipart(fields, file)
	if err != nil {
		g.log.Error(ctx, "encode multipart body", "path", path, "error", err)
		return failure[T](MsgRequestFailed)
	}

	resp, log, err := g.send(ctx, outbound{
		method:            http.MethodPost,
		path:              path,
		query:             cfg.query,
		header:            cfg.header,
		body:              body,
		forcedContentType: contentType,
	})
	if err != nil {
		log.Warn(ctx, "upload failed", "error", err)
		return failure[T](MsgNetworkError)
	}
	return readResult[T](ctx, g, log, resp, cfg.signalUnauthorized)
}

func encodeMultipart(fields map[string]string, file *FilePart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if file != nil {
		field := file.Field
		if field == "" {
			field = "file"
		}

		var (
			w   io.Writer
			err error
		)
		if file.ContentType == "" {
			w, err = mw.CreateFormFile(field, file.Name)
		} else {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				escapeQuotes(field), escapeQuotes(file.Name)))
			h.Set("Content-Type", file.ContentType)
			w, err = mw.CreatePart(h)
		}
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if file.Content != nil {
			if _, err := io.Copy(w, file.Content); err != nil {
				return nil, "", fmt.Errorf("copy file %s: %w", file.Name, err)
			}
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
