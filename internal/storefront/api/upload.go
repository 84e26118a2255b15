package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

// Upload POSTs a multipart form with one file under field plus the extra
// text fields, and returns the created record.
func (c *Client) Upload(
	ctx context.Context,
	path, field, filename string,
	content io.Reader,
	extra map[string]string,
) (entity.Record, error) {
	if field == "" {
		return nil, fmt.Errorf("upload field cannot be empty")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writer.WriteField(k, extra[k]); err != nil {
			return nil, fmt.Errorf("failed to write form field %q: %w", k, err)
		}
	}

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	res, err := c.send(ctx, http.MethodPost, path, buf.Bytes(), writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	rec, err := res.Record()
	return rec, withTarget(err, http.MethodPost, path)
}
