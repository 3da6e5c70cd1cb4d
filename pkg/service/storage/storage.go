// Package storage uploads generated exports to Cloud Storage.
package storage

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

const (
	gcsScheme = "gs://"

	// XLSXContentType is the MIME type of an xlsx workbook
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Location is a Cloud Storage object address
type Location struct {
	Bucket string
	Object string
}

func (l Location) String() string {
	return gcsScheme + l.Bucket + "/" + l.Object
}

// ParseLocation parses gs://bucket/object. ok is false when s is not a gs:// URL.
func ParseLocation(s string) (loc Location, ok bool, err error) {
	if !strings.HasPrefix(s, gcsScheme) {
		return Location{}, false, nil
	}

	bucket, object, found := strings.Cut(strings.TrimPrefix(s, gcsScheme), "/")
	if !found || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return Location{}, true, goerr.New("invalid Cloud Storage location", goerr.V("location", s))
	}
	return Location{Bucket: bucket, Object: object}, true, nil
}

// Client writes objects to Cloud Storage
type Client struct {
	gcs *storage.Client
}

func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}
	return &Client{gcs: gcs}, nil
}

// Upload streams r into loc with the given content type
func (c *Client) Upload(ctx context.Context, loc Location, contentType string, r io.Reader) error {
	w := c.gcs.Bucket(loc.Bucket).Object(loc.Object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("location", loc.String()))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("location", loc.String()))
	}
	return nil
}

func (c *Client) Close() error {
	return c.gcs.Close()
}
