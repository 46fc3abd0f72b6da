package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"

	"support-relay/internal/config"
	"support-relay/internal/relay"
)

// ObjectPutter uploads one object. *cos.ObjectService implements it.
type ObjectPutter interface {
	Put(ctx context.Context, name string, r io.Reader, opt *cos.ObjectPutOptions) (*cos.Response, error)
}

// COSSink mirrors transcripts into a Tencent Cloud COS bucket.
type COSSink struct {
	objects ObjectPutter
	prefix  string
}

var _ relay.ArchiveSink = (*COSSink)(nil)

// NewCOSSink builds a sink for the configured bucket.
func NewCOSSink(cfg config.COSConfig) (*COSSink, error) {
	u, err := url.Parse(cfg.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bucket url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid bucket url %q", cfg.BucketURL)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Timeout: cfg.Timeout,
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})
	return NewCOSSinkWithObjects(client.Object, cfg.Prefix), nil
}

func NewCOSSinkWithObjects(objects ObjectPutter, prefix string) *COSSink {
	return &COSSink{objects: objects, prefix: strings.Trim(prefix, "/")}
}

// ObjectName is where a transcript is stored: <prefix>/<yyyy>/<mm>/<dd>/<file>.
func (s *COSSink) ObjectName(t *relay.Transcript) string {
	return path.Join(s.prefix, t.ClosedAt.UTC().Format("2006/01/02"), t.FileName())
}

func (s *COSSink) Archive(ctx context.Context, t *relay.Transcript) error {
	name := s.ObjectName(t)
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: "text/plain; charset=utf-8",
		},
	}
	if _, err := s.objects.Put(ctx, name, strings.NewReader(t.Body), opt); err != nil {
		return fmt.Errorf("upload transcript %s: %w", name, err)
	}
	return nil
}
