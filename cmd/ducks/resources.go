package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/ducks/internal/config"
	"github.com/vango-dev/ducks/internal/errors"
	"github.com/vango-dev/ducks/pkg/middleware"
	"github.com/vango-dev/ducks/pkg/resource"
	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

// binder builds resources from configuration. Senders are wrapped with
// metrics and tracing when those are enabled.
type binder struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *middleware.Metrics
	s3      *s3.Client
}

func newBinder(cfg *config.Config, logger *slog.Logger, metrics *middleware.Metrics) *binder {
	return &binder{cfg: cfg, logger: logger, metrics: metrics}
}

// bind creates the resource for rc with its default actions registered.
func (b *binder) bind(rc config.ResourceConfig) (*resource.Resource, error) {
	sender, err := b.sender(rc)
	if err != nil {
		return nil, err
	}

	opts := []resource.Option{
		resource.WithURL(rc.URL),
		resource.WithHeaders(rc.Headers),
		resource.WithState(seedEntities(rc.Seed)),
		resource.WithSender(sender),
		resource.WithLogger(b.logger.With("resource", rc.Name)),
	}
	if rc.DeleteMode == config.DeleteModeCompat {
		opts = append(opts, resource.WithDeleteMode(resource.DeleteSourceCompat))
	}
	if rc.ParamSearch == config.ParamSearchFirstKey {
		opts = append(opts, resource.WithParamSearch(resource.ParamSearchFirstKey))
	}

	res, err := resource.New(rc.Name, opts...)
	if err != nil {
		return nil, err
	}
	if err := res.RegisterDefaultActions(); err != nil {
		return nil, err
	}
	return res, nil
}

// dispatcher wraps d with action metrics when enabled.
func (b *binder) dispatcher(d store.Dispatcher) store.Dispatcher {
	if b.metrics == nil {
		return d
	}
	return b.metrics.Dispatcher(d)
}

func (b *binder) sender(rc config.ResourceConfig) (transport.Sender, error) {
	var sender transport.Sender
	switch rc.Transport {
	case config.TransportS3:
		client, err := b.s3Client()
		if err != nil {
			return nil, err
		}
		prefix := b.cfg.S3.Prefix + strings.ToLower(rc.Name) + "/"
		sender = transport.NewS3Sender(client, b.cfg.S3.Bucket, prefix, rc.Path(),
			transport.WithS3Logger(b.logger.With("resource", rc.Name)))
	default:
		sender = transport.NewHTTPSender(transport.WithLogger(b.logger.With("resource", rc.Name)))
	}

	if b.metrics != nil {
		sender = b.metrics.Sender(sender)
	}
	if b.cfg.Server.Tracing {
		sender = middleware.Tracing(sender)
	}
	return sender, nil
}

// s3Client lazily creates one client shared by all s3 resources. Credentials
// come from the standard AWS environment variables.
func (b *binder) s3Client() (*s3.Client, error) {
	if b.s3 != nil {
		return b.s3, nil
	}

	keyID := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if keyID == "" || secret == "" {
		return nil, errors.New("D141").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for s3 resources").
			WithSuggestion("Export AWS credentials or switch the resource to the http transport")
	}
	token := os.Getenv("AWS_SESSION_TOKEN")

	opts := s3.Options{
		Region:       b.cfg.S3.Region,
		UsePathStyle: b.cfg.S3.UsePathStyle,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     keyID,
					SecretAccessKey: secret,
					SessionToken:    token,
					Source:          "environment",
				}, nil
			})),
	}
	if b.cfg.S3.Endpoint != "" {
		opts.BaseEndpoint = aws.String(b.cfg.S3.Endpoint)
	}

	b.s3 = s3.New(opts)
	return b.s3, nil
}

func seedEntities(seed []map[string]any) []store.Entity {
	out := make([]store.Entity, 0, len(seed))
	for _, item := range seed {
		out = append(out, store.Entity(item))
	}
	return out
}

// sliceKey is the store key for a resource.
func sliceKey(name string) string {
	return strings.ToLower(name)
}
