package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/goccy/go-json"
)

// ObjectClient is the subset of *s3.Client used by S3Sender.
type ObjectClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Sender serves one collection out of a bucket. Each entity lives at
// <prefix><id>.json.
//
// Request paths are interpreted relative to root, the collection's base URL
// path: "" addresses the collection and "/<id>" a single entity.
//
//	GET    /widgets      list every entity
//	GET    /widgets/7    read one
//	POST   /widgets      create (an id is generated when missing)
//	PATCH  /widgets/7    merge fields into an existing entity
//	PUT    /widgets/7    replace
//	DELETE /widgets/7    delete and return the removed entity
type S3Sender struct {
	client ObjectClient
	bucket string
	prefix string
	root   string
	logger *slog.Logger
}

// S3Option configures an S3Sender.
type S3Option func(*S3Sender)

// WithS3Logger sets the sender's logger.
func WithS3Logger(logger *slog.Logger) S3Option {
	return func(s *S3Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewS3Sender creates a sender for the collection at root, stored under
// prefix in bucket.
//
// Example:
//
//	client := s3.New(s3.Options{Region: "us-east-1"})
//	sender := transport.NewS3Sender(client, "my-bucket", "widgets/", "/widgets")
func NewS3Sender(client ObjectClient, bucket, prefix, root string, opts ...S3Option) *S3Sender {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	s := &S3Sender{
		client: client,
		bucket: bucket,
		prefix: prefix,
		root:   strings.TrimSuffix(pathOf(root), "/"),
		logger: slog.Default().With("component", "transport.s3"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements Sender.
func (s *S3Sender) Send(ctx context.Context, req *Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method := NormalizeMethod(req.Method)
	if !SupportedMethod(method) {
		return nil, fmt.Errorf("transport: unsupported method %q", req.Method)
	}

	id, ok := s.entityID(req.Path())
	if !ok {
		return notFound("no collection at " + req.Path()), nil
	}

	switch {
	case method == MethodGet && id == "":
		return s.list(ctx)
	case method == MethodGet:
		return s.get(ctx, id)
	case method == MethodPost && id == "":
		return s.create(ctx, req.Body)
	case method == MethodPatch && id != "":
		return s.patch(ctx, id, req.Body)
	case method == MethodPut && id != "":
		return s.put(ctx, id, req.Body)
	case method == MethodDelete && id != "":
		return s.delete(ctx, id)
	}

	return &Response{
		StatusCode: http.StatusMethodNotAllowed,
		Body:       map[string]any{"error": method + " not allowed on " + req.Path()},
	}, nil
}

// entityID splits a request path into the collection root and an id.
func (s *S3Sender) entityID(p string) (string, bool) {
	p = strings.TrimSuffix(p, "/")
	if p == s.root {
		return "", true
	}
	if !strings.HasPrefix(p, s.root+"/") {
		return "", false
	}
	id := strings.TrimPrefix(p, s.root+"/")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (s *S3Sender) key(id string) string {
	return s.prefix + id + ".json"
}

func (s *S3Sender) list(ctx context.Context) (*Response, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && strings.HasSuffix(*obj.Key, ".json") {
				keys = append(keys, *obj.Key)
			}
		}
	}
	sort.Strings(keys)

	items := make([]any, 0, len(keys))
	for _, key := range keys {
		entity, err := s.read(ctx, key)
		if err != nil {
			if isNoSuchKey(err) {
				continue
			}
			return nil, err
		}
		items = append(items, entity)
	}

	return &Response{OK: true, StatusCode: http.StatusOK, Body: items}, nil
}

func (s *S3Sender) get(ctx context.Context, id string) (*Response, error) {
	entity, err := s.read(ctx, s.key(id))
	if err != nil {
		if isNoSuchKey(err) {
			return notFound("no entity with id " + id), nil
		}
		return nil, err
	}
	return &Response{OK: true, StatusCode: http.StatusOK, Body: entity}, nil
}

func (s *S3Sender) create(ctx context.Context, body any) (*Response, error) {
	entity, err := toObject(body)
	if err != nil {
		return badRequest(err), nil
	}

	id, ok := idString(entity["id"])
	if !ok {
		id = generateID()
		entity["id"] = id
	}

	if err := s.write(ctx, id, entity); err != nil {
		return nil, err
	}
	return &Response{OK: true, StatusCode: http.StatusCreated, Body: entity}, nil
}

func (s *S3Sender) patch(ctx context.Context, id string, body any) (*Response, error) {
	existing, err := s.read(ctx, s.key(id))
	if err != nil {
		if isNoSuchKey(err) {
			return notFound("no entity with id " + id), nil
		}
		return nil, err
	}

	changes, err := toObject(body)
	if err != nil {
		return badRequest(err), nil
	}
	for k, v := range changes {
		if k == "id" {
			continue
		}
		existing[k] = v
	}

	if err := s.write(ctx, id, existing); err != nil {
		return nil, err
	}
	return &Response{OK: true, StatusCode: http.StatusOK, Body: existing}, nil
}

func (s *S3Sender) put(ctx context.Context, id string, body any) (*Response, error) {
	entity, err := toObject(body)
	if err != nil {
		return badRequest(err), nil
	}
	if existing, ok := entity["id"]; !ok || existing == nil {
		entity["id"] = id
	}

	if err := s.write(ctx, id, entity); err != nil {
		return nil, err
	}
	return &Response{OK: true, StatusCode: http.StatusOK, Body: entity}, nil
}

func (s *S3Sender) delete(ctx context.Context, id string) (*Response, error) {
	existing, err := s.read(ctx, s.key(id))
	if err != nil {
		if isNoSuchKey(err) {
			return notFound("no entity with id " + id), nil
		}
		return nil, err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 delete failed: %w", err)
	}

	s.logger.Debug("entity deleted", "bucket", s.bucket, "id", id)
	return &Response{OK: true, StatusCode: http.StatusOK, Body: existing}, nil
}

func (s *S3Sender) read(ctx context.Context, key string) (map[string]any, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read failed: %w", err)
	}

	var entity map[string]any
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("s3 object %s is not a JSON object: %w", key, err)
	}
	if entity == nil {
		entity = map[string]any{}
	}
	return entity, nil
}

func (s *S3Sender) write(ctx context.Context, id string, entity map[string]any) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}

	s.logger.Debug("entity written", "bucket", s.bucket, "id", id)
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

func toObject(body any) (map[string]any, error) {
	if body == nil {
		return map[string]any{}, nil
	}
	if m, ok := body.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.New("body must be a JSON object")
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func idString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s := FormatValue(v)
	if s == "" || strings.Contains(s, "/") {
		return "", false
	}
	return s, true
}

func generateID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func pathOf(raw string) string {
	r := &Request{URL: raw}
	return path.Clean("/" + strings.TrimPrefix(r.Path(), "/"))
}

func notFound(msg string) *Response {
	return &Response{StatusCode: http.StatusNotFound, Body: map[string]any{"error": msg}}
}

func badRequest(err error) *Response {
	return &Response{StatusCode: http.StatusBadRequest, Body: map[string]any{"error": err.Error()}}
}
