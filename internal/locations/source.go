// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package locations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// MaxDatasetBytes bounds how much any source will read.
const MaxDatasetBytes = 64 << 20

var (
	// ErrUnsupportedSource is returned by NewSource for unknown URI schemes.
	ErrUnsupportedSource = errors.New("unsupported dataset source")

	// ErrNotModified means the source content is unchanged since the last fetch.
	ErrNotModified = errors.New("dataset not modified")

	// ErrDatasetTooLarge means the source exceeded MaxDatasetBytes.
	ErrDatasetTooLarge = errors.New("dataset exceeds size limit")
)

// Source fetches the raw dataset document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Kind labels metrics and logs: "file", "http" or "s3".
	Kind() string
}

// NewSource picks an implementation from the URI scheme of cfg.Source.
func NewSource(ctx context.Context, cfg *config.DataConfig) (Source, error) {
	raw := strings.TrimSpace(cfg.Source)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return NewFileSource(raw), nil
	}

	switch u.Scheme {
	case "file":
		return NewFileSource(u.Path), nil
	case "http", "https":
		return NewHTTPSource(raw, cfg), nil
	case "s3":
		return NewS3SourceFromConfig(ctx, u.Host, strings.TrimPrefix(u.Path, "/"), cfg)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDatasetBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDatasetBytes {
		return nil, ErrDatasetTooLarge
	}
	return data, nil
}

// FileSource reads the dataset from a local file.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Kind() string { return "file" }

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.path, err)
	}
	return data, nil
}

// HTTPSource fetches the dataset from a REST endpoint. Requests are rate
// limited and go through a circuit breaker; conditional requests with the
// last ETag turn unchanged content into ErrNotModified.
type HTTPSource struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	name    string

	mu   sync.Mutex
	etag string
}

// NewHTTPSource creates an HTTP source using the data config's timeout,
// limiter and breaker settings.
func NewHTTPSource(rawURL string, cfg *config.DataConfig) *HTTPSource {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Limit(cfg.HTTPRateLimit)
	if cfg.HTTPRateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.HTTPBurst
	if burst < 1 {
		burst = 1
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	cbName := "dataset-http"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotModified) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &HTTPSource{
		url:     rawURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
		name:    cbName,
	}
}

func (s *HTTPSource) Kind() string { return "http" }

// BreakerState exposes the breaker state for health reporting.
func (s *HTTPSource) BreakerState() string {
	return s.cb.State().String()
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	data, err := s.cb.Execute(func() ([]byte, error) {
		return s.fetch(ctx)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
		return nil, fmt.Errorf("dataset endpoint unavailable: %w", err)
	case err != nil && !errors.Is(err, ErrNotModified):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
		return nil, err
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
		return data, err
	}
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	s.mu.Lock()
	if s.etag != "" {
		req.Header.Set("If-None-Match", s.etag)
	}
	s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		return nil, ErrNotModified
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch dataset: unexpected status %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}

	s.mu.Lock()
	s.etag = resp.Header.Get("ETag")
	s.mu.Unlock()

	return data, nil
}

// ResetETag forces the next fetch to download the full document.
func (s *HTTPSource) ResetETag() {
	s.mu.Lock()
	s.etag = ""
	s.mu.Unlock()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// S3GetObjectAPI is the subset of the S3 client used by S3Source.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the dataset from one S3 object.
type S3Source struct {
	client S3GetObjectAPI
	bucket string
	key    string
}

// NewS3Source wraps an existing client.
func NewS3Source(client S3GetObjectAPI, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

// NewS3SourceFromConfig builds an S3 client from the default AWS credential
// chain plus the data config's region, endpoint and addressing style.
func NewS3SourceFromConfig(ctx context.Context, bucket, key string, cfg *config.DataConfig) (*S3Source, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: s3 source needs s3://bucket/key", ErrUnsupportedSource)
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return NewS3Source(client, bucket, key), nil
}

func (s *S3Source) Kind() string { return "s3" }

func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := readLimited(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return data, nil
}
