package geojson

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/core/ports"
)

// FileSource reads a dataset from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file" }

func (s FileSource) LoadBoundaries(ctx context.Context) ([]domain.GeoLineString, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// HTTPSource downloads a dataset.
type HTTPSource struct {
	URL     string
	Timeout time.Duration
	client  *fasthttp.Client
}

// NewHTTPSource creates an HTTPSource with its own client.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		URL:     url,
		Timeout: timeout,
		client: &fasthttp.Client{
			Name:                "flightglobe",
			ReadTimeout:         timeout,
			MaxResponseBodySize: 64 << 20,
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

// Fetch returns the raw document body.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("boundary url not configured")
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.URL)
	req.Header.SetMethod(fasthttp.MethodGet)

	timeout := s.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem < timeout {
			timeout = rem
		}
	}
	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("fetch boundaries: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetch boundaries: status %d", resp.StatusCode())
	}
	// resp is released on return.
	return append([]byte(nil), resp.Body()...), nil
}

func (s *HTTPSource) LoadBoundaries(ctx context.Context) ([]domain.GeoLineString, error) {
	data, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// CacheSource reads a dataset previously stored by the boundary refresh
// workflow.
type CacheSource struct {
	Cache ports.CacheService
	Key   string
}

func (s CacheSource) Name() string { return "cache" }

func (s CacheSource) LoadBoundaries(ctx context.Context) ([]domain.GeoLineString, error) {
	data, err := s.Cache.Get(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", s.Key, err)
	}
	return Parse(data)
}
