// Package aviationstack resolves flights through the aviationstack.com
// schedule API.
package aviationstack

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/metrics"
)

// Client implements ports.FlightProvider.
type Client struct {
	baseURL   string
	accessKey string
	timeout   time.Duration
	http      *fasthttp.Client
}

// New creates a client. baseURL is the API root, e.g.
// "http://api.aviationstack.com/v1".
func New(baseURL, accessKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		timeout:   timeout,
		http: &fasthttp.Client{
			Name:                "flightglobe",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

type flightsResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Data []struct {
		Departure endpoint `json:"departure"`
		Arrival   endpoint `json:"arrival"`
	} `json:"data"`
}

type endpoint struct {
	Airport   string     `json:"airport"`
	City      string     `json:"city"`
	IATA      string     `json:"iata"`
	Latitude  coordinate `json:"latitude"`
	Longitude coordinate `json:"longitude"`
}

// coordinate accepts a JSON number or a numeric string; anything else
// (including null, NaN and Inf) leaves it unset.
type coordinate struct {
	Value float64
	Set   bool
}

func (c *coordinate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	c.Value, c.Set = v, true
	return nil
}

func (e endpoint) point() (domain.GeoPoint, bool) {
	if !e.Latitude.Set || !e.Longitude.Set {
		return domain.GeoPoint{}, false
	}
	city := e.City
	if city == "" {
		city = e.Airport
	}
	return domain.GeoPoint{
		Lat:     e.Latitude.Value,
		Lng:     e.Longitude.Value,
		City:    city,
		Airport: e.Airport,
		Code:    e.IATA,
	}, true
}

// FetchFlight queries the API by IATA flight number and date. An API
// error, an empty result or a result without coordinates is reported as
// domain.ErrFlightNotFound; transport failures are returned as-is.
func (c *Client) FetchFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
	params := url.Values{}
	params.Set("flight_iata", q.FlightNumber)
	params.Set("flight_date", q.Date)
	params.Set("access_key", c.accessKey)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/flights?" + params.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem < timeout {
			timeout = rem
		}
	}

	start := time.Now()
	err := c.http.DoTimeout(req, resp, timeout)
	metrics.ProviderRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("aviationstack request: %w", err)
	}

	switch code := resp.StatusCode(); {
	case code == fasthttp.StatusNotFound:
		return nil, domain.ErrFlightNotFound
	case code != fasthttp.StatusOK:
		return nil, fmt.Errorf("aviationstack: unexpected status %d", code)
	}

	var body flightsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("aviationstack decode: %w", err)
	}
	if body.Error != nil {
		return nil, fmt.Errorf("%w: aviationstack %s: %s", domain.ErrFlightNotFound, body.Error.Code, body.Error.Message)
	}
	if len(body.Data) == 0 {
		return nil, domain.ErrFlightNotFound
	}

	f := body.Data[0]
	from, okFrom := f.Departure.point()
	to, okTo := f.Arrival.point()
	if !okFrom || !okTo {
		return nil, fmt.Errorf("%w: flight coordinates not found", domain.ErrFlightNotFound)
	}

	return &domain.FlightPair{
		From:         from,
		To:           to,
		FlightNumber: q.FlightNumber,
		Date:         q.Date,
		Source:       domain.SourceAPI,
	}, nil
}
