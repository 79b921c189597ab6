package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderwarden/internal/model"
)

const (
	CarrierUPS     = "ups"
	CarrierUSPS    = "usps"
	CarrierFedEx   = "fedex"
	CarrierDHL     = "dhl"
	CarrierUnknown = "unknown"
)

var (
	ErrNotRegistered = errors.New("tracking number not registered")
	ErrRateLimited   = errors.New("rate limit exceeded")
)

// TrackingInfo is the latest scan a carrier reports for a shipment.
type TrackingInfo struct {
	Status  model.Status `json:"status"`
	EventAt time.Time    `json:"eventAt"`
}

type Carrier interface {
	Track(ctx context.Context, carrier, number string) (TrackingInfo, error)
}

// DetectCarrier guesses the carrier from the shape of a tracking number.
func DetectCarrier(number string) string {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), " ", ""))
	switch {
	case strings.HasPrefix(n, "1Z"):
		return CarrierUPS
	case !digitsOnly(n):
		return CarrierUnknown
	case len(n) >= 20 && len(n) <= 22 && n[0] == '9':
		return CarrierUSPS
	case len(n) == 12 || len(n) == 15:
		return CarrierFedEx
	case len(n) == 10:
		return CarrierDHL
	default:
		return CarrierUnknown
	}
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CarrierClient queries an external tracking aggregator over HTTP.
type CarrierClient struct {
	baseURL string
	client  *http.Client
}

func NewCarrierClient(baseURL string) *CarrierClient {
	return &CarrierClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CarrierClient) Track(ctx context.Context, carrier, number string) (TrackingInfo, error) {
	u := fmt.Sprintf("%s/api/tracking/%s/%s", c.baseURL, url.PathEscape(carrier), url.PathEscape(number))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return TrackingInfo{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return TrackingInfo{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var res TrackingInfo
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return TrackingInfo{}, fmt.Errorf("decode response: %w", err)
		}
		res.Status = res.Status.Normalize()
		return res, nil
	case http.StatusNoContent, http.StatusNotFound:
		return TrackingInfo{}, ErrNotRegistered
	case http.StatusTooManyRequests:
		return TrackingInfo{}, ErrRateLimited
	default:
		body, _ := io.ReadAll(resp.Body)
		return TrackingInfo{}, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(body))
	}
}

// Simulator answers tracking lookups without a carrier. The same tracking
// number always maps to the same status and event age.
type Simulator struct {
	now func() time.Time
}

func NewSimulator(now func() time.Time) *Simulator {
	if now == nil {
		now = time.Now
	}
	return &Simulator{now: now}
}

func (s *Simulator) Track(ctx context.Context, carrier, number string) (TrackingInfo, error) {
	if err := ctx.Err(); err != nil {
		return TrackingInfo{}, err
	}
	if carrier == CarrierUnknown {
		return TrackingInfo{Status: model.StatusUnknown, EventAt: s.now()}, nil
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(number))
	sum := h.Sum32()

	status := model.Statuses[sum%uint32(len(model.Statuses))]
	age := time.Duration(sum%240) * time.Hour
	return TrackingInfo{Status: status, EventAt: s.now().Add(-age)}, nil
}
