package anomaly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Verdict is the oracle's answer for one classified point
type Verdict int

const (
	// VerdictUnknown means the oracle produced no usable answer; the point
	// is ingested without a flag
	VerdictUnknown Verdict = 0
	// VerdictAnomalous marks the point as part of an anomalous route
	VerdictAnomalous Verdict = -1
	// VerdictNormal marks the point as ordinary
	VerdictNormal Verdict = 1
)

// PointSample is one sample of a trip sent to the oracle. Field names are
// the classification service's wire contract.
type PointSample struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Heading   float64   `json:"azm"`
	Timestamp time.Time `json:"timestamp"`
}

// ClassificationPayload is the request body of one oracle call: the trip's
// most recent stored point, the incoming point, and the rest of the trip's
// history most-recent-first.
type ClassificationPayload struct {
	First  PointSample   `json:"first"`
	Second PointSample   `json:"second"`
	Gone   []PointSample `json:"gone"`
}

// Oracle classifies a point given its trip history
type Oracle interface {
	CheckTrip(ctx context.Context, payload ClassificationPayload) (Verdict, error)
}

// HTTPOracle calls an external classification service over HTTP
type HTTPOracle struct {
	url    string
	client *http.Client
}

// NewHTTPOracle creates an oracle client for the given endpoint URL
func NewHTTPOracle(url string) *HTTPOracle {
	return &HTTPOracle{
		url:    url,
		client: http.DefaultClient,
	}
}

// CheckTrip posts the payload and parses the verdict from the response body.
// An unparseable body yields VerdictUnknown without an error; transport
// failures and non-2xx statuses are returned as errors.
func (o *HTTPOracle) CheckTrip(ctx context.Context, payload ClassificationPayload) (Verdict, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return VerdictUnknown, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("oracle call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return VerdictUnknown, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("failed to read oracle response: %w", err)
	}

	return ParseVerdict(raw), nil
}

// ParseVerdict reads an integer verdict from a response body. Accepted
// shapes: a bare integer ("−1"), a JSON integer, or the classification
// service's {"status": N} object. Anything else is VerdictUnknown.
func ParseVerdict(body []byte) Verdict {
	s := strings.TrimSpace(string(body))
	if n, err := strconv.Atoi(s); err == nil {
		return verdictFromInt(n)
	}

	var wrapped struct {
		Status *int `json:"status"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Status != nil {
		return verdictFromInt(*wrapped.Status)
	}

	return VerdictUnknown
}

func verdictFromInt(n int) Verdict {
	switch n {
	case -1:
		return VerdictAnomalous
	case 1:
		return VerdictNormal
	default:
		return VerdictUnknown
	}
}
