package anomaly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Verdict
	}{
		{name: "bare -1", body: "-1", want: VerdictAnomalous},
		{name: "bare 1", body: "1", want: VerdictNormal},
		{name: "bare 1 with whitespace", body: " 1\n", want: VerdictNormal},
		{name: "other integer", body: "7", want: VerdictUnknown},
		{name: "status object anomalous", body: `{"status": -1}`, want: VerdictAnomalous},
		{name: "status object normal", body: `{"status": 1}`, want: VerdictNormal},
		{name: "status object other", body: `{"status": 0}`, want: VerdictUnknown},
		{name: "garbage", body: "not a verdict", want: VerdictUnknown},
		{name: "empty", body: "", want: VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseVerdict([]byte(tt.body)); got != tt.want {
				t.Errorf("ParseVerdict(%q) = %d, want %d", tt.body, got, tt.want)
			}
		})
	}
}

func TestHTTPOracle_CheckTrip(t *testing.T) {
	var received ClassificationPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("oracle received malformed payload: %v", err)
		}
		w.Write([]byte("-1"))
	}))
	defer srv.Close()

	oracle := NewHTTPOracle(srv.URL)
	payload := ClassificationPayload{
		First:  PointSample{Lat: 1, Lng: 2, Heading: 3},
		Second: PointSample{Lat: 4, Lng: 5, Heading: 6},
		Gone:   []PointSample{{Lat: 7, Lng: 8}},
	}

	verdict, err := oracle.CheckTrip(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != VerdictAnomalous {
		t.Errorf("verdict = %d, want %d", verdict, VerdictAnomalous)
	}
	if received.First.Lat != 1 || received.Second.Lat != 4 || len(received.Gone) != 1 {
		t.Errorf("payload not transmitted faithfully: %+v", received)
	}
}

func TestHTTPOracle_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	oracle := NewHTTPOracle(srv.URL)
	if _, err := oracle.CheckTrip(context.Background(), ClassificationPayload{}); err == nil {
		t.Error("expected error for non-2xx oracle status")
	}
}

func TestHTTPOracle_Unreachable(t *testing.T) {
	oracle := NewHTTPOracle("http://127.0.0.1:1/check_trip")
	if _, err := oracle.CheckTrip(context.Background(), ClassificationPayload{}); err == nil {
		t.Error("expected error for unreachable oracle")
	}
}
