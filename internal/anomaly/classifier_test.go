package anomaly

import (
	"context"
	"errors"
	"testing"
	"time"

	"tracemap/internal/models"
)

type fakeHistory struct {
	points []models.Point
	err    error
}

func (f *fakeHistory) FindByTrip(ctx context.Context, tripID int64) ([]models.Point, error) {
	return f.points, f.err
}

type fakeOracle struct {
	verdict Verdict
	err     error
	payload *ClassificationPayload
}

func (f *fakeOracle) CheckTrip(ctx context.Context, payload ClassificationPayload) (Verdict, error) {
	f.payload = &payload
	return f.verdict, f.err
}

func tsAt(minute int) *time.Time {
	t := time.Date(2025, 6, 2, 8, minute, 0, 0, time.UTC)
	return &t
}

func TestClassify_NoHistory(t *testing.T) {
	oracle := &fakeOracle{verdict: VerdictAnomalous}
	c := NewClassifier(&fakeHistory{}, oracle)

	flag := c.Classify(context.Background(), models.NewPoint{TripID: 1}, time.Now())
	if flag != nil {
		t.Errorf("first point of a trip must stay unclassified, got %v", *flag)
	}
	if oracle.payload != nil {
		t.Error("oracle must not be called without trip history")
	}
}

func TestClassify_VerdictMapping(t *testing.T) {
	history := &fakeHistory{points: []models.Point{{TripID: 1, Lat: 1, Lng: 1, Timestamp: tsAt(0)}}}

	tests := []struct {
		name    string
		verdict Verdict
		err     error
		want    *bool
	}{
		{name: "anomalous", verdict: VerdictAnomalous, want: boolPtr(true)},
		{name: "normal", verdict: VerdictNormal, want: boolPtr(false)},
		{name: "unknown verdict", verdict: VerdictUnknown, want: nil},
		{name: "oracle failure", verdict: VerdictUnknown, err: errors.New("connection refused"), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(history, &fakeOracle{verdict: tt.verdict, err: tt.err})
			got := c.Classify(context.Background(), models.NewPoint{TripID: 1}, time.Now())
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected unset flag, got %v", *got)
			case tt.want != nil && got == nil:
				t.Errorf("expected flag %v, got unset", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("expected flag %v, got %v", *tt.want, *got)
			}
		})
	}
}

func TestClassify_HistoryLookupFailureDegrades(t *testing.T) {
	history := &fakeHistory{err: errors.New("db locked")}
	c := NewClassifier(history, &fakeOracle{verdict: VerdictAnomalous})

	flag := c.Classify(context.Background(), models.NewPoint{TripID: 1}, time.Now())
	if flag != nil {
		t.Errorf("history failure must degrade to unclassified, got %v", *flag)
	}
}

func TestClassify_PayloadConstruction(t *testing.T) {
	// History arrives most-recent-first from the store.
	history := &fakeHistory{points: []models.Point{
		{TripID: 1, Lat: 3, Lng: 3, Heading: 30, Timestamp: tsAt(3)},
		{TripID: 1, Lat: 2, Lng: 2, Heading: 20, Timestamp: tsAt(2)},
		{TripID: 1, Lat: 1, Lng: 1, Heading: 10, Timestamp: tsAt(1)},
	}}
	oracle := &fakeOracle{verdict: VerdictNormal}
	c := NewClassifier(history, oracle)

	incoming := models.NewPoint{TripID: 1, Lat: 4, Lng: 4, Heading: 40, Timestamp: tsAt(4)}
	c.Classify(context.Background(), incoming, time.Now())

	p := oracle.payload
	if p == nil {
		t.Fatal("oracle was not called")
	}
	if p.First.Lat != 3 {
		t.Errorf("first must be the most recent stored point, got lat %f", p.First.Lat)
	}
	if p.Second.Lat != 4 || !p.Second.Timestamp.Equal(*tsAt(4)) {
		t.Errorf("second must be the incoming point with its own timestamp: %+v", p.Second)
	}
	if len(p.Gone) != 2 || p.Gone[0].Lat != 2 || p.Gone[1].Lat != 1 {
		t.Errorf("gone must be the remaining history most-recent-first: %+v", p.Gone)
	}
}

func TestClassify_MissingTimestampUsesReceiveTime(t *testing.T) {
	history := &fakeHistory{points: []models.Point{{TripID: 1, Timestamp: tsAt(0)}}}
	oracle := &fakeOracle{verdict: VerdictNormal}
	c := NewClassifier(history, oracle)

	receivedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	c.Classify(context.Background(), models.NewPoint{TripID: 1}, receivedAt)

	if oracle.payload == nil || !oracle.payload.Second.Timestamp.Equal(receivedAt) {
		t.Errorf("missing timestamp must fall back to receive time: %+v", oracle.payload)
	}
}

func boolPtr(b bool) *bool { return &b }
