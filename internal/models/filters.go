package models

// TileQuery represents query parameters shared by the heatmap, trafficmap
// and speedmap endpoints. Corners may come in either order.
type TileQuery struct {
	Lat1       float64 `form:"lat1"`
	Lng1       float64 `form:"lng1"`
	Lat2       float64 `form:"lat2"`
	Lng2       float64 `form:"lng2"`
	DateStart  string  `form:"dateStart"`  // RFC3339, inclusive
	DateEnd    string  `form:"dateEnd"`    // RFC3339, inclusive
	TileWidth  float64 `form:"tileWidth"`  // degrees, > 0
	TileHeight float64 `form:"tileHeight"` // degrees, > 0
	Days       string  `form:"days"`       // weekdays 1=Mon..7=Sun, comma/space separated
	TimeStart  string  `form:"timeStart"`  // time of day HH, HH:MM or HH:MM:SS (inclusive)
	TimeEnd    string  `form:"timeEnd"`    // time of day (exclusive), must be > timeStart
}

// Rect returns the normalized query rectangle
func (q TileQuery) Rect() Rect {
	return NewRect(q.Lat1, q.Lng1, q.Lat2, q.Lng2)
}

// AnomalyQuery represents query parameters of the anomaly listing endpoint
type AnomalyQuery struct {
	Lat1      float64 `form:"lat1"`
	Lng1      float64 `form:"lng1"`
	Lat2      float64 `form:"lat2"`
	Lng2      float64 `form:"lng2"`
	DateStart string  `form:"dateStart"` // RFC3339, inclusive
	DateEnd   string  `form:"dateEnd"`   // RFC3339, inclusive
}

// Rect returns the normalized query rectangle
func (q AnomalyQuery) Rect() Rect {
	return NewRect(q.Lat1, q.Lng1, q.Lat2, q.Lng2)
}
