package models

// MapPoint is a single lat/lng coordinate on the map
type MapPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HeatTile is one heatmap grid cell. Only cells with own points are emitted.
type HeatTile struct {
	Count       int      `json:"count"`
	TopLeft     MapPoint `json:"topLeft"`
	BottomRight MapPoint `json:"bottomRight"`
}

// TrafficTile is one traffic-density grid cell with Moore-neighborhood count
type TrafficTile struct {
	Count         int      `json:"count"`
	NeighborCount int      `json:"neighborCount"`
	TopLeft       MapPoint `json:"topLeft"`
	BottomRight   MapPoint `json:"bottomRight"`
}

// SpeedTile is one average-speed grid cell. Averages are 0.0 when the
// corresponding point count is zero.
type SpeedTile struct {
	AvgSpeed         float64  `json:"avgSpeed"`
	NeighborAvgSpeed float64  `json:"neighborAvgSpeed"`
	TopLeft          MapPoint `json:"topLeft"`
	BottomRight      MapPoint `json:"bottomRight"`
}

// HeatmapData wraps the heatmap tile list
type HeatmapData struct {
	Data []HeatTile `json:"data"`
}

// HeatmapResponse is the GET /api/v1/heatmap response envelope
type HeatmapResponse struct {
	Heatmap HeatmapData `json:"heatmap"`
}

// TrafficmapData wraps the traffic tile list
type TrafficmapData struct {
	Data []TrafficTile `json:"data"`
}

// TrafficmapResponse is the GET /api/v1/trafficmap response envelope
type TrafficmapResponse struct {
	Trafficmap TrafficmapData `json:"trafficmap"`
}

// SpeedmapData wraps the speed tile list
type SpeedmapData struct {
	Data []SpeedTile `json:"data"`
}

// SpeedmapResponse is the GET /api/v1/speedmap response envelope
type SpeedmapResponse struct {
	Speedmap SpeedmapData `json:"speedmap"`
}
