package models

import (
	"strconv"

	"github.com/google/uuid"
)

// Well-known metric names. The name space is open: ingestion may
// attach any named measurement to a content item.
const (
	MetricViews       = "views"
	MetricLikes       = "likes"
	MetricComments    = "comments"
	MetricClicks      = "clicks"
	MetricHours       = "hours"
	MetricAvgViewers  = "avgViewers"
	MetricPeakViewers = "peakViewers"
)

// Metric is one named measurement attached to a content item. The
// name is unique per item; ingestion overwrites on conflict. Values
// arrive as numbers or numeric strings, so Value keeps the raw text
// and ParseMetricValue coerces it.
type Metric struct {
	ContentID uuid.UUID `json:"content_id"`
	Name      string    `json:"metric_name"`
	Value     string    `json:"metric_value"`
}

// ParseMetricValue coerces a raw metric value to a float64. Anything
// unparseable counts as zero so a single bad row cannot poison an
// aggregate.
func ParseMetricValue(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
