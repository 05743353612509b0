package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PeriodTotals holds the raw totals for one comparison period.
type PeriodTotals struct {
	Views    float64 `json:"views"`
	Likes    float64 `json:"likes"`
	Comments float64 `json:"comments"`
	Posts    int     `json:"posts"`
}

// Changes holds period-over-period deltas as percentages, rounded to
// one decimal with sign preserved.
type Changes struct {
	Views    float64 `json:"views"`
	Likes    float64 `json:"likes"`
	Comments float64 `json:"comments"`
	Posts    float64 `json:"posts"`
}

// Comparison is the full period-comparison payload.
type Comparison struct {
	Current  PeriodTotals `json:"current"`
	Previous PeriodTotals `json:"previous"`
	Changes  Changes      `json:"changes"`
}

// PreviousWindow derives the comparison baseline: a window of equal
// length ending the day before the current window starts. For a
// current window of D days the previous window is
// [start-D-1d, start-1d], so both spans cover the same number of
// days for every D >= 0.
func PreviousWindow(w Window) Window {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	prevEnd := w.Start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -days)
	return Window{Start: prevStart, End: prevEnd}
}

// MetricsComparison runs the summary reduction over the current
// window and the derived previous window, then computes percentage
// deltas. The two period fetches run concurrently; both must finish
// before the deltas are computed.
func (s *Service) MetricsComparison(ctx context.Context, q Query) (*Comparison, error) {
	if payload := s.cache.Get(ctx, comparisonCacheKey(q)); payload != nil {
		var cached Comparison
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	prevQ := q
	prevQ.Window = PreviousWindow(q.Window)

	var current, previous PeriodTotals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.periodTotals(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.periodTotals(gctx, prevQ)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch comparison periods: %w", err)
	}

	comparison := &Comparison{
		Current:  current,
		Previous: previous,
		Changes: Changes{
			Views:    PercentChange(current.Views, previous.Views),
			Likes:    PercentChange(current.Likes, previous.Likes),
			Comments: PercentChange(current.Comments, previous.Comments),
			Posts:    PercentChange(float64(current.Posts), float64(previous.Posts)),
		},
	}

	if payload, err := json.Marshal(comparison); err == nil {
		s.cache.Set(ctx, comparisonCacheKey(q), payload)
	}
	return comparison, nil
}

// periodTotals reduces one window to its raw totals. A window with no
// content contributes all zeros.
func (s *Service) periodTotals(ctx context.Context, q Query) (PeriodTotals, error) {
	items, err := s.contentInWindow(ctx, q)
	if err != nil {
		return PeriodTotals{}, err
	}
	if len(items) == 0 {
		return PeriodTotals{}, nil
	}

	rows, err := s.metricRowsFor(ctx, items)
	if err != nil {
		return PeriodTotals{}, err
	}

	views, likes, comments := SummaryTotals(rows)
	return PeriodTotals{
		Views:    views,
		Likes:    likes,
		Comments: comments,
		Posts:    len(items),
	}, nil
}

// WindowDays returns the whole-day length of a window, matching the
// arithmetic PreviousWindow uses.
func WindowDays(w Window) int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}
