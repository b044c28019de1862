package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
)

type regionResult struct {
	region     string
	total      int
	err        error
	violations []string
}

// Run executes a complete probe: health, login, unfiltered view, every
// region slice through a worker pool, logout and a final 401 check.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	log := logger.Named("probe")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting dashboard probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client, err := NewClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return stats, err
	}

	// Step 1: health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("health check failed: %w", err)
	}

	// Step 2: login
	if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return stats, err
	}

	// Step 3: unfiltered view
	base, status, err := client.View(ctx, nil)
	if err != nil {
		return stats, err
	}
	if status != http.StatusOK {
		return stats, fmt.Errorf("view: %w: %d", ErrUnexpectedStatus, status)
	}
	if base.Outcome != view.OutcomeOK {
		return stats, fmt.Errorf("view: unexpected outcome %q: %s", base.Outcome, base.Error)
	}
	stats.TotalRows = base.Total

	// Step 4: region slices
	regions := regionOptions(base)
	stats.Regions = len(regions)
	for _, r := range walkRegions(ctx, client, cfg.Workers, base, regions) {
		stats.Checked++
		if r.err != nil {
			stats.Failed++
			log.Warn(ctx, "region request failed", logger.String("region", r.region), logger.Error(r.err))
			continue
		}
		stats.RegionRows += r.total
		stats.Violations = append(stats.Violations, r.violations...)
		if cfg.Verbose {
			log.Info(ctx, "region checked",
				logger.String("region", r.region),
				logger.Int("rows", r.total),
				logger.Int("violations", len(r.violations)))
		}
	}
	if stats.RegionRows > stats.TotalRows {
		stats.Violations = append(stats.Violations,
			fmt.Sprintf("region rows %d exceed unfiltered rows %d", stats.RegionRows, stats.TotalRows))
	}

	// Step 5: logout and confirm the session is gone
	if err := client.Logout(ctx); err != nil {
		return stats, err
	}
	if _, status, err := client.View(ctx, nil); err != nil {
		return stats, err
	} else if status != http.StatusUnauthorized {
		return stats, fmt.Errorf("%w: status %d", ErrSessionSurvived, status)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if !stats.OK() {
		return stats, fmt.Errorf("%w: %d failed requests, %d violations", ErrViolations, stats.Failed, len(stats.Violations))
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// walkRegions fetches every region slice with a fixed worker pool. Results
// come back in region order.
func walkRegions(ctx context.Context, client *Client, workers int, base view.Model, regions []string) []regionResult {
	jobs := make(chan int, workers*2)
	results := make([]regionResult, len(regions))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				region := regions[idx]
				res := regionResult{region: region}
				m, status, err := client.View(ctx, url.Values{"crede": {region}})
				switch {
				case err != nil:
					res.err = err
				case status != http.StatusOK:
					res.err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
				default:
					res.total = m.Total
					res.violations = checkRegion(base, m, region)
				}
				results[idx] = res
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range regions {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()

	// regions the context cut off never ran
	out := results[:0]
	for i, r := range results {
		if r.region == "" {
			r = regionResult{region: regions[i], err: ctx.Err()}
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].region < out[j].region })
	return out
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("regions", stats.Regions),
		logger.Int("checked", stats.Checked),
		logger.Int("failed", stats.Failed),
		logger.Int("totalRows", stats.TotalRows),
		logger.Int("regionRows", stats.RegionRows),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration))
	for _, v := range stats.Violations {
		log.Warn(ctx, "violation", logger.String("detail", v))
	}
}
