// Package report runs the report pipeline: resolve the period, gather and
// aggregate statistics, render the document, store it and notify.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jameshartig/energyreport/pkg/energy"
	"github.com/jameshartig/energyreport/pkg/notify"
	"github.com/jameshartig/energyreport/pkg/output"
	"github.com/jameshartig/energyreport/pkg/period"
	"github.com/jameshartig/energyreport/pkg/render"
	"github.com/jameshartig/energyreport/pkg/statistics"
	"github.com/jameshartig/energyreport/pkg/storage"
	"github.com/jameshartig/energyreport/pkg/types"
)

// Advisor adds a recommendation to a report.
type Advisor interface {
	Enabled() bool
	Advise(ctx context.Context, language, conclusion string) string
}

// Generator produces reports.
type Generator struct {
	stats    statistics.Provider
	sink     output.Sink
	notifier notify.Notifier
	storage  storage.Database
	advisor  Advisor
	metrics  *Metrics

	now   func() time.Time
	newID func() string
}

// NewGenerator returns a generator using the given dependencies.
func NewGenerator(
	stats statistics.Provider,
	sink output.Sink,
	notifier notify.Notifier,
	db storage.Database,
	advisor Advisor,
	metrics *Metrics,
) *Generator {
	return &Generator{
		stats:    stats,
		sink:     sink,
		notifier: notifier,
		storage:  db,
		advisor:  advisor,
		metrics:  metrics,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// IsInvalidRequest reports whether err was caused by the request rather than
// by a dependency.
func IsInvalidRequest(err error) bool {
	var verr *types.ValidationError
	return errors.As(err, &verr)
}

// IsNotConfigured reports whether err means Home Assistant has no usable
// energy dashboard, whatever the request asked for.
func IsNotConfigured(err error) bool {
	return errors.Is(err, energy.ErrNoDashboard) || errors.Is(err, energy.ErrNoMetrics)
}

// Generate builds a report for req and returns its record.
func (g *Generator) Generate(ctx context.Context, req types.ReportRequest) (types.ReportRecord, error) {
	started := time.Now()
	record, err := g.generate(ctx, req)
	if g.metrics != nil {
		switch {
		case err == nil:
			g.metrics.generated.WithLabelValues("success").Inc()
			g.metrics.duration.Observe(time.Since(started).Seconds())
			g.metrics.untracked.Set(record.UntrackedKWH)
		case IsInvalidRequest(err):
			g.metrics.generated.WithLabelValues("invalid").Inc()
		case IsNotConfigured(err):
			g.metrics.generated.WithLabelValues("unconfigured").Inc()
		default:
			g.metrics.generated.WithLabelValues("error").Inc()
		}
	}
	return record, err
}

func (g *Generator) generate(ctx context.Context, req types.ReportRequest) (types.ReportRecord, error) {
	settings, err := g.storage.GetSettings(ctx)
	if err != nil {
		return types.ReportRecord{}, fmt.Errorf("failed to get settings: %w", err)
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = settings.Language
	}
	if !render.SupportedLanguage(language) {
		if req.Language != "" {
			return types.ReportRecord{}, types.NewValidationError("language", "unsupported language %q, expected one of %s", req.Language, strings.Join(render.Languages(), ", "))
		}
		language = types.DefaultLanguage
	}
	language = types.NormalizeKey(language)
	tr := render.Lookup(language)

	loc, err := g.stats.TimeZone(ctx)
	if err != nil {
		return types.ReportRecord{}, fmt.Errorf("failed to get time zone: %w", err)
	}

	now := g.now()
	p, err := period.Resolve(types.Period(req.Period), req.StartDate, req.EndDate, settings.DefaultReportType, now, loc)
	if err != nil {
		return types.ReportRecord{}, err
	}

	dir := strings.TrimSpace(req.OutputDir)
	if dir == "" {
		dir = settings.OutputDir
	}
	if err := types.ValidateOutputDir(dir); err != nil {
		return types.ReportRecord{}, err
	}

	co2Enabled := settings.CO2Enabled
	if req.CO2Enabled != nil {
		co2Enabled = *req.CO2Enabled
	}
	priceEnabled := settings.PriceEnabled
	if req.PriceEnabled != nil {
		priceEnabled = *req.PriceEnabled
	}

	dashboards, err := g.stats.GetDashboards(ctx)
	if err != nil {
		return types.ReportRecord{}, fmt.Errorf("failed to get dashboards: %w", err)
	}
	dashboard, err := energy.SelectDashboard(dashboards, req.Dashboard, settings.DefaultDashboard)
	if err != nil {
		return types.ReportRecord{}, err
	}

	metrics, err := energy.BuildMetrics(dashboard.Preferences, co2Enabled, priceEnabled)
	if err != nil {
		return types.ReportRecord{}, err
	}
	ids := energy.StatisticIDs(metrics)

	metadata, err := g.stats.GetMetadata(ctx, ids)
	if err != nil {
		return types.ReportRecord{}, fmt.Errorf("failed to get statistics metadata: %w", err)
	}
	rows, err := g.stats.GetStatistics(ctx, ids, p.Start, p.End, p.Bucket)
	if err != nil {
		return types.ReportRecord{}, fmt.Errorf("failed to get statistics: %w", err)
	}
	summary := energy.Summarize(metrics, energy.CalculateTotals(metrics, rows), metadata)

	var co2 []types.CO2Total
	if co2Enabled {
		co2 = g.co2Totals(ctx, settings.CO2Sensors(), p)
	}

	filename, err := render.ResolveFilename(req.Filename, settings.FilenamePattern, p)
	if err != nil {
		return types.ReportRecord{}, err
	}
	var advice string
	if g.advisor != nil && g.advisor.Enabled() {
		advice = g.advisor.Advise(ctx, language, strings.Join(render.ConclusionLines(tr, summary), " "))
	}

	data, err := render.Render(render.Report{
		Period:      p,
		Dashboard:   dashboard.Label(),
		Summary:     summary,
		CO2:         co2,
		Advice:      advice,
		Location:    path.Join(dir, filename),
		GeneratedAt: now.In(loc),
		Language:    language,
	})
	if err != nil {
		return types.ReportRecord{}, fmt.Errorf("failed to render report: %w", err)
	}

	location, err := g.sink.Write(ctx, dir, filename, data)
	if err != nil {
		return types.ReportRecord{}, fmt.Errorf("failed to write report: %w", err)
	}

	record := types.ReportRecord{
		ID:                      g.newID(),
		GeneratedAt:             now,
		Dashboard:               dashboard.Label(),
		Period:                  p.Period,
		StartDate:               p.StartDate,
		EndDate:                 p.EndDate,
		Location:                location,
		Language:                language,
		Metrics:                 summary.Metrics,
		EstimatedConsumptionKWH: summary.EstimatedConsumption,
		UntrackedKWH:            summary.Untracked,
	}

	slog.InfoContext(
		ctx,
		"generated report",
		slog.String("id", record.ID),
		slog.String("location", location),
		slog.String("dashboard", record.Dashboard),
		slog.String("start", p.StartDate.Format(time.DateOnly)),
		slog.String("end", p.EndDate.Format(time.DateOnly)),
		slog.Int("metrics", summary.Metrics),
	)

	if err := g.notifier.Notify(ctx, notify.Notification{
		Title:   tr.NotificationTitle,
		Message: NotificationMessage(tr, record),
		Record:  record,
	}); err != nil {
		slog.WarnContext(ctx, "failed to send notification", slog.Any("error", err))
	}

	if err := g.storage.InsertReport(ctx, record); err != nil {
		slog.WarnContext(ctx, "failed to record report", slog.Any("error", err))
	}

	return record, nil
}

// co2Totals returns the totals of the configured CO2 sensors. Sensors
// without any usable data are left out.
func (g *Generator) co2Totals(ctx context.Context, sensors []types.CO2Sensor, p types.ResolvedPeriod) []types.CO2Total {
	var totals []types.CO2Total
	for _, sensor := range sensors {
		total, ok, err := g.co2Total(ctx, sensor.EntityID, p)
		if err != nil {
			slog.WarnContext(
				ctx,
				"failed to get co2 sensor total",
				slog.String("entityID", sensor.EntityID),
				slog.Any("error", err),
			)
			continue
		}
		if !ok {
			slog.DebugContext(ctx, "no co2 data for sensor", slog.String("entityID", sensor.EntityID))
			continue
		}
		totals = append(totals, types.CO2Total{Sensor: sensor, Total: total})
	}
	return totals
}

func (g *Generator) co2Total(ctx context.Context, entityID string, p types.ResolvedPeriod) (float64, bool, error) {
	rows, err := g.stats.GetStatistics(ctx, []string{entityID}, p.Start, p.End, types.BucketDay)
	if err != nil {
		return 0, false, err
	}
	if total, ok := energy.ChangeTotal(rows[entityID]); ok {
		return total, true, nil
	}

	states, err := g.stats.GetStateHistory(ctx, entityID, p.Start, p.End)
	if err != nil {
		return 0, false, err
	}
	// the history starts with the state in effect at Start, which may be older
	inside := states[:0:0]
	for _, s := range states {
		if p.Contains(s.LastChanged) {
			inside = append(inside, s)
		}
	}
	total, ok := energy.DailySnapshotTotal(inside, p.Location)
	return total, ok, nil
}

// NotificationMessage returns the lines of the notification sent for record.
func NotificationMessage(tr render.Translations, record types.ReportRecord) string {
	lines := []string{
		render.Format(tr.NotificationLinePeriod,
			"start", record.StartDate.Format("02/01/2006"),
			"end", record.EndDate.Format("02/01/2006"),
		),
	}
	if record.Dashboard != "" {
		lines = append(lines, render.Format(tr.NotificationLineDashboard, "dashboard", record.Dashboard))
	}
	lines = append(lines, render.Format(tr.NotificationLineFile, "path", record.Location))
	return strings.Join(lines, "\n")
}
