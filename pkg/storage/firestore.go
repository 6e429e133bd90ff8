package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jameshartig/energyreport/pkg/types"
)

const (
	settingsCollection = "settings"
	settingsDocument   = "current"
	reportsCollection  = "reports"
)

// Firestore stores settings and reports in Cloud Firestore. Set
// FIRESTORE_EMULATOR_HOST to use a local emulator.
type Firestore struct {
	client *firestore.Client
	prefix string
}

// NewFirestore connects to the database of project. An empty database uses
// the default database.
func NewFirestore(ctx context.Context, project, database, prefix string) (*Firestore, error) {
	if project == "" {
		if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
			return nil, errors.New("firestore-project is required")
		}
		project = "energyreport-emulator"
	}
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, project, database)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &Firestore{client: client, prefix: prefix}, nil
}

func (f *Firestore) collection(name string) *firestore.CollectionRef {
	return f.client.Collection(f.prefix + name)
}

type firestoreReport struct {
	ID          string    `firestore:"id"`
	GeneratedAt time.Time `firestore:"generatedAt"`
	Dashboard   string    `firestore:"dashboard"`
	Period      string    `firestore:"period"`
	StartDate   string    `firestore:"startDate"`
	EndDate     string    `firestore:"endDate"`
	Location    string    `firestore:"location"`
	Language    string    `firestore:"language"`
	Metrics     int       `firestore:"metrics"`

	EstimatedConsumptionKWH float64 `firestore:"estimatedConsumptionKWH"`
	UntrackedKWH            float64 `firestore:"untrackedKWH"`
}

// GetSettings implements Database.
func (f *Firestore) GetSettings(ctx context.Context) (types.Settings, error) {
	doc, err := f.collection(settingsCollection).Doc(settingsDocument).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.DefaultSettings(), nil
		}
		return types.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	var settings types.Settings
	if err := doc.DataTo(&settings); err != nil {
		return types.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings.WithDefaults(), nil
}

// SetSettings implements Database.
func (f *Firestore) SetSettings(ctx context.Context, settings types.Settings) error {
	if _, err := f.collection(settingsCollection).Doc(settingsDocument).Set(ctx, settings); err != nil {
		return fmt.Errorf("failed to set settings: %w", err)
	}
	return nil
}

// InsertReport implements Database.
func (f *Firestore) InsertReport(ctx context.Context, record types.ReportRecord) error {
	doc := firestoreReport{
		ID:                      record.ID,
		GeneratedAt:             record.GeneratedAt,
		Dashboard:               record.Dashboard,
		Period:                  string(record.Period),
		StartDate:               record.StartDate.Format(time.DateOnly),
		EndDate:                 record.EndDate.Format(time.DateOnly),
		Location:                record.Location,
		Language:                record.Language,
		Metrics:                 record.Metrics,
		EstimatedConsumptionKWH: record.EstimatedConsumptionKWH,
		UntrackedKWH:            record.UntrackedKWH,
	}
	if _, err := f.collection(reportsCollection).Doc(record.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReportHistory implements Database.
func (f *Firestore) GetReportHistory(ctx context.Context, start, end time.Time) ([]types.ReportRecord, error) {
	iter := f.collection(reportsCollection).
		Where("generatedAt", ">=", start).
		Where("generatedAt", "<", end).
		OrderBy("generatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var records []types.ReportRecord
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reports: %w", err)
		}
		var r firestoreReport
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("failed to decode report %s: %w", doc.Ref.ID, err)
		}
		record, err := r.record()
		if err != nil {
			return nil, fmt.Errorf("invalid report %s: %w", doc.Ref.ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r firestoreReport) record() (types.ReportRecord, error) {
	startDate, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		return types.ReportRecord{}, err
	}
	endDate, err := time.Parse(time.DateOnly, r.EndDate)
	if err != nil {
		return types.ReportRecord{}, err
	}
	return types.ReportRecord{
		ID:                      r.ID,
		GeneratedAt:             r.GeneratedAt,
		Dashboard:               r.Dashboard,
		Period:                  types.Period(r.Period),
		StartDate:               startDate,
		EndDate:                 endDate,
		Location:                r.Location,
		Language:                r.Language,
		Metrics:                 r.Metrics,
		EstimatedConsumptionKWH: r.EstimatedConsumptionKWH,
		UntrackedKWH:            r.UntrackedKWH,
	}, nil
}

// Close implements Database.
func (f *Firestore) Close() error {
	return f.client.Close()
}
