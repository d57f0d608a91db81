package legacy

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/schedule"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/fortuna/services/playbyplay-service/pkg/models"
)

// MigrateOptions limits a migration run
type MigrateOptions struct {
	// Dates restricts the run to these league dates; empty means all
	Dates  []string
	DryRun bool
}

// MigrateResult summarizes a migration run
type MigrateResult struct {
	Dates    int
	Games    int
	Archived int
}

// Migrator writes schedule artifacts from legacy rows
type Migrator struct {
	source    Source
	artifacts *storage.Artifacts
	now       func() time.Time
}

// NewMigrator creates a migrator
func NewMigrator(source Source, artifacts *storage.Artifacts) *Migrator {
	return &Migrator{
		source:    source,
		artifacts: artifacts,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (m *Migrator) WithClock(now func() time.Time) *Migrator {
	m.now = now
	return m
}

// Migrate groups every legacy row by date and writes one schedule per date.
// Dates before today are written with a long-lived cache directive.
func (m *Migrator) Migrate(ctx context.Context, opts MigrateOptions) (MigrateResult, error) {
	var result MigrateResult

	rows, err := m.source.Games(ctx)
	if err != nil {
		return result, err
	}
	log.Printf("[legacy] found %d games", len(rows))

	byDate := GroupByDate(rows, opts.Dates)
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	today := schedule.LeagueDate(m.now())
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entries := byDate[date]
		archived := date < today
		result.Dates++
		result.Games += len(entries)
		if archived {
			result.Archived++
		}

		if opts.DryRun {
			log.Printf("[legacy] dry run: %s with %d games (archived=%v)", date, len(entries), archived)
			continue
		}

		if archived {
			err = m.artifacts.SaveArchivedSchedule(ctx, date, entries)
		} else {
			err = m.artifacts.SaveSchedule(ctx, date, entries)
		}
		if err != nil {
			return result, fmt.Errorf("writing schedule for %s: %w", date, err)
		}
	}

	return result, nil
}

// GroupByDate converts rows to schedule entries keyed by date. Rows without a
// date are skipped; when only is non-empty, other dates are skipped too.
func GroupByDate(rows []Row, only []string) map[string][]models.ScheduleEntry {
	allowed := make(map[string]bool, len(only))
	for _, d := range only {
		allowed[d] = true
	}

	byDate := make(map[string][]models.ScheduleEntry)
	for _, r := range rows {
		if r.Date == "" {
			continue
		}
		if len(allowed) > 0 && !allowed[r.Date] {
			continue
		}
		byDate[r.Date] = append(byDate[r.Date], r.entry())
	}
	return byDate
}

func (r Row) entry() models.ScheduleEntry {
	clock := r.Time
	if clock == "" {
		clock = r.Clock
	}
	return models.ScheduleEntry{
		ID:        r.ID,
		Date:      r.Date,
		StartTime: r.StartTime,
		HomeTeam:  r.HomeTeam,
		AwayTeam:  r.AwayTeam,
		HomeScore: r.HomeScore,
		AwayScore: r.AwayScore,
		Status:    r.Status,
		Time:      clock,
	}
}
