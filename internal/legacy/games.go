package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DefaultTable is the legacy table holding one row per game
const DefaultTable = "nba_games"

// Row is one game as the legacy table stores it
type Row struct {
	ID        string
	Date      string
	StartTime string
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Status    string
	Time      string
	Clock     string
}

// Source lists legacy game rows
type Source interface {
	Games(ctx context.Context) ([]Row, error)
}

// GamesTable reads the legacy games table from Postgres
type GamesTable struct {
	db    *sql.DB
	table string
}

// Open connects to the legacy database
func Open(dsn, table string) (*GamesTable, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewGamesTable(db, table), nil
}

// NewGamesTable wraps an open database
func NewGamesTable(db *sql.DB, table string) *GamesTable {
	if table == "" {
		table = DefaultTable
	}
	return &GamesTable{db: db, table: table}
}

// Close closes the database
func (t *GamesTable) Close() error {
	return t.db.Close()
}

// Games scans every row of the table
func (t *GamesTable) Games(ctx context.Context) ([]Row, error) {
	query := fmt.Sprintf(`
		SELECT id, date, starttime, hometeam, awayteam,
		       homescore, awayscore, status, time, clock
		FROM %s
	`, pq.QuoteIdentifier(t.table))

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.table, err)
	}
	defer rows.Close()

	var games []Row
	for rows.Next() {
		var (
			id, date, start, home, away, status, clockTime, clock sql.NullString
			homeScore, awayScore                                  sql.NullInt64
		)
		if err := rows.Scan(&id, &date, &start, &home, &away, &homeScore, &awayScore, &status, &clockTime, &clock); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.table, err)
		}
		games = append(games, Row{
			ID:        id.String,
			Date:      date.String,
			StartTime: start.String,
			HomeTeam:  home.String,
			AwayTeam:  away.String,
			HomeScore: int(homeScore.Int64),
			AwayScore: int(awayScore.Int64),
			Status:    status.String,
			Time:      clockTime.String,
			Clock:     clock.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.table, err)
	}
	return games, nil
}
