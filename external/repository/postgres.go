package repository

import (
	"context"
	"time"

	"github.com/foxseedlab/chanharvest/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const runColumns = `id, channel, status, parse_username, parse_bio, started_at, ended_at, participant_count, artifact_name, error_detail`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateRun(ctx context.Context, input repository.CreateRunInput) (*repository.Run, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO harvest_runs (id, channel, status, parse_username, parse_bio, started_at)
		 VALUES ($1, $2, 'running', $3, $4, $5)
		 RETURNING `+runColumns,
		input.ID, input.Channel, input.ParseUsername, input.ParseBio, input.StartedAt)
	return scanRun(row)
}

func (r *PostgresRepository) CompleteRun(ctx context.Context, input repository.CompleteRunInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE harvest_runs
		 SET status = $2, ended_at = $3, participant_count = $4, artifact_name = $5, error_detail = $6
		 WHERE id = $1`,
		input.RunID, string(input.Status), input.EndedAt, input.ParticipantCount, input.ArtifactName, input.ErrorDetail)
	return err
}

func (r *PostgresRepository) ListRecentRuns(ctx context.Context, limit int) ([]repository.Run, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+runColumns+` FROM harvest_runs ORDER BY started_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *run)
	}
	return list, rows.Err()
}

func scanRun(row pgx.Row) (*repository.Run, error) {
	var run repository.Run
	var status string
	var endedAt *time.Time
	err := row.Scan(&run.ID, &run.Channel, &status, &run.ParseUsername, &run.ParseBio,
		&run.StartedAt, &endedAt, &run.ParticipantCount, &run.ArtifactName, &run.ErrorDetail)
	if err != nil {
		return nil, err
	}
	run.Status = repository.RunStatus(status)
	run.EndedAt = endedAt
	return &run, nil
}

// Shutdown closes the pool when the injector shuts down.
func (r *PostgresRepository) Shutdown() {
	r.pool.Close()
}
