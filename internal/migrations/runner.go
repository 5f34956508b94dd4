// Package migrations applies the directory schema and data migrations in
// order and records them in schema_migrations.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-directory/internal/logging"
	"github.com/goliatone/go-directory/pkg/interfaces"
)

// SplitMarker separates statements inside one migration file.
const SplitMarker = "---bun:split"

var ErrMigrationNameRequired = errors.New("migrations: name required")

// Step mutates the schema or data in one direction.
type Step func(ctx context.Context, db *bun.DB) error

// Migration is one named, reversible change.
type Migration struct {
	Name string
	Up   Step
	Down Step
}

// Status reports whether a migration has been applied.
type Status struct {
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

type appliedRow struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Name      string    `bun:"name,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// Runner applies migrations in slice order.
type Runner struct {
	db         *bun.DB
	migrations []Migration
	logger     interfaces.Logger
	clock      func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

func WithLogger(logger interfaces.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logging.Ensure(logger)
	}
}

func WithClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewRunner(db *bun.DB, migrations []Migration, opts ...RunnerOption) *Runner {
	r := &Runner{
		db:         db,
		migrations: slices.Clone(migrations),
		logger:     logging.NoOp(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*appliedRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("migrations: create schema_migrations: %w", err)
	}
	return nil
}

func (r *Runner) applied(ctx context.Context) (map[string]time.Time, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	var rows []appliedRow
	if err := r.db.NewSelect().Model(&rows).Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("migrations: read schema_migrations: %w", err)
	}
	out := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		out[row.Name] = row.AppliedAt
	}
	return out, nil
}

// Up applies every pending migration and returns their names.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	var ran []string
	for _, migration := range r.migrations {
		if migration.Name == "" {
			return ran, ErrMigrationNameRequired
		}
		if _, ok := done[migration.Name]; ok {
			continue
		}
		if migration.Up != nil {
			if err := migration.Up(ctx, r.db); err != nil {
				r.logger.Error("migrations.up.failed", "migration", migration.Name, "error", err)
				return ran, fmt.Errorf("migrations: up %s: %w", migration.Name, err)
			}
		}
		row := &appliedRow{Name: migration.Name, AppliedAt: r.clock().UTC()}
		if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
			return ran, fmt.Errorf("migrations: record %s: %w", migration.Name, err)
		}
		r.logger.Info("migrations.up.applied", "migration", migration.Name)
		ran = append(ran, migration.Name)
	}
	return ran, nil
}

// Down reverts the most recently applied migration. It returns "" when
// nothing is applied.
func (r *Runner) Down(ctx context.Context) (string, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return "", err
	}
	for i := len(r.migrations) - 1; i >= 0; i-- {
		migration := r.migrations[i]
		if _, ok := done[migration.Name]; !ok {
			continue
		}
		if migration.Down != nil {
			if err := migration.Down(ctx, r.db); err != nil {
				r.logger.Error("migrations.down.failed", "migration", migration.Name, "error", err)
				return "", fmt.Errorf("migrations: down %s: %w", migration.Name, err)
			}
		}
		if _, err := r.db.NewDelete().
			Model((*appliedRow)(nil)).
			Where("name = ?", migration.Name).
			Exec(ctx); err != nil {
			return "", fmt.Errorf("migrations: unrecord %s: %w", migration.Name, err)
		}
		r.logger.Info("migrations.down.reverted", "migration", migration.Name)
		return migration.Name, nil
	}
	return "", nil
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.migrations))
	for _, migration := range r.migrations {
		status := Status{Name: migration.Name}
		if at, ok := done[migration.Name]; ok {
			status.Applied = true
			status.AppliedAt = &at
		}
		out = append(out, status)
	}
	return out, nil
}

// SQLFile returns a step that runs the statements of a migration file.
// Statements are separated by SplitMarker.
func SQLFile(fsys fs.FS, path string) Step {
	return func(ctx context.Context, db *bun.DB) error {
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for _, chunk := range strings.Split(string(raw), SplitMarker) {
			statement := strings.TrimSpace(chunk)
			if statement == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, statement); err != nil {
				return fmt.Errorf("exec %s: %w", path, err)
			}
		}
		return nil
	}
}
