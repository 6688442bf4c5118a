package db

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// schemaMigration is one row of the schema_migrations bookkeeping table.
type schemaMigration struct {
	Version   string    `gorm:"primaryKey;column:version"`
	Name      string    `gorm:"not null;column:name"`
	AppliedAt time.Time `gorm:"not null;column:applied_at"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type sqlMigration struct {
	Version string
	Order   int
	Name    string
	SQL     string
}

type MigrationStatus struct {
	Version   string
	Name      string
	AppliedAt *time.Time
}

func (status MigrationStatus) Applied() bool {
	return status.AppliedAt != nil
}

// Migrator applies the forward-only NNN_name.sql files of an fs.FS and keeps
// track of them in schema_migrations.
type Migrator struct {
	database *gorm.DB
	files    fs.FS
	logger   zerolog.Logger
}

func NewMigrator(database *gorm.DB, files fs.FS, logger zerolog.Logger) *Migrator {
	return &Migrator{
		database: database,
		files:    files,
		logger:   logger.With().Str("component", "migrations").Logger(),
	}
}

// Apply runs the pending migrations in version order and returns the file
// names it applied. It stops at the first failing migration.
func (migrator *Migrator) Apply() ([]string, error) {
	statuses, err := migrator.Status()
	if err != nil {
		return nil, err
	}
	migrations, err := loadMigrations(migrator.files)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0)
	for index, migration := range migrations {
		if statuses[index].Applied() {
			continue
		}
		if err := migrator.run(migration); err != nil {
			return applied, err
		}
		migrator.logger.Info().Str("version", migration.Version).Str("name", migration.Name).Msg("migration applied")
		applied = append(applied, migration.Name)
	}
	return applied, nil
}

// Status lists every known migration with its applied time, if any.
func (migrator *Migrator) Status() ([]MigrationStatus, error) {
	if err := migrator.database.AutoMigrate(&schemaMigration{}); err != nil {
		return nil, fmt.Errorf("prepare schema_migrations: %w", err)
	}

	migrations, err := loadMigrations(migrator.files)
	if err != nil {
		return nil, err
	}

	var records []schemaMigration
	if err := migrator.database.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	appliedAt := make(map[string]time.Time, len(records))
	for _, record := range records {
		appliedAt[record.Version] = record.AppliedAt
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, migration := range migrations {
		status := MigrationStatus{Version: migration.Version, Name: migration.Name}
		if at, ok := appliedAt[migration.Version]; ok {
			status.AppliedAt = &at
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (migrator *Migrator) run(migration sqlMigration) error {
	statements := splitSQLStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s has no SQL statements", migration.Name)
	}

	return migrator.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			if table, column, ok := parseAddColumn(statement); ok && tx.Migrator().HasColumn(table, column) {
				migrator.logger.Debug().Str("table", table).Str("column", column).Msg("column already present, skipping")
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		record := schemaMigration{Version: migration.Version, Name: migration.Name, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, err)
		}
		return nil
	})
}

func loadMigrations(files fs.FS) ([]sqlMigration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	migrations := make([]sqlMigration, 0, len(names))
	byVersion := make(map[string]string, len(names))
	for _, name := range names {
		version, order, ok := migrationVersion(name)
		if !ok {
			continue
		}
		if other, duplicate := byVersion[version]; duplicate {
			return nil, fmt.Errorf("migrations %s and %s share version %s", other, name, version)
		}
		byVersion[version] = name

		body, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, sqlMigration{Version: version, Order: order, Name: name, SQL: string(body)})
	}

	sort.SliceStable(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

// migrationVersion extracts the numeric prefix of "NNN_name.sql".
func migrationVersion(name string) (string, int, bool) {
	version, rest, found := strings.Cut(path.Base(name), "_")
	if !found || version == "" || rest == ".sql" {
		return "", 0, false
	}
	order, err := strconv.Atoi(version)
	if err != nil || order < 0 {
		return "", 0, false
	}
	return version, order, true
}

// splitSQLStatements drops "--" comment lines and splits on semicolons.
func splitSQLStatements(sqlText string) []string {
	lines := strings.Split(sqlText, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	statements := make([]string, 0)
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// parseAddColumn recognizes "ALTER TABLE t ADD COLUMN c ..." so that it can
// be skipped on databases where the column already exists.
func parseAddColumn(statement string) (string, string, bool) {
	fields := strings.Fields(statement)
	if len(fields) < 6 {
		return "", "", false
	}
	if !strings.EqualFold(fields[0], "ALTER") || !strings.EqualFold(fields[1], "TABLE") ||
		!strings.EqualFold(fields[3], "ADD") || !strings.EqualFold(fields[4], "COLUMN") {
		return "", "", false
	}
	return unquoteIdentifier(fields[2]), unquoteIdentifier(fields[5]), true
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(strings.TrimSpace(identifier), "\"`[]")
}
