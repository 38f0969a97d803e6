package sqlsource

import (
	"context"
	"fmt"
	"strings"

	"roster-sync/core/database"
	"roster-sync/core/utils"
	"roster-sync/feature/roster"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Source reads roster rows from a database table.
type Source struct {
	db      *gorm.DB
	cfg     Config
	columns roster.Columns
	logger  *zap.Logger
}

// NewSource creates a SQL roster source. columns are verified against the table on load.
func NewSource(db *gorm.DB, cfg Config, columns roster.Columns, logger *zap.Logger) *Source {
	return &Source{db: db, cfg: cfg, columns: columns, logger: logger}
}

// LoadRows reads every row of the table ordered by the id column.
func (s *Source) LoadRows(ctx context.Context) ([]roster.Row, error) {
	wanted := append([]string{s.cfg.IDColumn}, s.columns.All()...)
	missing, err := database.MissingColumns(s.db.WithContext(ctx), s.cfg.Table, wanted)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", s.cfg.Table, err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("table %s is missing columns: %s", s.cfg.Table, strings.Join(missing, ", "))
	}

	var results []map[string]any
	err = s.db.WithContext(ctx).
		Table(s.cfg.Table).
		Order(s.cfg.IDColumn).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", s.cfg.Table, err)
	}

	rows := make([]roster.Row, 0, len(results))
	for _, cells := range results {
		rows = append(rows, roster.Row{
			ID:    utils.ToString(cells[s.cfg.IDColumn]),
			Cells: normalize(cells),
		})
	}

	s.logger.Info("Loaded roster rows", zap.String("source", "sql"), zap.String("table", s.cfg.Table), zap.Int("count", len(rows)))
	return rows, nil
}

// normalize turns driver byte slices into strings so cells compare like JSON values.
func normalize(cells map[string]any) map[string]any {
	for k, v := range cells {
		if b, ok := v.([]byte); ok {
			cells[k] = string(b)
		}
	}
	return cells
}
