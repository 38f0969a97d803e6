package baserow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"roster-sync/core/rest"
	"roster-sync/core/utils"
	"roster-sync/feature/roster"

	"go.uber.org/zap"
)

const maxPageSize = 200

// ErrTableRequired is returned when no table id is configured.
var ErrTableRequired = errors.New("baserow table id is required")

// Client reads roster rows from a Baserow table.
type Client struct {
	rest     *rest.Client
	tableID  int
	pageSize int
	logger   *zap.Logger
}

type rowsPage struct {
	Count   int              `json:"count"`
	Next    *string          `json:"next"`
	Results []map[string]any `json:"results"`
}

// NewClient creates a Baserow client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.TableID <= 0 {
		return nil, ErrTableRequired
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Client{
		rest:     rest.New(cfg.URL, cfg.APIKey, time.Duration(cfg.TimeoutSeconds)*time.Second, logger),
		tableID:  cfg.TableID,
		pageSize: pageSize,
		logger:   logger,
	}, nil
}

// LoadRows reads every row of the table, following pagination.
func (c *Client) LoadRows(ctx context.Context) ([]roster.Row, error) {
	next := fmt.Sprintf("/api/database/rows/table/%d/?user_field_names=true&size=%d", c.tableID, c.pageSize)

	var rows []roster.Row
	for next != "" {
		var page rowsPage
		if err := c.rest.Get(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("failed to list baserow rows: %w", err)
		}

		for _, cells := range page.Results {
			rows = append(rows, roster.Row{
				ID:    strconv.Itoa(utils.ToInt(cells["id"])),
				Cells: cells,
			})
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	c.logger.Info("Loaded roster rows", zap.String("source", "baserow"), zap.Int("count", len(rows)))
	return rows, nil
}
