package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service answers read-side questions about the ledger. Every answer is
// computed from the rows at call time; nothing is cached or mutated.
type Service interface {
	LowStock(ctx context.Context) ([]LowStockRow, error)
	LocationValue(ctx context.Context, location types.LocationRef) (decimal.Decimal, error)
	TopLocationsByValue(ctx context.Context, locations []types.LocationRef, n int) ([]LocationValueRow, error)
	GroupedByItem(ctx context.Context) ([]ItemStockGroup, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a reports service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

// LowStock lists entries under their minimum level, including empty entries
// whose minimum is positive. Largest deficit first.
func (s *service) LowStock(ctx context.Context) ([]LowStockRow, error) {
	rows, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: low stock report")
	}
	report := make([]LowStockRow, 0, len(rows))
	for _, row := range rows {
		report = append(report, LowStockRow{
			EntryID:    row.EntryID,
			ItemID:     row.ItemID,
			PartNumber: row.PartNumber,
			ItemName:   row.ItemName,
			Location:   row.location(),
			Quantity:   row.Quantity,
			MinLevel:   row.MinLevel,
			Deficit:    row.MinLevel - row.Quantity,
		})
	}
	return report, nil
}

// LocationValue sums quantity times current unit price across one location.
func (s *service) LocationValue(ctx context.Context, location types.LocationRef) (decimal.Decimal, error) {
	if err := location.Validate(); err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
	}
	value, err := s.repo.LocationValue(ctx, location)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: location value")
	}
	return value, nil
}

// TopLocationsByValue ranks the given locations by stock value, descending,
// ties broken by location id so the order is stable.
func (s *service) TopLocationsByValue(ctx context.Context, locations []types.LocationRef, n int) ([]LocationValueRow, error) {
	if n <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "n must be positive")
	}
	rows := make([]LocationValueRow, 0, len(locations))
	for _, location := range locations {
		value, err := s.LocationValue(ctx, location)
		if err != nil {
			return nil, err
		}
		rows = append(rows, LocationValueRow{Location: location, Value: value})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Value.Equal(rows[j].Value) {
			return rows[i].Value.GreaterThan(rows[j].Value)
		}
		return strings.Compare(rows[i].Location.ID.String(), rows[j].Location.ID.String()) < 0
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// GroupedByItem returns every stocked item with its per-location entries.
// Inactive items still appear, flagged; entries whose item definition is
// gone are excluded entirely.
func (s *service) GroupedByItem(ctx context.Context) ([]ItemStockGroup, error) {
	rows, err := s.repo.EntriesWithItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: grouped stock report")
	}

	groups := make([]ItemStockGroup, 0)
	index := make(map[uuid.UUID]int)
	for _, row := range rows {
		i, ok := index[row.ItemID]
		if !ok {
			i = len(groups)
			index[row.ItemID] = i
			groups = append(groups, ItemStockGroup{
				ItemID:     row.ItemID,
				PartNumber: row.PartNumber,
				ItemName:   row.ItemName,
				IsActive:   row.IsActive,
			})
		}
		groups[i].Total += row.Quantity
		groups[i].Entries = append(groups[i].Entries, ItemStockEntry{
			EntryID:  row.EntryID,
			Location: row.location(),
			Quantity: row.Quantity,
		})
	}
	return groups, nil
}
