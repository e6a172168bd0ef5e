// README: Pricing store backed by PostgreSQL; loads per-market rate tables.
package pricing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"oortgo/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// LoadTable reads the rates configured for market. Classes missing from the
// table keep their default rate.
func (s *Store) LoadTable(ctx context.Context, market string) (Table, error) {
	rows, err := s.db.Query(ctx, `
		SELECT vehicle_class, fixed_fare, per_km
		FROM pricing_rates
		WHERE market = $1`, market)
	if err != nil {
		return nil, fmt.Errorf("query pricing_rates: %w", err)
	}
	defer rows.Close()

	table := DefaultTable()
	for rows.Next() {
		var class string
		var r Rate
		if err := rows.Scan(&class, &r.Fixed, &r.PerKm); err != nil {
			return nil, fmt.Errorf("scan pricing_rates: %w", err)
		}
		table[types.VehicleClass(class)] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
