// Package printing sends rendered pages to output devices.
package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-reports/internal/layout"
)

var (
	// ErrProfileNotFound indicates the print profile id does not resolve.
	ErrProfileNotFound = errors.New("printing: profile not found")
	// ErrNoDevice indicates a job without a target device.
	ErrNoDevice = errors.New("printing: device required")
)

// Profile names an output device and the page setup used to rasterize for it.
type Profile struct {
	ID       int64
	Name     string
	Device   string
	PageSize layout.PageSize
	DPI      int
}

// ProfileStore resolves print profiles.
type ProfileStore interface {
	Profile(ctx context.Context, id int64) (Profile, error)
}

// StaticProfiles serves profiles from memory.
type StaticProfiles map[int64]Profile

// Profile implements ProfileStore.
func (s StaticProfiles) Profile(_ context.Context, id int64) (Profile, error) {
	p, ok := s[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}
	return p, nil
}

// Repository reads profiles from the print_profiles table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileQuery = `SELECT id, name, device, page_size, landscape, dpi
FROM print_profiles WHERE id = $1 AND is_active`

// Profile implements ProfileStore.
func (r *Repository) Profile(ctx context.Context, id int64) (Profile, error) {
	if r == nil || r.pool == nil {
		return Profile{}, errors.New("printing: repository not initialised")
	}
	var row profileRow
	err := r.pool.QueryRow(ctx, profileQuery, id).Scan(&row.ID, &row.Name, &row.Device, &row.PageSize, &row.Landscape, &row.DPI)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("printing: load profile %d: %w", id, err)
	}
	return row.profile()
}

type profileRow struct {
	ID        int64
	Name      string
	Device    string
	PageSize  string
	Landscape bool
	DPI       int32
}

func (r profileRow) profile() (Profile, error) {
	size, err := layout.ParsePageSize(r.PageSize)
	if err != nil {
		return Profile{}, fmt.Errorf("printing: profile %d: %w", r.ID, err)
	}
	if r.Landscape && !size.IsLandscape() {
		size = size.Landscape()
	}
	return Profile{ID: r.ID, Name: r.Name, Device: r.Device, PageSize: size, DPI: int(r.DPI)}, nil
}
