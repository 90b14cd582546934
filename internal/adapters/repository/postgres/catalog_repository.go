package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	pgdb "github.com/ogurasousui/codex-grpc-workforce/internal/platform/db/postgres"
)

const (
	storeColumns       = `id, name, street, city, state, zip, phone, active, created_at, updated_at`
	storeFlavorColumns = `id, store_id, flavor_id, created_at`
	flavorColumns      = `id, name, active, created_at, updated_at`
	jobColumns         = `id, name, description, active, created_at, updated_at`
)

// StoreRepository は PostgreSQL を利用した店舗永続化の実装です。
type StoreRepository struct {
	pool pgdb.Queryer
}

// NewStoreRepository は StoreRepository を生成します。
func NewStoreRepository(pool pgdb.Queryer) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// Create は店舗を新規作成します。
func (r *StoreRepository) Create(ctx context.Context, s *workforce.Store) (*workforce.Store, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO stores (id, name, street, city, state, zip, phone, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+storeColumns+`
    `, s.ID, s.Name, s.Street, s.City, string(s.State), s.Zip, s.Phone, s.Active, s.CreatedAt, s.UpdatedAt)

	created, err := scanStore(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	return created, nil
}

// Update は店舗情報を更新します。
func (r *StoreRepository) Update(ctx context.Context, s *workforce.Store) (*workforce.Store, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE stores
           SET name = $1,
               street = $2,
               city = $3,
               state = $4,
               zip = $5,
               phone = $6,
               active = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING `+storeColumns+`
    `, s.Name, s.Street, s.City, string(s.State), s.Zip, s.Phone, s.Active, s.UpdatedAt, s.ID)

	updated, err := scanStore(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	return updated, nil
}

// FindByID は ID で店舗を取得します。
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*workforce.Store, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1 LIMIT 1`, id)

	found, err := scanStore(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	return found, nil
}

// FindByName は店舗名で店舗を取得します。
func (r *StoreRepository) FindByName(ctx context.Context, name string) (*workforce.Store, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE name = $1 LIMIT 1`, name)

	found, err := scanStore(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	return found, nil
}

// List は検索条件に一致する店舗を取得します。
func (r *StoreRepository) List(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Store, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, buildCatalogQuery("stores", storeColumns, query))
	if err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	defer rows.Close()

	stores := make([]*workforce.Store, 0)
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, translatePgError(err, workforce.ErrStoreNotFound)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	return stores, nil
}

// AddFlavor は店舗の取扱フレーバーを追加します。
func (r *StoreRepository) AddFlavor(ctx context.Context, link *workforce.StoreFlavor) (*workforce.StoreFlavor, error) {
	if link == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO store_flavors (id, store_id, flavor_id, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING `+storeFlavorColumns+`
    `, link.ID, link.StoreID, link.FlavorID, link.CreatedAt)

	var created workforce.StoreFlavor
	if err := row.Scan(&created.ID, &created.StoreID, &created.FlavorID, &created.CreatedAt); err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	return &created, nil
}

// ListFlavors は店舗の取扱フレーバーを登録順に取得します。
func (r *StoreRepository) ListFlavors(ctx context.Context, storeID string) ([]*workforce.StoreFlavor, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+storeFlavorColumns+`
          FROM store_flavors
         WHERE store_id = $1
         ORDER BY id
    `, storeID)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrStoreNotFound)
	}
	defer rows.Close()

	links := make([]*workforce.StoreFlavor, 0)
	for rows.Next() {
		var link workforce.StoreFlavor
		if err := rows.Scan(&link.ID, &link.StoreID, &link.FlavorID, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

func scanStore(row pgx.Row) (*workforce.Store, error) {
	var (
		s     workforce.Store
		state string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Street, &s.City, &state, &s.Zip, &s.Phone, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workforce.ErrStoreNotFound
		}
		return nil, err
	}
	s.State = workforce.State(state)
	return &s, nil
}

// FlavorRepository は PostgreSQL を利用したフレーバー永続化の実装です。
type FlavorRepository struct {
	pool pgdb.Queryer
}

// NewFlavorRepository は FlavorRepository を生成します。
func NewFlavorRepository(pool pgdb.Queryer) *FlavorRepository {
	return &FlavorRepository{pool: pool}
}

func (r *FlavorRepository) Create(ctx context.Context, f *workforce.Flavor) (*workforce.Flavor, error) {
	if f == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO flavors (id, name, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+flavorColumns+`
    `, f.ID, f.Name, f.Active, f.CreatedAt, f.UpdatedAt)

	created, err := scanFlavor(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrFlavorNotFound)
	}
	return created, nil
}

func (r *FlavorRepository) Update(ctx context.Context, f *workforce.Flavor) (*workforce.Flavor, error) {
	if f == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE flavors
           SET name = $1,
               active = $2,
               updated_at = $3
         WHERE id = $4
        RETURNING `+flavorColumns+`
    `, f.Name, f.Active, f.UpdatedAt, f.ID)

	updated, err := scanFlavor(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrFlavorNotFound)
	}
	return updated, nil
}

func (r *FlavorRepository) FindByID(ctx context.Context, id string) (*workforce.Flavor, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+flavorColumns+` FROM flavors WHERE id = $1 LIMIT 1`, id)

	found, err := scanFlavor(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrFlavorNotFound)
	}
	return found, nil
}

func (r *FlavorRepository) List(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Flavor, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, buildCatalogQuery("flavors", flavorColumns, query))
	if err != nil {
		return nil, translatePgError(err, workforce.ErrFlavorNotFound)
	}
	defer rows.Close()

	flavors := make([]*workforce.Flavor, 0)
	for rows.Next() {
		f, err := scanFlavor(rows)
		if err != nil {
			return nil, err
		}
		flavors = append(flavors, f)
	}
	return flavors, rows.Err()
}

func scanFlavor(row pgx.Row) (*workforce.Flavor, error) {
	var f workforce.Flavor
	if err := row.Scan(&f.ID, &f.Name, &f.Active, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workforce.ErrFlavorNotFound
		}
		return nil, err
	}
	return &f, nil
}

// JobRepository は PostgreSQL を利用した職務永続化の実装です。
type JobRepository struct {
	pool pgdb.Queryer
}

// NewJobRepository は JobRepository を生成します。
func NewJobRepository(pool pgdb.Queryer) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, j *workforce.Job) (*workforce.Job, error) {
	if j == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO jobs (id, name, description, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+jobColumns+`
    `, j.ID, j.Name, nullableStringPtr(j.Description), j.Active, j.CreatedAt, j.UpdatedAt)

	created, err := scanJob(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrJobNotFound)
	}
	return created, nil
}

func (r *JobRepository) Update(ctx context.Context, j *workforce.Job) (*workforce.Job, error) {
	if j == nil {
		return nil, workforce.ErrNilEntity
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE jobs
           SET name = $1,
               description = $2,
               active = $3,
               updated_at = $4
         WHERE id = $5
        RETURNING `+jobColumns+`
    `, j.Name, nullableStringPtr(j.Description), j.Active, j.UpdatedAt, j.ID)

	updated, err := scanJob(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrJobNotFound)
	}
	return updated, nil
}

// Delete は職務を削除します。シフトとの関連は外部キーの ON DELETE CASCADE で削除されます。
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, workforce.ErrJobNotFound)
	}
	if tag.RowsAffected() == 0 {
		return workforce.ErrJobNotFound
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*workforce.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 LIMIT 1`, id)

	found, err := scanJob(row)
	if err != nil {
		return nil, translatePgError(err, workforce.ErrJobNotFound)
	}
	return found, nil
}

func (r *JobRepository) List(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, buildCatalogQuery("jobs", jobColumns, query))
	if err != nil {
		return nil, translatePgError(err, workforce.ErrJobNotFound)
	}
	defer rows.Close()

	jobs := make([]*workforce.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*workforce.Job, error) {
	var (
		j           workforce.Job
		description sql.NullString
	)
	if err := row.Scan(&j.ID, &j.Name, &description, &j.Active, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workforce.ErrJobNotFound
		}
		return nil, err
	}
	j.Description = stringPtr(description)
	return &j, nil
}
