package memory

import (
	"context"
	"sort"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// StoreRepository は店舗と取扱フレーバーのインメモリ実装です。
type StoreRepository struct {
	store *Store
}

func (r *StoreRepository) Create(ctx context.Context, s *workforce.Store) (*workforce.Store, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(s.ID); err != nil {
		return nil, err
	}

	var created workforce.Store
	err := r.store.write(ctx, func(st *state) error {
		for _, existing := range st.stores {
			if existing.Name == s.Name {
				return workforce.ErrStoreNameAlreadyExists
			}
		}
		created = *s
		st.stores[s.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *StoreRepository) Update(ctx context.Context, s *workforce.Store) (*workforce.Store, error) {
	if s == nil {
		return nil, workforce.ErrNilEntity
	}

	var updated workforce.Store
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.stores[s.ID]; !ok {
			return workforce.ErrStoreNotFound
		}
		for id, existing := range st.stores {
			if id != s.ID && existing.Name == s.Name {
				return workforce.ErrStoreNameAlreadyExists
			}
		}
		updated = *s
		st.stores[s.ID] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*workforce.Store, error) {
	var found workforce.Store
	err := r.store.read(ctx, func(st *state) error {
		s, ok := st.stores[id]
		if !ok {
			return workforce.ErrStoreNotFound
		}
		found = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *StoreRepository) FindByName(ctx context.Context, name string) (*workforce.Store, error) {
	var found *workforce.Store
	err := r.store.read(ctx, func(st *state) error {
		for _, s := range st.stores {
			if s.Name == name {
				s := s
				found = &s
				return nil
			}
		}
		return workforce.ErrStoreNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *StoreRepository) List(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Store, error) {
	var list []*workforce.Store
	err := r.store.read(ctx, func(st *state) error {
		for _, s := range st.stores {
			if query.Match(s.Active) {
				s := s
				list = append(list, &s)
			}
		}
		sort.Slice(list, func(i, j int) bool {
			return query.Less(list[i].Name, list[i].ID, list[j].Name, list[j].ID)
		})
		return nil
	})
	return list, err
}

func (r *StoreRepository) AddFlavor(ctx context.Context, link *workforce.StoreFlavor) (*workforce.StoreFlavor, error) {
	if link == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(link.ID); err != nil {
		return nil, err
	}

	var created workforce.StoreFlavor
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.stores[link.StoreID]; !ok {
			return workforce.ErrStoreNotFound
		}
		if _, ok := st.flavors[link.FlavorID]; !ok {
			return workforce.ErrFlavorNotFound
		}
		for _, existing := range st.storeFlavors {
			if existing.StoreID == link.StoreID && existing.FlavorID == link.FlavorID {
				return workforce.ErrStoreFlavorAlreadyExists
			}
		}
		created = *link
		st.storeFlavors[link.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *StoreRepository) ListFlavors(ctx context.Context, storeID string) ([]*workforce.StoreFlavor, error) {
	var list []*workforce.StoreFlavor
	err := r.store.read(ctx, func(st *state) error {
		for _, link := range st.storeFlavors {
			if link.StoreID == storeID {
				link := link
				list = append(list, &link)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		return nil
	})
	return list, err
}

// FlavorRepository はフレーバーのインメモリ実装です。
type FlavorRepository struct {
	store *Store
}

func (r *FlavorRepository) Create(ctx context.Context, f *workforce.Flavor) (*workforce.Flavor, error) {
	if f == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(f.ID); err != nil {
		return nil, err
	}

	created := *f
	err := r.store.write(ctx, func(st *state) error {
		st.flavors[f.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *FlavorRepository) Update(ctx context.Context, f *workforce.Flavor) (*workforce.Flavor, error) {
	if f == nil {
		return nil, workforce.ErrNilEntity
	}

	updated := *f
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.flavors[f.ID]; !ok {
			return workforce.ErrFlavorNotFound
		}
		st.flavors[f.ID] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *FlavorRepository) FindByID(ctx context.Context, id string) (*workforce.Flavor, error) {
	var found workforce.Flavor
	err := r.store.read(ctx, func(st *state) error {
		f, ok := st.flavors[id]
		if !ok {
			return workforce.ErrFlavorNotFound
		}
		found = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *FlavorRepository) List(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Flavor, error) {
	var list []*workforce.Flavor
	err := r.store.read(ctx, func(st *state) error {
		for _, f := range st.flavors {
			if query.Match(f.Active) {
				f := f
				list = append(list, &f)
			}
		}
		sort.Slice(list, func(i, j int) bool {
			return query.Less(list[i].Name, list[i].ID, list[j].Name, list[j].ID)
		})
		return nil
	})
	return list, err
}

// JobRepository は職務のインメモリ実装です。
type JobRepository struct {
	store *Store
}

func (r *JobRepository) Create(ctx context.Context, j *workforce.Job) (*workforce.Job, error) {
	if j == nil {
		return nil, workforce.ErrNilEntity
	}
	if err := requireID(j.ID); err != nil {
		return nil, err
	}

	created := cloneJob(*j)
	err := r.store.write(ctx, func(st *state) error {
		st.jobs[j.ID] = cloneJob(created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *JobRepository) Update(ctx context.Context, j *workforce.Job) (*workforce.Job, error) {
	if j == nil {
		return nil, workforce.ErrNilEntity
	}

	updated := cloneJob(*j)
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.jobs[j.ID]; !ok {
			return workforce.ErrJobNotFound
		}
		st.jobs[j.ID] = cloneJob(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete は職務とシフトとの関連を削除します。
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.jobs[id]; !ok {
			return workforce.ErrJobNotFound
		}
		for linkID, link := range st.shiftJobs {
			if link.JobID == id {
				delete(st.shiftJobs, linkID)
			}
		}
		delete(st.jobs, id)
		return nil
	})
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*workforce.Job, error) {
	var found workforce.Job
	err := r.store.read(ctx, func(st *state) error {
		j, ok := st.jobs[id]
		if !ok {
			return workforce.ErrJobNotFound
		}
		found = cloneJob(j)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *JobRepository) List(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Job, error) {
	var list []*workforce.Job
	err := r.store.read(ctx, func(st *state) error {
		for _, j := range st.jobs {
			if query.Match(j.Active) {
				j := cloneJob(j)
				list = append(list, &j)
			}
		}
		sort.Slice(list, func(i, j int) bool {
			return query.Less(list[i].Name, list[i].ID, list[j].Name, list[j].ID)
		})
		return nil
	})
	return list, err
}
