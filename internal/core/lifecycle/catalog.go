package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// CreateStoreInput は店舗作成時の入力です。
type CreateStoreInput struct {
	Name   string
	Street string
	City   string
	State  workforce.State
	Zip    string
	Phone  string
	Active *bool
}

// UpdateStoreInput は店舗更新時の入力です。nil の項目は変更しません。
type UpdateStoreInput struct {
	ID     string
	Name   *string
	Street *string
	City   *string
	State  *workforce.State
	Zip    *string
	Phone  *string
	Active *bool
}

// AddFlavorToStoreInput は店舗へのフレーバー追加時の入力です。
type AddFlavorToStoreInput struct {
	StoreID  string
	FlavorID string
}

// CreateFlavorInput はフレーバー作成時の入力です。
type CreateFlavorInput struct {
	Name   string
	Active *bool
}

// CreateJobInput は職務作成時の入力です。
type CreateJobInput struct {
	Name        string
	Description *string
	Active      *bool
}

// CreateStore は店舗を作成します。電話番号は数字のみに正規化して保存します。
func (s *Service) CreateStore(ctx context.Context, in CreateStoreInput) (*workforce.Store, Outcome, error) {
	var created *workforce.Store
	outcome, err := s.execute(ctx, "CreateStore", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		now := asOf.Now()
		store := &workforce.Store{
			Name:      strings.TrimSpace(in.Name),
			Street:    strings.TrimSpace(in.Street),
			City:      strings.TrimSpace(in.City),
			State:     workforce.State(strings.ToUpper(strings.TrimSpace(string(in.State)))),
			Zip:       strings.TrimSpace(in.Zip),
			Phone:     strings.TrimSpace(in.Phone),
			Active:    boolOr(in.Active, true),
			CreatedAt: now,
			UpdatedAt: now,
		}

		errs, err := s.validator.Store(ctx, store)
		if err != nil {
			return Outcome{}, err
		}
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}
		store.Phone = workforce.NormalizePhone(store.Phone)

		if store.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Stores.Create(ctx, store)
		if err != nil {
			if o, ok := conflictOutcome(err); ok {
				return o, nil
			}
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// UpdateStore は店舗情報を更新します。
func (s *Service) UpdateStore(ctx context.Context, in UpdateStoreInput) (*workforce.Store, Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return nil, Outcome{}, err
	}

	var updated *workforce.Store
	outcome, err := s.execute(ctx, "UpdateStore", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		store, err := s.repos.Stores.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}

		if in.Name != nil {
			store.Name = strings.TrimSpace(*in.Name)
		}
		if in.Street != nil {
			store.Street = strings.TrimSpace(*in.Street)
		}
		if in.City != nil {
			store.City = strings.TrimSpace(*in.City)
		}
		if in.State != nil {
			store.State = workforce.State(strings.ToUpper(strings.TrimSpace(string(*in.State))))
		}
		if in.Zip != nil {
			store.Zip = strings.TrimSpace(*in.Zip)
		}
		if in.Phone != nil {
			store.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Active != nil {
			store.Active = *in.Active
		}

		errs, err := s.validator.Store(ctx, store)
		if err != nil {
			return Outcome{}, err
		}
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}
		store.Phone = workforce.NormalizePhone(store.Phone)
		store.UpdatedAt = asOf.Now()

		updated, err = s.repos.Stores.Update(ctx, store)
		if err != nil {
			if o, ok := conflictOutcome(err); ok {
				return o, nil
			}
			return Outcome{}, err
		}
		return committed(EffectUpdated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return updated, outcome, nil
}

// AddFlavorToStore は店舗の取扱フレーバーに有効なフレーバーを追加します。
func (s *Service) AddFlavorToStore(ctx context.Context, in AddFlavorToStoreInput) (*workforce.StoreFlavor, Outcome, error) {
	if err := requireID("store_id", in.StoreID); err != nil {
		return nil, Outcome{}, err
	}

	var created *workforce.StoreFlavor
	outcome, err := s.execute(ctx, "AddFlavorToStore", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		store, err := s.repos.Stores.FindByID(ctx, in.StoreID)
		if err != nil {
			return Outcome{}, err
		}

		errs := workforce.FieldErrors{}
		if !store.Active {
			errs.Add("store_id", "is not active in the system")
		}
		flavor, err := s.findFlavorReference(ctx, in.FlavorID)
		if err != nil {
			return Outcome{}, err
		}
		if flavor == nil || !flavor.Active {
			errs.Add("flavor_id", "is not active in the system")
		} else {
			links, err := s.repos.Stores.ListFlavors(ctx, store.ID)
			if err != nil {
				return Outcome{}, err
			}
			for _, link := range links {
				if link.FlavorID == flavor.ID {
					errs.Add("flavor_id", "has already been taken")
				}
			}
		}
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}

		link := &workforce.StoreFlavor{StoreID: store.ID, FlavorID: flavor.ID, CreatedAt: asOf.Now()}
		if link.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Stores.AddFlavor(ctx, link)
		if err != nil {
			if o, ok := conflictOutcome(err); ok {
				return o, nil
			}
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// CreateFlavor はフレーバーを作成します。
func (s *Service) CreateFlavor(ctx context.Context, in CreateFlavorInput) (*workforce.Flavor, Outcome, error) {
	var created *workforce.Flavor
	outcome, err := s.execute(ctx, "CreateFlavor", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		now := asOf.Now()
		flavor := &workforce.Flavor{
			Name:      strings.TrimSpace(in.Name),
			Active:    boolOr(in.Active, true),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if errs := workforce.ValidateFlavor(flavor); !errs.OK() {
			return rejectedValidation(errs), nil
		}

		var err error
		if flavor.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Flavors.Create(ctx, flavor)
		if err != nil {
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// CreateJob は職務を作成します。
func (s *Service) CreateJob(ctx context.Context, in CreateJobInput) (*workforce.Job, Outcome, error) {
	var created *workforce.Job
	outcome, err := s.execute(ctx, "CreateJob", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		now := asOf.Now()
		job := &workforce.Job{
			Name:        strings.TrimSpace(in.Name),
			Description: trimmedOrNil(in.Description),
			Active:      boolOr(in.Active, true),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if errs := workforce.ValidateJob(job); !errs.OK() {
			return rejectedValidation(errs), nil
		}

		var err error
		if job.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Jobs.Create(ctx, job)
		if err != nil {
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// DeleteStore は店舗を無効化します。店舗は物理削除しません。
func (s *Service) DeleteStore(ctx context.Context, in DeleteInput) (Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return Outcome{}, err
	}

	return s.execute(ctx, "DeleteStore", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		store, err := s.repos.Stores.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}
		if decideDeletion(KindStore, false) != decideDeactivate {
			return Outcome{}, fmt.Errorf("lifecycle: unexpected deletion policy for %s", KindStore)
		}

		store.Active = false
		store.UpdatedAt = asOf.Now()
		if _, err := s.repos.Stores.Update(ctx, store); err != nil {
			return Outcome{}, err
		}
		return committedAsDeactivation(EffectDeactivated, "stores are never deleted"), nil
	})
}

// DeleteFlavor はフレーバーを無効化します。フレーバーは物理削除しません。
func (s *Service) DeleteFlavor(ctx context.Context, in DeleteInput) (Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return Outcome{}, err
	}

	return s.execute(ctx, "DeleteFlavor", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		flavor, err := s.repos.Flavors.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}
		if decideDeletion(KindFlavor, false) != decideDeactivate {
			return Outcome{}, fmt.Errorf("lifecycle: unexpected deletion policy for %s", KindFlavor)
		}

		flavor.Active = false
		flavor.UpdatedAt = asOf.Now()
		if _, err := s.repos.Flavors.Update(ctx, flavor); err != nil {
			return Outcome{}, err
		}
		return committedAsDeactivation(EffectDeactivated, "flavors are never deleted"), nil
	})
}

// DeleteJob は職務を削除します。勤務済みのシフトに割り当てられていれば無効化に置き換えます。
func (s *Service) DeleteJob(ctx context.Context, in DeleteInput) (Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return Outcome{}, err
	}

	return s.execute(ctx, "DeleteJob", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		job, err := s.repos.Jobs.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}

		worked, err := s.hasWorkedShift(ctx, workforce.Shifts().ForJob(job.ID), asOf)
		if err != nil {
			return Outcome{}, err
		}

		if decideDeletion(KindJob, worked) == decideDeactivate {
			job.Active = false
			job.UpdatedAt = asOf.Now()
			if _, err := s.repos.Jobs.Update(ctx, job); err != nil {
				return Outcome{}, err
			}
			return committedAsDeactivation(EffectDeactivated, "job has been worked"), nil
		}

		if err := s.repos.Jobs.Delete(ctx, job.ID); err != nil {
			return Outcome{}, err
		}
		return committed(EffectDeleted), nil
	})
}

func (s *Service) findFlavorReference(ctx context.Context, id string) (*workforce.Flavor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	flavor, err := s.repos.Flavors.FindByID(ctx, id)
	if errors.Is(err, workforce.ErrFlavorNotFound) || errors.Is(err, workforce.ErrInvalidID) {
		return nil, nil
	}
	return flavor, err
}
