package workforce

import "context"

// EmployeeRepository は社員の永続化を行うインターフェースです。
type EmployeeRepository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindBySSN(ctx context.Context, ssn string) (*Employee, error)
	List(ctx context.Context, query EmployeeQuery) ([]*Employee, error)
}

// AccountRepository はアカウントの永続化を行うインターフェースです。
type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	Delete(ctx context.Context, id string) error
	FindByEmployee(ctx context.Context, employeeID string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// StoreRepository は店舗と取扱フレーバーの永続化を行うインターフェースです。
type StoreRepository interface {
	Create(ctx context.Context, store *Store) (*Store, error)
	Update(ctx context.Context, store *Store) (*Store, error)
	FindByID(ctx context.Context, id string) (*Store, error)
	FindByName(ctx context.Context, name string) (*Store, error)
	List(ctx context.Context, query CatalogQuery) ([]*Store, error)
	AddFlavor(ctx context.Context, link *StoreFlavor) (*StoreFlavor, error)
	ListFlavors(ctx context.Context, storeID string) ([]*StoreFlavor, error)
}

// FlavorRepository はフレーバーの永続化を行うインターフェースです。
type FlavorRepository interface {
	Create(ctx context.Context, flavor *Flavor) (*Flavor, error)
	Update(ctx context.Context, flavor *Flavor) (*Flavor, error)
	FindByID(ctx context.Context, id string) (*Flavor, error)
	List(ctx context.Context, query CatalogQuery) ([]*Flavor, error)
}

// JobRepository は職務の永続化を行うインターフェースです。
// Delete はシフトとの関連も合わせて削除します。
type JobRepository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	Update(ctx context.Context, job *Job) (*Job, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, query CatalogQuery) ([]*Job, error)
}

// AssignmentRepository は割り当ての永続化を行うインターフェースです。
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *Assignment) (*Assignment, error)
	Update(ctx context.Context, assignment *Assignment) (*Assignment, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Assignment, error)
	List(ctx context.Context, query AssignmentQuery) ([]*Assignment, error)
}

// ShiftRepository はシフトと職務割り当ての永続化を行うインターフェースです。
// Delete は職務との関連も合わせて削除します。
type ShiftRepository interface {
	Create(ctx context.Context, shift *Shift) (*Shift, error)
	Update(ctx context.Context, shift *Shift) (*Shift, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Shift, error)
	List(ctx context.Context, query ShiftQuery) ([]*Shift, error)
	AddJob(ctx context.Context, link *ShiftJob) (*ShiftJob, error)
	ListJobs(ctx context.Context, shiftID string) ([]*ShiftJob, error)
}

// Repositories はライフサイクル処理で使用するリポジトリの集合です。
type Repositories struct {
	Employees   EmployeeRepository
	Accounts    AccountRepository
	Stores      StoreRepository
	Flavors     FlavorRepository
	Jobs        JobRepository
	Assignments AssignmentRepository
	Shifts      ShiftRepository
}
