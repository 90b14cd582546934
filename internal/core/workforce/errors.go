package workforce

import "errors"

var (
	// ErrNilEntity はエンティティが渡されなかった場合に返却されます。
	ErrNilEntity = errors.New("workforce: nil entity")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("workforce: invalid id")
	// ErrMissingAsOf は日付依存の検索条件に基準日が設定されていない場合に返却されます。
	ErrMissingAsOf = errors.New("workforce: query requires an as-of date")
	// ErrReferenced は削除対象が他のレコードから参照されている場合に返却されます。
	ErrReferenced = errors.New("workforce: record is still referenced")
	// ErrConstraintViolation は保存先の整合性制約に違反した場合に返却されます。
	ErrConstraintViolation = errors.New("workforce: constraint violated")

	ErrEmployeeNotFound   = errors.New("workforce: employee not found")
	ErrAccountNotFound    = errors.New("workforce: account not found")
	ErrStoreNotFound      = errors.New("workforce: store not found")
	ErrJobNotFound        = errors.New("workforce: job not found")
	ErrFlavorNotFound     = errors.New("workforce: flavor not found")
	ErrAssignmentNotFound = errors.New("workforce: assignment not found")
	ErrShiftNotFound      = errors.New("workforce: shift not found")

	ErrSSNAlreadyExists         = errors.New("workforce: ssn already exists")
	ErrStoreNameAlreadyExists   = errors.New("workforce: store name already exists")
	ErrEmailAlreadyExists       = errors.New("workforce: email already exists")
	ErrAccountAlreadyExists     = errors.New("workforce: employee already has an account")
	ErrShiftJobAlreadyExists    = errors.New("workforce: job already assigned to shift")
	ErrStoreFlavorAlreadyExists = errors.New("workforce: flavor already offered by store")
)
