package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	invalidTextCode         = "22P02"
)

// ErrReferenced は削除対象が他の行から参照されている場合に返却されます。
var ErrReferenced = workforce.ErrReferenced

// ErrConstraintViolation は CHECK 制約違反の場合に返却されます。
var ErrConstraintViolation = workforce.ErrConstraintViolation

// uniqueConstraints は一意制約名とドメインエラーの対応です。
var uniqueConstraints = map[string]error{
	"employees_ssn_key":                    workforce.ErrSSNAlreadyExists,
	"stores_name_key":                      workforce.ErrStoreNameAlreadyExists,
	"accounts_email_key":                   workforce.ErrEmailAlreadyExists,
	"accounts_employee_id_key":             workforce.ErrAccountAlreadyExists,
	"shift_jobs_shift_id_job_id_key":       workforce.ErrShiftJobAlreadyExists,
	"store_flavors_store_id_flavor_id_key": workforce.ErrStoreFlavorAlreadyExists,
}

// foreignKeys は外部キー制約名と参照先が存在しない場合のドメインエラーの対応です。
var foreignKeys = map[string]error{
	"accounts_employee_id_fkey":    workforce.ErrEmployeeNotFound,
	"assignments_employee_id_fkey": workforce.ErrEmployeeNotFound,
	"assignments_store_id_fkey":    workforce.ErrStoreNotFound,
	"shifts_assignment_id_fkey":    workforce.ErrAssignmentNotFound,
	"shift_jobs_shift_id_fkey":     workforce.ErrShiftNotFound,
	"shift_jobs_job_id_fkey":       workforce.ErrJobNotFound,
	"store_flavors_store_id_fkey":  workforce.ErrStoreNotFound,
	"store_flavors_flavor_id_fkey": workforce.ErrFlavorNotFound,
}

// translatePgError は pgx のエラーをドメインエラーに変換します。notFound は行が存在しない場合のエラーです。
func translatePgError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		if mapped, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return mapped
		}
	case foreignKeyViolationCode:
		// 削除時の違反は参照元が残っていることを、登録時の違反は参照先がないことを表す
		if isReferencedTable(pgErr) {
			return errors.Join(ErrReferenced, err)
		}
		if mapped, ok := foreignKeys[pgErr.ConstraintName]; ok {
			return mapped
		}
	case checkViolationCode:
		return errors.Join(ErrConstraintViolation, err)
	case invalidTextCode:
		return workforce.ErrInvalidID
	}
	return err
}

// isReferencedTable は外部キー違反が参照元テーブルの行から発生した (= 削除が制限された) かを判定します。
func isReferencedTable(pgErr *pgconn.PgError) bool {
	switch pgErr.ConstraintName {
	case "accounts_employee_id_fkey", "assignments_employee_id_fkey":
		return pgErr.TableName == "employees"
	case "assignments_store_id_fkey":
		return pgErr.TableName == "stores"
	case "shifts_assignment_id_fkey":
		return pgErr.TableName == "assignments"
	}
	return false
}
