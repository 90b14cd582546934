package workforce

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
)

const (
	// MinimumEmployeeAge は雇用可能な最低年齢です。
	MinimumEmployeeAge = 14
	// AdultAge は成人とみなす年齢です。
	AdultAge = 18
	// MinPayLevel は給与レベルの下限です。
	MinPayLevel = 1
	// MaxPayLevel は給与レベルの上限です。
	MaxPayLevel = 6
)

const baseField = "base"

var (
	phonePattern = regexp.MustCompile(`^\(?\d{3}\)?[-. ]?\d{3}[-.]?\d{4}$`)
	ssnPattern   = regexp.MustCompile(`^\d{3}[- ]?\d{2}[- ]?\d{4}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}$`)
	nonDigits    = regexp.MustCompile(`[^0-9]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	mustRegisterPattern(v, "phone10", phonePattern)
	mustRegisterPattern(v, "ssn9", ssnPattern)
	mustRegisterPattern(v, "zip5", zipPattern)
	return v
}

func mustRegisterPattern(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("workforce: register %s validation: %v", tag, err))
	}
}

type employeeRules struct {
	FirstName string `field:"first_name" validate:"required"`
	LastName  string `field:"last_name" validate:"required"`
	SSN       string `field:"ssn" validate:"required,ssn9"`
	Phone     string `field:"phone" validate:"omitempty,phone10"`
	Role      string `field:"role" validate:"required,oneof=employee manager admin"`
}

type storeRules struct {
	Name   string `field:"name" validate:"required"`
	Street string `field:"street" validate:"required"`
	Zip    string `field:"zip" validate:"required,zip5"`
	State  string `field:"state" validate:"required,oneof=PA OH WV"`
	Phone  string `field:"phone" validate:"required,phone10"`
}

type nameRules struct {
	Name string `field:"name" validate:"required"`
}

type accountRules struct {
	Email string `field:"email" validate:"required,email"`
}

type assignmentRules struct {
	PayLevel int `field:"pay_level" validate:"min=1,max=6"`
}

func checkRules(rules any, errs FieldErrors) {
	err := validate.Struct(rules)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add(baseField, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), validationMessage(fe))
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "oneof":
		return "is not an option"
	case "phone10":
		return "should be 10 digits (area code needed) and delimited with dashes only"
	case "ssn9":
		return "should be 9 digits and delimited with dashes only"
	case "zip5":
		return "should be 5 digits"
	case "email":
		return "is not a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}

// NormalizeDigits は数字以外の文字を取り除きます。電話番号と SSN の保存前変換に使用します。
func NormalizeDigits(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// NormalizePhone は電話番号を 10 桁の数字列に変換します。
func NormalizePhone(raw string) string {
	return NormalizeDigits(raw)
}

// NormalizeSSN は SSN を 9 桁の数字列に変換します。
func NormalizeSSN(raw string) string {
	return NormalizeDigits(raw)
}

// NormalizeEmail はメールアドレスを解析し小文字化して返します。解析できない場合は入力をトリムして返します。
func NormalizeEmail(raw string) string {
	trimmed := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return trimmed
	}
	return strings.ToLower(addr.Address)
}

// ValidateEmployee は社員の項目を検証します。
func ValidateEmployee(e *Employee, asOf temporal.AsOf) FieldErrors {
	errs := FieldErrors{}
	if e == nil {
		errs.Add(baseField, "employee is required")
		return errs
	}

	checkRules(employeeRules{
		FirstName: e.FirstName,
		LastName:  e.LastName,
		SSN:       e.SSN,
		Phone:     e.Phone,
		Role:      string(e.Role),
	}, errs)

	switch {
	case e.DateOfBirth.IsZero():
		errs.Add("date_of_birth", "can't be blank")
	case !asOf.IsAtLeastYearsBeforeNow(e.DateOfBirth, MinimumEmployeeAge):
		errs.Add("date_of_birth", fmt.Sprintf("must be at least %d years old", MinimumEmployeeAge))
	}

	return errs
}

// ValidateStore は店舗の項目を検証します。
func ValidateStore(s *Store) FieldErrors {
	errs := FieldErrors{}
	if s == nil {
		errs.Add(baseField, "store is required")
		return errs
	}

	checkRules(storeRules{
		Name:   s.Name,
		Street: s.Street,
		Zip:    s.Zip,
		State:  string(s.State),
		Phone:  s.Phone,
	}, errs)
	return errs
}

// ValidateJob は職務の項目を検証します。
func ValidateJob(j *Job) FieldErrors {
	errs := FieldErrors{}
	if j == nil {
		errs.Add(baseField, "job is required")
		return errs
	}
	checkRules(nameRules{Name: j.Name}, errs)
	return errs
}

// ValidateFlavor はフレーバーの項目を検証します。
func ValidateFlavor(f *Flavor) FieldErrors {
	errs := FieldErrors{}
	if f == nil {
		errs.Add(baseField, "flavor is required")
		return errs
	}
	checkRules(nameRules{Name: f.Name}, errs)
	return errs
}

// ValidateAccount はアカウントの項目と紐づく社員の状態を検証します。
func ValidateAccount(a *Account, employee *Employee) FieldErrors {
	errs := FieldErrors{}
	if a == nil {
		errs.Add(baseField, "account is required")
		return errs
	}

	checkRules(accountRules{Email: a.Email}, errs)
	if !errs.Has("email") {
		if _, err := mail.ParseAddress(a.Email); err != nil {
			errs.Add("email", "is not a valid email address")
		}
	}
	if employee == nil || !employee.Active {
		errs.Add("employee_id", "is not active in the system")
	}
	return errs
}

// ValidateAssignment は割り当ての給与レベルと期間を検証します。
func ValidateAssignment(a *Assignment, asOf temporal.AsOf) FieldErrors {
	errs := FieldErrors{}
	if a == nil {
		errs.Add(baseField, "assignment is required")
		return errs
	}

	checkRules(assignmentRules{PayLevel: a.PayLevel}, errs)

	switch {
	case a.StartDate.IsZero():
		errs.Add("start_date", "can't be blank")
	case !asOf.IsNotInFuture(a.StartDate):
		errs.Add("start_date", "cannot be in the future")
	}

	if a.EndDate != nil {
		if !a.StartDate.IsZero() && temporal.Date(*a.EndDate).Before(temporal.Date(a.StartDate)) {
			errs.Add("end_date", "must be on or after the start date")
		}
		if !asOf.IsNotInFuture(*a.EndDate) {
			errs.Add("end_date", "cannot be in the future")
		}
	}

	return errs
}

// ValidateNewAssignment は新規割り当てについて、期間に加えて社員と店舗が有効であることを検証します。
func ValidateNewAssignment(a *Assignment, employee *Employee, store *Store, asOf temporal.AsOf) FieldErrors {
	errs := ValidateAssignment(a, asOf)
	if employee == nil || !employee.Active {
		errs.Add("employee_id", "is not active in the system")
	}
	if store == nil || !store.Active {
		errs.Add("store_id", "is not active in the system")
	}
	return errs
}

// ValidateShift はシフトの時刻と割り当て期間との整合性を検証します。
func ValidateShift(s *Shift, assignment *Assignment) FieldErrors {
	errs := FieldErrors{}
	if s == nil {
		errs.Add(baseField, "shift is required")
		return errs
	}

	if s.Date.IsZero() {
		errs.Add("date", "can't be blank")
	}
	if !s.EndTime.After(s.StartTime) {
		errs.Add("end_time", "must be after the start time")
	}

	if assignment == nil {
		errs.Add("assignment_id", "can't be blank")
		return errs
	}
	if !s.Date.IsZero() {
		if temporal.Date(s.Date).Before(temporal.Date(assignment.StartDate)) {
			errs.Add("date", "cannot be before the assignment start date")
		} else if !assignment.Covers(s.Date) {
			errs.Add("assignment_id", "has been terminated")
		}
	}
	return errs
}

// ValidateNewShift は新規シフトについて、過去日付でないことを追加で検証します。
func ValidateNewShift(s *Shift, assignment *Assignment, asOf temporal.AsOf) FieldErrors {
	errs := ValidateShift(s, assignment)
	if s != nil && !s.Date.IsZero() && !asOf.IsNotInPast(s.Date) {
		errs.Add("date", "cannot be in the past")
	}
	return errs
}

// Validator は永続化済みレコードとの一意性を含めて検証します。
type Validator struct {
	employees EmployeeRepository
	stores    StoreRepository
	accounts  AccountRepository
}

// NewValidator は Validator を生成します。
func NewValidator(employees EmployeeRepository, stores StoreRepository, accounts AccountRepository) *Validator {
	return &Validator{employees: employees, stores: stores, accounts: accounts}
}

// Employee は社員を検証し、SSN の重複 (自分自身を除く) を確認します。
func (v *Validator) Employee(ctx context.Context, e *Employee, asOf temporal.AsOf) (FieldErrors, error) {
	errs := ValidateEmployee(e, asOf)
	if e == nil || errs.Has("ssn") {
		return errs, nil
	}

	existing, err := v.employees.FindBySSN(ctx, NormalizeSSN(e.SSN))
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != e.ID {
		errs.Add("ssn", "has already been taken")
	}
	return errs, nil
}

// Store は店舗を検証し、店舗名の重複 (自分自身を除く) を確認します。
func (v *Validator) Store(ctx context.Context, s *Store) (FieldErrors, error) {
	errs := ValidateStore(s)
	if s == nil || errs.Has("name") {
		return errs, nil
	}

	existing, err := v.stores.FindByName(ctx, s.Name)
	if err != nil && !errors.Is(err, ErrStoreNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != s.ID {
		errs.Add("name", "has already been taken")
	}
	return errs, nil
}

// Account はアカウントを検証し、メールアドレスの重複と社員あたり 1 件の制約を確認します。
func (v *Validator) Account(ctx context.Context, a *Account, employee *Employee) (FieldErrors, error) {
	errs := ValidateAccount(a, employee)
	if a == nil {
		return errs, nil
	}

	if !errs.Has("email") {
		existing, err := v.accounts.FindByEmail(ctx, a.Email)
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != a.ID {
			errs.Add("email", "has already been taken")
		}
	}

	if employee != nil {
		existing, err := v.accounts.FindByEmployee(ctx, employee.ID)
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != a.ID {
			errs.Add("employee_id", "already has an account")
		}
	}
	return errs, nil
}
