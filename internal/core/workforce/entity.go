package workforce

import (
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
)

// Role は社員の権限区分を表します。
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Roles は選択可能な権限区分の一覧です。
var Roles = []Role{RoleEmployee, RoleManager, RoleAdmin}

// Valid は r が定義済みの権限区分であれば true を返します。
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// State は店舗の所在州を表します。
type State string

const (
	StatePennsylvania State = "PA"
	StateOhio         State = "OH"
	StateWestVirginia State = "WV"
)

// States は選択可能な州の一覧です。
var States = []State{StatePennsylvania, StateOhio, StateWestVirginia}

// Employee は店舗に配属される社員エンティティです。
type Employee struct {
	ID          string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	SSN         string
	Phone       string
	Role        Role
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Account は社員に 1 対 1 で紐づくログインアカウントです。
type Account struct {
	ID         string
	EmployeeID string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store は店舗エンティティです。
type Store struct {
	ID        string
	Name      string
	Street    string
	City      string
	State     State
	Zip       string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Job はシフト中に担当する職務です。
type Job struct {
	ID          string
	Name        string
	Description *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Flavor は店舗で提供するフレーバーです。
type Flavor struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreFlavor は店舗とフレーバーの関連です。
type StoreFlavor struct {
	ID        string
	StoreID   string
	FlavorID  string
	CreatedAt time.Time
}

// Assignment は社員を一定期間ある店舗へ配属する割り当てです。
// EndDate が nil の割り当てを現在の割り当てとして扱います。
type Assignment struct {
	ID         string
	EmployeeID string
	StoreID    string
	PayLevel   int
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsCurrent は終了日が設定されていなければ true を返します。
func (a *Assignment) IsCurrent() bool {
	return a != nil && a.EndDate == nil
}

// Covers は date が割り当て期間内であれば true を返します。
func (a *Assignment) Covers(date time.Time) bool {
	if a == nil {
		return false
	}
	d := temporal.Date(date)
	if d.Before(temporal.Date(a.StartDate)) {
		return false
	}
	return a.EndDate == nil || !d.After(temporal.Date(*a.EndDate))
}

// Shift は割り当てに対して予定された勤務枠です。
type Shift struct {
	ID           string
	AssignmentID string
	Date         time.Time
	StartTime    temporal.TimeOfDay
	EndTime      temporal.TimeOfDay
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ShiftJob はシフトと職務の関連です。
type ShiftJob struct {
	ID        string
	ShiftID   string
	JobID     string
	CreatedAt time.Time
}
