package workforce

import (
	"sort"
	"strings"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
)

// 検索条件は値型で、各メソッドは条件を追加した新しい値を返します。
// 絞り込み条件は AND で結合され、並び順は最後に指定したものが有効です。
// 並び順を指定しない場合は ID 昇順 (= 登録順) になります。

// AssignmentFilterKind は割り当ての絞り込み条件の種類です。
type AssignmentFilterKind int

const (
	AssignmentCurrent AssignmentFilterKind = iota + 1
	AssignmentPast
	AssignmentForStore
	AssignmentForEmployee
	AssignmentForPayLevel
	AssignmentForRole
)

// AssignmentFilter は割り当ての絞り込み条件です。
type AssignmentFilter struct {
	Kind     AssignmentFilterKind
	ID       string
	PayLevel int
	Role     Role
}

// AssignmentOrder は割り当ての並び順です。
type AssignmentOrder int

const (
	AssignmentOrderByID AssignmentOrder = iota
	AssignmentOrderByStoreName
	AssignmentOrderByStartDate
	AssignmentOrderByEmployeeName
)

// AssignmentQuery は割り当ての検索条件です。
type AssignmentQuery struct {
	filters []AssignmentFilter
	order   AssignmentOrder
	limit   int
}

// Assignments は条件なしの割り当て検索を返します。
func Assignments() AssignmentQuery {
	return AssignmentQuery{}
}

func (q AssignmentQuery) where(f AssignmentFilter) AssignmentQuery {
	filters := make([]AssignmentFilter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, f)
	return q
}

// CurrentOnly は終了日が未設定の割り当てに絞り込みます。
func (q AssignmentQuery) CurrentOnly() AssignmentQuery {
	return q.where(AssignmentFilter{Kind: AssignmentCurrent})
}

// PastOnly は終了日が設定済みの割り当てに絞り込みます。
func (q AssignmentQuery) PastOnly() AssignmentQuery {
	return q.where(AssignmentFilter{Kind: AssignmentPast})
}

func (q AssignmentQuery) ForStore(storeID string) AssignmentQuery {
	return q.where(AssignmentFilter{Kind: AssignmentForStore, ID: storeID})
}

func (q AssignmentQuery) ForEmployee(employeeID string) AssignmentQuery {
	return q.where(AssignmentFilter{Kind: AssignmentForEmployee, ID: employeeID})
}

func (q AssignmentQuery) ForPayLevel(level int) AssignmentQuery {
	return q.where(AssignmentFilter{Kind: AssignmentForPayLevel, PayLevel: level})
}

// ForRole は社員の権限区分で絞り込みます。
func (q AssignmentQuery) ForRole(role Role) AssignmentQuery {
	return q.where(AssignmentFilter{Kind: AssignmentForRole, Role: role})
}

// OrderedByStoreNameThenInsertion は店舗名、登録順で並べます。
func (q AssignmentQuery) OrderedByStoreNameThenInsertion() AssignmentQuery {
	q.order = AssignmentOrderByStoreName
	return q
}

// OrderedByStartDateAscending は開始日の昇順で並べます。
func (q AssignmentQuery) OrderedByStartDateAscending() AssignmentQuery {
	q.order = AssignmentOrderByStartDate
	return q
}

// OrderedByEmployeeLastThenFirstName は社員の姓、名の順で並べます。
func (q AssignmentQuery) OrderedByEmployeeLastThenFirstName() AssignmentQuery {
	q.order = AssignmentOrderByEmployeeName
	return q
}

// Limited は取得件数の上限を設定します。0 以下は無制限です。
func (q AssignmentQuery) Limited(n int) AssignmentQuery {
	q.limit = n
	return q
}

func (q AssignmentQuery) Filters() []AssignmentFilter {
	return append([]AssignmentFilter(nil), q.filters...)
}

func (q AssignmentQuery) Ordering() AssignmentOrder { return q.order }

func (q AssignmentQuery) Limit() int { return q.limit }

// AssignmentView は割り当てと、絞り込みや並び替えに必要な関連エンティティの組です。
type AssignmentView struct {
	Assignment *Assignment
	Employee   *Employee
	Store      *Store
}

// Match は v がすべての絞り込み条件を満たせば true を返します。
func (q AssignmentQuery) Match(v AssignmentView) bool {
	a := v.Assignment
	for _, f := range q.filters {
		var ok bool
		switch f.Kind {
		case AssignmentCurrent:
			ok = a.EndDate == nil
		case AssignmentPast:
			ok = a.EndDate != nil
		case AssignmentForStore:
			ok = a.StoreID == f.ID
		case AssignmentForEmployee:
			ok = a.EmployeeID == f.ID
		case AssignmentForPayLevel:
			ok = a.PayLevel == f.PayLevel
		case AssignmentForRole:
			ok = v.Employee != nil && v.Employee.Role == f.Role
		}
		if !ok {
			return false
		}
	}
	return true
}

// Sort は並び順に従って views を並べ替えます。
func (q AssignmentQuery) Sort(views []AssignmentView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		switch q.order {
		case AssignmentOrderByStoreName:
			if c := strings.Compare(storeName(a.Store), storeName(b.Store)); c != 0 {
				return c < 0
			}
		case AssignmentOrderByStartDate:
			if !a.Assignment.StartDate.Equal(b.Assignment.StartDate) {
				return a.Assignment.StartDate.Before(b.Assignment.StartDate)
			}
		case AssignmentOrderByEmployeeName:
			if c := compareNames(a.Employee, b.Employee); c != 0 {
				return c < 0
			}
		}
		return a.Assignment.ID < b.Assignment.ID
	})
}

// Apply は絞り込み、並び替え、件数制限を適用した割り当てを返します。
func (q AssignmentQuery) Apply(views []AssignmentView) []*Assignment {
	matched := make([]AssignmentView, 0, len(views))
	for _, v := range views {
		if q.Match(v) {
			matched = append(matched, v)
		}
	}
	q.Sort(matched)

	out := make([]*Assignment, 0, len(matched))
	for _, v := range matched {
		if q.limit > 0 && len(out) == q.limit {
			break
		}
		out = append(out, v.Assignment)
	}
	return out
}

// ShiftFilterKind はシフトの絞り込み条件の種類です。
type ShiftFilterKind int

const (
	ShiftCompleted ShiftFilterKind = iota + 1
	ShiftIncomplete
	ShiftNextDays
	ShiftPastDays
	ShiftForStore
	ShiftForEmployee
	ShiftForAssignment
	ShiftForJob
)

// RequiresAsOf は基準日が必要な条件であれば true を返します。
func (k ShiftFilterKind) RequiresAsOf() bool {
	switch k {
	case ShiftCompleted, ShiftIncomplete, ShiftNextDays, ShiftPastDays:
		return true
	}
	return false
}

// ShiftFilter はシフトの絞り込み条件です。
type ShiftFilter struct {
	Kind ShiftFilterKind
	ID   string
	Days int
}

// ShiftOrder はシフトの並び順です。
type ShiftOrder int

const (
	ShiftOrderByID ShiftOrder = iota
	ShiftOrderChronologicalDescending
	ShiftOrderByStoreThenDate
	ShiftOrderByEmployeeThenDate
)

// ShiftQuery はシフトの検索条件です。
type ShiftQuery struct {
	filters []ShiftFilter
	order   ShiftOrder
	limit   int
	today   time.Time
	hasDate bool
}

// Shifts は条件なしのシフト検索を返します。
func Shifts() ShiftQuery {
	return ShiftQuery{}
}

func (q ShiftQuery) where(f ShiftFilter) ShiftQuery {
	filters := make([]ShiftFilter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, f)
	return q
}

// AsOf は日付依存の条件で使う基準日を設定します。
func (q ShiftQuery) AsOf(asOf temporal.AsOf) ShiftQuery {
	q.today = asOf.Today()
	q.hasDate = true
	return q
}

// Completed は今日より前のシフトに絞り込みます。
func (q ShiftQuery) Completed() ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftCompleted})
}

// Past は Completed と同じ条件です。
func (q ShiftQuery) Past() ShiftQuery {
	return q.Completed()
}

// Incomplete は今日以降のシフトに絞り込みます。
func (q ShiftQuery) Incomplete() ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftIncomplete})
}

// Upcoming は Incomplete と同じ条件です。
func (q ShiftQuery) Upcoming() ShiftQuery {
	return q.Incomplete()
}

// ForNextDays は明日から n 日後までのシフトに絞り込みます。
func (q ShiftQuery) ForNextDays(n int) ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftNextDays, Days: n})
}

// ForPastDays は n 日前から昨日までのシフトに絞り込みます。
func (q ShiftQuery) ForPastDays(n int) ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftPastDays, Days: n})
}

func (q ShiftQuery) ForStore(storeID string) ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftForStore, ID: storeID})
}

func (q ShiftQuery) ForEmployee(employeeID string) ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftForEmployee, ID: employeeID})
}

func (q ShiftQuery) ForAssignment(assignmentID string) ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftForAssignment, ID: assignmentID})
}

// ForJob は職務が割り当てられたシフトに絞り込みます。
func (q ShiftQuery) ForJob(jobID string) ShiftQuery {
	return q.where(ShiftFilter{Kind: ShiftForJob, ID: jobID})
}

// ChronologicalDescending は日付、開始時刻の新しい順に並べます。
func (q ShiftQuery) ChronologicalDescending() ShiftQuery {
	q.order = ShiftOrderChronologicalDescending
	return q
}

// OrderedByStoreThenDate は店舗名、日付、開始時刻の順に並べます。
func (q ShiftQuery) OrderedByStoreThenDate() ShiftQuery {
	q.order = ShiftOrderByStoreThenDate
	return q
}

// OrderedByEmployeeThenDate は社員の姓、名、日付、開始時刻の順に並べます。
func (q ShiftQuery) OrderedByEmployeeThenDate() ShiftQuery {
	q.order = ShiftOrderByEmployeeThenDate
	return q
}

func (q ShiftQuery) Limited(n int) ShiftQuery {
	q.limit = n
	return q
}

func (q ShiftQuery) Filters() []ShiftFilter {
	return append([]ShiftFilter(nil), q.filters...)
}

func (q ShiftQuery) Ordering() ShiftOrder { return q.order }

func (q ShiftQuery) Limit() int { return q.limit }

// Today は基準日と、基準日が設定済みかどうかを返します。
func (q ShiftQuery) Today() (time.Time, bool) {
	return q.today, q.hasDate
}

// Validate は日付依存の条件に基準日が設定されていなければ ErrMissingAsOf を返します。
func (q ShiftQuery) Validate() error {
	if q.hasDate {
		return nil
	}
	for _, f := range q.filters {
		if f.Kind.RequiresAsOf() {
			return ErrMissingAsOf
		}
	}
	return nil
}

// ShiftView はシフトと、絞り込みや並び替えに必要な関連エンティティの組です。
type ShiftView struct {
	Shift      *Shift
	Assignment *Assignment
	Employee   *Employee
	Store      *Store
	JobIDs     []string
}

// Match は v がすべての絞り込み条件を満たせば true を返します。
func (q ShiftQuery) Match(v ShiftView) bool {
	date := temporal.Date(v.Shift.Date)
	for _, f := range q.filters {
		var ok bool
		switch f.Kind {
		case ShiftCompleted:
			ok = date.Before(q.today)
		case ShiftIncomplete:
			ok = !date.Before(q.today)
		case ShiftNextDays:
			ok = date.After(q.today) && !date.After(q.today.AddDate(0, 0, f.Days))
		case ShiftPastDays:
			ok = !date.Before(q.today.AddDate(0, 0, -f.Days)) && date.Before(q.today)
		case ShiftForStore:
			ok = v.Assignment != nil && v.Assignment.StoreID == f.ID
		case ShiftForEmployee:
			ok = v.Assignment != nil && v.Assignment.EmployeeID == f.ID
		case ShiftForAssignment:
			ok = v.Shift.AssignmentID == f.ID
		case ShiftForJob:
			for _, id := range v.JobIDs {
				if id == f.ID {
					ok = true
					break
				}
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Sort は並び順に従って views を並べ替えます。
func (q ShiftQuery) Sort(views []ShiftView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		switch q.order {
		case ShiftOrderChronologicalDescending:
			if c := compareSchedule(a.Shift, b.Shift); c != 0 {
				return c > 0
			}
			return a.Shift.ID > b.Shift.ID
		case ShiftOrderByStoreThenDate:
			if c := strings.Compare(storeName(a.Store), storeName(b.Store)); c != 0 {
				return c < 0
			}
			if c := compareSchedule(a.Shift, b.Shift); c != 0 {
				return c < 0
			}
		case ShiftOrderByEmployeeThenDate:
			if c := compareNames(a.Employee, b.Employee); c != 0 {
				return c < 0
			}
			if c := compareSchedule(a.Shift, b.Shift); c != 0 {
				return c < 0
			}
		}
		return a.Shift.ID < b.Shift.ID
	})
}

// Apply は絞り込み、並び替え、件数制限を適用したシフトを返します。
func (q ShiftQuery) Apply(views []ShiftView) []*Shift {
	matched := make([]ShiftView, 0, len(views))
	for _, v := range views {
		if q.Match(v) {
			matched = append(matched, v)
		}
	}
	q.Sort(matched)

	out := make([]*Shift, 0, len(matched))
	for _, v := range matched {
		if q.limit > 0 && len(out) == q.limit {
			break
		}
		out = append(out, v.Shift)
	}
	return out
}

// EmployeeFilterKind は社員の絞り込み条件の種類です。
type EmployeeFilterKind int

const (
	EmployeeYoungerThan18 EmployeeFilterKind = iota + 1
	EmployeeAdultsOnly
	EmployeeActive
	EmployeeInactive
	EmployeeByRole
)

// RequiresAsOf は基準日が必要な条件であれば true を返します。
func (k EmployeeFilterKind) RequiresAsOf() bool {
	return k == EmployeeYoungerThan18 || k == EmployeeAdultsOnly
}

// EmployeeFilter は社員の絞り込み条件です。
type EmployeeFilter struct {
	Kind EmployeeFilterKind
	Role Role
}

// EmployeeOrder は社員の並び順です。
type EmployeeOrder int

const (
	EmployeeOrderByID EmployeeOrder = iota
	EmployeeOrderAlphabetical
)

// EmployeeQuery は社員の検索条件です。
type EmployeeQuery struct {
	filters []EmployeeFilter
	order   EmployeeOrder
	limit   int
	asOf    temporal.AsOf
	hasDate bool
}

// Employees は条件なしの社員検索を返します。
func Employees() EmployeeQuery {
	return EmployeeQuery{}
}

func (q EmployeeQuery) where(f EmployeeFilter) EmployeeQuery {
	filters := make([]EmployeeFilter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, f)
	return q
}

// AsOf は年齢判定に使う基準日を設定します。
func (q EmployeeQuery) AsOf(asOf temporal.AsOf) EmployeeQuery {
	q.asOf = asOf
	q.hasDate = true
	return q
}

// YoungerThan18 は 18 歳未満の社員に絞り込みます。
func (q EmployeeQuery) YoungerThan18() EmployeeQuery {
	return q.where(EmployeeFilter{Kind: EmployeeYoungerThan18})
}

// AdultsOnly は 18 歳以上の社員に絞り込みます。
func (q EmployeeQuery) AdultsOnly() EmployeeQuery {
	return q.where(EmployeeFilter{Kind: EmployeeAdultsOnly})
}

func (q EmployeeQuery) Active() EmployeeQuery {
	return q.where(EmployeeFilter{Kind: EmployeeActive})
}

func (q EmployeeQuery) Inactive() EmployeeQuery {
	return q.where(EmployeeFilter{Kind: EmployeeInactive})
}

func (q EmployeeQuery) ByRole(role Role) EmployeeQuery {
	return q.where(EmployeeFilter{Kind: EmployeeByRole, Role: role})
}

// AlphabeticalByLastThenFirst は姓、名の順で並べます。
func (q EmployeeQuery) AlphabeticalByLastThenFirst() EmployeeQuery {
	q.order = EmployeeOrderAlphabetical
	return q
}

func (q EmployeeQuery) Limited(n int) EmployeeQuery {
	q.limit = n
	return q
}

func (q EmployeeQuery) Filters() []EmployeeFilter {
	return append([]EmployeeFilter(nil), q.filters...)
}

func (q EmployeeQuery) Ordering() EmployeeOrder { return q.order }

func (q EmployeeQuery) Limit() int { return q.limit }

// AdultThreshold は 18 歳の誕生日がこの日以前であれば成人とみなす境界日を返します。
func (q EmployeeQuery) AdultThreshold() (time.Time, bool) {
	if !q.hasDate {
		return time.Time{}, false
	}
	return q.asOf.YearsAgo(AdultAge), true
}

// Validate は年齢条件に基準日が設定されていなければ ErrMissingAsOf を返します。
func (q EmployeeQuery) Validate() error {
	if q.hasDate {
		return nil
	}
	for _, f := range q.filters {
		if f.Kind.RequiresAsOf() {
			return ErrMissingAsOf
		}
	}
	return nil
}

// Match は e がすべての絞り込み条件を満たせば true を返します。
func (q EmployeeQuery) Match(e *Employee) bool {
	for _, f := range q.filters {
		var ok bool
		switch f.Kind {
		case EmployeeYoungerThan18:
			ok = !e.IsAdult(q.asOf)
		case EmployeeAdultsOnly:
			ok = e.IsAdult(q.asOf)
		case EmployeeActive:
			ok = e.Active
		case EmployeeInactive:
			ok = !e.Active
		case EmployeeByRole:
			ok = e.Role == f.Role
		}
		if !ok {
			return false
		}
	}
	return true
}

// Apply は絞り込み、並び替え、件数制限を適用した社員を返します。
func (q EmployeeQuery) Apply(employees []*Employee) []*Employee {
	out := make([]*Employee, 0, len(employees))
	for _, e := range employees {
		if q.Match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.order == EmployeeOrderAlphabetical {
			if c := compareNames(out[i], out[j]); c != 0 {
				return c < 0
			}
		}
		return out[i].ID < out[j].ID
	})
	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out
}

// CatalogFilter は店舗、職務、フレーバーに共通する有効状態の絞り込み条件です。
type CatalogFilter int

const (
	CatalogAll CatalogFilter = iota
	CatalogActive
	CatalogInactive
)

// CatalogQuery は店舗、職務、フレーバーの検索条件です。
type CatalogQuery struct {
	filter       CatalogFilter
	alphabetical bool
}

// Catalog は条件なしの検索を返します。
func Catalog() CatalogQuery {
	return CatalogQuery{}
}

func (q CatalogQuery) ActiveOnly() CatalogQuery {
	q.filter = CatalogActive
	return q
}

func (q CatalogQuery) InactiveOnly() CatalogQuery {
	q.filter = CatalogInactive
	return q
}

// Alphabetical は名前の昇順で並べます。
func (q CatalogQuery) Alphabetical() CatalogQuery {
	q.alphabetical = true
	return q
}

func (q CatalogQuery) Filter() CatalogFilter { return q.filter }

func (q CatalogQuery) IsAlphabetical() bool { return q.alphabetical }

// Match は有効状態が条件に合えば true を返します。
func (q CatalogQuery) Match(active bool) bool {
	switch q.filter {
	case CatalogActive:
		return active
	case CatalogInactive:
		return !active
	}
	return true
}

// Less は name と ID による並び順の比較を行います。
func (q CatalogQuery) Less(nameA, idA, nameB, idB string) bool {
	if q.alphabetical && nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}

func storeName(s *Store) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func compareNames(a, b *Employee) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		default:
			return -1
		}
	}
	if c := strings.Compare(a.LastName, b.LastName); c != 0 {
		return c
	}
	return strings.Compare(a.FirstName, b.FirstName)
}

func compareSchedule(a, b *Shift) int {
	da, db := temporal.Date(a.Date), temporal.Date(b.Date)
	switch {
	case da.Before(db):
		return -1
	case da.After(db):
		return 1
	case a.StartTime < b.StartTime:
		return -1
	case a.StartTime > b.StartTime:
		return 1
	}
	return 0
}
