package workforce

import (
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
)

// CurrentAssignment は終了日が未設定の割り当てを返します。
// 複数存在する場合は ID が最も小さいものを、存在しない場合は nil を返します。
func CurrentAssignment(assignments []*Assignment) *Assignment {
	var current *Assignment
	for _, a := range assignments {
		if !a.IsCurrent() {
			continue
		}
		if current == nil || a.ID < current.ID {
			current = a
		}
	}
	return current
}

// DisplayName は "姓, 名" 形式の表示名を返します。
func (e *Employee) DisplayName() string {
	return e.LastName + ", " + e.FirstName
}

// ProperName は "名 姓" 形式の氏名を返します。
func (e *Employee) ProperName() string {
	return e.FirstName + " " + e.LastName
}

// Age は基準時刻における満年齢を返します。
func (e *Employee) Age(asOf temporal.AsOf) int {
	return asOf.AgeInYears(e.DateOfBirth)
}

// IsAdult は基準時刻において 18 歳以上であれば true を返します。
func (e *Employee) IsAdult(asOf temporal.AsOf) bool {
	return asOf.IsAtLeastYearsBeforeNow(e.DateOfBirth, AdultAge)
}

// IsCompleted はシフト日が基準日より前であれば true を返します。
func (s *Shift) IsCompleted(asOf temporal.AsOf) bool {
	return asOf.IsPast(s.Date)
}

// Name は "名 姓, 店舗名" 形式の割り当て名を返します。
func (a *Assignment) Name(employee *Employee, store *Store) string {
	var who, where string
	if employee != nil {
		who = employee.ProperName()
	}
	if store != nil {
		where = store.Name
	}
	return who + ", " + where
}
