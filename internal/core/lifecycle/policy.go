package lifecycle

// EntityKind は削除ポリシーの対象となるエンティティ種別です。
type EntityKind string

const (
	KindEmployee   EntityKind = "employee"
	KindStore      EntityKind = "store"
	KindFlavor     EntityKind = "flavor"
	KindJob        EntityKind = "job"
	KindAssignment EntityKind = "assignment"
	KindShift      EntityKind = "shift"
	KindShiftJob   EntityKind = "shift_job"
)

// DeletionMode は削除要求をどう扱うかを表します。
type DeletionMode int

const (
	// AlwaysHardDelete は常に物理削除します。
	AlwaysHardDelete DeletionMode = iota
	// AlwaysDeactivate は常に無効化に置き換えます。
	AlwaysDeactivate
	// DeactivateIfReferenced は勤務済みシフトから参照されていれば無効化に置き換えます。
	DeactivateIfReferenced
	// TerminateIfReferenced は勤務済みシフトから参照されていれば終了処理に置き換えます。
	TerminateIfReferenced
	// RejectIfReferenced は勤務済みであれば削除を拒否します。
	RejectIfReferenced
)

func (m DeletionMode) String() string {
	switch m {
	case AlwaysHardDelete:
		return "always_hard_delete"
	case AlwaysDeactivate:
		return "always_deactivate"
	case DeactivateIfReferenced:
		return "deactivate_if_referenced"
	case TerminateIfReferenced:
		return "terminate_if_referenced"
	case RejectIfReferenced:
		return "reject_if_referenced"
	}
	return "unknown"
}

var deletionPolicies = map[EntityKind]DeletionMode{
	KindEmployee:   DeactivateIfReferenced,
	KindStore:      AlwaysDeactivate,
	KindFlavor:     AlwaysDeactivate,
	KindJob:        DeactivateIfReferenced,
	KindAssignment: TerminateIfReferenced,
	KindShift:      RejectIfReferenced,
	KindShiftJob:   AlwaysHardDelete,
}

// DeletionPolicy は kind に適用される削除ポリシーを返します。
func DeletionPolicy(kind EntityKind) DeletionMode {
	return deletionPolicies[kind]
}

// deletionDecision は参照有無を踏まえた削除方法の判定結果です。
type deletionDecision int

const (
	decideHardDelete deletionDecision = iota
	decideDeactivate
	decideTerminate
	decideReject
)

func decideDeletion(kind EntityKind, referenced bool) deletionDecision {
	switch DeletionPolicy(kind) {
	case AlwaysDeactivate:
		return decideDeactivate
	case DeactivateIfReferenced:
		if referenced {
			return decideDeactivate
		}
	case TerminateIfReferenced:
		if referenced {
			return decideTerminate
		}
	case RejectIfReferenced:
		if referenced {
			return decideReject
		}
	}
	return decideHardDelete
}
