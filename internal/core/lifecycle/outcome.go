package lifecycle

import "github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"

// OutcomeKind はコマンドの結果区分です。
type OutcomeKind string

const (
	OutcomeCommitted               OutcomeKind = "committed"
	OutcomeCommittedAsDeactivation OutcomeKind = "committed_as_deactivation"
	OutcomeRejectedValidation      OutcomeKind = "rejected_validation"
	OutcomeRejectedPolicy          OutcomeKind = "rejected_policy"
)

// Effect はコマンドによって実際に行われた変更です。
type Effect string

const (
	EffectCreated     Effect = "created"
	EffectUpdated     Effect = "updated"
	EffectDeleted     Effect = "deleted"
	EffectDeactivated Effect = "deactivated"
	EffectTerminated  Effect = "terminated"
	EffectNone        Effect = "none"
)

// Cascade はコマンドに伴って連鎖的に変更されたレコード数です。
type Cascade struct {
	AssignmentsEnded   int
	AssignmentsDeleted int
	ShiftsDeleted      int
	AccountsDeleted    int
}

// Outcome はコマンドの結果です。
// 検証エラーと業務ルールによる拒否は error ではなく Outcome で表現します。
type Outcome struct {
	Kind        OutcomeKind
	Effect      Effect
	Reason      string
	FieldErrors workforce.FieldErrors
	Cascade     Cascade
}

// Committed は変更が確定した場合に true を返します。
func (o Outcome) Committed() bool {
	return o.Kind == OutcomeCommitted || o.Kind == OutcomeCommittedAsDeactivation
}

func committed(effect Effect) Outcome {
	return Outcome{Kind: OutcomeCommitted, Effect: effect}
}

func committedAsDeactivation(effect Effect, reason string) Outcome {
	return Outcome{Kind: OutcomeCommittedAsDeactivation, Effect: effect, Reason: reason}
}

func rejectedValidation(errs workforce.FieldErrors) Outcome {
	return Outcome{Kind: OutcomeRejectedValidation, Effect: EffectNone, FieldErrors: errs}
}

func rejectedPolicy(reason string) Outcome {
	return Outcome{Kind: OutcomeRejectedPolicy, Effect: EffectNone, Reason: reason}
}
