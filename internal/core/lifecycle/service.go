package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	"github.com/rs/zerolog"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// IDGenerator はエンティティ ID を採番します。
type IDGenerator interface {
	NewID() (string, error)
}

// uuidV7Generator は時刻順に並ぶ UUIDv7 を採番します。ID の昇順が登録順になります。
type uuidV7Generator struct{}

func (uuidV7Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("lifecycle: generate id: %w", err)
	}
	return id.String(), nil
}

// Recorder はコマンドの実行結果を計測します。
type Recorder interface {
	ObserveCommand(command string, kind OutcomeKind, err error, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveCommand(string, OutcomeKind, error, time.Duration) {}

// DefaultShiftLength は終了時刻が省略されたシフトの長さです。
const DefaultShiftLength = 3 * time.Hour

// errRejected は拒否されたコマンドのトランザクションをロールバックするための内部エラーです。
var errRejected = errors.New("lifecycle: command rejected")

// Service は社員、店舗、割り当て、シフトのライフサイクルを管理します。
type Service struct {
	repos       workforce.Repositories
	validator   *workforce.Validator
	clock       Clock
	tx          TransactionManager
	ids         IDGenerator
	recorder    Recorder
	logger      zerolog.Logger
	loc         *time.Location
	shiftLength time.Duration
}

// Option は Service の生成オプションです。
type Option func(*Service)

// WithLogger はログ出力先を設定します。
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRecorder はメトリクスの記録先を設定します。
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithLocation は日付判定に使うタイムゾーンを設定します。
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator は ID の採番方法を設定します。
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Service) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithDefaultShiftLength は終了時刻省略時のシフトの長さを設定します。
func WithDefaultShiftLength(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shiftLength = d
		}
	}
}

// NewService は Service を生成します。
func NewService(repos workforce.Repositories, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{
		repos:       repos,
		validator:   workforce.NewValidator(repos.Employees, repos.Stores, repos.Accounts),
		clock:       clock,
		tx:          tx,
		ids:         uuidV7Generator{},
		recorder:    noopRecorder{},
		logger:      zerolog.Nop(),
		loc:         time.UTC,
		shiftLength: DefaultShiftLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UseCase はライフサイクル操作の公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*workforce.Employee, Outcome, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*workforce.Employee, Outcome, error)
	DeleteEmployee(ctx context.Context, in DeleteInput) (Outcome, error)
	CreateAccount(ctx context.Context, in CreateAccountInput) (*workforce.Account, Outcome, error)

	CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*workforce.Assignment, Outcome, error)
	TerminateAssignment(ctx context.Context, in TerminateAssignmentInput) (*workforce.Assignment, Outcome, error)
	DeleteAssignment(ctx context.Context, in DeleteInput) (Outcome, error)

	CreateShift(ctx context.Context, in CreateShiftInput) (*workforce.Shift, Outcome, error)
	StartShiftNow(ctx context.Context, in ShiftClockInput) (*workforce.Shift, Outcome, error)
	EndShiftNow(ctx context.Context, in ShiftClockInput) (*workforce.Shift, Outcome, error)
	AssignJobToShift(ctx context.Context, in AssignJobToShiftInput) (*workforce.ShiftJob, Outcome, error)
	DeleteShift(ctx context.Context, in DeleteInput) (Outcome, error)

	CreateStore(ctx context.Context, in CreateStoreInput) (*workforce.Store, Outcome, error)
	UpdateStore(ctx context.Context, in UpdateStoreInput) (*workforce.Store, Outcome, error)
	AddFlavorToStore(ctx context.Context, in AddFlavorToStoreInput) (*workforce.StoreFlavor, Outcome, error)
	CreateFlavor(ctx context.Context, in CreateFlavorInput) (*workforce.Flavor, Outcome, error)
	CreateJob(ctx context.Context, in CreateJobInput) (*workforce.Job, Outcome, error)
	DeleteStore(ctx context.Context, in DeleteInput) (Outcome, error)
	DeleteFlavor(ctx context.Context, in DeleteInput) (Outcome, error)
	DeleteJob(ctx context.Context, in DeleteInput) (Outcome, error)

	GetEmployee(ctx context.Context, id string) (*workforce.Employee, error)
	EmployeeProfile(ctx context.Context, id string) (*Profile, error)
	ListEmployees(ctx context.Context, query workforce.EmployeeQuery) ([]*workforce.Employee, error)
	GetAssignment(ctx context.Context, id string) (*workforce.Assignment, error)
	ListAssignments(ctx context.Context, query workforce.AssignmentQuery) ([]*workforce.Assignment, error)
	GetShift(ctx context.Context, id string) (*ShiftDetail, error)
	ListShifts(ctx context.Context, query workforce.ShiftQuery) ([]*workforce.Shift, error)
	ListStores(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Store, error)
	ListJobs(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Job, error)
	ListFlavors(ctx context.Context, query workforce.CatalogQuery) ([]*workforce.Flavor, error)
}

// DeleteInput は削除コマンド共通の入力です。
type DeleteInput struct {
	ID string
}

// AsOf は現在時刻を 1 回だけ読み取り、基準時刻として返します。
func (s *Service) AsOf() temporal.AsOf {
	return temporal.At(s.clock.Now(), s.loc)
}

// execute は基準時刻を 1 回だけ取得し、読み書きトランザクション内で fn を実行します。
// 確定しなかった結果はロールバックします。
func (s *Service) execute(ctx context.Context, command string, fn func(ctx context.Context, asOf temporal.AsOf) (Outcome, error)) (Outcome, error) {
	started := time.Now()
	asOf := s.AsOf()

	var outcome Outcome
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := fn(txCtx, asOf)
		if err != nil {
			return err
		}
		outcome = result
		if !result.Committed() {
			return errRejected
		}
		return nil
	})
	if errors.Is(err, errRejected) {
		err = nil
	}

	s.recorder.ObserveCommand(command, outcome.Kind, err, time.Since(started))
	s.logOutcome(command, outcome, err)

	if err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

func (s *Service) logOutcome(command string, outcome Outcome, err error) {
	if err != nil {
		s.logger.Error().Err(err).Str("command", command).Msg("lifecycle command failed")
		return
	}

	var event *zerolog.Event
	if outcome.Kind == OutcomeCommitted && outcome.Reason == "" {
		event = s.logger.Debug()
	} else {
		event = s.logger.Info()
	}
	event = event.
		Str("command", command).
		Str("outcome", string(outcome.Kind)).
		Str("effect", string(outcome.Effect))
	if outcome.Reason != "" {
		event = event.Str("reason", outcome.Reason)
	}
	if len(outcome.FieldErrors) > 0 {
		event = event.Strs("fields", outcome.FieldErrors.Fields())
	}
	if outcome.Cascade != (Cascade{}) {
		event = event.
			Int("assignments_ended", outcome.Cascade.AssignmentsEnded).
			Int("assignments_deleted", outcome.Cascade.AssignmentsDeleted).
			Int("shifts_deleted", outcome.Cascade.ShiftsDeleted).
			Int("accounts_deleted", outcome.Cascade.AccountsDeleted)
	}
	event.Msg("lifecycle command")
}

// readOnly は読み取り専用トランザクション内で fn を実行します。
func (s *Service) readOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.tx.WithinReadOnly(ctx, fn)
}

func (s *Service) newID() (string, error) {
	return s.ids.NewID()
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: %w", field, workforce.ErrInvalidID)
	}
	return nil
}

// conflictOutcome は永続化層の一意制約違反をフィールドエラーに変換します。
func conflictOutcome(err error) (Outcome, bool) {
	var field string
	switch {
	case errors.Is(err, workforce.ErrSSNAlreadyExists):
		field = "ssn"
	case errors.Is(err, workforce.ErrStoreNameAlreadyExists):
		field = "name"
	case errors.Is(err, workforce.ErrEmailAlreadyExists):
		field = "email"
	case errors.Is(err, workforce.ErrAccountAlreadyExists):
		field = "employee_id"
	case errors.Is(err, workforce.ErrShiftJobAlreadyExists):
		field = "job_id"
	case errors.Is(err, workforce.ErrStoreFlavorAlreadyExists):
		field = "flavor_id"
	default:
		return Outcome{}, false
	}
	errs := workforce.FieldErrors{}
	errs.Add(field, "has already been taken")
	return rejectedValidation(errs), true
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
