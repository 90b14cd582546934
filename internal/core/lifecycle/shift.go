package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
)

// CreateShiftInput はシフト作成時の入力です。EndTime が nil の場合は既定の長さを開始時刻に加算します。
// 加算結果が日付をまたぐ場合、終了時刻は 23:59:59 に切り詰めます。
type CreateShiftInput struct {
	AssignmentID string
	Date         time.Time
	StartTime    *temporal.TimeOfDay
	EndTime      *temporal.TimeOfDay
	Notes        *string
}

// ShiftClockInput は打刻コマンドの入力です。
type ShiftClockInput struct {
	ID string
}

// AssignJobToShiftInput はシフトへの職務割り当て時の入力です。
type AssignJobToShiftInput struct {
	ShiftID string
	JobID   string
}

// ShiftDetail はシフトと割り当て済み職務、完了状態をまとめたものです。
type ShiftDetail struct {
	Shift     *workforce.Shift
	JobIDs    []string
	Completed bool
}

// CreateShift はシフトを作成します。
func (s *Service) CreateShift(ctx context.Context, in CreateShiftInput) (*workforce.Shift, Outcome, error) {
	var created *workforce.Shift
	outcome, err := s.execute(ctx, "CreateShift", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		assignment, err := s.findAssignmentReference(ctx, in.AssignmentID)
		if err != nil {
			return Outcome{}, err
		}

		now := asOf.Now()
		shift := &workforce.Shift{
			AssignmentID: strings.TrimSpace(in.AssignmentID),
			Date:         temporal.Date(in.Date),
			Notes:        trimmedOrNil(in.Notes),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		errs := workforce.FieldErrors{}
		if in.StartTime == nil {
			errs.Add("start_time", "can't be blank")
		} else {
			shift.StartTime = *in.StartTime
			if in.EndTime != nil {
				shift.EndTime = *in.EndTime
			} else {
				shift.EndTime = shift.StartTime.AddWithinDay(s.shiftLength)
			}
		}

		shiftErrs := workforce.ValidateNewShift(shift, assignment, asOf)
		if in.StartTime == nil {
			delete(shiftErrs, "end_time")
		}
		if assignment == nil && strings.TrimSpace(in.AssignmentID) != "" {
			delete(shiftErrs, "assignment_id")
			shiftErrs.Add("assignment_id", "does not exist")
		}
		errs.Merge(shiftErrs)
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}

		if shift.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Shifts.Create(ctx, shift)
		if err != nil {
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// StartShiftNow は今日のシフトの開始時刻を現在時刻に更新します。
func (s *Service) StartShiftNow(ctx context.Context, in ShiftClockInput) (*workforce.Shift, Outcome, error) {
	return s.clockShift(ctx, "StartShiftNow", in, func(shift *workforce.Shift, at temporal.TimeOfDay) {
		shift.StartTime = at
	})
}

// EndShiftNow は今日のシフトの終了時刻を現在時刻に更新します。
func (s *Service) EndShiftNow(ctx context.Context, in ShiftClockInput) (*workforce.Shift, Outcome, error) {
	return s.clockShift(ctx, "EndShiftNow", in, func(shift *workforce.Shift, at temporal.TimeOfDay) {
		shift.EndTime = at
	})
}

func (s *Service) clockShift(ctx context.Context, command string, in ShiftClockInput, apply func(*workforce.Shift, temporal.TimeOfDay)) (*workforce.Shift, Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return nil, Outcome{}, err
	}

	var updated *workforce.Shift
	outcome, err := s.execute(ctx, command, func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		shift, err := s.repos.Shifts.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}
		if !temporal.Date(shift.Date).Equal(asOf.Today()) {
			return rejectedPolicy("shift is not scheduled for today"), nil
		}

		assignment, err := s.repos.Assignments.FindByID(ctx, shift.AssignmentID)
		if err != nil {
			return Outcome{}, err
		}

		apply(shift, temporal.TimeOfDayOf(asOf.Now().Truncate(time.Minute)))
		if errs := workforce.ValidateShift(shift, assignment); !errs.OK() {
			return rejectedValidation(errs), nil
		}
		shift.UpdatedAt = asOf.Now()

		updated, err = s.repos.Shifts.Update(ctx, shift)
		if err != nil {
			return Outcome{}, err
		}
		return committed(EffectUpdated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return updated, outcome, nil
}

// AssignJobToShift はシフトに有効な職務を割り当てます。
func (s *Service) AssignJobToShift(ctx context.Context, in AssignJobToShiftInput) (*workforce.ShiftJob, Outcome, error) {
	if err := requireID("shift_id", in.ShiftID); err != nil {
		return nil, Outcome{}, err
	}

	var created *workforce.ShiftJob
	outcome, err := s.execute(ctx, "AssignJobToShift", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		shift, err := s.repos.Shifts.FindByID(ctx, in.ShiftID)
		if err != nil {
			return Outcome{}, err
		}

		errs := workforce.FieldErrors{}
		job, err := s.findJobReference(ctx, in.JobID)
		if err != nil {
			return Outcome{}, err
		}
		if job == nil || !job.Active {
			errs.Add("job_id", "is not active in the system")
		} else {
			links, err := s.repos.Shifts.ListJobs(ctx, shift.ID)
			if err != nil {
				return Outcome{}, err
			}
			for _, link := range links {
				if link.JobID == job.ID {
					errs.Add("job_id", "has already been taken")
				}
			}
		}
		if !errs.OK() {
			return rejectedValidation(errs), nil
		}

		link := &workforce.ShiftJob{ShiftID: shift.ID, JobID: job.ID, CreatedAt: asOf.Now()}
		if link.ID, err = s.newID(); err != nil {
			return Outcome{}, err
		}
		created, err = s.repos.Shifts.AddJob(ctx, link)
		if err != nil {
			if o, ok := conflictOutcome(err); ok {
				return o, nil
			}
			return Outcome{}, err
		}
		return committed(EffectCreated), nil
	})
	if err != nil || !outcome.Committed() {
		return nil, outcome, err
	}
	return created, outcome, nil
}

// DeleteShift はシフトを削除します。勤務済みのシフトは削除できません。
func (s *Service) DeleteShift(ctx context.Context, in DeleteInput) (Outcome, error) {
	if err := requireID("id", in.ID); err != nil {
		return Outcome{}, err
	}

	return s.execute(ctx, "DeleteShift", func(ctx context.Context, asOf temporal.AsOf) (Outcome, error) {
		shift, err := s.repos.Shifts.FindByID(ctx, in.ID)
		if err != nil {
			return Outcome{}, err
		}
		if decideDeletion(KindShift, shift.IsCompleted(asOf)) == decideReject {
			return rejectedPolicy("cannot delete a completed shift"), nil
		}
		if err := s.repos.Shifts.Delete(ctx, shift.ID); err != nil {
			return Outcome{}, err
		}
		return committed(EffectDeleted), nil
	})
}

func (s *Service) findJobReference(ctx context.Context, id string) (*workforce.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	job, err := s.repos.Jobs.FindByID(ctx, id)
	if errors.Is(err, workforce.ErrJobNotFound) || errors.Is(err, workforce.ErrInvalidID) {
		return nil, nil
	}
	return job, err
}
