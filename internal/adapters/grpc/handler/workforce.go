package handler

import (
	"context"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/lifecycle"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorkforceGrpcHandler は WorkforceService の gRPC 実装です。
// 検証エラーや業務ルールによる拒否は OK ステータスで outcome に載せて返します。
type WorkforceGrpcHandler struct {
	svc lifecycle.UseCase
}

var _ WorkforceServer = (*WorkforceGrpcHandler)(nil)

// NewWorkforceGrpcHandler は WorkforceGrpcHandler を生成します。
func NewWorkforceGrpcHandler(svc lifecycle.UseCase) *WorkforceGrpcHandler {
	return &WorkforceGrpcHandler{svc: svc}
}

// CreateEmployee は社員を作成します。
func (h *WorkforceGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.CreateEmployeeInput{
		FirstName:   f.str("first_name"),
		LastName:    f.str("last_name"),
		DateOfBirth: f.date("date_of_birth"),
		SSN:         f.str("ssn"),
		Phone:       f.str("phone"),
		Role:        workforce.Role(f.str("role")),
		Active:      f.optBool("active"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "employee", employeeValue(created))
}

// UpdateEmployee は社員情報を更新します。指定されなかった項目は変更しません。
func (h *WorkforceGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.UpdateEmployeeInput{
		ID:          f.str("id"),
		FirstName:   f.optStr("first_name"),
		LastName:    f.optStr("last_name"),
		DateOfBirth: f.optDate("date_of_birth"),
		SSN:         f.optStr("ssn"),
		Phone:       f.optStr("phone"),
		Role:        f.optRole("role"),
		Active:      f.optBool("active"),
	}
	if f.err != nil {
		return nil, f.err
	}

	updated, outcome, err := h.svc.UpdateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "employee", employeeValue(updated))
}

// DeleteEmployee は社員を削除します。
func (h *WorkforceGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.delete(req, func(in lifecycle.DeleteInput) (lifecycle.Outcome, error) {
		return h.svc.DeleteEmployee(ctx, in)
	})
}

// CreateAccount は社員にアカウントを作成します。
func (h *WorkforceGrpcHandler) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.CreateAccountInput{
		EmployeeID: f.str("employee_id"),
		Email:      f.str("email"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.CreateAccount(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "account", accountValue(created))
}

// CreateAssignment は割り当てを作成します。
func (h *WorkforceGrpcHandler) CreateAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	inputErrs := workforce.FieldErrors{}
	in := lifecycle.CreateAssignmentInput{
		EmployeeID:  f.str("employee_id"),
		StoreID:     f.str("store_id"),
		PayLevel:    f.wholeNumber("pay_level", inputErrs),
		StartDate:   f.date("start_date"),
		EndDate:     f.optDate("end_date"),
		InputErrors: inputErrs,
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.CreateAssignment(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "assignment", assignmentValue(created))
}

// TerminateAssignment は割り当てを終了します。
func (h *WorkforceGrpcHandler) TerminateAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.TerminateAssignmentInput{ID: f.str("id")}
	if f.err != nil {
		return nil, f.err
	}

	terminated, outcome, err := h.svc.TerminateAssignment(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "assignment", assignmentValue(terminated))
}

// DeleteAssignment は割り当てを削除します。
func (h *WorkforceGrpcHandler) DeleteAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.delete(req, func(in lifecycle.DeleteInput) (lifecycle.Outcome, error) {
		return h.svc.DeleteAssignment(ctx, in)
	})
}

// CreateShift はシフトを作成します。
func (h *WorkforceGrpcHandler) CreateShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.CreateShiftInput{
		AssignmentID: f.str("assignment_id"),
		Date:         f.date("date"),
		StartTime:    f.optTimeOfDay("start_time"),
		EndTime:      f.optTimeOfDay("end_time"),
		Notes:        f.optStr("notes"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.CreateShift(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "shift", shiftValue(created))
}

// StartShift はシフトの開始時刻を現在時刻にします。
func (h *WorkforceGrpcHandler) StartShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.clock(req, func(in lifecycle.ShiftClockInput) (*workforce.Shift, lifecycle.Outcome, error) {
		return h.svc.StartShiftNow(ctx, in)
	})
}

// EndShift はシフトの終了時刻を現在時刻にします。
func (h *WorkforceGrpcHandler) EndShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.clock(req, func(in lifecycle.ShiftClockInput) (*workforce.Shift, lifecycle.Outcome, error) {
		return h.svc.EndShiftNow(ctx, in)
	})
}

func (h *WorkforceGrpcHandler) clock(req *structpb.Struct, run func(lifecycle.ShiftClockInput) (*workforce.Shift, lifecycle.Outcome, error)) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.ShiftClockInput{ID: f.str("id")}
	if f.err != nil {
		return nil, f.err
	}

	shift, outcome, err := run(in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "shift", shiftValue(shift))
}

// AssignJobToShift はシフトに職務を割り当てます。
func (h *WorkforceGrpcHandler) AssignJobToShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.AssignJobToShiftInput{
		ShiftID: f.str("shift_id"),
		JobID:   f.str("job_id"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.AssignJobToShift(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "shift_job", shiftJobValue(created))
}

// DeleteShift はシフトを削除します。
func (h *WorkforceGrpcHandler) DeleteShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.delete(req, func(in lifecycle.DeleteInput) (lifecycle.Outcome, error) {
		return h.svc.DeleteShift(ctx, in)
	})
}

// CreateStore は店舗を作成します。
func (h *WorkforceGrpcHandler) CreateStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.CreateStoreInput{
		Name:   f.str("name"),
		Street: f.str("street"),
		City:   f.str("city"),
		State:  workforce.State(f.str("state")),
		Zip:    f.str("zip"),
		Phone:  f.str("phone"),
		Active: f.optBool("active"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.CreateStore(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "store", storeValue(created))
}

// UpdateStore は店舗情報を更新します。指定されなかった項目は変更しません。
func (h *WorkforceGrpcHandler) UpdateStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.UpdateStoreInput{
		ID:     f.str("id"),
		Name:   f.optStr("name"),
		Street: f.optStr("street"),
		City:   f.optStr("city"),
		State:  f.optState("state"),
		Zip:    f.optStr("zip"),
		Phone:  f.optStr("phone"),
		Active: f.optBool("active"),
	}
	if f.err != nil {
		return nil, f.err
	}

	updated, outcome, err := h.svc.UpdateStore(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "store", storeValue(updated))
}

// AddFlavorToStore は店舗で提供するフレーバーを追加します。
func (h *WorkforceGrpcHandler) AddFlavorToStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.AddFlavorToStoreInput{
		StoreID:  f.str("store_id"),
		FlavorID: f.str("flavor_id"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.AddFlavorToStore(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "store_flavor", storeFlavorValue(created))
}

// CreateFlavor はフレーバーを作成します。
func (h *WorkforceGrpcHandler) CreateFlavor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.CreateFlavorInput{
		Name:   f.str("name"),
		Active: f.optBool("active"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.CreateFlavor(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "flavor", flavorValue(created))
}

// CreateJob は職務を作成します。
func (h *WorkforceGrpcHandler) CreateJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.CreateJobInput{
		Name:        f.str("name"),
		Description: f.optStr("description"),
		Active:      f.optBool("active"),
	}
	if f.err != nil {
		return nil, f.err
	}

	created, outcome, err := h.svc.CreateJob(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "job", jobValue(created))
}

// DeleteStore は店舗を削除します。
func (h *WorkforceGrpcHandler) DeleteStore(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.delete(req, func(in lifecycle.DeleteInput) (lifecycle.Outcome, error) {
		return h.svc.DeleteStore(ctx, in)
	})
}

// DeleteFlavor はフレーバーを削除します。
func (h *WorkforceGrpcHandler) DeleteFlavor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.delete(req, func(in lifecycle.DeleteInput) (lifecycle.Outcome, error) {
		return h.svc.DeleteFlavor(ctx, in)
	})
}

// DeleteJob は職務を削除します。
func (h *WorkforceGrpcHandler) DeleteJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.delete(req, func(in lifecycle.DeleteInput) (lifecycle.Outcome, error) {
		return h.svc.DeleteJob(ctx, in)
	})
}

func (h *WorkforceGrpcHandler) delete(req *structpb.Struct, run func(lifecycle.DeleteInput) (lifecycle.Outcome, error)) (*structpb.Struct, error) {
	f := readFields(req)
	in := lifecycle.DeleteInput{ID: f.str("id")}
	if f.err != nil {
		return nil, f.err
	}

	outcome, err := run(in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(outcome, "", nil)
}

// GetEmployee は社員を取得します。
func (h *WorkforceGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	id := f.str("id")
	if f.err != nil {
		return nil, f.err
	}

	found, err := h.svc.GetEmployee(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"employee": employeeValue(found)})
}

// GetEmployeeProfile は社員と派生属性、現在の割り当てを取得します。
func (h *WorkforceGrpcHandler) GetEmployeeProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	id := f.str("id")
	if f.err != nil {
		return nil, f.err
	}

	profile, err := h.svc.EmployeeProfile(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"profile": profileValue(profile)})
}

// ListEmployees は条件に合う社員の一覧を取得します。
func (h *WorkforceGrpcHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	query := workforce.Employees()
	if f.flag("younger_than_18") {
		query = query.YoungerThan18()
	}
	if f.flag("adults_only") {
		query = query.AdultsOnly()
	}
	if active := f.optBool("active"); active != nil {
		if *active {
			query = query.Active()
		} else {
			query = query.Inactive()
		}
	}
	if role := f.optRole("role"); role != nil {
		query = query.ByRole(*role)
	}
	switch order := f.str("order"); order {
	case "":
	case "alphabetical":
		query = query.AlphabeticalByLastThenFirst()
	default:
		f.fail("order", "unsupported value "+order)
	}
	if limit := f.optInt("limit"); limit != nil {
		query = query.Limited(*limit)
	}
	if f.err != nil {
		return nil, f.err
	}

	list, err := h.svc.ListEmployees(ctx, query)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"employees": listValue(list, employeeValue)})
}

// GetAssignment は割り当てを取得します。
func (h *WorkforceGrpcHandler) GetAssignment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	id := f.str("id")
	if f.err != nil {
		return nil, f.err
	}

	found, err := h.svc.GetAssignment(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"assignment": assignmentValue(found)})
}

// ListAssignments は条件に合う割り当ての一覧を取得します。
func (h *WorkforceGrpcHandler) ListAssignments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	query := workforce.Assignments()
	switch state := f.str("status"); state {
	case "":
	case "current":
		query = query.CurrentOnly()
	case "past":
		query = query.PastOnly()
	default:
		f.fail("status", "unsupported value "+state)
	}
	if id := f.optStr("store_id"); id != nil {
		query = query.ForStore(*id)
	}
	if id := f.optStr("employee_id"); id != nil {
		query = query.ForEmployee(*id)
	}
	if level := f.optInt("pay_level"); level != nil {
		query = query.ForPayLevel(*level)
	}
	if role := f.optRole("role"); role != nil {
		query = query.ForRole(*role)
	}
	switch order := f.str("order"); order {
	case "":
	case "store_name":
		query = query.OrderedByStoreNameThenInsertion()
	case "start_date":
		query = query.OrderedByStartDateAscending()
	case "employee_name":
		query = query.OrderedByEmployeeLastThenFirstName()
	default:
		f.fail("order", "unsupported value "+order)
	}
	if limit := f.optInt("limit"); limit != nil {
		query = query.Limited(*limit)
	}
	if f.err != nil {
		return nil, f.err
	}

	list, err := h.svc.ListAssignments(ctx, query)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"assignments": listValue(list, assignmentValue)})
}

// GetShift はシフトと割り当て済みの職務を取得します。
func (h *WorkforceGrpcHandler) GetShift(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	id := f.str("id")
	if f.err != nil {
		return nil, f.err
	}

	detail, err := h.svc.GetShift(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}
	if detail == nil {
		return nil, status.Error(codes.NotFound, workforce.ErrShiftNotFound.Error())
	}
	return newStruct(map[string]any{
		"shift":     shiftValue(detail.Shift),
		"job_ids":   listValue(detail.JobIDs, func(id string) any { return id }),
		"completed": detail.Completed,
	})
}

// ListShifts は条件に合うシフトの一覧を取得します。
func (h *WorkforceGrpcHandler) ListShifts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := readFields(req)
	query := workforce.Shifts()
	switch state := f.str("status"); state {
	case "":
	case "completed":
		query = query.Completed()
	case "past":
		query = query.Past()
	case "incomplete":
		query = query.Incomplete()
	case "upcoming":
		query = query.Upcoming()
	default:
		f.fail("status", "unsupported value "+state)
	}
	if days := f.optInt("next_days"); days != nil {
		query = query.ForNextDays(*days)
	}
	if days := f.optInt("past_days"); days != nil {
		query = query.ForPastDays(*days)
	}
	if id := f.optStr("store_id"); id != nil {
		query = query.ForStore(*id)
	}
	if id := f.optStr("employee_id"); id != nil {
		query = query.ForEmployee(*id)
	}
	if id := f.optStr("assignment_id"); id != nil {
		query = query.ForAssignment(*id)
	}
	if id := f.optStr("job_id"); id != nil {
		query = query.ForJob(*id)
	}
	switch order := f.str("order"); order {
	case "":
	case "chronological_desc":
		query = query.ChronologicalDescending()
	case "store_then_date":
		query = query.OrderedByStoreThenDate()
	case "employee_then_date":
		query = query.OrderedByEmployeeThenDate()
	default:
		f.fail("order", "unsupported value "+order)
	}
	if limit := f.optInt("limit"); limit != nil {
		query = query.Limited(*limit)
	}
	if f.err != nil {
		return nil, f.err
	}

	list, err := h.svc.ListShifts(ctx, query)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"shifts": listValue(list, shiftValue)})
}

// ListStores は店舗の一覧を取得します。
func (h *WorkforceGrpcHandler) ListStores(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query, err := catalogQuery(req)
	if err != nil {
		return nil, err
	}
	list, err := h.svc.ListStores(ctx, query)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"stores": listValue(list, storeValue)})
}

// ListJobs は職務の一覧を取得します。
func (h *WorkforceGrpcHandler) ListJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query, err := catalogQuery(req)
	if err != nil {
		return nil, err
	}
	list, err := h.svc.ListJobs(ctx, query)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"jobs": listValue(list, jobValue)})
}

// ListFlavors はフレーバーの一覧を取得します。
func (h *WorkforceGrpcHandler) ListFlavors(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query, err := catalogQuery(req)
	if err != nil {
		return nil, err
	}
	list, err := h.svc.ListFlavors(ctx, query)
	if err != nil {
		return nil, toStatusError(err)
	}
	return newStruct(map[string]any{"flavors": listValue(list, flavorValue)})
}

func catalogQuery(req *structpb.Struct) (workforce.CatalogQuery, error) {
	f := readFields(req)
	query := workforce.Catalog()
	if active := f.optBool("active"); active != nil {
		if *active {
			query = query.ActiveOnly()
		} else {
			query = query.InactiveOnly()
		}
	}
	switch order := f.str("order"); order {
	case "":
	case "alphabetical":
		query = query.Alphabetical()
	default:
		f.fail("order", "unsupported value "+order)
	}
	return query, f.err
}
