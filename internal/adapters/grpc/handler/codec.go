package handler

import (
	"math"
	"time"

	"github.com/ogurasousui/codex-grpc-workforce/internal/core/lifecycle"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/temporal"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/workforce"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// fields は Struct リクエストから値を取り出します。
// 型や書式が合わない場合は最初のエラーだけを err に保持します。
type fields struct {
	values map[string]*structpb.Value
	err    error
}

func readFields(req *structpb.Struct) *fields {
	f := &fields{values: req.GetFields()}
	if req == nil {
		f.err = status.Error(codes.InvalidArgument, "request is required")
	}
	return f
}

func (f *fields) fail(key, message string) {
	if f.err == nil {
		f.err = status.Errorf(codes.InvalidArgument, "%s: %s", key, message)
	}
}

// lookup は null と未指定を区別せずに扱います。
func (f *fields) lookup(key string) (*structpb.Value, bool) {
	v, ok := f.values[key]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func (f *fields) str(key string) string {
	if v := f.optStr(key); v != nil {
		return *v
	}
	return ""
}

func (f *fields) optStr(key string) *string {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		f.fail(key, "must be a string")
		return nil
	}
	out := s.StringValue
	return &out
}

func (f *fields) optBool(key string) *bool {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	b, isBool := v.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		f.fail(key, "must be a boolean")
		return nil
	}
	out := b.BoolValue
	return &out
}

func (f *fields) flag(key string) bool {
	if v := f.optBool(key); v != nil {
		return *v
	}
	return false
}

func (f *fields) optInt(key string) *int {
	v, ok := f.lookup(key)
	if !ok {
		return nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		f.fail(key, "must be an integer")
		return nil
	}
	out := int(n.NumberValue)
	return &out
}

// wholeNumber は整数でない数値を errs に記録し、0 を返します。数値以外の型は InvalidArgument にします。
func (f *fields) wholeNumber(key string, errs workforce.FieldErrors) int {
	v, ok := f.lookup(key)
	if !ok {
		return 0
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		f.fail(key, "must be a number")
		return 0
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		errs.Add(key, "must be an integer")
		return 0
	}
	return int(n.NumberValue)
}

// date は未指定の場合にゼロ値を返し、必須チェックはドメイン側の検証に任せます。
func (f *fields) date(key string) time.Time {
	if v := f.optDate(key); v != nil {
		return *v
	}
	return time.Time{}
}

func (f *fields) optDate(key string) *time.Time {
	raw := f.optStr(key)
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		f.fail(key, "must be formatted as YYYY-MM-DD")
		return nil
	}
	return &t
}

func (f *fields) optTimeOfDay(key string) *temporal.TimeOfDay {
	raw := f.optStr(key)
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := temporal.ParseTimeOfDay(*raw)
	if err != nil {
		f.fail(key, "must be formatted as HH:MM")
		return nil
	}
	return &t
}

func (f *fields) optRole(key string) *workforce.Role {
	raw := f.optStr(key)
	if raw == nil {
		return nil
	}
	role := workforce.Role(*raw)
	return &role
}

func (f *fields) optState(key string) *workforce.State {
	raw := f.optStr(key)
	if raw == nil {
		return nil
	}
	state := workforce.State(*raw)
	return &state
}

func newStruct(body map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(body)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

// respond はコマンドの結果と、key が空でなければエンティティを含むレスポンスを組み立てます。
func respond(outcome lifecycle.Outcome, key string, entity any) (*structpb.Struct, error) {
	body := map[string]any{"outcome": outcomeValue(outcome)}
	if key != "" {
		body[key] = entity
	}
	return newStruct(body)
}

func outcomeValue(o lifecycle.Outcome) map[string]any {
	fieldErrors := make(map[string]any, len(o.FieldErrors))
	for _, field := range o.FieldErrors.Fields() {
		fieldErrors[field] = o.FieldErrors[field]
	}
	return map[string]any{
		"kind":         string(o.Kind),
		"effect":       string(o.Effect),
		"reason":       o.Reason,
		"committed":    o.Committed(),
		"field_errors": fieldErrors,
		"cascade": map[string]any{
			"assignments_ended":   o.Cascade.AssignmentsEnded,
			"assignments_deleted": o.Cascade.AssignmentsDeleted,
			"shifts_deleted":      o.Cascade.ShiftsDeleted,
			"accounts_deleted":    o.Cascade.AccountsDeleted,
		},
	}
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func optionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// maskSSN は下 4 桁以外を伏せた SSN を返します。
func maskSSN(ssn string) string {
	if len(ssn) <= 4 {
		return ssn
	}
	return "***-**-" + ssn[len(ssn)-4:]
}

func employeeValue(e *workforce.Employee) any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"id":            e.ID,
		"first_name":    e.FirstName,
		"last_name":     e.LastName,
		"date_of_birth": formatDate(e.DateOfBirth),
		"ssn":           maskSSN(e.SSN),
		"phone":         e.Phone,
		"role":          string(e.Role),
		"active":        e.Active,
		"created_at":    formatTimestamp(e.CreatedAt),
		"updated_at":    formatTimestamp(e.UpdatedAt),
	}
}

func accountValue(a *workforce.Account) any {
	if a == nil {
		return nil
	}
	return map[string]any{
		"id":          a.ID,
		"employee_id": a.EmployeeID,
		"email":       a.Email,
		"created_at":  formatTimestamp(a.CreatedAt),
		"updated_at":  formatTimestamp(a.UpdatedAt),
	}
}

func assignmentValue(a *workforce.Assignment) any {
	if a == nil {
		return nil
	}
	return map[string]any{
		"id":          a.ID,
		"employee_id": a.EmployeeID,
		"store_id":    a.StoreID,
		"pay_level":   a.PayLevel,
		"start_date":  formatDate(a.StartDate),
		"end_date":    optionalDate(a.EndDate),
		"current":     a.IsCurrent(),
		"created_at":  formatTimestamp(a.CreatedAt),
		"updated_at":  formatTimestamp(a.UpdatedAt),
	}
}

func shiftValue(s *workforce.Shift) any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"id":            s.ID,
		"assignment_id": s.AssignmentID,
		"date":          formatDate(s.Date),
		"start_time":    s.StartTime.String(),
		"end_time":      s.EndTime.String(),
		"notes":         optionalString(s.Notes),
		"created_at":    formatTimestamp(s.CreatedAt),
		"updated_at":    formatTimestamp(s.UpdatedAt),
	}
}

func shiftJobValue(sj *workforce.ShiftJob) any {
	if sj == nil {
		return nil
	}
	return map[string]any{
		"id":         sj.ID,
		"shift_id":   sj.ShiftID,
		"job_id":     sj.JobID,
		"created_at": formatTimestamp(sj.CreatedAt),
	}
}

func storeValue(s *workforce.Store) any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"id":         s.ID,
		"name":       s.Name,
		"street":     s.Street,
		"city":       s.City,
		"state":      string(s.State),
		"zip":        s.Zip,
		"phone":      s.Phone,
		"active":     s.Active,
		"created_at": formatTimestamp(s.CreatedAt),
		"updated_at": formatTimestamp(s.UpdatedAt),
	}
}

func storeFlavorValue(sf *workforce.StoreFlavor) any {
	if sf == nil {
		return nil
	}
	return map[string]any{
		"id":         sf.ID,
		"store_id":   sf.StoreID,
		"flavor_id":  sf.FlavorID,
		"created_at": formatTimestamp(sf.CreatedAt),
	}
}

func flavorValue(f *workforce.Flavor) any {
	if f == nil {
		return nil
	}
	return map[string]any{
		"id":         f.ID,
		"name":       f.Name,
		"active":     f.Active,
		"created_at": formatTimestamp(f.CreatedAt),
		"updated_at": formatTimestamp(f.UpdatedAt),
	}
}

func jobValue(j *workforce.Job) any {
	if j == nil {
		return nil
	}
	return map[string]any{
		"id":          j.ID,
		"name":        j.Name,
		"description": optionalString(j.Description),
		"active":      j.Active,
		"created_at":  formatTimestamp(j.CreatedAt),
		"updated_at":  formatTimestamp(j.UpdatedAt),
	}
}

func profileValue(p *lifecycle.Profile) any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"employee":           employeeValue(p.Employee),
		"account":            accountValue(p.Account),
		"current_assignment": assignmentValue(p.CurrentAssignment),
		"display_name":       p.DisplayName,
		"proper_name":        p.ProperName,
		"age":                p.Age,
		"adult":              p.Adult,
	}
}

func listValue[T any](items []T, encode func(T) any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, encode(item))
	}
	return out
}
