package workforce

import (
	"sort"
	"strings"
)

// FieldErrors はフィールド名とエラーメッセージの対応です。
// 検証は最初の失敗で止めず、すべてのフィールドについて収集します。
type FieldErrors map[string]string

// Add は field にメッセージを追加します。同じフィールドへの複数メッセージは連結します。
func (f FieldErrors) Add(field, message string) {
	if existing, ok := f[field]; ok && existing != message {
		f[field] = existing + "; " + message
		return
	}
	f[field] = message
}

// Merge は other の内容を f に取り込みます。
func (f FieldErrors) Merge(other FieldErrors) {
	for _, field := range other.Fields() {
		f.Add(field, other[field])
	}
}

// Has は field にエラーがあれば true を返します。
func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

// OK はエラーが 1 件もなければ true を返します。
func (f FieldErrors) OK() bool {
	return len(f) == 0
}

// Fields はエラーのあるフィールド名を昇順で返します。
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, field := range f.Fields() {
		parts = append(parts, field+": "+f[field])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
