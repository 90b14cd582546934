package temporal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// EndOfDay はその日の最後の時刻 23:59:59 です。
const EndOfDay = TimeOfDay(secondsPerDay - 1)

// ErrInvalidTimeOfDay は時刻文字列が解釈できない場合に返却されます。
var ErrInvalidTimeOfDay = errors.New("temporal: invalid time of day")

// TimeOfDay は 0 時からの経過秒で表した時刻です。
type TimeOfDay int

// NewTimeOfDay は時・分・秒から TimeOfDay を生成します。
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return normalizeSeconds(hour*3600 + minute*60 + second)
}

// TimeOfDayOf は t の時刻部分を返します。
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// ParseTimeOfDay は "15:04" または "15:04:05" 形式の文字列を解釈します。
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
}

// Add は d を加算した時刻を返します。24 時を超えた分は翌日側に折り返します。
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return normalizeSeconds(int(t) + int(d/time.Second))
}

// AddWithinDay は d を加算した時刻を返します。同じ日に収まらない場合は EndOfDay を返します。
func (t TimeOfDay) AddWithinDay(d time.Duration) TimeOfDay {
	total := int(t) + int(d/time.Second)
	if total > int(EndOfDay) {
		return EndOfDay
	}
	if total < 0 {
		return 0
	}
	return TimeOfDay(total)
}

// Before は t が other より前であれば true を返します。
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// After は t が other より後であれば true を返します。
func (t TimeOfDay) After(other TimeOfDay) bool {
	return t > other
}

// Duration は 0 時からの経過時間を返します。
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Second
}

// On は date の日付と t を組み合わせた時刻を返します。
func (t TimeOfDay) On(date time.Time) time.Time {
	return Date(date).Add(t.Duration())
}

// String は "15:04" 形式 (秒がある場合は "15:04:05") で返します。
func (t TimeOfDay) String() string {
	total := int(t)
	h, m, s := total/3600, (total%3600)/60, total%60
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func normalizeSeconds(total int) TimeOfDay {
	total %= secondsPerDay
	if total < 0 {
		total += secondsPerDay
	}
	return TimeOfDay(total)
}
