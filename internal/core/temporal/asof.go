package temporal

import "time"

// AsOf はコマンド実行時に一度だけ取得した基準時刻です。
// 同一コマンド内の日付判定はすべてこの値を使って行います。
type AsOf struct {
	now time.Time
	loc *time.Location
}

// At は now を基準時刻とする AsOf を生成します。loc が nil の場合は UTC を使用します。
func At(now time.Time, loc *time.Location) AsOf {
	if loc == nil {
		loc = time.UTC
	}
	return AsOf{now: now.In(loc), loc: loc}
}

// Now は基準時刻を返します。
func (a AsOf) Now() time.Time {
	return a.now
}

// Location は日付判定に用いるタイムゾーンを返します。
func (a AsOf) Location() *time.Location {
	if a.loc == nil {
		return time.UTC
	}
	return a.loc
}

// Today は基準時刻の暦日を UTC 0 時で返します。
func (a AsOf) Today() time.Time {
	return Date(a.now)
}

// DaysFromToday は今日から n 日後 (負数なら前) の日付を返します。
func (a AsOf) DaysFromToday(n int) time.Time {
	return a.Today().AddDate(0, 0, n)
}

// IsNotInFuture は date が今日以前であれば true を返します。
func (a AsOf) IsNotInFuture(date time.Time) bool {
	return !Date(date).After(a.Today())
}

// IsNotInPast は date が今日以降であれば true を返します。
func (a AsOf) IsNotInPast(date time.Time) bool {
	return !Date(date).Before(a.Today())
}

// IsPast は date が今日より前であれば true を返します。
func (a AsOf) IsPast(date time.Time) bool {
	return Date(date).Before(a.Today())
}

// YearsAgo は今日から years 年前の同じ暦日を返します。
// 2 月 29 日を起点とし対象年が閏年でない場合は 2 月 28 日に丸めます。
func (a AsOf) YearsAgo(years int) time.Time {
	today := a.Today()
	year := today.Year() - years
	day := today.Day()
	if today.Month() == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, today.Month(), day, 0, 0, 0, 0, time.UTC)
}

// IsAtLeastYearsBeforeNow は date が今日から years 年以上前であれば true を返します。
func (a AsOf) IsAtLeastYearsBeforeNow(date time.Time, years int) bool {
	return !Date(date).After(a.YearsAgo(years))
}

// AgeInYears は date から今日までに経過した満年数を返します。
func (a AsOf) AgeInYears(date time.Time) int {
	birth := Date(date)
	today := a.Today()

	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// Date は t の暦日 (t 自身のタイムゾーン基準) を UTC 0 時で返します。
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
