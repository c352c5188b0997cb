package usecase

import "time"

// SetClock はテストで現在時刻を固定します。
func (u *refreshUsecase) SetClock(now func() time.Time) {
	u.now = now
}
