package attendance

import "errors"

var (
	ErrPeriodNotLocked = errors.New("attendance period is not locked")
	ErrDayNotFound     = errors.New("attendance day not found")
)
