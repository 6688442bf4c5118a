package services

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidTime = errors.New("invalid time")

var timeOfDayPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Timer is a cancellable scheduled task.
type Timer interface {
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(delay time.Duration, fn func()) Timer
}

type systemClock struct {
	location *time.Location
}

func NewSystemClock(location *time.Location) Clock {
	if location == nil {
		location = time.Local
	}
	return systemClock{location: location}
}

func (clock systemClock) Now() time.Time {
	return time.Now().In(clock.location)
}

func (clock systemClock) AfterFunc(delay time.Duration, fn func()) Timer {
	return time.AfterFunc(delay, fn)
}

// NextFireTime returns today at hour:minute when that is still ahead of now,
// otherwise the same wall-clock time tomorrow.
func NextFireTime(hour int, minute int, now time.Time) time.Time {
	year, month, day := now.Date()
	candidate := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if candidate.After(now) {
		return candidate
	}
	return time.Date(year, month, day+1, hour, minute, 0, 0, now.Location())
}

func ParseTimeOfDay(raw string) (int, int, error) {
	matches := timeOfDayPattern.FindStringSubmatch(raw)
	if len(matches) != 3 {
		return 0, 0, ErrInvalidTime
	}
	hour, err := strconv.Atoi(matches[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidTime
	}
	minute, err := strconv.Atoi(matches[2])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}
