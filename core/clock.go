package core

import "fmt"

const (
	// MinutesPerDial is the number of distinct positions on a 12 hour dial.
	MinutesPerDial = 12 * 60
)

// ClockTime is a position on a 12 hour analog dial
type ClockTime struct {
	Hour   int // 0-11
	Minute int // 0-59
}

// NewClockTime validates hour and minute and folds the hour onto the 12 hour dial.
// Hours are accepted in 24 hour notation so "15:07" and "3:07" are the same answer.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("%w: hour %d out of range", ErrInvalidTime, hour)
	}
	if minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: minute %d out of range", ErrInvalidTime, minute)
	}
	return ClockTime{Hour: hour % 12, Minute: minute}, nil
}

// HourAngle returns the hour hand angle in degrees, clockwise from 12 o'clock
func (t ClockTime) HourAngle() float64 {
	return float64(t.Hour%12)*30 + float64(t.Minute)*0.5
}

// MinuteAngle returns the minute hand angle in degrees, clockwise from 12 o'clock
func (t ClockTime) MinuteAngle() float64 {
	return float64(t.Minute) * 6
}

// DialMinutes returns the offset in minutes from 12:00
func (t ClockTime) DialMinutes() int {
	return (t.Hour%12)*60 + t.Minute
}

// Distance returns the circular distance in minutes between two dial positions
func (t ClockTime) Distance(other ClockTime) int {
	d := t.DialMinutes() - other.DialMinutes()
	if d < 0 {
		d = -d
	}
	if d > MinutesPerDial-d {
		d = MinutesPerDial - d
	}
	return d
}

func (t ClockTime) String() string {
	hour := t.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d", hour, t.Minute)
}
