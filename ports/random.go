package ports

import "time"

// Random is an unpredictable source of integers
type Random interface {
	// Intn returns a uniform value in [0, n)
	Intn(n int) (int, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}
