package ports

import "github.com/layer-3/clockguard/core"

// Image is a rendered challenge
type Image struct {
	Data        []byte
	ContentType string
}

// Renderer draws a clock face showing t
type Renderer interface {
	Render(t core.ClockTime, params core.RenderParams) (Image, error)
}
