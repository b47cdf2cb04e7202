package tui

import "time"

// MsgInitRecipes is sent once the install plan is fixed.
type MsgInitRecipes struct {
	Recipes []string
	Targets []string
}

// MsgSpanStart is sent when a recipe or one of its phases begins.
type MsgSpanStart struct {
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
}

// MsgSpanLog carries phase output. Data may hold partial lines.
type MsgSpanLog struct {
	SpanID string
	Data   []byte
}

// MsgSpanComplete is sent when a recipe or phase finishes.
type MsgSpanComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}
