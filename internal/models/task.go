package models

import "strings"

type Task struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
}

// HasTitle reports whether the title contains at least one non-whitespace character.
func (t *Task) HasTitle() bool {
	return strings.TrimSpace(t.Title) != ""
}
