// Package timeparse extracts relative time expressions such as "10s",
// "5 min", "2 hours" or "in 3 days" from free-form text.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// Floor is the minimum accepted delay. Shorter expressions are raised
	// to this value instead of being rejected.
	Floor = 1
	// Ceiling is the maximum accepted delay (one year). Longer expressions
	// are treated as not found so the caller can re-prompt.
	Ceiling = 365 * 24 * 60 * 60
)

const unitPattern = `s|sec|secs|second|seconds|m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days`

var (
	exprRe = regexp.MustCompile(`(?i)\b(?:in\s*)?(\d+)\s*(` + unitPattern + `)\b`)
	taskRe = regexp.MustCompile(`(?i)remind me to (.+) in (\d+\s*(?:` + unitPattern + `))\b`)
)

// Result is a successfully extracted time expression. Matched holds the
// exact substring of the input so the caller can strip it out and recover
// the remaining task text.
type Result struct {
	Seconds int64
	Matched string
}

// Parse finds the leftmost time expression in text. The second return value
// is false when no expression is found or the computed delay exceeds the
// ceiling.
func Parse(text string) (*Result, bool) {
	m := exprRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	num, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digit run too long for int64; certainly over the ceiling.
		return nil, false
	}
	if num > Ceiling {
		return nil, false
	}

	seconds := num * unitSeconds(m[2])
	if seconds > Ceiling {
		return nil, false
	}
	if seconds < Floor {
		seconds = Floor
	}

	return &Result{Seconds: seconds, Matched: m[0]}, true
}

// TaskResult is the outcome of matching the "remind me to <task> in
// <quantity> <unit>" phrasing.
type TaskResult struct {
	Task    string
	Seconds int64
}

// ParseTask matches the explicit "remind me to ... in ..." phrasing. The
// task is everything between "to" and the last "in" that precedes a time
// expression. It takes precedence over the generic search in Parse.
func ParseTask(text string) (*TaskResult, bool) {
	m := taskRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	res, ok := Parse(m[2])
	if !ok {
		return nil, false
	}

	task := strings.TrimSpace(m[1])
	if task == "" {
		return nil, false
	}

	return &TaskResult{Task: task, Seconds: res.Seconds}, true
}

// unitSeconds resolves a unit token by its first letter:
// s=1, m=60, h=3600, d=86400.
func unitSeconds(unit string) int64 {
	switch strings.ToLower(unit)[0] {
	case 'm':
		return 60
	case 'h':
		return 3600
	case 'd':
		return 86400
	default:
		return 1
	}
}
