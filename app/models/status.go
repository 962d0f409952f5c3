package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is the publication state of a post.
type Status int

const (
	StatusDraft    Status = 1
	StatusReview   Status = 2
	StatusActive   Status = 3
	StatusClosed   Status = 4
	StatusArchived Status = 5
)

// StatusOptions lists every assignable status in order.
var StatusOptions = []Status{
	StatusDraft,
	StatusReview,
	StatusActive,
	StatusClosed,
	StatusArchived,
}

// Statuses maps display names to status values.
var Statuses = map[string]Status{
	"Draft":    StatusDraft,
	"Review":   StatusReview,
	"Active":   StatusActive,
	"Closed":   StatusClosed,
	"Archived": StatusArchived,
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	return s >= StatusDraft && s <= StatusArchived
}

func (s Status) String() string {
	for name, v := range Statuses {
		if v == s {
			return name
		}
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// ParseStatus accepts either a status name (case-insensitive) or its numeric value.
func ParseStatus(text string) (Status, error) {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		s := Status(n)
		if !s.Valid() {
			return 0, fmt.Errorf("unknown status %d", n)
		}
		return s, nil
	}
	for name, v := range Statuses {
		if strings.EqualFold(name, text) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", text)
}

// UnmarshalJSON accepts both the numeric form and the status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Status(n)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("status must be a number or a name: %w", err)
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
