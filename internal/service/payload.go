package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/llamaio/task-api/pkg/apierror"
)

// TaskPayload is the validated, non-relational part of a task write. The
// assignee reference stays raw; the relationship service normalizes it.
type TaskPayload struct {
	Name         string
	Description  string
	Deadline     time.Time
	Completed    bool
	AssignedUser interface{}
}

// UserPayload is the validated part of a user write. PendingTasks stays raw
// for the relationship service; HasPendingTasks distinguishes an absent field
// from an empty list.
type UserPayload struct {
	Name            string
	Email           string
	PendingTasks    interface{}
	HasPendingTasks bool
}

// ExtractTaskPayload validates a decoded request body for a task write.
func ExtractTaskPayload(body map[string]interface{}) (*TaskPayload, error) {
	payload := &TaskPayload{}

	if name, ok := body["name"].(string); ok {
		payload.Name = strings.TrimSpace(name)
	}
	if payload.Name == "" {
		return nil, apierror.BadRequest("task name is required")
	}

	deadline, ok := coerceDeadline(body["deadline"])
	if !ok {
		return nil, apierror.BadRequest("task deadline is required")
	}
	payload.Deadline = deadline

	if description, ok := body["description"].(string); ok {
		payload.Description = strings.TrimSpace(description)
	}

	completed, err := parseBoolean(body["completed"], "completed")
	if err != nil {
		return nil, err
	}
	if completed != nil {
		payload.Completed = *completed
	}

	payload.AssignedUser = body["assignedUser"]
	return payload, nil
}

// ExtractUserPayload validates a decoded request body for a user write.
// Email is case-normalized to lowercase.
func ExtractUserPayload(body map[string]interface{}) (*UserPayload, error) {
	payload := &UserPayload{}

	if name, ok := body["name"].(string); ok {
		payload.Name = strings.TrimSpace(name)
	}
	if payload.Name == "" {
		return nil, apierror.BadRequest("user name is required")
	}

	if email, ok := body["email"].(string); ok {
		payload.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if payload.Email == "" {
		return nil, apierror.BadRequest("user email is required")
	}

	if raw, present := body["pendingTasks"]; present {
		if _, ok := raw.([]interface{}); !ok {
			return nil, apierror.BadRequest("pendingTasks must be an array")
		}
		payload.PendingTasks = raw
		payload.HasPendingTasks = true
	}

	return payload, nil
}

// parseBoolean accepts a bool or the strings "true"/"false". A nil value
// returns nil (field absent).
func parseBoolean(value interface{}, field string) (*bool, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case bool:
		return &v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			result := true
			return &result, nil
		case "false":
			result := false
			return &result, nil
		}
	}
	return nil, apierror.BadRequest(fmt.Sprintf("invalid boolean value for %s", field))
}

// deadline layouts tried for string input, most specific first.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerceDeadline accepts a timestamp as an RFC3339-style string, a date
// string, or an epoch number. Numbers below 1e12 are seconds, larger ones
// milliseconds. Returns false when no usable timestamp is present.
func coerceDeadline(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case float64:
		return epochToTime(v)
	case string:
		str := strings.TrimSpace(v)
		if str == "" {
			return time.Time{}, false
		}
		if numeric, err := strconv.ParseFloat(str, 64); err == nil {
			return epochToTime(numeric)
		}
		for _, layout := range deadlineLayouts {
			if parsed, err := time.Parse(layout, str); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func epochToTime(value float64) (time.Time, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return time.Time{}, false
	}
	millis := value
	if millis < 1e12 {
		millis *= 1000
	}
	return time.UnixMilli(int64(millis)).UTC(), true
}
