package notification

import (
	"fmt"

	"devocional-backend/internal/model"
)

// TargetType enumerates the audiences a notification can address.
type TargetType string

const (
	TargetAll     TargetType = "all"
	TargetCountry TargetType = "country"
	TargetOS      TargetType = "os"
	TargetDevice  TargetType = "device"
)

// Target selects the audience for one send request. Transient, never persisted.
type Target struct {
	Type  TargetType `json:"type"`
	Value string     `json:"value,omitempty"`
}

// Validate rejects malformed selectors before any dispatch attempt.
func (t Target) Validate() error {
	switch t.Type {
	case TargetAll:
		return nil
	case TargetCountry, TargetOS, TargetDevice:
		if t.Value == "" {
			return fmt.Errorf("target %q requires a value", t.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown target type %q", t.Type)
	}
}

// Matches reports whether a subscription belongs to the target audience.
func (t Target) Matches(sub model.Subscription) bool {
	switch t.Type {
	case TargetAll:
		return true
	case TargetCountry:
		return sub.Location.Country == t.Value
	case TargetOS:
		return sub.Device.OS == t.Value
	case TargetDevice:
		return sub.DeviceID == t.Value
	default:
		return false
	}
}

// String renders the selector for audit entries.
func (t Target) String() string {
	if t.Type == TargetAll {
		return "all"
	}
	return fmt.Sprintf("%s:%s", t.Type, t.Value)
}
