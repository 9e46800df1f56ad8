package gateway

import (
	"fmt"
	"strings"
)

// Status is the phase of a gateway session
type Status int

const (
	Unauthenticated Status = iota
	Loading
	Authenticated
	Failed
)

var statusNames = [...]string{"unauthenticated", "loading", "authenticated", "error"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if strings.EqualFold(name, string(text)) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown session status %q", text)
}

// SessionState is what clients observe of the session. Message is set for Failed.
type SessionState struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Messages shown for failed sign in and sign up attempts
const (
	MessageMissingFields  = "Please fill all fields"
	MessageAuthFailed     = "Authentication failed"
	MessageRegisterFailed = "Registration failed"
)
