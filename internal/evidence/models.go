package evidence

import "time"

// Platform identifies the device operating system.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformUnknown Platform = "unknown"
)

// Role is the declared relationship of the device owner to the dispute.
type Role string

const (
	RoleParent  Role = "parent"
	RoleChild   Role = "child"
	RoleUnknown Role = "unknown"
)

// DeviceProfile describes one extraction. Created once per extraction and
// immutable thereafter.
type DeviceProfile struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	Platform      Platform  `json:"platform"`
	Role          Role      `json:"role"`
	OwnerName     string    `json:"owner_name"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	IMEI          string    `json:"imei,omitempty"`
	Serial        string    `json:"serial,omitempty"`
	ObservedStart time.Time `json:"observed_start,omitzero"`
	ObservedEnd   time.Time `json:"observed_end,omitzero"`
}

// Message is one parser-normalized message record. Sender and Recipient are
// raw phone strings; canonicalization happens in the identity package.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	SourceApp string    `json:"source_app,omitempty"`
	Outgoing  bool      `json:"outgoing"`
	HasMedia  bool      `json:"has_media,omitempty"`
}

// Contact is one parser-normalized contact record.
type Contact struct {
	DisplayName string   `json:"display_name"`
	Phones      []string `json:"phones"`
	Email       string   `json:"email,omitempty"`
}

// Call is one parser-normalized call log record.
type Call struct {
	Caller          string    `json:"caller"`
	Callee          string    `json:"callee"`
	Timestamp       time.Time `json:"timestamp,omitzero"`
	DurationSeconds int       `json:"duration_seconds"`
	Outgoing        bool      `json:"outgoing"`
}

// Snapshot is the full parsed evidence set for one device.
type Snapshot struct {
	Profile  DeviceProfile `json:"profile"`
	Messages []Message     `json:"messages"`
	Contacts []Contact     `json:"contacts"`
	Calls    []Call        `json:"calls"`
}

// TimestampedMessages returns the messages usable for fingerprint and
// timeline work, skipping records without a timestamp.
func (s *Snapshot) TimestampedMessages() []Message {
	out := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if !m.Timestamp.IsZero() {
			out = append(out, m)
		}
	}
	return out
}
