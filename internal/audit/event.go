package audit

import "time"

// Record names what a consent event was written for.
type Record string

const (
	RecordUserPolicy Record = "user_policy"
	RecordSignature  Record = "signature"
)

// ConsentEvent is one entry of the consent trail. Signatures are never copied
// into the trail, only their digest.
type ConsentEvent struct {
	ID         string `json:"id"`
	TraceID    string `json:"trace_id"`
	UserID     string `json:"user_id"`
	ActorID    string `json:"actor_id"` // external identity that made the change
	Record     Record `json:"record"`
	PolicyID   string `json:"policy_id,omitempty"`
	PolicyKind string `json:"policy_kind,omitempty"`

	Signed   bool   `json:"signed"`
	Rejected bool   `json:"rejected"`
	Digest   string `json:"digest,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
