package models

import "time"

// AuthorRole identifies who wrote a chat message. The role is derived from
// the author identifier against the configured set of known non-visitor
// identities; an unknown or absent author is a visitor.
type AuthorRole string

const (
	RoleVisitor  AuthorRole = "visitor"
	RoleOperator AuthorRole = "operator"
	RoleBot      AuthorRole = "bot"
	RoleSystem   AuthorRole = "system"
)

// Message is a single chat message as fetched from the CRM. Immutable once
// fetched.
type Message struct {
	ID             int64
	ConversationID int64
	AuthorID       int64 // 0 when the message is anonymous (no author record)
	AuthorName     string
	Timestamp      time.Time
	RawBody        string
	// FetchIndex preserves the original fetch order. It breaks ties when
	// two messages carry the same timestamp.
	FetchIndex int
}

// Conversation is one livechat session with its full message list.
// Read-only to the analysis core.
type Conversation struct {
	ID           int64
	StartedAt    time.Time
	OperatorName string
	Country      string
	IsActive     bool
	Messages     []Message
}
