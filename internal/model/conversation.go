package model

import "time"

// Message is one turn in a conversation thread. Messages are immutable once
// appended and belong exclusively to their thread.
type Message struct {
	Sender    string    `json:"sender"` // one of the Sender* role constants
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Sender role constants. Approved and edited replies are both recorded as
// the sales rep; drafts never enter the history on their own.
const (
	SenderProspect = "prospect"
	SenderSalesRep = "sales_rep"
)

// ConversationThread is the durable record of one email conversation,
// identified by (prospect email, normalized subject). History is append-only
// and ordered by insertion; threads are created lazily and never deleted.
type ConversationThread struct {
	ProspectEmail     string
	NormalizedSubject string
	History           []Message
	EnrichmentDone    bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
