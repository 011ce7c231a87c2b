package model

// Classification is the closed set of outcomes the classifier may produce.
type Classification string

const (
	ClassificationPositiveInterest Classification = "positive_interest"
	ClassificationQuestion         Classification = "question"
	ClassificationObjection        Classification = "objection"
	ClassificationNotInterested    Classification = "not_interested"
	ClassificationUnsubscribe      Classification = "unsubscribe"
)

// Qualifying reports whether this outcome triggers the enrichment sub-pipeline.
func (c Classification) Qualifying() bool {
	return c == ClassificationPositiveInterest || c == ClassificationQuestion
}

// Valid reports whether the value belongs to the closed classification set.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationPositiveInterest, ClassificationQuestion, ClassificationObjection,
		ClassificationNotInterested, ClassificationUnsubscribe:
		return true
	}
	return false
}

// ClassificationVerdict is the classifier's structured output for one inbound
// message. It is ephemeral: only DraftReply may survive, copied into the thread
// history once a human approves it.
type ClassificationVerdict struct {
	Classification Classification `json:"classification"`
	Summary        string         `json:"summary"`
	DraftReply     string         `json:"draft_reply"`
}

// Prospect holds the static reference attributes looked up during enrichment.
type Prospect struct {
	FirstName string
	LastName  string
	Company   string
	Position  string
	Email     string
}

// PendingDecision is the payload round-tripped through the human-interaction
// channel between "notification emitted" and "decision received". It is never
// stored server-side; it must carry everything needed to act without a lookup.
type PendingDecision struct {
	ProspectEmail string `json:"prospect_email"`
	DraftReply    string `json:"draft_reply"`
	ReplySubject  string `json:"reply_subject"`
}
