package queue

type TaskType string

const (
	// TaskTypeInboundEmail runs the full reply pipeline for one inbound
	// email delivery.
	TaskTypeInboundEmail TaskType = "inbound_email"

	// TaskTypeSendEmail delivers an approved reply to the prospect.
	TaskTypeSendEmail TaskType = "send_email"

	// TaskTypeAppendHistory records a sent reply in the conversation
	// thread after delivery.
	TaskTypeAppendHistory TaskType = "append_history"
)
