package service_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/slack-go/slack"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/notify"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/queue"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
)

func decisionValue() string {
	raw, _ := json.Marshal(model.PendingDecision{
		ProspectEmail: "jane.doe@acme.example",
		DraftReply:    "Hi Jane, happy to help.",
		ReplySubject:  "Re: Quick question",
	})
	return string(raw)
}

func blockActionCallback(actionID, value string) slack.InteractionCallback {
	cb := slack.InteractionCallback{
		Type:        slack.InteractionTypeBlockActions,
		ResponseURL: "https://hooks.slack.example/response",
		TriggerID:   "trigger-1",
	}
	cb.User.Name = "alice"
	cb.ActionCallback.BlockActions = []*slack.BlockAction{
		{ActionID: actionID, Value: value},
	}
	blocks, _ := notify.ReviewBlocks(notify.ReviewNotification{
		SenderName:    "Jane Doe",
		ProspectEmail: "jane.doe@acme.example",
		Subject:       "Quick question",
		Decision:      model.PendingDecision{ProspectEmail: "jane.doe@acme.example"},
	})
	cb.Message.Blocks = slack.Blocks{BlockSet: blocks}
	return cb
}

var _ = Describe("DecisionService", func() {
	var (
		producer *mockProducer
		notifier *mockNotifier
		svc      service.DecisionService
	)

	BeforeEach(func() {
		producer = &mockProducer{}
		notifier = &mockNotifier{}
		svc = service.NewDecisionService(producer, notifier, nil)
	})

	Describe("approve", func() {
		It("enqueues the send and the history append, then confirms", func() {
			var replacedURL string
			var replacedBlocks []slack.Block
			notifier.replaceFn = func(ctx context.Context, url string, blocks []slack.Block) error {
				replacedURL = url
				replacedBlocks = blocks
				return nil
			}

			cb := blockActionCallback(notify.ActionApproveSend, decisionValue())
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-1", "trace-1")).To(Succeed())

			Expect(producer.enqueued).To(HaveLen(2))
			send := producer.enqueued[0]
			Expect(send.TaskType).To(Equal(queue.TaskTypeSendEmail))
			Expect(send.ProspectEmail).To(Equal("jane.doe@acme.example"))
			Expect(send.Subject).To(Equal("Re: Quick question"))
			Expect(send.CorrelationID).To(Equal("corr-1"))

			record := producer.enqueued[1]
			Expect(record.TaskType).To(Equal(queue.TaskTypeAppendHistory))
			Expect(record.NormalizedSubject).To(Equal("Quick question"))
			Expect(record.SenderRole).To(Equal(model.SenderSalesRep))

			Expect(replacedURL).To(Equal("https://hooks.slack.example/response"))
			raw, _ := json.Marshal(replacedBlocks)
			Expect(string(raw)).To(ContainSubstring("Approved and sent by @alice"))
		})

		It("fails when the send cannot be enqueued", func() {
			producer.enqueueFn = func(ctx context.Context, msg queue.TaskMessage) error {
				return errors.New("redis down")
			}
			cb := blockActionCallback(notify.ActionApproveSend, decisionValue())
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-1", "")).NotTo(Succeed())
		})

		It("rejects a malformed decision payload", func() {
			cb := blockActionCallback(notify.ActionApproveSend, "not-json")
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-1", "")).NotTo(Succeed())
		})
	})

	Describe("edit", func() {
		It("opens the modal with the draft and response URL", func() {
			var openedTrigger string
			var openedView slack.ModalViewRequest
			notifier.openEditModalFn = func(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
				openedTrigger = triggerID
				openedView = view
				return nil
			}

			cb := blockActionCallback(notify.ActionEditSend, decisionValue())
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-1", "")).To(Succeed())

			Expect(openedTrigger).To(Equal("trigger-1"))
			Expect(producer.enqueued).To(BeEmpty())

			var meta notify.EditModalMetadata
			Expect(json.Unmarshal([]byte(openedView.PrivateMetadata), &meta)).To(Succeed())
			Expect(meta.ResponseURL).To(Equal("https://hooks.slack.example/response"))
			Expect(meta.ReplySubject).To(Equal("Re: Quick question"))
		})
	})

	Describe("discard", func() {
		It("replaces the message without enqueueing anything", func() {
			var replacedBlocks []slack.Block
			notifier.replaceFn = func(ctx context.Context, url string, blocks []slack.Block) error {
				replacedBlocks = blocks
				return nil
			}

			cb := blockActionCallback(notify.ActionDiscard, "discard")
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-1", "")).To(Succeed())

			Expect(producer.enqueued).To(BeEmpty())
			raw, _ := json.Marshal(replacedBlocks)
			Expect(string(raw)).To(ContainSubstring("Discarded by @alice"))
		})
	})

	Describe("view submission", func() {
		viewCallback := func(edited string) slack.InteractionCallback {
			meta, _ := json.Marshal(notify.EditModalMetadata{
				ProspectEmail: "jane.doe@acme.example",
				ReplySubject:  "Re: Quick question",
				ResponseURL:   "https://hooks.slack.example/response",
			})
			cb := slack.InteractionCallback{Type: slack.InteractionTypeViewSubmission}
			cb.User.Name = "alice"
			cb.View.CallbackID = notify.CallbackEditModal
			cb.View.PrivateMetadata = string(meta)
			cb.View.State = &slack.ViewState{
				Values: map[string]map[string]slack.BlockAction{
					notify.EditReplyBlockID: {
						notify.EditReplyActionID: {Value: edited},
					},
				},
			}
			return cb
		}

		It("sends the edited body and confirms without echoing it", func() {
			var replacedBlocks []slack.Block
			notifier.replaceFn = func(ctx context.Context, url string, blocks []slack.Block) error {
				Expect(url).To(Equal("https://hooks.slack.example/response"))
				replacedBlocks = blocks
				return nil
			}

			cb := viewCallback("Hi Jane, here is the revised plan.")
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-2", "")).To(Succeed())

			Expect(producer.enqueued).To(HaveLen(2))
			Expect(producer.enqueued[0].Body).To(Equal("Hi Jane, here is the revised plan."))
			Expect(producer.enqueued[1].TaskType).To(Equal(queue.TaskTypeAppendHistory))

			raw, _ := json.Marshal(replacedBlocks)
			Expect(string(raw)).To(ContainSubstring("Edited reply sent to jane.doe@acme.example by @alice"))
			Expect(string(raw)).NotTo(ContainSubstring("revised plan"))
		})

		It("rejects an empty edited body", func() {
			cb := viewCallback("")
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-2", "")).NotTo(Succeed())
		})

		It("ignores unknown callbacks", func() {
			cb := viewCallback("whatever")
			cb.View.CallbackID = "something_else"
			Expect(svc.HandleInteraction(context.Background(), cb, "corr-2", "")).To(Succeed())
			Expect(producer.enqueued).To(BeEmpty())
		})
	})

	It("ignores interaction types it does not handle", func() {
		cb := slack.InteractionCallback{Type: slack.InteractionTypeShortcut}
		Expect(svc.HandleInteraction(context.Background(), cb, "corr-1", "")).To(Succeed())
	})
})
