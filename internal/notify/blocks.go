package notify

import (
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/harshad-lohande/agentic-sales-copilot/internal/model"
)

// Action and callback identifiers round-tripped through Slack interactions.
const (
	ActionApproveSend = "approve_send"
	ActionEditSend    = "edit_send"
	ActionDiscard     = "discard"

	CallbackEditModal = "submit_edited_email"

	EditReplyBlockID  = "edited_reply_block"
	EditReplyActionID = "edited_reply_input"
)

// ReviewNotification carries everything the review message renders.
type ReviewNotification struct {
	SenderName    string
	ProspectEmail string
	Subject       string
	Verdict       model.ClassificationVerdict
	Decision      model.PendingDecision
}

// ReviewBlocks renders the interactive review message. The pending decision
// is embedded as JSON in the approve and edit button values, so the decision
// handler needs no server-side session.
func ReviewBlocks(n ReviewNotification) ([]slack.Block, error) {
	payload, err := json.Marshal(n.Decision)
	if err != nil {
		return nil, fmt.Errorf("marshal decision payload: %w", err)
	}
	value := string(payload)

	approve := slack.NewButtonBlockElement(ActionApproveSend, value,
		slack.NewTextBlockObject(slack.PlainTextType, "Approve & Send", false, false))
	approve.Style = slack.StylePrimary

	edit := slack.NewButtonBlockElement(ActionEditSend, value,
		slack.NewTextBlockObject(slack.PlainTextType, "Edit & Send", false, false))

	discard := slack.NewButtonBlockElement(ActionDiscard, "discard",
		slack.NewTextBlockObject(slack.PlainTextType, "Discard", false, false))
	discard.Style = slack.StyleDanger

	return []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, ":email: New Email Reply", true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*From:*\n%s", n.SenderName), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Email:*\n<mailto:%s|%s>", n.ProspectEmail, n.ProspectEmail), false, false),
		}, nil),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Subject:*\n%s", n.Subject), false, false),
		}, nil),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Classification:*\n`%s`", n.Verdict.Classification), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Summary:*\n%s", n.Verdict.Summary), false, false),
		}, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Suggested Draft Reply:*\n```%s```", n.Verdict.DraftReply), false, false),
			nil, nil),
		slack.NewDividerBlock(),
		slack.NewActionBlock("review_actions", approve, edit, discard),
	}, nil
}

// ConfirmationBlocks replaces the action buttons on the original message
// with a footer naming who resolved the review.
func ConfirmationBlocks(original []slack.Block, footer string) []slack.Block {
	blocks := original
	if len(blocks) > 0 {
		if _, ok := blocks[len(blocks)-1].(*slack.ActionBlock); ok {
			blocks = blocks[:len(blocks)-1]
		}
	}
	return append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, footer, false, false)))
}

func ApprovedFooter(userName string) string {
	return fmt.Sprintf(":white_check_mark: Approved and sent by @%s", userName)
}

func DiscardedFooter(userName string) string {
	return fmt.Sprintf(":wastebasket: Discarded by @%s", userName)
}

// EditSentBlocks is the terminal render after an edited reply is sent. The
// edited body is deliberately not echoed back into the channel.
func EditSentBlocks(prospectEmail, userName string) []slack.Block {
	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf(":white_check_mark: *Edited reply sent to %s by @%s*", prospectEmail, userName),
				false, false),
			nil, nil),
	}
}

// EditModalMetadata is round-tripped through the modal's private metadata so
// the submission handler can send and update without server-side state.
type EditModalMetadata struct {
	ProspectEmail string `json:"prospect_email"`
	ReplySubject  string `json:"reply_subject"`
	ResponseURL   string `json:"response_url"`
}

// EditModalView builds the edit-and-send modal pre-filled with the draft.
func EditModalView(decision model.PendingDecision, responseURL string) (slack.ModalViewRequest, error) {
	meta, err := json.Marshal(EditModalMetadata{
		ProspectEmail: decision.ProspectEmail,
		ReplySubject:  decision.ReplySubject,
		ResponseURL:   responseURL,
	})
	if err != nil {
		return slack.ModalViewRequest{}, fmt.Errorf("marshal modal metadata: %w", err)
	}

	input := slack.NewPlainTextInputBlockElement(nil, EditReplyActionID)
	input.Multiline = true
	input.InitialValue = decision.DraftReply

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      CallbackEditModal,
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Edit & Send Reply", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Send", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		PrivateMetadata: string(meta),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(EditReplyBlockID,
				slack.NewTextBlockObject(slack.PlainTextType, "Email Body", false, false),
				nil, input),
		}},
	}, nil
}
