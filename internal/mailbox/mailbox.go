// Package mailbox holds the compose, send and reply rules shared by the
// mail screens.
package mailbox

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/model"
)

// ReplyPrefix marks the subject of a reply.
const ReplyPrefix = "RE: "

// quoteRule separates a reply from the quoted original.
var quoteRule = strings.Repeat("-", 20)

var recipientPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)

// ErrDraftNotConfirmed is returned when the server accepted a draft write
// but did not echo the draft back.
var ErrDraftNotConfirmed = draftNotConfirmed{}

type draftNotConfirmed struct{}

func (draftNotConfirmed) Error() string       { return "draft write was not confirmed" }
func (draftNotConfirmed) UserMessage() string { return "Falha ao salvar rascunho." }

// SendEnabled reports whether a message may be sent: every field is filled
// in and the recipient looks like an address.
func SendEnabled(recipient, subject, body string) bool {
	if recipient == "" || subject == "" || body == "" {
		return false
	}
	return recipientPattern.MatchString(recipient)
}

// BuildReply answers original with body, quoting the original under a
// header block. The subject gets ReplyPrefix once.
func BuildReply(original model.Mail, body string) model.MailForm {
	subject := original.Assunto
	if !strings.HasPrefix(subject, ReplyPrefix) {
		subject = ReplyPrefix + subject
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(quoteRule)
	fmt.Fprintf(&b, "\nDE: %s\nPARA: %s\nASSUNTO: %s\nDATA: %s\n\n",
		original.EmailRemetente, original.EmailDestinatario, original.Assunto, original.DataEnvio)
	b.WriteString(original.Corpo)

	return model.MailForm{
		EmailDestinatario: original.EmailRemetente,
		Assunto:           subject,
		Corpo:             b.String(),
	}
}

// SentBy returns the messages whose sender is email.
func SentBy(mails []model.Mail, email string) []model.Mail {
	if email == "" {
		return nil
	}
	var out []model.Mail
	for _, m := range mails {
		if strings.EqualFold(m.EmailRemetente, email) {
			out = append(out, m)
		}
	}
	return out
}

// API is the part of the client the Composer drives.
type API interface {
	CreateDraft(ctx context.Context, form model.MailForm) (api.DraftResponse, error)
	UpdateDraft(ctx context.Context, id model.ID, form model.MailForm) (api.DraftResponse, error)
	DeleteDraft(ctx context.Context, id model.ID) error
	SendMail(ctx context.Context, form model.MailForm) error
	SendDraft(ctx context.Context, id model.ID) error
}

// Composer runs the compose and reply mutations.
type Composer struct {
	api API
}

// NewComposer returns a Composer over a.
func NewComposer(a API) *Composer {
	return &Composer{api: a}
}

// Save stores form, updating draftID when set and creating a draft
// otherwise. The draft echoed by the server is returned.
func (c *Composer) Save(ctx context.Context, draftID model.ID, form model.MailForm) (*model.Draft, error) {
	var (
		resp api.DraftResponse
		err  error
	)
	if draftID != "" {
		resp, err = c.api.UpdateDraft(ctx, draftID, form)
	} else {
		resp, err = c.api.CreateDraft(ctx, form)
	}
	if err != nil {
		return nil, fmt.Errorf("saving draft: %w", err)
	}
	if resp.Rascunho == nil {
		return nil, ErrDraftNotConfirmed
	}
	return resp.Rascunho, nil
}

// Send delivers form. With a draft, the draft is first overwritten with
// form and promoted only once the server confirms the write.
func (c *Composer) Send(ctx context.Context, draftID model.ID, form model.MailForm) error {
	if draftID == "" {
		if err := c.api.SendMail(ctx, form); err != nil {
			return fmt.Errorf("sending mail: %w", err)
		}
		return nil
	}

	resp, err := c.api.UpdateDraft(ctx, draftID, form)
	if err != nil {
		return fmt.Errorf("saving draft %s before send: %w", draftID, err)
	}
	if resp.Rascunho == nil {
		return ErrDraftNotConfirmed
	}
	if err := c.api.SendDraft(ctx, draftID); err != nil {
		return fmt.Errorf("sending draft %s: %w", draftID, err)
	}
	return nil
}

// Discard deletes draftID.
func (c *Composer) Discard(ctx context.Context, draftID model.ID) error {
	if err := c.api.DeleteDraft(ctx, draftID); err != nil {
		return fmt.Errorf("deleting draft %s: %w", draftID, err)
	}
	return nil
}

// Reply sends body as an answer to original.
func (c *Composer) Reply(ctx context.Context, original model.Mail, body string) error {
	if err := c.api.SendMail(ctx, BuildReply(original, body)); err != nil {
		return fmt.Errorf("replying to %s: %w", original.EmailID, err)
	}
	return nil
}
