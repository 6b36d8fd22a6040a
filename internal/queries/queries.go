// Package queries declares the cached reads the screens mount.
package queries

import (
	"context"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/query"
)

// Reader is the part of the API client the queries use.
type Reader interface {
	ListMails(ctx context.Context) (api.MailsResponse, error)
	ListDrafts(ctx context.Context) (api.DraftsResponse, error)
	GetUser(ctx context.Context) (api.UserResponse, error)
	GetDraft(ctx context.Context, id model.ID) (api.DraftResponse, error)
	GetMail(ctx context.Context, id model.ID) (api.MailResponse, error)
}

// Cache keys.
var (
	InboxKey       = query.Key{"inbox"}
	DraftsKey      = query.Key{"drafts"}
	UserProfileKey = query.Key{"userProfile"}
	MailsKey       = query.Key{"mails"}
)

// DraftKey is the key of one draft.
func DraftKey(id model.ID) query.Key { return query.Key{"draft", id.String()} }

// MailKey is the key of one message.
func MailKey(id model.ID) query.Key { return query.Key{"mails", id.String()} }

// Inbox lists the mailbox. It stays disabled until the profile email is
// known.
func Inbox(r Reader, userEmail string) query.Descriptor {
	return query.Descriptor{
		Key:     InboxKey,
		Enabled: userEmail != "",
		Fetch: func(ctx context.Context) (any, error) {
			resp, err := r.ListMails(ctx)
			if err != nil {
				return nil, err
			}
			return resp.Emails, nil
		},
	}
}

// Drafts lists the user's drafts.
func Drafts(r Reader) query.Descriptor {
	return query.Descriptor{
		Key:     DraftsKey,
		Enabled: true,
		Fetch: func(ctx context.Context) (any, error) {
			resp, err := r.ListDrafts(ctx)
			if err != nil {
				return nil, err
			}
			return resp.Rascunhos, nil
		},
	}
}

// UserProfile fetches the authenticated user's profile. The result is a
// *model.User, nil when the server sent none.
func UserProfile(r Reader) query.Descriptor {
	return query.Descriptor{
		Key:     UserProfileKey,
		Enabled: true,
		Fetch: func(ctx context.Context) (any, error) {
			resp, err := r.GetUser(ctx)
			if err != nil {
				return nil, err
			}
			return resp.Usuario, nil
		},
	}
}

// Draft fetches one draft; disabled without an id.
func Draft(r Reader, id model.ID) query.Descriptor {
	return query.Descriptor{
		Key:     DraftKey(id),
		Enabled: id != "",
		Fetch: func(ctx context.Context) (any, error) {
			resp, err := r.GetDraft(ctx, id)
			if err != nil {
				return nil, err
			}
			return resp.Rascunho, nil
		},
	}
}

// Mail fetches one message; disabled without an id.
func Mail(r Reader, id model.ID) query.Descriptor {
	return query.Descriptor{
		Key:     MailKey(id),
		Enabled: id != "",
		Fetch: func(ctx context.Context) (any, error) {
			resp, err := r.GetMail(ctx, id)
			if err != nil {
				return nil, err
			}
			return resp.Email, nil
		},
	}
}
