package api

import (
	"context"
	"net/url"

	"github.com/nhle/mailterm/internal/model"
)

// Credentials is the body of POST /login.
type Credentials struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// Registration is the body of POST /usuarios.
type Registration struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// UserUpdate is the body of PUT /usuarios. The email cannot change.
type UserUpdate struct {
	Nome  string `json:"nome"`
	Senha string `json:"senha"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// UserResponse wraps the profile of the current user.
type UserResponse struct {
	Usuario *model.User `json:"usuario"`
}

// DraftResponse wraps a single draft. Rascunho is nil when the server did
// not confirm the write.
type DraftResponse struct {
	Rascunho *model.Draft `json:"rascunho"`
}

// DraftsResponse wraps the draft list.
type DraftsResponse struct {
	Rascunhos []model.Draft `json:"rascunhos"`
}

// MailResponse wraps a single message.
type MailResponse struct {
	Email *model.Mail `json:"email"`
}

// MailsResponse wraps the message list.
type MailsResponse struct {
	Emails []model.Mail `json:"emails"`
}

func draftPath(id model.ID) string {
	return "/rascunhos/" + url.PathEscape(id.String())
}

func mailPath(id model.ID) string {
	return "/emails/" + url.PathEscape(id.String())
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	var resp LoginResponse
	err := c.Post(ctx, "/login", creds, &resp)
	return resp, err
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/logout", nil, nil)
}

// CreateUser registers a new account.
func (c *Client) CreateUser(ctx context.Context, reg Registration) error {
	return c.Post(ctx, "/usuarios", reg, nil)
}

// GetUser fetches the profile of the authenticated user.
func (c *Client) GetUser(ctx context.Context) (UserResponse, error) {
	var resp UserResponse
	err := c.Get(ctx, "/usuarios", &resp)
	return resp, err
}

// UpdateUser changes the name and password of the authenticated user.
func (c *Client) UpdateUser(ctx context.Context, upd UserUpdate) error {
	return c.Put(ctx, "/usuarios", upd, nil)
}

// DeleteUser removes the authenticated account.
func (c *Client) DeleteUser(ctx context.Context) error {
	return c.Delete(ctx, "/usuarios", nil)
}

// ListDrafts fetches the drafts of the authenticated user.
func (c *Client) ListDrafts(ctx context.Context) (DraftsResponse, error) {
	var resp DraftsResponse
	err := c.Get(ctx, "/rascunhos", &resp)
	return resp, err
}

// GetDraft fetches one draft.
func (c *Client) GetDraft(ctx context.Context, id model.ID) (DraftResponse, error) {
	var resp DraftResponse
	err := c.Get(ctx, draftPath(id), &resp)
	return resp, err
}

// CreateDraft stores a new draft.
func (c *Client) CreateDraft(ctx context.Context, form model.MailForm) (DraftResponse, error) {
	var resp DraftResponse
	err := c.Post(ctx, "/rascunhos", form, &resp)
	return resp, err
}

// UpdateDraft overwrites an existing draft.
func (c *Client) UpdateDraft(ctx context.Context, id model.ID, form model.MailForm) (DraftResponse, error) {
	var resp DraftResponse
	err := c.Put(ctx, draftPath(id), form, &resp)
	return resp, err
}

// DeleteDraft removes a draft.
func (c *Client) DeleteDraft(ctx context.Context, id model.ID) error {
	return c.Delete(ctx, draftPath(id), nil)
}

// ListMails fetches the mailbox listing.
func (c *Client) ListMails(ctx context.Context) (MailsResponse, error) {
	var resp MailsResponse
	err := c.Get(ctx, "/emails", &resp)
	return resp, err
}

// GetMail fetches one message.
func (c *Client) GetMail(ctx context.Context, id model.ID) (MailResponse, error) {
	var resp MailResponse
	err := c.Get(ctx, mailPath(id), &resp)
	return resp, err
}

// SendMail sends a new message directly, without a draft.
func (c *Client) SendMail(ctx context.Context, form model.MailForm) error {
	return c.Post(ctx, "/emails", form, nil)
}

// SendDraft promotes the draft id to a sent message.
func (c *Client) SendDraft(ctx context.Context, id model.ID) error {
	return c.Post(ctx, mailPath(id), nil, nil)
}
