package model

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// MailStatusRead is the status the API assigns to mail already opened.
const MailStatusRead = "lido"

// ID is a record identifier issued by the API. The API may encode it as a
// JSON string or number; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts string, number and null encodings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("decoding id %s: not a string or number", data)
	}
	*id = ID(data)
	return nil
}

// String returns the identifier as text.
func (id ID) String() string { return string(id) }

// Mail is a sent or received message as returned by /emails.
type Mail struct {
	EmailID           ID     `json:"emailId,omitempty"`
	EmailRemetente    string `json:"emailRemetente"`
	EmailDestinatario string `json:"emailDestinatario"`
	Assunto           string `json:"assunto"`
	Corpo             string `json:"corpo"`
	DataEnvio         string `json:"dataEnvio,omitempty"`
	Status            string `json:"status,omitempty"`
}

// IsRead reports whether the API marked the message as opened.
func (m Mail) IsRead() bool {
	return m.Status == MailStatusRead
}

// Draft is an unsent, editable message as returned by /rascunhos.
type Draft struct {
	RascunhoID        ID     `json:"rascunhoId,omitempty"`
	EmailRemetente    string `json:"emailRemetente,omitempty"`
	EmailDestinatario string `json:"emailDestinatario"`
	Assunto           string `json:"assunto"`
	Corpo             string `json:"corpo"`
}

// MailForm is the editable part of a draft or outgoing message.
type MailForm struct {
	EmailDestinatario string `json:"emailDestinatario"`
	Assunto           string `json:"assunto"`
	Corpo             string `json:"corpo"`
}

// Form returns the editable fields of the draft.
func (d Draft) Form() MailForm {
	return MailForm{
		EmailDestinatario: d.EmailDestinatario,
		Assunto:           d.Assunto,
		Corpo:             d.Corpo,
	}
}

// User is the account profile returned by /usuarios.
type User struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha,omitempty"`
}
