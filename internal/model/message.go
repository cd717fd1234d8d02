package model

import "encoding/json"

// MsgType identifies a message on the page/panel/controller boundary.
type MsgType string

const (
	MsgExtractData         MsgType = "extractData"
	MsgOpenPanelGesture    MsgType = "openPanelWithGesture"
	MsgFindExistingContact MsgType = "findExistingContact"
	MsgImportCurrentPage   MsgType = "importCurrentPage"
	MsgImportBulk          MsgType = "importBulk"
	MsgCheckAuth           MsgType = "checkAuth"
	MsgGetHistory          MsgType = "getHistory"
	MsgGetPreferences      MsgType = "getPreferences"
	MsgSetPreferences      MsgType = "setPreferences"
)

// Message is a request envelope on the message boundary. Payload is
// decoded per message type by the handler.
type Message struct {
	Type    MsgType         `json:"type"`
	TabID   string          `json:"tab_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope is the typed response every handler resolves with. An
// internal exception never escapes the dispatcher; it is converted into
// an error envelope so the response channel always resolves.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKMessage wraps data and a human-readable message in a success envelope.
func OKMessage(msg string, data any) Envelope {
	return Envelope{Success: true, Message: msg, Data: data}
}

// Fail builds an error envelope with a machine-readable code.
func Fail(code, errMsg string) Envelope {
	return Envelope{Success: false, Code: code, Error: errMsg}
}
