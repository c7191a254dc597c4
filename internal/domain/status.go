package domain

import "strings"

// Result codes returned by the payment status endpoint
const (
	ResultCodePending    = "pending"
	ResultCodeAuthorised = "authorised"
	ResultCodeRefused    = "refused"
	ResultCodeError      = "error"
	ResultCodeCancelled  = "cancelled"
	ResultCodeReceived   = "received"
)

// StatusResponse is the outcome of one status request for an asynchronous payment action
type StatusResponse struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	ResultCode string `json:"resultCode" yaml:"resultCode"`
	Payload    string `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// IsFinal returns true if the status will not change anymore.
// Every result code other than pending is final.
func (s StatusResponse) IsFinal() bool {
	return !strings.EqualFold(s.ResultCode, ResultCodePending)
}

// IsAuthorised returns true if the payment was authorised
func (s StatusResponse) IsAuthorised() bool {
	return strings.EqualFold(s.ResultCode, ResultCodeAuthorised)
}

// IsRefused returns true if the payment was refused
func (s StatusResponse) IsRefused() bool {
	return strings.EqualFold(s.ResultCode, ResultCodeRefused)
}

// HasPayload returns true if the response carries a details payload
func (s StatusResponse) HasPayload() bool {
	return s.Payload != ""
}
