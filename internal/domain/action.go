package domain

// ActionComponentData is the details payload sent back to the payments API
// once an action (await, redirect, challenge) has been completed
type ActionComponentData struct {
	Details     map[string]string `json:"details" yaml:"details"`
	PaymentData string            `json:"paymentData,omitempty" yaml:"paymentData,omitempty"`
}

// Action types handled by this kit
const (
	ActionTypeAwait    = "await"
	ActionTypeThreeDS2 = "threeDS2"
)

// AwaitAction instructs the client to wait for an out-of-band confirmation
type AwaitAction struct {
	Type              string `json:"type"`
	PaymentMethodType string `json:"paymentMethodType,omitempty"`
	PaymentData       string `json:"paymentData,omitempty"`
	URL               string `json:"url,omitempty"`
}
