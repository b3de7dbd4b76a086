package bridge

import (
	"encoding/json"

	"github.com/daml-lf/bridge/codec"
	"github.com/daml-lf/bridge/ledger"
	"github.com/daml-lf/bridge/lferrors"
)

// Envelope is the external JSON success shape: {status, result, warnings?}.
type Envelope struct {
	Status   int                 `json:"status"`
	Result   any                 `json:"result,omitempty"`
	Warnings map[string][]string `json:"warnings,omitempty"`
}

// ErrorEnvelope renders err (expected to be an *lferrors.Error, but any
// error is handled) as the external JSON error shape.
func ErrorEnvelope(err error) lferrors.Envelope {
	return lferrors.ToEnvelope(err)
}

// createdEventJSON is the JSON shape of a single Created event, per
// spec.md §4.D: {observers, agreementText, payload, signatories,
// contractId, templateId}.
type createdEventJSON struct {
	Observers     []string        `json:"observers"`
	AgreementText string          `json:"agreementText"`
	Payload       json.RawMessage `json:"payload"`
	Signatories   []string        `json:"signatories"`
	ContractID    string          `json:"contractId"`
	TemplateID    string          `json:"templateId"`
}

func encodeCreatedEvent(ev ledger.Event, templateID string) (createdEventJSON, error) {
	payloadJSON, err := codec.Encode(ev.Created.Payload)
	if err != nil {
		return createdEventJSON{}, err
	}
	observers := ev.Created.Observers
	if observers == nil {
		observers = []string{}
	}
	signatories := ev.Created.Signatories
	if signatories == nil {
		signatories = []string{}
	}
	return createdEventJSON{
		Observers:     observers,
		AgreementText: ev.Created.AgreementText,
		Payload:       json.RawMessage(payloadJSON),
		Signatories:   signatories,
		ContractID:    ev.ContractID,
		TemplateID:    templateID,
	}, nil
}

// archivedEventJSON is the synthetic entry appended for the contract a
// consuming root Exercised event executed on.
type archivedEventJSON struct {
	ContractID string `json:"contractId"`
	TemplateID string `json:"templateId"`
}
