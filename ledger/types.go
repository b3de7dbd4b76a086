// Package ledger is a typed façade over the ledger gRPC API, grounded on
// the teacher's runtime/registry.GRPCClientAdapter pattern: an interface the
// rest of the module depends on, plus one concrete implementation wrapping
// a gRPC client connection with hand-written method calls. Connection
// dialing/pooling is out of scope; this
// package only shapes the RPC surface and its resilience wrapping.
package ledger

import "github.com/daml-lf/bridge/codec"

// Party is a ledger-allocated party identifier plus its display metadata.
type Party struct {
	Party       string
	DisplayName string
	IsLocal     bool
}

// TemplateID identifies a template by its fully-qualified coordinates, the
// form ledger commands and events carry it in.
type TemplateID struct {
	PackageID string
	ModulePath []string
	Entity    string
}

// CommandKind discriminates the variants of Command.
type CommandKind int

const (
	CommandCreate CommandKind = iota
	CommandExercise
	CommandExerciseByKey
	CommandCreateAndExercise
	CommandArchive
)

// Command is a single ledger command, tagged by Kind. Exactly the fields
// relevant to Kind are populated.
type Command struct {
	Kind CommandKind

	TemplateID TemplateID

	// CreatePayload holds the contract argument for Create and
	// CreateAndExercise commands.
	CreatePayload codec.Value

	// ContractID identifies the contract an Exercise or Archive command
	// targets.
	ContractID string

	// Key holds the contract key for an ExerciseByKey command.
	Key codec.Value

	// Choice and ChoiceArgument are populated for Exercise, ExerciseByKey
	// and CreateAndExercise commands.
	Choice         string
	ChoiceArgument codec.Value
}

// Commands is a single ledger submission: one or more Commands executed
// atomically, submitted on behalf of ActAs and visible to ReadAs.
type Commands struct {
	CommandID string
	ActAs     []string
	ReadAs    []string
	Commands  []Command
}

// EventKind discriminates the variants of Event.
type EventKind int

const (
	EventCreated EventKind = iota
	EventExercised
)

// Event is a single ledger transaction event, tagged by Kind.
type Event struct {
	Kind EventKind

	EventID    string
	ContractID string
	TemplateID TemplateID

	// Created holds the fields populated when Kind is EventCreated.
	Created *CreatedEvent

	// Exercised holds the fields populated when Kind is EventExercised.
	Exercised *ExercisedEvent
}

// CreatedEvent is the payload of a Created ledger event.
type CreatedEvent struct {
	Payload       codec.Value
	Signatories   []string
	Observers     []string
	AgreementText string
}

// ExercisedEvent is the payload of an Exercised ledger event.
type ExercisedEvent struct {
	Choice         string
	ChoiceArgument codec.Value
	ExerciseResult codec.Value
	Consuming      bool
	ChildEventIDs  []string
	ActingParties  []string
}

// Transaction is the ledger's flat view of a committed transaction: events
// in ledger order, with no tree structure.
type Transaction struct {
	TransactionID string
	Events        []Event
}

// TransactionTree is the ledger's causal view of a committed transaction:
// root event ids plus every event keyed by id, so a consumer can walk the
// tree from roots to their descendants.
type TransactionTree struct {
	TransactionID string
	RootEventIDs  []string
	EventsByID    map[string]Event
}

// TransactionFilter scopes a get_transactions/get_transaction_trees stream
// to a set of parties; it carries no per-party template id filter.
type TransactionFilter struct {
	Parties []string
}
