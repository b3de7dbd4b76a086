package bridge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/daml-lf/bridge/codec"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/ledger"
	"github.com/daml-lf/bridge/lferrors"
)

// templateIDString renders a ledger-reported TemplateID the same way
// resolved.canonicalID renders a request-supplied one, so every templateId
// field in a response uses one consistent "package_id:module:entity" form.
func templateIDString(t ledger.TemplateID) string {
	return t.PackageID + ":" + strings.Join(t.ModulePath, ".") + ":" + t.Entity
}

func (r resolved) ledgerTemplateID() ledger.TemplateID {
	return ledger.TemplateID{PackageID: r.PackageID, ModulePath: r.ModPath, Entity: r.Data.Name}
}

func templateType(r resolved) types.Type {
	return types.MakeTyCon(r.PackageID, r.ModPath, r.Data.Name)
}

// Create implements POST /v1/create.
func (s *Server) Create(ctx context.Context, req CreateRequest, opt ledger.CallOption) (Envelope, error) {
	archive := s.Archive()

	r, err := resolveTemplate(archive, req.TemplateID)
	if err != nil {
		return Envelope{}, err
	}
	payload, err := codec.Decode(req.Payload, templateType(r), archive)
	if err != nil {
		return Envelope{}, err
	}

	cmds := ledger.Commands{Commands: []ledger.Command{{
		Kind:          ledger.CommandCreate,
		TemplateID:    r.ledgerTemplateID(),
		CreatePayload: payload,
	}}}

	tx, err := s.client.SubmitAndWaitForTransaction(ctx, cmds, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "submit create", err)
	}

	if len(tx.Events) != 1 || tx.Events[0].Kind != ledger.EventCreated {
		return Envelope{}, lferrors.New(lferrors.KindTranslation, "unexpected transaction shape: expected exactly one Created event")
	}
	created, err := encodeCreatedEvent(tx.Events[0], templateIDString(tx.Events[0].TemplateID))
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Status: 200, Result: created}, nil
}

// Exercise implements POST /v1/exercise for the plain (contractId-keyed)
// form. It rejects a request carrying both contractId and key, and a request
// carrying no contractId; routing key-only requests to ExerciseByKey is left
// to the caller.
func (s *Server) Exercise(ctx context.Context, req ExerciseRequest, opt ledger.CallOption) (Envelope, error) {
	if req.ContractID != nil && len(req.Key) > 0 {
		return Envelope{}, lferrors.New(lferrors.KindTranslation, "key and contractId fields are mutually exclusive")
	}
	if req.ContractID == nil {
		return Envelope{}, lferrors.New(lferrors.KindTranslation, "exercise request requires contractId")
	}

	archive := s.Archive()
	r, err := resolveTemplate(archive, req.TemplateID)
	if err != nil {
		return Envelope{}, err
	}
	choice, err := findChoice(r.Data, req.Choice)
	if err != nil {
		return Envelope{}, err
	}
	arg, err := codec.Decode(req.Argument, choice.ArgumentType, archive)
	if err != nil {
		return Envelope{}, err
	}

	cmds := ledger.Commands{Commands: []ledger.Command{{
		Kind:           ledger.CommandExercise,
		TemplateID:     r.ledgerTemplateID(),
		ContractID:     *req.ContractID,
		Choice:         req.Choice,
		ChoiceArgument: arg,
	}}}

	tree, err := s.client.SubmitAndWaitForTransactionTree(ctx, cmds, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "submit exercise", err)
	}
	result, err := buildExerciseResponse(tree)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Status: 200, Result: result}, nil
}

// ExerciseByKey implements the key-keyed branch of POST /v1/exercise.
func (s *Server) ExerciseByKey(ctx context.Context, req ExerciseRequest, opt ledger.CallOption) (Envelope, error) {
	if req.ContractID != nil && len(req.Key) > 0 {
		return Envelope{}, lferrors.New(lferrors.KindTranslation, "key and contractId fields are mutually exclusive")
	}
	if len(req.Key) == 0 {
		return Envelope{}, lferrors.New(lferrors.KindTranslation, "exerciseByKey request requires key")
	}

	archive := s.Archive()
	r, err := resolveTemplate(archive, req.TemplateID)
	if err != nil {
		return Envelope{}, err
	}
	if r.Data.Template.KeyType == nil {
		return Envelope{}, lferrors.Errorf(lferrors.KindTranslation, "template %s declares no contract key", r.Data.Name)
	}
	key, err := codec.Decode(req.Key, *r.Data.Template.KeyType, archive)
	if err != nil {
		return Envelope{}, err
	}
	choice, err := findChoice(r.Data, req.Choice)
	if err != nil {
		return Envelope{}, err
	}
	arg, err := codec.Decode(req.Argument, choice.ArgumentType, archive)
	if err != nil {
		return Envelope{}, err
	}

	cmds := ledger.Commands{Commands: []ledger.Command{{
		Kind:           ledger.CommandExerciseByKey,
		TemplateID:     r.ledgerTemplateID(),
		Key:            key,
		Choice:         req.Choice,
		ChoiceArgument: arg,
	}}}

	tree, err := s.client.SubmitAndWaitForTransactionTree(ctx, cmds, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "submit exerciseByKey", err)
	}
	result, err := buildExerciseResponse(tree)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Status: 200, Result: result}, nil
}

// CreateAndExercise implements POST /v1/create-and-exercise.
func (s *Server) CreateAndExercise(ctx context.Context, req CreateAndExerciseRequest, opt ledger.CallOption) (Envelope, error) {
	archive := s.Archive()
	r, err := resolveTemplate(archive, req.TemplateID)
	if err != nil {
		return Envelope{}, err
	}
	payload, err := codec.Decode(req.Payload, templateType(r), archive)
	if err != nil {
		return Envelope{}, err
	}
	choice, err := findChoice(r.Data, req.Choice)
	if err != nil {
		return Envelope{}, err
	}
	arg, err := codec.Decode(req.Argument, choice.ArgumentType, archive)
	if err != nil {
		return Envelope{}, err
	}

	cmds := ledger.Commands{Commands: []ledger.Command{{
		Kind:           ledger.CommandCreateAndExercise,
		TemplateID:     r.ledgerTemplateID(),
		CreatePayload:  payload,
		Choice:         req.Choice,
		ChoiceArgument: arg,
	}}}

	tree, err := s.client.SubmitAndWaitForTransactionTree(ctx, cmds, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "submit createAndExercise", err)
	}
	result, err := buildExerciseResponse(tree)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Status: 200, Result: result}, nil
}

// ArchiveContract implements the SPEC_FULL-added fifth request kind:
// archiving a contract directly with a ledger archive command
// (ledger.CommandArchive) rather than an exercise.
func (s *Server) ArchiveContract(ctx context.Context, req ArchiveRequest, opt ledger.CallOption) (Envelope, error) {
	archive := s.Archive()
	r, err := resolveTemplate(archive, req.TemplateID)
	if err != nil {
		return Envelope{}, err
	}

	cmds := ledger.Commands{Commands: []ledger.Command{{
		Kind:       ledger.CommandArchive,
		TemplateID: r.ledgerTemplateID(),
		ContractID: req.ContractID,
	}}}

	_, err = s.client.SubmitAndWaitForTransaction(ctx, cmds, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "submit archive", err)
	}

	return Envelope{Status: 200, Result: map[string]any{
		"archived": archivedEventJSON{ContractID: req.ContractID, TemplateID: r.canonicalID()},
	}}, nil
}

// exerciseEvent is one entry of an exercise-family response's events array:
// exactly one of Created/Archived is populated.
type exerciseEvent struct {
	Created  *createdEventJSON  `json:"created,omitempty"`
	Archived *archivedEventJSON `json:"archived,omitempty"`
}

type exerciseResponse struct {
	ExerciseResult json.RawMessage `json:"exerciseResult"`
	Events         []exerciseEvent `json:"events"`
}

// buildExerciseResponse implements spec.md §4.D's exercise/exerciseByKey/
// createAndExercise response translation: the first root event must be
// Exercised; its choice result is encoded as-is; every Created tree-event is
// emitted in ledger order, followed by a single synthetic archived entry if
// the root Exercised event was consuming.
func buildExerciseResponse(tree *ledger.TransactionTree) (exerciseResponse, error) {
	if len(tree.RootEventIDs) == 0 {
		return exerciseResponse{}, lferrors.New(lferrors.KindTranslation, "transaction tree has no root events")
	}
	root, ok := tree.EventsByID[tree.RootEventIDs[0]]
	if !ok || root.Kind != ledger.EventExercised {
		return exerciseResponse{}, lferrors.New(lferrors.KindTranslation, "first root event is not an Exercised event")
	}

	resultJSON, err := codec.Encode(root.Exercised.ExerciseResult)
	if err != nil {
		return exerciseResponse{}, err
	}

	var events []exerciseEvent
	for _, id := range tree.RootEventIDs {
		walkCreatedEvents(tree, id, &events)
	}
	if root.Exercised.Consuming {
		events = append(events, exerciseEvent{Archived: &archivedEventJSON{
			ContractID: root.ContractID,
			TemplateID: templateIDString(root.TemplateID),
		}})
	}

	return exerciseResponse{ExerciseResult: json.RawMessage(resultJSON), Events: events}, nil
}

// walkCreatedEvents recursively collects every Created tree-event reachable
// from eventID, in ledger order, never emitting archives for contracts
// consumed transitively by the choice (spec.md's deliberate simplification).
func walkCreatedEvents(tree *ledger.TransactionTree, eventID string, out *[]exerciseEvent) {
	ev, ok := tree.EventsByID[eventID]
	if !ok {
		return
	}
	switch ev.Kind {
	case ledger.EventCreated:
		created, err := encodeCreatedEvent(ev, templateIDString(ev.TemplateID))
		if err != nil {
			return
		}
		*out = append(*out, exerciseEvent{Created: &created})
	case ledger.EventExercised:
		for _, childID := range ev.Exercised.ChildEventIDs {
			walkCreatedEvents(tree, childID, out)
		}
	}
}

// FetchParties implements POST /v1/parties: pass-through to the ledger,
// silently dropping unknown ids and reporting them under
// warnings.unknownParties.
func (s *Server) FetchParties(ctx context.Context, ids []string, opt ledger.CallOption) (Envelope, error) {
	found, unknown, err := s.client.FetchParties(ctx, ids, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "fetch parties", err)
	}
	env := Envelope{Status: 200, Result: found}
	if len(unknown) > 0 {
		env.Warnings = map[string][]string{"unknownParties": unknown}
	}
	return env, nil
}

// AllocateParty implements POST /v1/parties/allocate.
func (s *Server) AllocateParty(ctx context.Context, req AllocatePartyRequest, opt ledger.CallOption) (Envelope, error) {
	var hint, displayName string
	if req.Hint != nil {
		hint = *req.Hint
	}
	if req.DisplayName != nil {
		displayName = *req.DisplayName
	}
	party, err := s.client.AllocateParty(ctx, hint, displayName, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "allocate party", err)
	}
	return Envelope{Status: 200, Result: party}, nil
}

// ListKnownParties implements GET /v1/parties (the SPEC_FULL-added
// listKnownParties pass-through, unfiltered unlike FetchParties).
func (s *Server) ListKnownParties(ctx context.Context, opt ledger.CallOption) (Envelope, error) {
	parties, err := s.client.ListKnownParties(ctx, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "list known parties", err)
	}
	return Envelope{Status: 200, Result: parties}, nil
}

// ListPackages implements GET /v1/packages.
func (s *Server) ListPackages(ctx context.Context, opt ledger.CallOption) (Envelope, error) {
	ids, err := s.client.ListPackages(ctx, opt)
	if err != nil {
		return Envelope{}, lferrors.NewWithCause(lferrors.KindRPC, "list packages", err)
	}
	return Envelope{Status: 200, Result: ids}, nil
}

// GetPackage implements GET /v1/packages/{id}.
func (s *Server) GetPackage(ctx context.Context, packageID string, opt ledger.CallOption) ([]byte, error) {
	data, err := s.client.GetPackage(ctx, packageID, opt)
	if err != nil {
		return nil, lferrors.NewWithCause(lferrors.KindRPC, "get package", err)
	}
	return data, nil
}
