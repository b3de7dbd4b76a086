package ledger

import (
	"context"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Full gRPC method names for the five Daml Ledger API services the façade
// calls. Dialing and service discovery are out of scope (spec.md §1
// Non-goals); these are just the wire paths grpc.ClientConn.Invoke/NewStream
// address.
func commandServiceMethod(rpc string) string {
	return "/com.daml.ledger.api.v1.CommandService/" + rpc
}

func transactionServiceMethod(rpc string) string {
	return "/com.daml.ledger.api.v1.TransactionService/" + rpc
}

func packageServiceMethod(rpc string) string {
	return "/com.daml.ledger.api.v1.PackageService/" + rpc
}

func packageManagementServiceMethod(rpc string) string {
	return "/com.daml.ledger.api.v1.admin.PackageManagementService/" + rpc
}

func partyManagementServiceMethod(rpc string) string {
	return "/com.daml.ledger.api.v1.admin.PartyManagementService/" + rpc
}

func grpcBearerContext(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

type emptyRequest struct{}

type transactionsRequest struct {
	Begin   string
	End     string
	Filter  TransactionFilter
	Verbose bool
}

type listPackagesResponse struct {
	PackageIDs []string
}

type getPackageRequest struct {
	PackageID string
}

type getPackageResponse struct {
	ArchivePayload []byte
}

type uploadDarRequest struct {
	DarFile []byte
}

type uploadDarResponse struct{}

type allocatePartyRequest struct {
	Hint        string
	DisplayName string
}

type listKnownPartiesResponse struct {
	Parties []Party
}

type getPartiesRequest struct {
	Parties []string
}

type getPartiesResponse struct {
	Parties []Party
}

// transactionStream adapts a raw grpc.ClientStream to TransactionStream.
type transactionStream struct {
	stream grpc.ClientStream
}

func (s *transactionStream) Recv() (*Transaction, error) {
	var tx Transaction
	if err := s.stream.RecvMsg(&tx); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return &tx, nil
}

func (s *transactionStream) Close() error {
	return s.stream.CloseSend()
}

// transactionTreeStream adapts a raw grpc.ClientStream to TransactionTreeStream.
type transactionTreeStream struct {
	stream grpc.ClientStream
}

func (s *transactionTreeStream) Recv() (*TransactionTree, error) {
	var tree TransactionTree
	if err := s.stream.RecvMsg(&tree); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return &tree, nil
}

func (s *transactionTreeStream) Close() error {
	return s.stream.CloseSend()
}
