package ledger

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// rpcNames lists every RPC the façade exposes, used to pre-build one
// circuit breaker and rate limiter per method.
var rpcNames = []string{
	"SubmitAndWaitForTransaction",
	"SubmitAndWaitForTransactionTree",
	"GetTransactions",
	"GetTransactionTrees",
	"ListPackages",
	"GetPackage",
	"UploadDar",
	"AllocateParty",
	"ListKnownParties",
	"FetchParties",
}

// GRPCClient wraps a ledger API gRPC client connection and implements
// Client with hand-written Invoke/NewStream calls (see grpc_wire.go), in the
// shape of the teacher's GRPCClientAdapter. Resilience wrapping (circuit
// breaker, bounded retry, rate limiting) is applied uniformly around every
// call to the underlying connection.
type GRPCClient struct {
	conn       *grpc.ClientConn
	resilience *resilience
}

// NewGRPCClient creates a façade over conn. connectTimeout bounds how long
// a retryable transport failure is retried before surfacing as an RpcError.
func NewGRPCClient(conn *grpc.ClientConn, connectTimeout time.Duration) *GRPCClient {
	return &GRPCClient{
		conn:       conn,
		resilience: newResilience(connectTimeout, rpcNames),
	}
}

func withToken(ctx context.Context, opt CallOption) context.Context {
	if opt.BearerToken == "" {
		return ctx
	}
	return grpcBearerContext(ctx, opt.BearerToken)
}

func (c *GRPCClient) SubmitAndWaitForTransaction(ctx context.Context, commands Commands, opt CallOption) (*Transaction, error) {
	var resp Transaction
	err := c.resilience.call(ctx, "SubmitAndWaitForTransaction", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), commandServiceMethod("SubmitAndWaitForTransaction"), &commands, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) SubmitAndWaitForTransactionTree(ctx context.Context, commands Commands, opt CallOption) (*TransactionTree, error) {
	var resp TransactionTree
	err := c.resilience.call(ctx, "SubmitAndWaitForTransactionTree", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), commandServiceMethod("SubmitAndWaitForTransactionTree"), &commands, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) GetTransactions(ctx context.Context, begin, end string, filter TransactionFilter, verbose bool, opt CallOption) (TransactionStream, error) {
	req := transactionsRequest{Begin: begin, End: end, Filter: filter, Verbose: verbose}
	var stream grpc.ClientStream
	err := c.resilience.call(ctx, "GetTransactions", func(ctx context.Context) error {
		s, err := c.conn.NewStream(withToken(ctx, opt), &grpc.StreamDesc{ServerStreams: true}, transactionServiceMethod("GetTransactions"))
		if err != nil {
			return err
		}
		if err := s.SendMsg(&req); err != nil {
			return err
		}
		if err := s.CloseSend(); err != nil {
			return err
		}
		stream = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &transactionStream{stream: stream}, nil
}

func (c *GRPCClient) GetTransactionTrees(ctx context.Context, begin, end string, filter TransactionFilter, verbose bool, opt CallOption) (TransactionTreeStream, error) {
	req := transactionsRequest{Begin: begin, End: end, Filter: filter, Verbose: verbose}
	var stream grpc.ClientStream
	err := c.resilience.call(ctx, "GetTransactionTrees", func(ctx context.Context) error {
		s, err := c.conn.NewStream(withToken(ctx, opt), &grpc.StreamDesc{ServerStreams: true}, transactionServiceMethod("GetTransactionTrees"))
		if err != nil {
			return err
		}
		if err := s.SendMsg(&req); err != nil {
			return err
		}
		if err := s.CloseSend(); err != nil {
			return err
		}
		stream = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &transactionTreeStream{stream: stream}, nil
}

func (c *GRPCClient) ListPackages(ctx context.Context, opt CallOption) ([]string, error) {
	var resp listPackagesResponse
	err := c.resilience.call(ctx, "ListPackages", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), packageServiceMethod("ListPackages"), &emptyRequest{}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.PackageIDs, nil
}

func (c *GRPCClient) GetPackage(ctx context.Context, packageID string, opt CallOption) ([]byte, error) {
	var resp getPackageResponse
	err := c.resilience.call(ctx, "GetPackage", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), packageServiceMethod("GetPackage"), &getPackageRequest{PackageID: packageID}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.ArchivePayload, nil
}

func (c *GRPCClient) UploadDar(ctx context.Context, dar []byte, opt CallOption) error {
	return c.resilience.call(ctx, "UploadDar", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), packageManagementServiceMethod("UploadDarFile"), &uploadDarRequest{DarFile: dar}, &uploadDarResponse{})
	})
}

func (c *GRPCClient) AllocateParty(ctx context.Context, hint, displayName string, opt CallOption) (*Party, error) {
	var resp Party
	err := c.resilience.call(ctx, "AllocateParty", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), partyManagementServiceMethod("AllocateParty"), &allocatePartyRequest{Hint: hint, DisplayName: displayName}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) ListKnownParties(ctx context.Context, opt CallOption) ([]Party, error) {
	var resp listKnownPartiesResponse
	err := c.resilience.call(ctx, "ListKnownParties", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), partyManagementServiceMethod("ListKnownParties"), &emptyRequest{}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Parties, nil
}

func (c *GRPCClient) FetchParties(ctx context.Context, ids []string, opt CallOption) ([]Party, []string, error) {
	var resp getPartiesResponse
	err := c.resilience.call(ctx, "FetchParties", func(ctx context.Context) error {
		return c.conn.Invoke(withToken(ctx, opt), partyManagementServiceMethod("GetParties"), &getPartiesRequest{Parties: ids}, &resp)
	})
	if err != nil {
		return nil, nil, err
	}
	found := make(map[string]bool, len(resp.Parties))
	for _, p := range resp.Parties {
		found[p.Party] = true
	}
	var unknown []string
	for _, id := range ids {
		if !found[id] {
			unknown = append(unknown, id)
		}
	}
	return resp.Parties, unknown, nil
}

// Compile-time assertion that GRPCClient implements Client.
var _ Client = (*GRPCClient)(nil)
