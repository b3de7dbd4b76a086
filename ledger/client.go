package ledger

import "context"

// CallOption carries a per-call override. The only override the bridge
// needs today is the caller's bearer token, forwarded verbatim to the RPC
// (the core never validates it).
type CallOption struct {
	BearerToken string
}

// TransactionStream is a handle on a streaming get_transactions/
// get_transaction_trees call. Recv blocks until the next element is
// available, the stream ends (io.EOF) or ctx is cancelled.
type TransactionStream interface {
	Recv() (*Transaction, error)
	Close() error
}

// TransactionTreeStream is the tree-shaped counterpart of TransactionStream.
type TransactionTreeStream interface {
	Recv() (*TransactionTree, error)
	Close() error
}

// Client is the thin typed façade the translator depends on. It is the
// full verb set the ledger offers the core: command submission,
// transaction retrieval, package management and party management.
type Client interface {
	SubmitAndWaitForTransaction(ctx context.Context, commands Commands, opt CallOption) (*Transaction, error)
	SubmitAndWaitForTransactionTree(ctx context.Context, commands Commands, opt CallOption) (*TransactionTree, error)

	GetTransactions(ctx context.Context, begin, end string, filter TransactionFilter, verbose bool, opt CallOption) (TransactionStream, error)
	GetTransactionTrees(ctx context.Context, begin, end string, filter TransactionFilter, verbose bool, opt CallOption) (TransactionTreeStream, error)

	ListPackages(ctx context.Context, opt CallOption) ([]string, error)
	GetPackage(ctx context.Context, packageID string, opt CallOption) ([]byte, error)
	UploadDar(ctx context.Context, dar []byte, opt CallOption) error

	AllocateParty(ctx context.Context, hint, displayName string, opt CallOption) (*Party, error)
	ListKnownParties(ctx context.Context, opt CallOption) ([]Party, error)
	FetchParties(ctx context.Context, ids []string, opt CallOption) (found []Party, unknown []string, err error)
}
