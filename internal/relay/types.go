package relay

import "errors"

// SubmitRequest is the POST /relay body: a signed vote intent plus, on
// first use, the delegation authorization tuple.
type SubmitRequest struct {
	UserAddress   string         `json:"userAddress"`
	Action        uint8          `json:"action"`
	Deadline      uint64         `json:"deadline"`
	Signature     string         `json:"signature"`
	Authorization *Authorization `json:"authorization,omitempty"`
}

// Authorization is the client-signed EIP-7702 tuple. The delegation
// contract address comes from relay configuration, not the client.
type Authorization struct {
	ChainID uint64 `json:"chainId"`
	Nonce   uint64 `json:"nonce"`
	R       string `json:"r"`
	S       string `json:"s"`
	YParity uint8  `json:"yParity"`
}

// SubmitResponse reports a successful submission.
type SubmitResponse struct {
	TxHash     string `json:"txHash"`
	DurationMs int64  `json:"durationMs"`
	Delegated  bool   `json:"delegated"`
}

// NonceResponse is the GET /relay/nonce/:address body.
type NonceResponse struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
}

// DelegatedResponse is the GET /relay/delegated/:address body.
type DelegatedResponse struct {
	Address   string `json:"address"`
	Delegated bool   `json:"delegated"`
}

// HealthResponse is the GET /relay/health body.
type HealthResponse struct {
	RelayAddress       string `json:"relayAddress"`
	BalanceWei         string `json:"balanceWei"`
	VoteContract       string `json:"voteContract"`
	DelegationContract string `json:"delegationContract"`
}

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrUnderfunded   = errors.New("relay wallet underfunded")
	ErrNonceConflict = errors.New("nonce conflict")
)
