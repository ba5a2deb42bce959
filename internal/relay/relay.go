package relay

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// Gas limits for the two submission shapes. The first-use transaction
// carries the authorization list and pays for the delegation write.
const (
	firstUseGasLimit = 400_000
	executeGasLimit  = 150_000
)

// minRelayBalance is the balance floor below which submissions are
// refused instead of burning the last of the wallet.
var minRelayBalance = big.NewInt(10_000_000_000_000_000) // 0.01 native

// Backend is the chain surface the relay needs. *chain.Client
// satisfies it; tests use an in-memory fake.
type Backend interface {
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)
	PendingNonceAt(ctx context.Context, address common.Address) (uint64, error)
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Relay verifies signed vote intents and submits them on behalf of
// users so they pay no gas. It owns the relay signing key and its
// transaction nonce sequence.
type Relay struct {
	backend            Backend
	key                *ecdsa.PrivateKey
	address            common.Address
	chainID            *big.Int
	voteContract       common.Address
	delegationContract common.Address
	logger             *zap.Logger

	nonceMu   sync.Mutex
	nextNonce uint64
	nonceInit bool
}

// New builds a relay from the hex-encoded signing key.
func New(backend Backend, keyHex string, chainID *big.Int, voteContract, delegationContract common.Address, logger *zap.Logger) (*Relay, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse relay key: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		backend:            backend,
		key:                key,
		address:            crypto.PubkeyToAddress(key.PublicKey),
		chainID:            chainID,
		voteContract:       voteContract,
		delegationContract: delegationContract,
		logger:             logger,
	}, nil
}

// Address returns the relay wallet address.
func (r *Relay) Address() common.Address { return r.address }

// IsDelegated reports whether the address's on-chain code is the
// delegation marker for the configured delegation contract.
func (r *Relay) IsDelegated(ctx context.Context, user common.Address) (bool, error) {
	code, err := r.backend.CodeAt(ctx, user)
	if err != nil {
		return false, fmt.Errorf("code at %s: %w", user.Hex(), err)
	}
	target, ok := types.ParseDelegation(code)
	return ok && target == r.delegationContract, nil
}

// ExecuteNonce returns the user's delegated execute-nonce, or 0 when
// the user is not delegated. The call is directed at the user's EOA
// address: delegated code reads the EOA's own storage.
func (r *Relay) ExecuteNonce(ctx context.Context, user common.Address) (uint64, error) {
	delegated, err := r.IsDelegated(ctx, user)
	if err != nil {
		return 0, err
	}
	if !delegated {
		return 0, nil
	}

	dABI, err := delegationABIInstance()
	if err != nil {
		return 0, err
	}
	data, err := dABI.Pack("getNonce", user)
	if err != nil {
		return 0, fmt.Errorf("pack getNonce: %w", err)
	}

	out, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &user, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("call getNonce: %w", err)
	}

	values, err := dABI.Unpack("getNonce", out)
	if err != nil {
		return 0, fmt.Errorf("unpack getNonce: %w", err)
	}
	nonce, ok := values[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("getNonce returned unexpected type %T", values[0])
	}
	return nonce.Uint64(), nil
}

// Health reports the relay wallet balance and configured contracts.
func (r *Relay) Health(ctx context.Context) (HealthResponse, error) {
	balance, err := r.backend.BalanceAt(ctx, r.address)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("relay balance: %w", err)
	}
	return HealthResponse{
		RelayAddress:       r.address.Hex(),
		BalanceWei:         balance.String(),
		VoteContract:       r.voteContract.Hex(),
		DelegationContract: r.delegationContract.Hex(),
	}, nil
}

// Submit verifies the intent and submits the transaction. Validation,
// funding and nonce failures wrap one of the sentinels for the HTTP
// layer to map; other errors (backend calls, ABI packing, sending) carry
// no sentinel and map to 500.
func (r *Relay) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	started := time.Now()

	if !common.IsHexAddress(req.UserAddress) {
		return SubmitResponse{}, fmt.Errorf("%w: invalid user address", ErrBadRequest)
	}
	user := common.HexToAddress(req.UserAddress)

	action, err := model.ParseAction(req.Action)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	if req.Deadline <= uint64(time.Now().Unix()) {
		return SubmitResponse{}, fmt.Errorf("%w: deadline expired", ErrBadRequest)
	}

	sig, err := hexutil.Decode(req.Signature)
	if err != nil || len(sig) != 65 {
		return SubmitResponse{}, fmt.Errorf("%w: malformed signature", ErrBadRequest)
	}

	delegated, err := r.IsDelegated(ctx, user)
	if err != nil {
		return SubmitResponse{}, err
	}
	if !delegated && req.Authorization == nil {
		return SubmitResponse{}, fmt.Errorf("%w: authorization required for first use", ErrBadRequest)
	}

	executeNonce, err := r.ExecuteNonce(ctx, user)
	if err != nil {
		return SubmitResponse{}, err
	}

	vABI, err := voteABIInstance()
	if err != nil {
		return SubmitResponse{}, err
	}
	callData, err := vABI.Pack("vote", req.Action)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("pack vote: %w", err)
	}

	digest := intentDigest(r.chainID, user, r.voteContract, callData, req.Deadline, executeNonce)
	signer, err := recoverSigner(digest, sig)
	if err != nil || signer != user {
		return SubmitResponse{}, fmt.Errorf("%w: signature does not match user", ErrBadRequest)
	}

	balance, err := r.backend.BalanceAt(ctx, r.address)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("relay balance: %w", err)
	}
	if balance.Cmp(minRelayBalance) < 0 {
		return SubmitResponse{}, ErrUnderfunded
	}

	dABI, err := delegationABIInstance()
	if err != nil {
		return SubmitResponse{}, err
	}
	execData, err := dABI.Pack("execute",
		r.voteContract,
		new(big.Int),
		callData,
		new(big.Int).SetUint64(req.Deadline),
		sig,
	)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("pack execute: %w", err)
	}

	tx, err := r.submit(ctx, user, execData, req.Authorization)
	if err != nil {
		return SubmitResponse{}, err
	}

	r.logger.Info("relayed vote",
		zap.String("user", user.Hex()),
		zap.String("action", action.String()),
		zap.String("tx", tx.Hash().Hex()),
		zap.Bool("first_use", req.Authorization != nil),
	)

	return SubmitResponse{
		TxHash:     tx.Hash().Hex(),
		DurationMs: time.Since(started).Milliseconds(),
		Delegated:  true,
	}, nil
}

// submit builds, signs, and sends the transaction while holding the
// nonce lock. The transaction's recipient is the user's address:
// delegated code at the EOA routes into the delegation contract.
func (r *Relay) submit(ctx context.Context, user common.Address, execData []byte, auth *Authorization) (*types.Transaction, error) {
	tip, err := r.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas tip: %w", err)
	}
	feeCap, err := r.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}

	r.nonceMu.Lock()
	defer r.nonceMu.Unlock()

	if !r.nonceInit {
		nonce, err := r.backend.PendingNonceAt(ctx, r.address)
		if err != nil {
			return nil, fmt.Errorf("relay nonce: %w", err)
		}
		r.nextNonce = nonce
		r.nonceInit = true
	}

	var txData types.TxData
	if auth != nil {
		authorization, err := buildAuthorization(auth, r.delegationContract)
		if err != nil {
			return nil, err
		}
		txData = &types.SetCodeTx{
			ChainID:   uint256.MustFromBig(r.chainID),
			Nonce:     r.nextNonce,
			GasTipCap: uint256.MustFromBig(tip),
			GasFeeCap: uint256.MustFromBig(feeCap),
			Gas:       firstUseGasLimit,
			To:        user,
			Value:     new(uint256.Int),
			Data:      execData,
			AuthList:  []types.SetCodeAuthorization{authorization},
		}
	} else {
		txData = &types.DynamicFeeTx{
			ChainID:   r.chainID,
			Nonce:     r.nextNonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       executeGasLimit,
			To:        &user,
			Data:      execData,
		}
	}

	tx, err := types.SignNewTx(r.key, types.LatestSignerForChainID(r.chainID), txData)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}

	if err := r.backend.SendTransaction(ctx, tx); err != nil {
		if isNonceError(err) {
			// Resync from the pending pool on the next submission.
			r.nonceInit = false
			return nil, fmt.Errorf("%w: %v", ErrNonceConflict, err)
		}
		if isUnderfundedError(err) {
			return nil, ErrUnderfunded
		}
		return nil, fmt.Errorf("send tx: %w", err)
	}

	r.nextNonce++
	return tx, nil
}

// buildAuthorization assembles the EIP-7702 tuple from the client
// signature pieces and the configured delegation contract.
func buildAuthorization(auth *Authorization, delegation common.Address) (types.SetCodeAuthorization, error) {
	rBytes, err := hexutil.Decode(auth.R)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("%w: malformed authorization r", ErrBadRequest)
	}
	sBytes, err := hexutil.Decode(auth.S)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("%w: malformed authorization s", ErrBadRequest)
	}
	if auth.YParity > 1 {
		return types.SetCodeAuthorization{}, fmt.Errorf("%w: yParity out of range", ErrBadRequest)
	}

	var r, s uint256.Int
	r.SetBytes(rBytes)
	s.SetBytes(sBytes)

	return types.SetCodeAuthorization{
		ChainID: *uint256.NewInt(auth.ChainID),
		Address: delegation,
		Nonce:   auth.Nonce,
		V:       auth.YParity,
		R:       r,
		S:       s,
	}, nil
}

func isNonceError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nonce too low") ||
		strings.Contains(msg, "nonce too high") ||
		strings.Contains(msg, "already known") ||
		strings.Contains(msg, "replacement transaction")
}

func isUnderfundedError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}
