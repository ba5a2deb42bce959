package relay

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var testChainID = big.NewInt(10143)

// fakeBackend simulates the chain surface: delegation code appears
// after a set-code transaction lands, and the execute nonce increments
// per accepted submission.
type fakeBackend struct {
	mu         sync.Mutex
	codes      map[common.Address][]byte
	balance    *big.Int
	execNonces map[common.Address]uint64
	relayNonce uint64
	sent       []*types.Transaction
	sendErr    error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		codes:      make(map[common.Address][]byte),
		balance:    new(big.Int).Mul(big.NewInt(1), big.NewInt(1e18)),
		execNonces: make(map[common.Address]uint64),
	}
}

func (f *fakeBackend) CodeAt(_ context.Context, address common.Address) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[address], nil
}

func (f *fakeBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.relayNonce, nil
}

func (f *fakeBackend) BalanceAt(_ context.Context, _ common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.To == nil {
		return nil, fmt.Errorf("missing call target")
	}
	nonce := f.execNonces[*msg.To]
	return common.LeftPadBytes(new(big.Int).SetUint64(nonce).Bytes(), 32), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.relayNonce++

	user := *tx.To()
	if tx.Type() == types.SetCodeTxType {
		auths := tx.SetCodeAuthorizations()
		if len(auths) == 1 {
			f.codes[user] = types.AddressToDelegation(auths[0].Address)
		}
	}
	f.execNonces[user]++
	return nil
}

func newTestRelay(t *testing.T, backend Backend) *Relay {
	t.Helper()
	relayKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	r, err := New(
		backend,
		hex.EncodeToString(crypto.FromECDSA(relayKey)),
		testChainID,
		common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		common.HexToAddress("0x00000000000000000000000000000000000000d1"),
		nil,
	)
	require.NoError(t, err)
	return r
}

func signedRequest(t *testing.T, r *Relay, userKey *ecdsa.PrivateKey, action uint8, deadline uint64, executeNonce uint64) SubmitRequest {
	t.Helper()
	user := crypto.PubkeyToAddress(userKey.PublicKey)

	vABI, err := voteABIInstance()
	require.NoError(t, err)
	callData, err := vABI.Pack("vote", action)
	require.NoError(t, err)

	digest := intentDigest(testChainID, user, r.voteContract, callData, deadline, executeNonce)
	sig, err := crypto.Sign(digest.Bytes(), userKey)
	require.NoError(t, err)

	return SubmitRequest{
		UserAddress: user.Hex(),
		Action:      action,
		Deadline:    deadline,
		Signature:   hexutil.Encode(sig),
	}
}

func TestFirstUseThenOrdinarySubmission(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRelay(t, backend)

	userKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	user := crypto.PubkeyToAddress(userKey.PublicKey)
	deadline := uint64(time.Now().Add(time.Minute).Unix())

	ctx := context.Background()

	delegated, err := r.IsDelegated(ctx, user)
	require.NoError(t, err)
	require.False(t, delegated)

	// First use: authorization attached, submitted as a set-code tx.
	req := signedRequest(t, r, userKey, 4, deadline, 0)
	req.Authorization = &Authorization{
		ChainID: testChainID.Uint64(),
		Nonce:   0,
		R:       "0x01",
		S:       "0x01",
		YParity: 0,
	}

	resp, err := r.Submit(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.Delegated)
	require.NotEmpty(t, resp.TxHash)

	require.Len(t, backend.sent, 1)
	require.Equal(t, uint8(types.SetCodeTxType), backend.sent[0].Type())
	require.Equal(t, user, *backend.sent[0].To(), "transaction must target the user's EOA")

	delegated, err = r.IsDelegated(ctx, user)
	require.NoError(t, err)
	require.True(t, delegated)

	nonce, err := r.ExecuteNonce(ctx, user)
	require.NoError(t, err)
	require.EqualValues(t, 1, nonce)

	// Second use: no authorization, ordinary transaction, lower gas.
	req2 := signedRequest(t, r, userKey, 2, deadline, 1)
	_, err = r.Submit(ctx, req2)
	require.NoError(t, err)

	require.Len(t, backend.sent, 2)
	require.Equal(t, uint8(types.DynamicFeeTxType), backend.sent[1].Type())
	require.Less(t, backend.sent[1].Gas(), backend.sent[0].Gas())

	nonce, err = r.ExecuteNonce(ctx, user)
	require.NoError(t, err)
	require.EqualValues(t, 2, nonce, "execute nonce must be strictly increasing")

	// Relay tx nonces are sequential.
	require.EqualValues(t, 0, backend.sent[0].Nonce())
	require.EqualValues(t, 1, backend.sent[1].Nonce())
}

func TestSubmitValidation(t *testing.T) {
	backend := newFakeBackend()
	r := newTestRelay(t, backend)

	userKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	deadline := uint64(time.Now().Add(time.Minute).Unix())
	ctx := context.Background()

	t.Run("invalid action", func(t *testing.T) {
		req := signedRequest(t, r, userKey, 3, deadline, 0)
		req.Action = 9
		_, err := r.Submit(ctx, req)
		require.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("expired deadline", func(t *testing.T) {
		req := signedRequest(t, r, userKey, 3, uint64(time.Now().Add(-time.Minute).Unix()), 0)
		_, err := r.Submit(ctx, req)
		require.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("missing authorization for undelegated user", func(t *testing.T) {
		req := signedRequest(t, r, userKey, 3, deadline, 0)
		_, err := r.Submit(ctx, req)
		require.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("signature from wrong key", func(t *testing.T) {
		otherKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		req := signedRequest(t, r, otherKey, 3, deadline, 0)
		req.UserAddress = crypto.PubkeyToAddress(userKey.PublicKey).Hex()
		req.Authorization = &Authorization{ChainID: testChainID.Uint64(), R: "0x01", S: "0x01"}
		_, err = r.Submit(ctx, req)
		require.ErrorIs(t, err, ErrBadRequest)
	})
}

func TestSubmitErrorMapping(t *testing.T) {
	deadline := uint64(time.Now().Add(time.Minute).Unix())
	ctx := context.Background()

	t.Run("underfunded wallet", func(t *testing.T) {
		backend := newFakeBackend()
		backend.balance = big.NewInt(1)
		r := newTestRelay(t, backend)

		userKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		req := signedRequest(t, r, userKey, 0, deadline, 0)
		req.Authorization = &Authorization{ChainID: testChainID.Uint64(), R: "0x01", S: "0x01"}

		_, err = r.Submit(ctx, req)
		require.ErrorIs(t, err, ErrUnderfunded)
	})

	t.Run("nonce conflict", func(t *testing.T) {
		backend := newFakeBackend()
		backend.sendErr = fmt.Errorf("nonce too low")
		r := newTestRelay(t, backend)

		userKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		req := signedRequest(t, r, userKey, 0, deadline, 0)
		req.Authorization = &Authorization{ChainID: testChainID.Uint64(), R: "0x01", S: "0x01"}

		_, err = r.Submit(ctx, req)
		require.ErrorIs(t, err, ErrNonceConflict)
	})
}

func TestStatusMapping(t *testing.T) {
	require.Equal(t, 400, statusFor(fmt.Errorf("%w: nope", ErrBadRequest)))
	require.Equal(t, 429, statusFor(fmt.Errorf("%w: busy", ErrNonceConflict)))
	require.Equal(t, 503, statusFor(ErrUnderfunded))
	require.Equal(t, 500, statusFor(fmt.Errorf("boom")))
}
