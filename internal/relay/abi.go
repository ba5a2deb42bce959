package relay

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const delegationABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "value", "type": "uint256"},
      {"internalType": "bytes", "name": "data", "type": "bytes"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"internalType": "bytes", "name": "signature", "type": "bytes"}
    ],
    "name": "execute",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "account", "type": "address"}],
    "name": "getNonce",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const voteABIJSON = `[
  {
    "inputs": [{"internalType": "uint8", "name": "action", "type": "uint8"}],
    "name": "vote",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

var (
	delegationABI     abi.ABI
	delegationABIOnce sync.Once
	delegationABIErr  error
	voteABI           abi.ABI
	voteABIOnce       sync.Once
	voteABIErr        error
)

func delegationABIInstance() (abi.ABI, error) {
	delegationABIOnce.Do(func() {
		delegationABI, delegationABIErr = abi.JSON(strings.NewReader(delegationABIJSON))
	})
	return delegationABI, delegationABIErr
}

func voteABIInstance() (abi.ABI, error) {
	voteABIOnce.Do(func() {
		voteABI, voteABIErr = abi.JSON(strings.NewReader(voteABIJSON))
	})
	return voteABI, voteABIErr
}
