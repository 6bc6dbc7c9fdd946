package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const perpetualProxyABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "previousAdmin", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "newAdmin", "type": "address"}
    ],
    "name": "AdminChanged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "implementation", "type": "address"}
    ],
    "name": "Upgraded",
    "type": "event"
  }
]`

const perpetualV1ABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "index", "type": "bytes32"}
    ],
    "name": "LogIndex",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "account", "type": "address"},
      {"indexed": false, "internalType": "bool", "name": "isPositive", "type": "bool"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "bytes32", "name": "balance", "type": "bytes32"}
    ],
    "name": "LogAccountSettled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "account", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "bytes32", "name": "balance", "type": "bytes32"}
    ],
    "name": "LogDeposit",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "account", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "destination", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "bytes32", "name": "balance", "type": "bytes32"}
    ],
    "name": "LogWithdraw",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "trader", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "marginAmount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "positionAmount", "type": "uint256"},
      {"indexed": false, "internalType": "bool", "name": "isBuy", "type": "bool"},
      {"indexed": false, "internalType": "bytes32", "name": "makerBalance", "type": "bytes32"},
      {"indexed": false, "internalType": "bytes32", "name": "takerBalance", "type": "bytes32"}
    ],
    "name": "LogTrade",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "settlementPrice", "type": "uint256"}
    ],
    "name": "LogFinalSettlementEnabled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "account", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "bytes32", "name": "balance", "type": "bytes32"}
    ],
    "name": "LogWithdrawFinalSettlement",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "operator", "type": "address"},
      {"indexed": false, "internalType": "bool", "name": "approved", "type": "bool"}
    ],
    "name": "LogSetGlobalOperator",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "operator", "type": "address"},
      {"indexed": false, "internalType": "bool", "name": "approved", "type": "bool"}
    ],
    "name": "LogSetLocalOperator",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "oracle", "type": "address"}
    ],
    "name": "LogSetOracle",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "funder", "type": "address"}
    ],
    "name": "LogSetFunder",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "uint256", "name": "minCollateral", "type": "uint256"}
    ],
    "name": "LogSetMinCollateral",
    "type": "event"
  }
]`

const p1OrdersABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"}
    ],
    "name": "LogOrderCanceled",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"}
    ],
    "name": "LogOrderApproved",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "orderHash", "type": "bytes32"},
      {"indexed": false, "internalType": "bytes32", "name": "flags", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "triggerPrice", "type": "uint256"},
      {
        "indexed": false,
        "internalType": "struct P1Orders.Fill",
        "name": "fill",
        "type": "tuple",
        "components": [
          {"internalType": "uint256", "name": "amount", "type": "uint256"},
          {"internalType": "uint256", "name": "price", "type": "uint256"},
          {"internalType": "uint256", "name": "fee", "type": "uint256"},
          {"internalType": "bool", "name": "isNegativeFee", "type": "bool"}
        ]
      }
    ],
    "name": "LogOrderFilled",
    "type": "event"
  }
]`

const p1FundingOracleABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "bytes32", "name": "fundingRate", "type": "bytes32"}
    ],
    "name": "LogFundingRateUpdated",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "fundingRateProvider", "type": "address"}
    ],
    "name": "LogFundingRateProviderSet",
    "type": "event"
  }
]`

const p1LiquidationABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "bool", "name": "isBuy", "type": "bool"},
      {"indexed": false, "internalType": "uint256", "name": "oraclePrice", "type": "uint256"}
    ],
    "name": "LogLiquidated",
    "type": "event"
  }
]`

const p1DeleveragingABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "maker", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "taker", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"},
      {"indexed": false, "internalType": "bool", "name": "isBuy", "type": "bool"},
      {"indexed": false, "internalType": "uint256", "name": "oraclePrice", "type": "uint256"}
    ],
    "name": "LogDeleveraged",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "account", "type": "address"}
    ],
    "name": "LogMarkedForDeleveraging",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "account", "type": "address"}
    ],
    "name": "LogUnmarkedForDeleveraging",
    "type": "event"
  }
]`

const testTokenABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "spender", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "value", "type": "uint256"}
    ],
    "name": "Approval",
    "type": "event"
  }
]`

var abiJSONByContract = map[string]string{
	ContractPerpetualProxy:  perpetualProxyABIJSON,
	ContractPerpetualV1:     perpetualV1ABIJSON,
	ContractP1Orders:        p1OrdersABIJSON,
	ContractP1FundingOracle: p1FundingOracleABIJSON,
	ContractP1Liquidation:   p1LiquidationABIJSON,
	ContractP1Deleveraging:  p1DeleveragingABIJSON,
	ContractTestToken:       testTokenABIJSON,
}

var (
	parsedABIs   = map[string]abi.ABI{}
	parsedABIsMu sync.Mutex
)

// ContractABI returns the parsed ABI for a known contract name.
func ContractABI(name string) (abi.ABI, error) {
	parsedABIsMu.Lock()
	defer parsedABIsMu.Unlock()

	if parsed, ok := parsedABIs[name]; ok {
		return parsed, nil
	}

	raw, ok := abiJSONByContract[name]
	if !ok {
		return abi.ABI{}, fmt.Errorf("unknown contract: %s", name)
	}
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse %s abi: %w", name, err)
	}
	parsedABIs[name] = parsed
	return parsed, nil
}
