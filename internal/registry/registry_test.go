package registry

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestNewRegistryMainnet(t *testing.T) {
	reg, err := New(NetworkMainnet)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	addr, err := reg.Address(ContractPerpetualProxy)
	if err != nil {
		t.Fatalf("proxy address: %v", err)
	}

	contracts := reg.Resolve(addr)
	if len(contracts) != 2 {
		t.Fatalf("expected proxy and implementation at shared address, got %d", len(contracts))
	}
	if contracts[0].Name != ContractPerpetualProxy || contracts[1].Name != ContractPerpetualV1 {
		t.Fatalf("resolution order: %s, %s", contracts[0].Name, contracts[1].Name)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	reg, err := New(NetworkMainnet)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	addr, err := reg.Address(ContractP1Orders)
	if err != nil {
		t.Fatalf("orders address: %v", err)
	}

	lower := strings.ToLower(addr.Hex())
	upper := "0x" + strings.ToUpper(lower[2:])
	for _, variant := range []string{lower, upper} {
		if got := reg.ResolveHex(variant); len(got) != 1 || got[0].Name != ContractP1Orders {
			t.Fatalf("resolve %s failed", variant)
		}
	}
}

func TestResolveUnknownAddress(t *testing.T) {
	reg, err := New(NetworkMainnet)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	if got := reg.Resolve(common.HexToAddress("0x00000000000000000000000000000000000000ff")); got != nil {
		t.Fatalf("unknown address should resolve to nil, got %v", got)
	}
	if got := reg.ResolveHex("not-an-address"); got != nil {
		t.Fatalf("malformed address should resolve to nil")
	}
}

func TestMissingDeployment(t *testing.T) {
	reg, err := New(NetworkMainnet)
	if err != nil {
		t.Fatalf("build registry should tolerate missing deployments: %v", err)
	}

	// TestToken is not deployed on mainnet.
	if _, err := reg.Contract(ContractTestToken); err == nil {
		t.Fatalf("expected error targeting undeployed contract")
	}

	devReg, err := New(NetworkDev)
	if err != nil {
		t.Fatalf("build dev registry: %v", err)
	}
	if _, err := devReg.Contract(ContractTestToken); err != nil {
		t.Fatalf("test token should be deployed on dev: %v", err)
	}
}

func TestIsTest(t *testing.T) {
	reg, err := New(NetworkDev)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	tokenAddr, err := reg.Address(ContractTestToken)
	if err != nil {
		t.Fatalf("token address: %v", err)
	}
	if !reg.IsTest(tokenAddr) {
		t.Fatalf("test token should be flagged as test contract")
	}

	perpAddr, err := reg.Address(ContractPerpetualProxy)
	if err != nil {
		t.Fatalf("perp address: %v", err)
	}
	if reg.IsTest(perpAddr) {
		t.Fatalf("perpetual should not be flagged as test contract")
	}
}

func TestEventByID(t *testing.T) {
	reg, err := New(NetworkMainnet)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	perp, err := reg.Contract(ContractPerpetualV1)
	if err != nil {
		t.Fatalf("perpetual contract: %v", err)
	}

	depositID := crypto.Keccak256Hash([]byte("LogDeposit(address,uint256,bytes32)"))
	event, ok := perp.EventByID(depositID)
	if !ok {
		t.Fatalf("LogDeposit signature not indexed")
	}
	if event.Name != "LogDeposit" || len(event.Inputs) != 3 {
		t.Fatalf("unexpected event: %s with %d inputs", event.Name, len(event.Inputs))
	}

	if _, ok := perp.EventByID(common.Hash{0x01}); ok {
		t.Fatalf("unknown signature should not resolve")
	}
}

func TestProxyDoesNotKnowImplementationEvents(t *testing.T) {
	reg, err := New(NetworkMainnet)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	proxy, err := reg.Contract(ContractPerpetualProxy)
	if err != nil {
		t.Fatalf("proxy contract: %v", err)
	}

	depositID := crypto.Keccak256Hash([]byte("LogDeposit(address,uint256,bytes32)"))
	if _, ok := proxy.EventByID(depositID); ok {
		t.Fatalf("proxy abi should not recognize implementation events")
	}
}
