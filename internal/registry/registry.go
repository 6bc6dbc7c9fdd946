package registry

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract is one registered protocol contract on a network.
type Contract struct {
	Name    string
	Address common.Address
	ABI     abi.ABI
	Test    bool

	eventsOnce sync.Once
	events     map[common.Hash]abi.Event
}

// EventByID looks up an event by its 32-byte signature hash. The index is
// built on first use and read-only afterwards.
func (c *Contract) EventByID(id common.Hash) (abi.Event, bool) {
	c.eventsOnce.Do(func() {
		c.events = make(map[common.Hash]abi.Event, len(c.ABI.Events))
		for _, event := range c.ABI.Events {
			c.events[event.ID] = event
		}
	})
	event, ok := c.events[id]
	return event, ok
}

// Registry maps deployed addresses to contracts for one network. Build one
// per (provider, network) pair; switching networks means constructing a new
// registry, never mutating an existing one.
type Registry struct {
	network   uint64
	byAddress map[common.Address][]*Contract
	byName    map[string]*Contract
}

// New builds the registry for a network from the embedded deployment
// table. Contracts without a deployment on the network are skipped; they
// only error when explicitly targeted via Address.
func New(networkID uint64) (*Registry, error) {
	r := &Registry{
		network:   networkID,
		byAddress: make(map[common.Address][]*Contract),
		byName:    make(map[string]*Contract),
	}

	for _, spec := range contractSpecs {
		hexAddr, ok := deployedAddress(spec, networkID)
		if !ok {
			continue
		}
		if !common.IsHexAddress(hexAddr) {
			return nil, fmt.Errorf("bad deployment address for %s on network %d: %s", spec.Name, networkID, hexAddr)
		}

		parsed, err := ContractABI(spec.Name)
		if err != nil {
			return nil, err
		}

		contract := &Contract{
			Name:    spec.Name,
			Address: common.HexToAddress(hexAddr),
			ABI:     parsed,
			Test:    spec.Test,
		}
		r.byAddress[contract.Address] = append(r.byAddress[contract.Address], contract)
		r.byName[contract.Name] = contract
	}

	return r, nil
}

func deployedAddress(spec contractSpec, networkID uint64) (string, bool) {
	for source := spec; ; {
		if addr, ok := source.Deployments[networkID]; ok {
			return addr, true
		}
		if source.AddressOf == "" {
			return "", false
		}
		next, ok := specByName(source.AddressOf)
		if !ok {
			return "", false
		}
		source = next
	}
}

func specByName(name string) (contractSpec, bool) {
	for _, spec := range contractSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return contractSpec{}, false
}

// Network returns the network id this registry was built for.
func (r *Registry) Network() uint64 {
	return r.network
}

// Resolve returns the contracts registered at an address in resolution
// order (proxy before implementation), or nil when the address is unknown.
// Hex case does not matter: addresses are canonicalized on registration
// and lookup.
func (r *Registry) Resolve(addr common.Address) []*Contract {
	return r.byAddress[addr]
}

// ResolveHex resolves a hex-encoded address, returning nil for strings
// that are not addresses at all.
func (r *Registry) ResolveHex(hexAddr string) []*Contract {
	if !common.IsHexAddress(hexAddr) {
		return nil
	}
	return r.Resolve(common.HexToAddress(hexAddr))
}

// Contract returns the registered contract with the given name, or an
// error when it has no deployment on this network.
func (r *Registry) Contract(name string) (*Contract, error) {
	contract, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("contract %s is not deployed on network %d", name, r.network)
	}
	return contract, nil
}

// Address returns the deployed address of a named contract.
func (r *Registry) Address(name string) (common.Address, error) {
	contract, err := r.Contract(name)
	if err != nil {
		return common.Address{}, err
	}
	return contract.Address, nil
}

// Addresses returns every registered address, one entry per address.
func (r *Registry) Addresses() []common.Address {
	out := make([]common.Address, 0, len(r.byAddress))
	for addr := range r.byAddress {
		out = append(out, addr)
	}
	return out
}

// IsTest reports whether the address belongs to a test-only contract.
func (r *Registry) IsTest(addr common.Address) bool {
	for _, contract := range r.byAddress[addr] {
		if contract.Test {
			return true
		}
	}
	return false
}
