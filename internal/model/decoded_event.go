package model

// Argument is one decoded event argument. Value holds one of: string
// (addresses, raw bytes), bool, *big.Int, packed.Fixed, packed.Balance,
// packed.Index, packed.OrderFlags, or []Argument for tuples.
type Argument struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// DecodedEvent is a contract-agnostic decoded log.
type DecodedEvent struct {
	Contract    string     `json:"contract"`
	Name        string     `json:"name"`
	Args        []Argument `json:"args"`
	Address     string     `json:"address"`
	BlockNumber uint64     `json:"block_number"`
	BlockHash   string     `json:"block_hash,omitempty"`
	TxHash      string     `json:"tx_hash"`
	LogIndex    uint64     `json:"log_index"`
	BlockTime   uint64     `json:"block_time,omitempty"`
}

// Arg looks up an argument by name.
func (e *DecodedEvent) Arg(name string) (interface{}, bool) {
	for _, arg := range e.Args {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}
