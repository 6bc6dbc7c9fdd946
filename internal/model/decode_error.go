package model

// DecodeError records a hard decode failure for one log.
type DecodeError struct {
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Address     string `json:"address"`
	Topic0      string `json:"topic0"`
	Contract    string `json:"contract,omitempty"`
	Event       string `json:"event,omitempty"`
	Error       string `json:"error"`
}
