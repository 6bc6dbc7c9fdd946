package events

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"perpflow/internal/model"
	"perpflow/internal/registry"
)

// Decoder turns raw protocol logs into typed, named events. Logs from
// addresses or signatures the registry does not know are expected traffic
// and decode to nil without error.
type Decoder struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// NewDecoder builds a decoder over one network registry.
func NewDecoder(reg *registry.Registry, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{registry: reg, logger: logger}
}

// Decode decodes one raw log. Returns (nil, nil) when the log's address or
// event signature is not recognized. At a shared proxy/implementation
// address the proxy ABI is tried first; the implementation only answers
// signatures the proxy does not know.
func (d *Decoder) Decode(log types.Log) (*model.DecodedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, nil
	}

	contracts := d.registry.Resolve(log.Address)
	if len(contracts) == 0 {
		return nil, nil
	}

	for _, contract := range contracts {
		event, ok := contract.EventByID(log.Topics[0])
		if !ok {
			continue
		}

		args, err := d.decodeArguments(event, log)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", contract.Name, event.Name, err)
		}

		return &model.DecodedEvent{
			Contract:    contract.Name,
			Name:        event.Name,
			Args:        args,
			Address:     log.Address.Hex(),
			BlockNumber: log.BlockNumber,
			BlockHash:   log.BlockHash.Hex(),
			TxHash:      log.TxHash.Hex(),
			LogIndex:    uint64(log.Index),
		}, nil
	}

	d.logger.Debug("unrecognized event signature",
		zap.String("address", log.Address.Hex()),
		zap.String("topic0", log.Topics[0].Hex()),
	)
	return nil, nil
}

// DecodeRecord decodes a normalized log record.
func (d *Decoder) DecodeRecord(record model.LogRecord) (*model.DecodedEvent, error) {
	log, ok, err := logFromRecord(record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return d.Decode(log)
}

// DecodeReceipt decodes every log in a receipt, preserving log order and
// dropping unrecognized logs. Hard decode failures abort.
func (d *Decoder) DecodeReceipt(receipt *types.Receipt) ([]model.DecodedEvent, error) {
	if receipt == nil {
		return nil, nil
	}
	out := make([]model.DecodedEvent, 0, len(receipt.Logs))
	for _, log := range receipt.Logs {
		if log == nil {
			continue
		}
		decoded, err := d.Decode(*log)
		if err != nil {
			return nil, err
		}
		if decoded != nil {
			out = append(out, *decoded)
		}
	}
	return out, nil
}

// DecodeEventMap decodes a name-keyed event map, the shape returned by
// gateways that group a receipt's events by name. Entries are flattened
// and sorted ascending by log index before decoding, so the result is
// chronological within the transaction.
func (d *Decoder) DecodeEventMap(entries map[string][]model.RawEvent) ([]model.DecodedEvent, error) {
	flat := make([]model.RawEvent, 0, len(entries))
	for _, events := range entries {
		flat = append(flat, events...)
	}
	sort.Slice(flat, func(i, j int) bool { return flat[i].LogIndex < flat[j].LogIndex })

	out := make([]model.DecodedEvent, 0, len(flat))
	for _, raw := range flat {
		decoded, err := d.DecodeRecord(model.LogRecord{
			BlockNumber: raw.BlockNumber,
			TxHash:      raw.TxHash,
			LogIndex:    raw.LogIndex,
			Address:     raw.Address,
			Topics:      raw.Topics,
			Data:        raw.Data,
		})
		if err != nil {
			return nil, err
		}
		if decoded != nil {
			out = append(out, *decoded)
		}
	}
	return out, nil
}

// decodeArguments reconstructs the event's arguments in declaration
// order, merging indexed topic values with the unpacked data section.
func (d *Decoder) decodeArguments(event abi.Event, log types.Log) ([]model.Argument, error) {
	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(log.Topics))
	}

	topicValues := map[string]interface{}{}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(topicValues, indexed, log.Topics[1:]); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
	}

	dataValues, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack data: %w", err)
	}

	args := make([]model.Argument, 0, len(event.Inputs))
	dataIdx := 0
	for _, input := range event.Inputs {
		var raw interface{}
		if input.Indexed {
			raw = topicValues[input.Name]
		} else {
			if dataIdx >= len(dataValues) {
				return nil, fmt.Errorf("data section short at argument %s", input.Name)
			}
			raw = dataValues[dataIdx]
			dataIdx++
		}

		value, err := convertValue(input.Type, input.Name, raw)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", input.Name, err)
		}
		args = append(args, model.Argument{Name: input.Name, Value: value})
	}
	return args, nil
}

// logFromRecord rebuilds a go-ethereum log from its normalized record.
// A non-address source is not decodable rather than an error.
func logFromRecord(record model.LogRecord) (types.Log, bool, error) {
	if !common.IsHexAddress(record.Address) {
		return types.Log{}, false, nil
	}

	topics := make([]common.Hash, 0, len(record.Topics))
	for _, topic := range record.Topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return types.Log{}, false, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) != 32 {
			return types.Log{}, false, fmt.Errorf("topic length %d", len(data))
		}
		topics = append(topics, common.BytesToHash(data))
	}

	var data []byte
	if record.Data != "" {
		var err error
		data, err = hexutil.Decode(record.Data)
		if err != nil {
			return types.Log{}, false, fmt.Errorf("invalid data: %w", err)
		}
	}

	log := types.Log{
		Address:     common.HexToAddress(record.Address),
		Topics:      topics,
		Data:        data,
		BlockNumber: record.BlockNumber,
		TxHash:      common.HexToHash(record.TxHash),
		Index:       uint(record.LogIndex),
	}
	if record.BlockHash != "" {
		log.BlockHash = common.HexToHash(record.BlockHash)
	}
	return log, true, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
