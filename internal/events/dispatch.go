package events

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"perpflow/internal/model"
	"perpflow/internal/packed"
)

// role is the semantic class of an argument, derived from its declared
// name. It selects the packed-struct or fixed-point interpretation of
// otherwise opaque word and integer types.
type role int

const (
	roleNone role = iota
	roleBalance
	roleIndex
	roleFlags
	roleFee
	rolePrice
)

var roleByName = map[string]role{
	"balance":      roleBalance,
	"makerBalance": roleBalance,
	"takerBalance": roleBalance,

	"index":       roleIndex,
	"fundingRate": roleIndex,

	"flags": roleFlags,

	"fee":      roleFee,
	"limitFee": roleFee,

	"price":           rolePrice,
	"triggerPrice":    rolePrice,
	"oraclePrice":     rolePrice,
	"settlementPrice": rolePrice,
	"limitPrice":      rolePrice,
	"minCollateral":   rolePrice,
}

type dispatchKey struct {
	solType string
	role    role
}

type convertFunc func(value interface{}) (interface{}, error)

// dispatch maps (solidity type, semantic role) to a decoding function.
// Built once at package init; combinations outside the table fall back to
// the generic rules in convertValue.
var dispatch map[dispatchKey]convertFunc

func init() {
	dispatch = map[dispatchKey]convertFunc{
		{"bytes32", roleBalance}: decodeBalanceWord,
		{"bytes32", roleIndex}:   decodeIndexWord,
		{"bytes32", roleFlags}:   decodeFlagsWord,
		{"uint256", roleFee}:     decodeFixedScalar,
		{"uint256", rolePrice}:   decodeFixedScalar,
	}

	// Every named role must have a dispatch entry for its wire type, so a
	// bad table is caught at startup rather than at decode time.
	wireTypes := map[role]string{
		roleBalance: "bytes32",
		roleIndex:   "bytes32",
		roleFlags:   "bytes32",
		roleFee:     "uint256",
		rolePrice:   "uint256",
	}
	for name, r := range roleByName {
		wire, ok := wireTypes[r]
		if !ok {
			panic(fmt.Sprintf("argument role for %q has no wire type", name))
		}
		if _, ok := dispatch[dispatchKey{wire, r}]; !ok {
			panic(fmt.Sprintf("argument role for %q has no dispatch entry", name))
		}
	}
}

func decodeBalanceWord(value interface{}) (interface{}, error) {
	word, err := asWord(value)
	if err != nil {
		return nil, err
	}
	return packed.DecodeBalance(word), nil
}

func decodeIndexWord(value interface{}) (interface{}, error) {
	word, err := asWord(value)
	if err != nil {
		return nil, err
	}
	return packed.DecodeIndex(word), nil
}

func decodeFlagsWord(value interface{}) (interface{}, error) {
	word, err := asWord(value)
	if err != nil {
		return nil, err
	}
	return packed.DecodeOrderFlagsWord(word), nil
}

// decodeFixedScalar interprets a uint256 as an 18-decimal fixed-point
// magnitude. The sign is implicit: fee and price arguments are
// non-negative on the wire.
func decodeFixedScalar(value interface{}) (interface{}, error) {
	magnitude, err := asBigInt(value)
	if err != nil {
		return nil, err
	}
	return packed.NewFixed(magnitude), nil
}

// convertValue turns one unpacked ABI value into its decoded
// representation, dispatching on (solidity type, semantic role) first and
// falling back to the generic type rules.
func convertValue(typ abi.Type, name string, value interface{}) (interface{}, error) {
	if r, ok := roleByName[name]; ok {
		if fn, ok := dispatch[dispatchKey{typ.String(), r}]; ok {
			return fn(value)
		}
	}

	switch typ.T {
	case abi.AddressTy:
		addr, ok := value.(common.Address)
		if !ok {
			return nil, fmt.Errorf("argument %s: expected address, got %T", name, value)
		}
		return addr.Hex(), nil
	case abi.BoolTy:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("argument %s: expected bool, got %T", name, value)
		}
		return b, nil
	case abi.FixedBytesTy:
		data, err := asFixedBytes(value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", name, err)
		}
		return hexutil.Encode(data), nil
	case abi.BytesTy:
		data, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("argument %s: expected bytes, got %T", name, value)
		}
		return hexutil.Encode(data), nil
	case abi.UintTy, abi.IntTy:
		return asBigInt(value)
	case abi.TupleTy:
		return convertTuple(typ, value)
	default:
		return nil, fmt.Errorf("argument %s has type %s: %w", name, typ.String(), ErrUnknownArgumentType)
	}
}

// convertTuple decodes a tuple against its registered component layout.
func convertTuple(typ abi.Type, value interface{}) (interface{}, error) {
	ident := typ.TupleRawName
	if ident == "" {
		return nil, fmt.Errorf("anonymous tuple: %w", ErrUnknownTupleLayout)
	}
	layout, ok := tupleLayouts[ident]
	if !ok {
		return nil, fmt.Errorf("tuple %s: %w", ident, ErrUnknownTupleLayout)
	}

	if len(typ.TupleRawNames) != len(layout) {
		return nil, fmt.Errorf("tuple %s has %d components, registered %d: %w",
			ident, len(typ.TupleRawNames), len(layout), ErrTupleFieldMismatch)
	}
	for i, want := range layout {
		if typ.TupleRawNames[i] != want {
			return nil, fmt.Errorf("tuple %s component %d is %q, registered %q: %w",
				ident, i, typ.TupleRawNames[i], want, ErrTupleFieldMismatch)
		}
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.NumField() != len(layout) {
		return nil, fmt.Errorf("tuple %s: unexpected unpacked shape %T", ident, value)
	}

	args := make([]model.Argument, 0, len(layout))
	for i, componentName := range typ.TupleRawNames {
		decoded, err := convertValue(*typ.TupleElems[i], componentName, rv.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("tuple %s component %s: %w", ident, componentName, err)
		}
		args = append(args, model.Argument{Name: componentName, Value: decoded})
	}
	return args, nil
}

func asWord(value interface{}) (packed.Word, error) {
	word, ok := value.([32]byte)
	if !ok {
		return packed.Word{}, fmt.Errorf("expected 32-byte word, got %T", value)
	}
	return packed.Word(word), nil
}

func asFixedBytes(value interface{}) ([]byte, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, fmt.Errorf("expected fixed bytes, got %T", value)
	}
	data := make([]byte, rv.Len())
	reflect.Copy(reflect.ValueOf(data), rv)
	return data, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}
}
