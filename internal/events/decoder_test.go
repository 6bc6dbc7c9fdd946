package events

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"perpflow/internal/model"
	"perpflow/internal/packed"
	"perpflow/internal/registry"
)

var (
	depositSig     = crypto.Keccak256Hash([]byte("LogDeposit(address,uint256,bytes32)"))
	withdrawSig    = crypto.Keccak256Hash([]byte("LogWithdraw(address,address,uint256,bytes32)"))
	orderFilledSig = crypto.Keccak256Hash([]byte("LogOrderFilled(bytes32,bytes32,uint256,(uint256,uint256,uint256,bool))"))
	fundingSig     = crypto.Keccak256Hash([]byte("LogFundingRateUpdated(bytes32)"))
)

func uintWord(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func boolWord(v bool) []byte {
	if v {
		return uintWord(1)
	}
	return uintWord(0)
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func TestDecodeDepositThroughProxy(t *testing.T) {
	decoder, reg := newTestDecoder(t)

	perpAddr := mustAddress(t, reg, "PerpetualProxy")
	account := common.HexToAddress("0x1212121212121212121212121212121212121212")

	balance := packed.Balance{
		MarginIsPositive:   true,
		PositionIsPositive: false,
		Margin:             big.NewInt(2500000),
		Position:           big.NewInt(300),
	}
	balanceWord, err := balance.Word()
	if err != nil {
		t.Fatalf("encode balance: %v", err)
	}

	data := append(uintWord(2500000), balanceWord[:]...)
	log := types.Log{
		Address:     perpAddr,
		Topics:      []common.Hash{depositSig, addressTopic(account)},
		Data:        data,
		BlockNumber: 77,
		TxHash:      common.HexToHash("0xabc1"),
		Index:       3,
	}

	decoded, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded == nil {
		t.Fatalf("expected decoded event")
	}

	// LogDeposit lives on the implementation ABI, reached via proxy fallback.
	if decoded.Contract != "PerpetualV1" || decoded.Name != "LogDeposit" {
		t.Fatalf("resolved %s.%s", decoded.Contract, decoded.Name)
	}
	if decoded.LogIndex != 3 || decoded.BlockNumber != 77 {
		t.Fatalf("log metadata not carried through: %+v", decoded)
	}
	if len(decoded.Args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(decoded.Args))
	}

	if got, _ := decoded.Arg("account"); got != account.Hex() {
		t.Fatalf("account: %v", got)
	}
	amount, _ := decoded.Arg("amount")
	if amount.(*big.Int).Int64() != 2500000 {
		t.Fatalf("amount: %v", amount)
	}
	gotBalance, _ := decoded.Arg("balance")
	if !gotBalance.(packed.Balance).Equal(balance) {
		t.Fatalf("balance: %+v", gotBalance)
	}
}

func TestDecodeOrderFilledTuple(t *testing.T) {
	decoder, reg := newTestDecoder(t)

	ordersAddr := mustAddress(t, reg, "P1Orders")
	orderHash := uintWord(0xbeef)
	flags := uintWord(5) // isBuy + isNegativeLimitFee

	data := orderHash
	data = append(data, flags...)
	data = append(data, uintWord(2000000000000000000)...) // triggerPrice = 2
	data = append(data, uintWord(10)...)                  // fill.amount
	data = append(data, uintWord(1500000000000000000)...) // fill.price = 1.5
	data = append(data, uintWord(30000000000000000)...)   // fill.fee = 0.03
	data = append(data, boolWord(true)...)                // fill.isNegativeFee

	log := types.Log{
		Address: ordersAddr,
		Topics:  []common.Hash{orderFilledSig},
		Data:    data,
	}

	decoded, err := decoder.Decode(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded == nil || decoded.Name != "LogOrderFilled" {
		t.Fatalf("decoded: %+v", decoded)
	}

	gotFlags, _ := decoded.Arg("flags")
	wantFlags := packed.OrderFlags{IsBuy: true, IsNegativeLimitFee: true}
	if gotFlags.(packed.OrderFlags) != wantFlags {
		t.Fatalf("flags: %+v", gotFlags)
	}

	trigger, _ := decoded.Arg("triggerPrice")
	if trigger.(packed.Fixed).String() != "2" {
		t.Fatalf("triggerPrice: %v", trigger)
	}

	fillValue, ok := decoded.Arg("fill")
	if !ok {
		t.Fatalf("fill missing")
	}
	fill := fillValue.([]model.Argument)
	if len(fill) != 4 {
		t.Fatalf("fill components: %d", len(fill))
	}
	if fill[0].Name != "amount" || fill[0].Value.(*big.Int).Int64() != 10 {
		t.Fatalf("fill.amount: %+v", fill[0])
	}
	if fill[1].Name != "price" || fill[1].Value.(packed.Fixed).String() != "1.5" {
		t.Fatalf("fill.price: %+v", fill[1])
	}
	if fill[2].Name != "fee" || fill[2].Value.(packed.Fixed).String() != "0.03" {
		t.Fatalf("fill.fee: %+v", fill[2])
	}
	if fill[3].Name != "isNegativeFee" || fill[3].Value.(bool) != true {
		t.Fatalf("fill.isNegativeFee: %+v", fill[3])
	}
}

func TestDecodeFundingRateIndex(t *testing.T) {
	decoder, reg := newTestDecoder(t)

	fundingAddr := mustAddress(t, reg, "P1FundingOracle")
	index := packed.Index{
		Timestamp: big.NewInt(1700000000),
		Value:     packed.FixedFromSignMag(true, big.NewInt(125000000000000)),
	}
	word, err := index.Word()
	if err != nil {
		t.Fatalf("encode index: %v", err)
	}

	decoded, err := decoder.Decode(types.Log{
		Address: fundingAddr,
		Topics:  []common.Hash{fundingSig},
		Data:    word[:],
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded == nil || decoded.Name != "LogFundingRateUpdated" {
		t.Fatalf("decoded: %+v", decoded)
	}

	got, _ := decoded.Arg("fundingRate")
	if !got.(packed.Index).Equal(index) {
		t.Fatalf("fundingRate: %+v", got)
	}
}

func TestDecodeUnknownAddressAndSignature(t *testing.T) {
	decoder, reg := newTestDecoder(t)

	decoded, err := decoder.Decode(types.Log{
		Address: common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Topics:  []common.Hash{depositSig},
	})
	if err != nil {
		t.Fatalf("unknown address must not error: %v", err)
	}
	if decoded != nil {
		t.Fatalf("unknown address should not decode")
	}

	// Known address, signature from an unrelated contract.
	unknownSig := crypto.Keccak256Hash([]byte("SomethingElse(uint256)"))
	decoded, err = decoder.Decode(types.Log{
		Address: mustAddress(t, reg, "P1Orders"),
		Topics:  []common.Hash{unknownSig},
	})
	if err != nil {
		t.Fatalf("unknown signature must not error: %v", err)
	}
	if decoded != nil {
		t.Fatalf("unknown signature should not decode")
	}
}

func TestDecodeReceiptOrderAndFiltering(t *testing.T) {
	decoder, reg := newTestDecoder(t)

	perpAddr := mustAddress(t, reg, "PerpetualProxy")
	account := common.HexToAddress("0x3434343434343434343434343434343434343434")

	balanceWord, err := (packed.Balance{MarginIsPositive: true, Margin: big.NewInt(1), Position: big.NewInt(0)}).Word()
	if err != nil {
		t.Fatalf("encode balance: %v", err)
	}
	depositData := append(uintWord(1), balanceWord[:]...)

	unrelated := &types.Log{
		Address: common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		Topics:  []common.Hash{depositSig},
		Index:   0,
	}
	deposit := &types.Log{
		Address: perpAddr,
		Topics:  []common.Hash{depositSig, addressTopic(account)},
		Data:    depositData,
		Index:   1,
	}

	out, err := decoder.DecodeReceipt(&types.Receipt{Logs: []*types.Log{unrelated, deposit}})
	if err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if len(out) != 1 || out[0].Name != "LogDeposit" {
		t.Fatalf("receipt decode: %+v", out)
	}
}

func TestDecodeEventMapSortsByLogIndex(t *testing.T) {
	decoder, reg := newTestDecoder(t)

	perpAddr := mustAddress(t, reg, "PerpetualProxy")
	account := common.HexToAddress("0x5656565656565656565656565656565656565656")
	destination := common.HexToAddress("0x7878787878787878787878787878787878787878")

	balanceWord, err := (packed.Balance{MarginIsPositive: true, Margin: big.NewInt(9), Position: big.NewInt(0)}).Word()
	if err != nil {
		t.Fatalf("encode balance: %v", err)
	}

	depositData := append(uintWord(100), balanceWord[:]...)
	withdrawData := common.LeftPadBytes(destination.Bytes(), 32)
	withdrawData = append(withdrawData, uintWord(40)...)
	withdrawData = append(withdrawData, balanceWord[:]...)

	entries := map[string][]model.RawEvent{
		"LogDeposit": {{
			Name:     "LogDeposit",
			Address:  perpAddr.Hex(),
			Topics:   []string{depositSig.Hex(), addressTopic(account).Hex()},
			Data:     hexutil.Encode(depositData),
			LogIndex: 5,
		}},
		"LogWithdraw": {{
			Name:     "LogWithdraw",
			Address:  perpAddr.Hex(),
			Topics:   []string{withdrawSig.Hex(), addressTopic(account).Hex()},
			Data:     hexutil.Encode(withdrawData),
			LogIndex: 2,
		}},
	}

	out, err := decoder.DecodeEventMap(entries)
	if err != nil {
		t.Fatalf("decode event map: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 events, got %d", len(out))
	}
	if out[0].Name != "LogWithdraw" || out[1].Name != "LogDeposit" {
		t.Fatalf("order: %s, %s", out[0].Name, out[1].Name)
	}
	if out[0].LogIndex != 2 || out[1].LogIndex != 5 {
		t.Fatalf("log indices: %d, %d", out[0].LogIndex, out[1].LogIndex)
	}
}

func TestDecodeMalformedDataFails(t *testing.T) {
	decoder, reg := newTestDecoder(t)

	log := types.Log{
		Address: mustAddress(t, reg, "PerpetualProxy"),
		Topics:  []common.Hash{depositSig, addressTopic(common.Address{})},
		Data:    uintWord(1), // missing the balance word
	}
	if _, err := decoder.Decode(log); err == nil {
		t.Fatalf("short data section should fail decoding")
	}
}

func TestConvertTupleUnknownLayout(t *testing.T) {
	typ, err := abi.NewType("tuple", "struct P1Orders.TradeData", []abi.ArgumentMarshaling{
		{Name: "amount", Type: "uint256", InternalType: "uint256"},
	})
	if err != nil {
		t.Fatalf("new type: %v", err)
	}

	_, err = convertValue(typ, "tradeData", nil)
	if !errors.Is(err, ErrUnknownTupleLayout) {
		t.Fatalf("expected ErrUnknownTupleLayout, got %v", err)
	}
}

func TestConvertTupleFieldMismatch(t *testing.T) {
	typ, err := abi.NewType("tuple", "struct P1Orders.Fill", []abi.ArgumentMarshaling{
		{Name: "amount", Type: "uint256", InternalType: "uint256"},
		{Name: "cost", Type: "uint256", InternalType: "uint256"},
		{Name: "fee", Type: "uint256", InternalType: "uint256"},
		{Name: "isNegativeFee", Type: "bool", InternalType: "bool"},
	})
	if err != nil {
		t.Fatalf("new type: %v", err)
	}

	_, err = convertValue(typ, "fill", nil)
	if !errors.Is(err, ErrTupleFieldMismatch) {
		t.Fatalf("expected ErrTupleFieldMismatch, got %v", err)
	}
}

func newTestDecoder(t *testing.T) (*Decoder, *registry.Registry) {
	t.Helper()
	reg, err := registry.New(registry.NetworkMainnet)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return NewDecoder(reg, nil), reg
}

func mustAddress(t *testing.T, reg *registry.Registry, name string) common.Address {
	t.Helper()
	addr, err := reg.Address(name)
	if err != nil {
		t.Fatalf("address of %s: %v", name, err)
	}
	return addr
}
