package events

// tupleLayouts registers the expected component order for every tuple type
// the decoder accepts, keyed by the ABI's stable tuple identifier (the
// solidity struct name with its contract qualifier, dots stripped, as
// go-ethereum records it in Type.TupleRawName). An unregistered tuple is a
// hard failure, as is any drift in component names or order: both would
// otherwise silently misinterpret fields after an ABI change.
var tupleLayouts = map[string][]string{
	"P1OrdersFill": {"amount", "price", "fee", "isNegativeFee"},
}
