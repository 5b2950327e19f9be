package model

// Voucher is an outbound settlement instruction for a base-layer contract
// call. The core only builds vouchers; executing them is the base layer's
// business.
type Voucher struct {
	// Destination is the contract the base layer will call.
	Destination Account

	// Payload is a 4-byte function selector followed by ABI-encoded
	// arguments.
	Payload []byte
}
