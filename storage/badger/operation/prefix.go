package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

const (

	// codes for MPC session bookkeeping
	codeCompletedSession      = 10
	codeEpochCompletedSession = 11

	// codes for network key material
	codeNetworkKeyPublicData = 20
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case dwallet.SessionIdentifier:
		return i[:]
	case dwallet.NetworkKeyID:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
