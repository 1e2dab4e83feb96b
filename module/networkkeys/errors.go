package networkkeys

import (
	"errors"
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// ErrWaitingForNetworkKey is returned when the public data of a network key
// is not known yet. It is not a failure: callers defer their work until the
// key arrives.
var ErrWaitingForNetworkKey = errors.New("waiting for network key")

// CryptographicProcessingError is returned when the public output of a
// network key cannot be turned into key material. The key store is left
// unchanged when it is returned.
type CryptographicProcessingError struct {
	KeyID dwallet.NetworkKeyID
	err   error
}

func NewCryptographicProcessingErrorf(keyID dwallet.NetworkKeyID, msg string, args ...interface{}) error {
	return CryptographicProcessingError{
		KeyID: keyID,
		err:   fmt.Errorf(msg, args...),
	}
}

func (e CryptographicProcessingError) Error() string {
	return fmt.Sprintf("cryptographic processing of network key %s failed: %s", e.KeyID, e.err.Error())
}

func (e CryptographicProcessingError) Unwrap() error {
	return e.err
}

// IsCryptographicProcessingError returns whether err is a CryptographicProcessingError
func IsCryptographicProcessingError(err error) bool {
	var e CryptographicProcessingError
	return errors.As(err, &e)
}
