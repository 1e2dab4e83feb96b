package dwallet

import (
	"fmt"
)

// SessionOutput is the result of a session as reported by an authority:
// either a successful public output or a failure.
type SessionOutput struct {
	Rejected bool
	Output   []byte
}

// NewSuccessOutput returns the output of a successful session.
func NewSuccessOutput(output []byte) SessionOutput {
	return SessionOutput{Output: output}
}

// NewFailedOutput returns the output of a failed session.
func NewFailedOutput() SessionOutput {
	return SessionOutput{Rejected: true}
}

// Encode returns the bytes authorities vote on.
func (o SessionOutput) Encode() ([]byte, error) {
	return Encode(o)
}

// DecodeSessionOutput interprets output bytes as Success(bytes) | Failed.
// A failed output never carries a payload.
func DecodeSessionOutput(data []byte) (SessionOutput, error) {
	var out SessionOutput
	err := Decode(data, &out)
	if err != nil {
		return SessionOutput{}, err
	}
	if out.Rejected && len(out.Output) > 0 {
		return SessionOutput{}, fmt.Errorf("rejected session output carries %d bytes of payload", len(out.Output))
	}
	return out, nil
}

// SessionOutputMessage is an authority's report of the output it computed
// for a session.
type SessionOutputMessage struct {
	Authority AuthorityID
	Request   SessionRequest
	Output    []byte
}
