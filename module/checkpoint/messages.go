package checkpoint

import (
	"errors"
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub004/model/dwallet"
)

// DefaultMaxChunkSize is the largest network key output payload a single
// checkpoint message carries.
const DefaultMaxChunkSize = 5 * 1024

var ErrUnknownRequestInput = errors.New("unknown request input")

// BuildMessages converts the certified output of a session into the
// checkpoint messages that report it on chain. Every request variant maps to
// one message kind. Network key outputs are split into chunks of at most
// maxChunkSize bytes.
//
// Output bytes that do not decode as a session output are reported as a
// rejection: the authorities agreed on them, but nothing meaningful can be
// reported on chain.
func BuildMessages(request *dwallet.SessionRequest, output []byte, maxChunkSize int) ([]dwallet.CheckpointMessage, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("max chunk size must be positive, got %d", maxChunkSize)
	}
	decoded, err := dwallet.DecodeSessionOutput(output)
	if err != nil {
		decoded = dwallet.NewFailedOutput()
	}
	header := dwallet.MessageHeader{
		SessionSequenceNumber: request.SequenceNumber,
		Rejected:              decoded.Rejected,
	}
	payload := decoded.Output

	switch in := request.Input.(type) {
	case *dwallet.DKGFirstRoundRequest:
		return single(&dwallet.RespondDWalletDKGFirstRoundOutput{
			MessageHeader:    header,
			DWalletID:        in.DWalletID,
			FirstRoundOutput: payload,
		}), nil
	case *dwallet.DKGSecondRoundRequest:
		return single(&dwallet.RespondDWalletDKGSecondRoundOutput{
			MessageHeader:                 header,
			DWalletID:                     in.DWalletID,
			EncryptedUserSecretKeyShareID: in.EncryptedUserSecretKeyShareID,
			Output:                        payload,
		}), nil
	case *dwallet.PresignRequest:
		return single(&dwallet.RespondDWalletPresign{
			MessageHeader: header,
			DWalletID:     in.DWalletID,
			PresignID:     in.PresignID,
			Presign:       payload,
		}), nil
	case *dwallet.SignRequest:
		return single(&dwallet.RespondDWalletSign{
			MessageHeader: header,
			DWalletID:     in.DWalletID,
			SignID:        in.SignID,
			Signature:     payload,
			IsFutureSign:  in.IsFutureSign,
		}), nil
	case *dwallet.PartialSignatureVerificationRequest:
		return single(&dwallet.RespondDWalletPartialSignatureVerificationOutput{
			MessageHeader:                     header,
			DWalletID:                         in.DWalletID,
			PartialCentralizedSignedMessageID: in.PartialCentralizedSignedMessageID,
		}), nil
	case *dwallet.EncryptedShareVerificationRequest:
		return single(&dwallet.RespondDWalletEncryptedUserShare{
			MessageHeader:                 header,
			DWalletID:                     in.DWalletID,
			EncryptedUserSecretKeyShareID: in.EncryptedUserSecretKeyShareID,
		}), nil
	case *dwallet.MakeSharesPublicRequest:
		msg := &dwallet.RespondMakeDWalletUserSecretKeySharesPublic{
			MessageHeader: header,
			DWalletID:     in.DWalletID,
		}
		if !header.Rejected {
			msg.PublicUserSecretKeyShares = in.PublicUserSecretKeyShares
		}
		return single(msg), nil
	case *dwallet.ImportedKeyVerificationRequest:
		return single(&dwallet.RespondDWalletImportedKeyVerificationOutput{
			MessageHeader:                 header,
			DWalletID:                     in.DWalletID,
			EncryptedUserSecretKeyShareID: in.EncryptedUserSecretKeyShareID,
			Output:                        payload,
		}), nil
	case *dwallet.NetworkKeyDKGRequest:
		chunks := Chunks(header, in.NetworkEncryptionKeyID, payload, maxChunkSize)
		messages := make([]dwallet.CheckpointMessage, 0, len(chunks))
		for _, chunk := range chunks {
			messages = append(messages, &dwallet.RespondDWalletMPCNetworkDKGOutput{NetworkKeyOutputChunk: chunk})
		}
		return messages, nil
	case *dwallet.NetworkKeyReconfigurationRequest:
		chunks := Chunks(header, in.NetworkEncryptionKeyID, payload, maxChunkSize)
		messages := make([]dwallet.CheckpointMessage, 0, len(chunks))
		for _, chunk := range chunks {
			messages = append(messages, &dwallet.RespondDWalletMPCNetworkReconfigurationOutput{NetworkKeyOutputChunk: chunk})
		}
		return messages, nil
	default:
		return nil, fmt.Errorf("%T: %w", request.Input, ErrUnknownRequestInput)
	}
}

func single(msg dwallet.CheckpointMessage) []dwallet.CheckpointMessage {
	return []dwallet.CheckpointMessage{msg}
}

// Chunks splits a network key output into chunks of at most maxChunkSize
// bytes. Only the final chunk has IsLast set. Rejected outputs and empty
// payloads yield a single empty chunk.
func Chunks(header dwallet.MessageHeader, keyID dwallet.NetworkKeyID, payload []byte, maxChunkSize int) []dwallet.NetworkKeyOutputChunk {
	if header.Rejected || len(payload) == 0 {
		return []dwallet.NetworkKeyOutputChunk{{
			MessageHeader:          header,
			NetworkEncryptionKeyID: keyID,
			PublicOutput:           []byte{},
			IsLast:                 true,
		}}
	}

	count := (len(payload) + maxChunkSize - 1) / maxChunkSize
	chunks := make([]dwallet.NetworkKeyOutputChunk, 0, count)
	for i := 0; i < count; i++ {
		start := i * maxChunkSize
		end := start + maxChunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunks = append(chunks, dwallet.NetworkKeyOutputChunk{
			MessageHeader:          header,
			NetworkEncryptionKeyID: keyID,
			ChunkIndex:             uint32(i),
			PublicOutput:           payload[start:end],
			IsLast:                 i == count-1,
		})
	}
	return chunks
}
