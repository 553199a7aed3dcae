package peer

import (
	"fmt"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// EstablishEncryption starts the key exchange. The outcome is reported as
// StatusEncryptionEstablished or StatusEncryptionFailedToEstablish.
func (p *Peer) EstablishEncryption() bool {
	if p.crypto == nil {
		p.sendError(ErrNoCrypto)
		return false
	}
	if !p.encryption.CompareAndSwap(encNone, encPending) {
		p.debug(DebugWarning, "key exchange already started")
		return false
	}

	pub, err := p.crypto.PublicKey()
	if err != nil {
		p.encryption.Store(encNone)
		p.debug(DebugError, "key exchange: %v", err)
		return false
	}
	if !p.enqueueInternal(InternalOpInitEncryption, wire.ParameterDictionary{ParamClientKey: pub}) {
		p.encryption.Store(encNone)
		return false
	}
	return true
}

// completeKeyExchange handles the server's InitEncryption response.
func (p *Peer) completeKeyExchange(resp *wire.OperationResponse) {
	if p.encryption.Load() != encPending {
		p.debug(DebugWarning, "unexpected key exchange response")
		return
	}
	if !resp.IsSuccess() {
		p.finishKeyExchange(fmt.Errorf("server rejected key exchange: %d %s", resp.ReturnCode, resp.DebugMessage))
		return
	}
	key, ok := resp.Get(ParamServerKey).([]byte)
	if !ok || len(key) == 0 {
		p.finishKeyExchange(fmt.Errorf("%w: missing server key", ErrMalformedFrame))
		return
	}

	if p.cfg.AsyncKeyExchange {
		go func() {
			p.finishKeyExchange(p.crypto.DeriveSharedKey(key))
		}()
		return
	}
	p.finishKeyExchange(p.crypto.DeriveSharedKey(key))
}

func (p *Peer) finishKeyExchange(err error) {
	if err != nil {
		if !p.encryption.CompareAndSwap(encPending, encNone) {
			return
		}
		p.debug(DebugError, "key exchange failed: %v", err)
		p.queueStatus(StatusEncryptionFailedToEstablish)
		return
	}
	if !p.encryption.CompareAndSwap(encPending, encEstablished) {
		return
	}
	p.debug(DebugInfo, "encryption established")
	p.queueStatus(StatusEncryptionEstablished)
}

// seal replaces the body of a framed buffer with its ciphertext and marks
// the message type as encrypted.
func (p *Peer) seal(buf *buffer.StreamBuffer) error {
	sealed, err := p.crypto.Encrypt(buf.Bytes()[headerSize:])
	if err != nil {
		return err
	}
	if err := buf.SetLength(headerSize); err != nil {
		return err
	}
	buf.SetPosition(headerSize)
	if _, err := buf.Write(sealed); err != nil {
		return err
	}
	buf.Bytes()[headerSize-1] |= encryptedFlag
	return nil
}
