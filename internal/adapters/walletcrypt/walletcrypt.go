// Package walletcrypt opens encrypted wallet payloads
//
// A payload is AES-256-CBC with ISO 10126 padding. The key is PBKDF2-HMAC-SHA1 over the
// password, salted with the IV. The first 16 bytes of the decoded blob are the IV
package walletcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	perr "walletsync/internal/platform/errors"
	dom "walletsync/internal/services/auth/domain"
)

const (
	keyLen            = 32
	legacyIterations  = 10
	defaultMaxIterate = 1 << 20
)

// Envelope is the versioned wrapper around the ciphertext
type Envelope struct {
	Iterations int    `json:"pbkdf2_iterations"`
	Version    int    `json:"version"`
	Payload    string `json:"payload"`
}

// Decryptor implements dom.Decryptor
type Decryptor struct {
	maxIterations int
}

var _ dom.Decryptor = (*Decryptor)(nil)

// Option mutates a Decryptor
type Option func(*Decryptor)

// WithMaxIterations caps the PBKDF2 work an envelope may ask for
func WithMaxIterations(n int) Option {
	return func(d *Decryptor) {
		if n > 0 {
			d.maxIterations = n
		}
	}
}

// New returns a Decryptor
func New(opts ...Option) *Decryptor {
	d := &Decryptor{maxIterations: defaultMaxIterate}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Decrypt opens the payload carried by a wallet response body
// A body whose payload field is absent is treated as the envelope itself
func (d *Decryptor) Decrypt(body, password string) (dom.WalletIdentity, error) {
	env, err := envelopeOf([]byte(body))
	if err != nil {
		return dom.WalletIdentity{}, err
	}
	if env.Iterations < 1 || env.Iterations > d.maxIterations {
		return dom.WalletIdentity{}, perr.Protocolf("walletcrypt: iteration count %d out of range", env.Iterations)
	}
	switch env.Version {
	case 0, 1, 2, 3, 4:
	default:
		return dom.WalletIdentity{}, perr.Protocolf("walletcrypt: unsupported payload version %d", env.Version)
	}

	plain, err := open(env.Payload, password, env.Iterations)
	if err != nil {
		return dom.WalletIdentity{}, err
	}
	return identityOf(plain)
}

// envelopeOf digs the envelope out of a response body
// payload may be an object, a JSON string holding an object, or a bare legacy blob
func envelopeOf(body []byte) (Envelope, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return Envelope{}, perr.Wrap(err, perr.ErrorCodeProtocol, "walletcrypt: body is not a JSON object")
	}
	raw, ok := outer["payload"]
	if !ok {
		return Envelope{}, perr.Protocolf("walletcrypt: body has no payload")
	}
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Envelope{}, perr.Wrap(err, perr.ErrorCodeProtocol, "walletcrypt: payload string")
		}
		if !json.Valid([]byte(s)) {
			// legacy v1 payloads are the ciphertext itself
			if _, ok := outer["pbkdf2_iterations"]; ok {
				var env Envelope
				if err := json.Unmarshal(body, &env); err != nil {
					return Envelope{}, perr.Wrap(err, perr.ErrorCodeProtocol, "walletcrypt: envelope")
				}
				return env, nil
			}
			return Envelope{Iterations: legacyIterations, Version: 1, Payload: s}, nil
		}
		raw = []byte(s)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, perr.Wrap(err, perr.ErrorCodeProtocol, "walletcrypt: envelope")
	}
	if env.Payload == "" {
		return Envelope{}, perr.Protocolf("walletcrypt: envelope has no ciphertext")
	}
	return env, nil
}

func open(blob, password string, iterations int) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeProtocol, "walletcrypt: ciphertext is not base64")
	}
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return nil, perr.Protocolf("walletcrypt: ciphertext has bad length %d", len(data))
	}
	iv, ct := data[:aes.BlockSize], data[aes.BlockSize:]

	key := pbkdf2.Key([]byte(password), iv, iterations, keyLen, sha1.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "walletcrypt: cipher")
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	n := int(plain[len(plain)-1])
	if n < 1 || n > aes.BlockSize {
		return nil, dom.ErrBadPassword
	}
	plain = plain[:len(plain)-n]
	if !json.Valid(plain) {
		return nil, dom.ErrBadPassword
	}
	return plain, nil
}

type wallet struct {
	GUID      string `json:"guid"`
	SharedKey string `json:"sharedKey"`
}

func identityOf(plain []byte) (dom.WalletIdentity, error) {
	var w wallet
	if err := json.Unmarshal(plain, &w); err != nil {
		return dom.WalletIdentity{}, errors.Join(dom.ErrBadPassword, err)
	}
	if w.GUID == "" || w.SharedKey == "" {
		return dom.WalletIdentity{}, dom.ErrBadPairing
	}
	if _, err := uuid.Parse(w.GUID); err != nil {
		return dom.WalletIdentity{}, errors.Join(dom.ErrBadPairing, err)
	}
	if _, err := uuid.Parse(w.SharedKey); err != nil {
		return dom.WalletIdentity{}, errors.Join(dom.ErrBadPairing, err)
	}
	return dom.WalletIdentity{GUID: w.GUID, SharedKey: w.SharedKey}, nil
}
