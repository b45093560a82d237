package walletcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	perr "walletsync/internal/platform/errors"
	dom "walletsync/internal/services/auth/domain"
)

const (
	testGUID = "6f1c2b7e-3c1a-4b8e-9d4f-1a2b3c4d5e6f"
	testKey  = "0b9e8d7c-6a5b-4c3d-8e2f-1f0e9d8c7b6a"
)

// seal produces a blob the way the wallet service does
func seal(t *testing.T, plain []byte, password string, iterations int) string {
	t.Helper()
	iv := bytes.Repeat([]byte{7}, aes.BlockSize)
	key := pbkdf2.Key([]byte(password), iv, iterations, keyLen, sha1.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	n := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append(append([]byte{}, plain...), bytes.Repeat([]byte{0xAA}, n-1)...)
	padded = append(padded, byte(n))
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return base64.StdEncoding.EncodeToString(append(iv, ct...))
}

func body(t *testing.T, blob string, iterations, version int) string {
	t.Helper()
	inner, _ := json.Marshal(Envelope{Iterations: iterations, Version: version, Payload: blob})
	outer, _ := json.Marshal(map[string]string{"payload": string(inner)})
	return string(outer)
}

func walletJSON(guid, key string) []byte {
	b, _ := json.Marshal(map[string]any{"guid": guid, "sharedKey": key, "options": map[string]int{"fee": 1}})
	return b
}

func TestDecrypt_OK(t *testing.T) {
	b := body(t, seal(t, walletJSON(testGUID, testKey), "hunter2", 5000), 5000, 3)
	id, err := New().Decrypt(b, "hunter2")
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if id.GUID != testGUID || id.SharedKey != testKey {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestDecrypt_SplicedObjectPayload(t *testing.T) {
	inner, _ := json.Marshal(Envelope{Iterations: 100, Version: 2, Payload: seal(t, walletJSON(testGUID, testKey), "pw", 100)})
	b := `{"auth_type":4,"payload":` + string(inner) + `}`
	if _, err := New().Decrypt(b, "pw"); err != nil {
		t.Fatalf("object payload should open, got %v", err)
	}
}

func TestDecrypt_LegacyBlob(t *testing.T) {
	blob := seal(t, walletJSON(testGUID, testKey), "pw", legacyIterations)
	b, _ := json.Marshal(map[string]string{"payload": blob})
	if _, err := New().Decrypt(string(b), "pw"); err != nil {
		t.Fatalf("legacy payload should open, got %v", err)
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	b := body(t, seal(t, walletJSON(testGUID, testKey), "right", 50), 50, 3)
	_, err := New().Decrypt(b, "wrong")
	if !errors.Is(err, dom.ErrBadPassword) {
		t.Fatalf("want ErrBadPassword, got %v", err)
	}
}

func TestDecrypt_BadPairing(t *testing.T) {
	cases := map[string][]byte{
		"missing key":  []byte(`{"guid":"` + testGUID + `"}`),
		"missing guid": []byte(`{"sharedKey":"` + testKey + `"}`),
		"bad key":      walletJSON(testGUID, "not-a-key"),
	}
	for name, plain := range cases {
		b := body(t, seal(t, plain, "pw", 10), 10, 3)
		if _, err := New().Decrypt(b, "pw"); !errors.Is(err, dom.ErrBadPairing) {
			t.Fatalf("%s: want ErrBadPairing, got %v", name, err)
		}
	}
}

func TestDecrypt_MalformedIsNeitherCredentialError(t *testing.T) {
	cases := map[string]string{
		"not json":         `nope`,
		"no payload":       `{"guid":"x"}`,
		"not base64":       body(t, "***", 10, 3),
		"short ciphertext": body(t, base64.StdEncoding.EncodeToString([]byte("short")), 10, 3),
		"bad version":      body(t, seal(t, walletJSON(testGUID, testKey), "pw", 10), 10, 9),
		"zero iterations":  body(t, seal(t, walletJSON(testGUID, testKey), "pw", 10), 0, 3),
	}
	for name, b := range cases {
		_, err := New().Decrypt(b, "pw")
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if errors.Is(err, dom.ErrBadPassword) || errors.Is(err, dom.ErrBadPairing) {
			t.Fatalf("%s: malformed input must not look like a credential error, got %v", name, err)
		}
		if !perr.IsCode(err, perr.ErrorCodeProtocol) {
			t.Fatalf("%s: want protocol error, got %v", name, err)
		}
	}
}

func TestDecrypt_IterationCap(t *testing.T) {
	b := body(t, seal(t, walletJSON(testGUID, testKey), "pw", 10), 5000, 3)
	if _, err := New(WithMaxIterations(1000)).Decrypt(b, "pw"); !perr.IsCode(err, perr.ErrorCodeProtocol) {
		t.Fatalf("want protocol error above the cap, got %v", err)
	}
}
