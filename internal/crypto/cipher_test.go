package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()

	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := testKey(t)

	plaintexts := []string{
		"S3cr3t!",
		"",
		"a",
		"correct horse battery staple with some length to it",
		"unicode: пароль 密码 🔑",
	}

	for _, p := range plaintexts {
		blob, err := Encrypt([]byte(p), key)
		require.NoError(t, err)

		got, err := Decrypt(blob, key)
		require.NoError(t, err)
		assert.Equal(t, p, string(got))
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	key := testKey(t)

	first, err := Encrypt([]byte("same plaintext"), key)
	require.NoError(t, err)

	second, err := Encrypt([]byte("same plaintext"), key)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two encryptions of the same plaintext must differ")
}

func TestEncrypt_OutputIsBase64(t *testing.T) {
	key := testKey(t)

	blob, err := Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	_, err = base64.StdEncoding.DecodeString(blob)
	assert.NoError(t, err)
}

func TestDecrypt_TamperDetection(t *testing.T) {
	key := testKey(t)

	blob, err := Encrypt([]byte("tamper target"), key)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	// Flipping any single byte -- nonce, ciphertext, or tag -- must fail
	// authentication, never return altered plaintext.
	for i := range raw {
		corrupted := make([]byte, len(raw))
		copy(corrupted, raw)
		corrupted[i] ^= 0x01

		_, err := Decrypt(base64.StdEncoding.EncodeToString(corrupted), key)
		require.ErrorIs(t, err, ErrDecryptionFailed, "byte %d", i)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), testKey(t))
	require.NoError(t, err)

	_, err = Decrypt(blob, testKey(t))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecrypt_MalformedInput(t *testing.T) {
	key := testKey(t)

	cases := map[string]string{
		"not base64": "not-valid-base64!!!",
		"empty":      "",
		"too short":  base64.StdEncoding.EncodeToString([]byte("short")),
	}

	for name, blob := range cases {
		_, err := Decrypt(blob, key)
		assert.ErrorIs(t, err, ErrDecryptionFailed, name)
	}
}

func TestEncrypt_RejectsWrongKeySize(t *testing.T) {
	_, err := Encrypt([]byte("secret"), []byte("short key"))
	assert.Error(t, err)
}
