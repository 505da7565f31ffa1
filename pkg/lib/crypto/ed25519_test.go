package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-sharedvar/pkg/types"
)

func newKey(t *testing.T, b byte) ([]byte, []byte) {
	t.Helper()
	priv, err := KeyFromSeed(bytes.Repeat([]byte{b}, SeedSize))
	require.NoError(t, err)
	pub, err := PublicKeyOf(priv)
	require.NoError(t, err)
	return pub, priv
}

func TestSignVerify(t *testing.T) {
	pub, priv := newKey(t, 1)
	scheme := Ed25519Scheme{}

	v, err := Sign(priv, 7, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, pub, v.PublicKey)
	assert.Len(t, v.Signature, SignatureSize)
	assert.Equal(t, uint64(7), Sequence(v))
	assert.True(t, scheme.Verify(v, pub))

	t.Run("TamperedValue", func(t *testing.T) {
		bad := v.Clone()
		bad.Value = []byte("hellO")
		assert.False(t, scheme.Verify(bad, pub))
	})

	t.Run("TamperedSequence", func(t *testing.T) {
		bad := v.Clone()
		bad.Signature[7] = 8
		assert.False(t, scheme.Verify(bad, pub))
	})

	t.Run("WrongClaimedKey", func(t *testing.T) {
		other, _ := newKey(t, 2)
		assert.False(t, scheme.Verify(v, other))
	})

	t.Run("ForeignPublicKeyField", func(t *testing.T) {
		other, _ := newKey(t, 2)
		bad := v.Clone()
		bad.PublicKey = other
		assert.False(t, scheme.Verify(bad, pub))
	})

	t.Run("Malformed", func(t *testing.T) {
		assert.False(t, scheme.Verify(nil, pub))
		assert.False(t, scheme.Verify(&types.SignedVariable{PublicKey: pub}, pub))
		assert.False(t, scheme.Verify(v, pub[:16]))
	})
}

func TestSign_Errors(t *testing.T) {
	_, err := Sign(nil, 1, nil)
	assert.ErrorIs(t, err, ErrNilPrivateKey)

	_, err = Sign(make([]byte, 10), 1, nil)
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = KeyFromSeed([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestFresher(t *testing.T) {
	_, priv := newKey(t, 3)
	scheme := Ed25519Scheme{}

	v1, err := Sign(priv, 1, []byte("a"))
	require.NoError(t, err)
	v2, err := Sign(priv, 2, []byte("a"))
	require.NoError(t, err)
	v2b, err := Sign(priv, 2, []byte("b"))
	require.NoError(t, err)

	assert.True(t, scheme.Fresher(v2, v1))
	assert.False(t, scheme.Fresher(v1, v2))

	// 同序列号不同值：恰有一个更新
	assert.NotEqual(t, scheme.Fresher(v2, v2b), scheme.Fresher(v2b, v2))

	// 严格：自身不比自身新
	assert.False(t, scheme.Fresher(v1, v1))
}

func TestGenerateKey(t *testing.T) {
	pub, priv, err := GenerateKey(nil)
	require.NoError(t, err)
	assert.Len(t, pub, PublicKeySize)
	assert.Len(t, priv, PrivateKeySize)

	v, err := Sign(priv, 0, nil)
	require.NoError(t, err)
	assert.True(t, Ed25519Scheme{}.Verify(v, pub))
}
