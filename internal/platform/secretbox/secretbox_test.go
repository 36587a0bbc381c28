package secretbox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ModularHallway100/harmony-backend/internal/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewRejectsShortSecret(t *testing.T) {
	_, err := New("short")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))

	_, err = New("")
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestSealOpen(t *testing.T) {
	box, err := New(testSecret)
	require.NoError(t, err)

	sealed, err := box.Seal("sk-live-abcdef")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "sk-live")

	again, err := box.Seal("sk-live-abcdef")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-abcdef", plain)
}

func TestOpenRejectsTamperingAndWrongKey(t *testing.T) {
	box, err := New(testSecret)
	require.NoError(t, err)
	sealed, err := box.Seal("secret")
	require.NoError(t, err)

	other, err := New(strings.Repeat("z", 40))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)

	_, err = box.Open("plain-value")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))

	_, err = box.Open(Prefix + "AAAA")
	assert.Error(t, err)
}
