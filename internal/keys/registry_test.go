package keys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelguard/pkg/platform/sentinel"
)

func TestNew_SeedsDefaults(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for cat, def := range Defaults() {
		k := r.Current(cat)
		assert.Equal(t, Epoch(1), k.Epoch, "category %s", cat)
		assert.Equal(t, def.Numeric, k.Numeric, "category %s", cat)
		assert.Equal(t, def.Text, k.Text, "category %s", cat)
	}
}

func TestNew_OverridesReplaceFirstEpoch(t *testing.T) {
	r, err := New(WithNumeric(Int32, 77), WithText(String, "secret"))
	require.NoError(t, err)

	assert.Equal(t, Key{Epoch: 1, Numeric: 77}, r.Current(Int32))
	assert.Equal(t, Key{Epoch: 1, Text: "secret"}, r.Current(String))
}

func TestNew_RejectsEmptyKeys(t *testing.T) {
	_, err := New(WithText(String, ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrConfigurationMissing))

	_, err = New(WithNumeric(Int32, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrConfigurationMissing))
}

func TestRotate_KeepsHistory(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	epoch, err := r.SetNumeric(Int32, 1234)
	require.NoError(t, err)
	assert.Equal(t, Epoch(2), epoch)
	assert.Equal(t, int64(1234), r.Current(Int32).Numeric)

	old, ok := r.At(Int32, 1)
	require.True(t, ok)
	assert.Equal(t, int64(444444), old.Numeric)

	_, ok = r.At(Int32, 3)
	assert.False(t, ok)
	_, ok = r.At(Int32, 0)
	assert.False(t, ok)
}

func TestRotate_RejectsWrongKeyShape(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	_, err = r.SetNumeric(String, 5)
	assert.True(t, errors.Is(err, sentinel.ErrUnsupportedOperation))

	_, err = r.SetText(Int32, "x")
	assert.True(t, errors.Is(err, sentinel.ErrUnsupportedOperation))

	_, err = r.SetText(String, "")
	assert.True(t, errors.Is(err, sentinel.ErrConfigurationMissing))
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
