package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm32/vm32/vm"
)

func TestLoadImagePlacesBytesAtBase(t *testing.T) {
	mem := vm.NewMemory(64)
	image := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, LoadImage(mem, 16, image))

	for i := uint32(0); i < 16; i++ {
		b, err := mem.ReadByte(i)
		require.NoError(t, err)
		assert.Zero(t, b)
	}
	for i, want := range image {
		b, err := mem.ReadByte(16 + uint32(i))
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}
}

func TestLoadImageFailsWhenTooLarge(t *testing.T) {
	mem := vm.NewMemory(16)
	err := LoadImage(mem, 8, make([]byte, 16))
	assert.Error(t, err)
}
