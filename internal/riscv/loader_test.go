package riscv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKernelCopiesToFrontOfRAM(t *testing.T) {
	ram := NewRAM()
	image := []byte{0x01, 0x02, 0x03, 0x04}
	require.NoError(t, LoadKernel(ram, image))
	assert.Equal(t, image, ram[:len(image)])
}

func TestLoadKernelRejectsOversizedImage(t *testing.T) {
	ram := make([]byte, 4)
	err := LoadKernel(ram, make([]byte, 8))
	assert.Error(t, err)
}
