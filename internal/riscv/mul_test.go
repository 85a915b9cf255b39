package riscv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulhu(t *testing.T) {
	assert.Equal(t, uint64(0), mulhu(0, 0))
	assert.Equal(t, uint64(0), mulhu(1, math.MaxUint64))
	// 2^63 * 2 overflows into the high word as exactly 1.
	assert.Equal(t, uint64(1), mulhu(1<<63, 2))
}

func TestMulh(t *testing.T) {
	assert.Equal(t, int64(0), mulh(0, 0))
	assert.Equal(t, int64(-1), mulh(-1, 1))
	assert.Equal(t, int64(0), mulh(-1, -1))
}

func TestMulhsu(t *testing.T) {
	assert.Equal(t, int64(0), mulhsu(0, 0))
	assert.Equal(t, int64(-1), mulhsu(-1, 1))
}
