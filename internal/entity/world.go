package entity

import (
	"fmt"
	"math"
	"sync"
)

// BlockPos is an integer grid position.
type BlockPos struct {
	X, Y, Z int
}

// BlockAt snaps a world position to the grid.
func BlockAt(v Vec3) BlockPos {
	return BlockPos{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

func (b BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", b.X, b.Y, b.Z)
}

// Below returns the position directly underneath.
func (b BlockPos) Below() BlockPos {
	return BlockPos{X: b.X, Y: b.Y, Z: b.Z - 1}
}

// World stores placed blocks.
type World struct {
	mu     sync.RWMutex
	blocks map[BlockPos]string
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{blocks: make(map[BlockPos]string)}
}

// Place puts a block at pos, replacing whatever was there.
func (w *World) Place(pos BlockPos, block string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.blocks[pos] = block
}

// At returns the block at pos.
func (w *World) At(pos BlockPos) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.blocks[pos]
	return b, ok
}

// Len returns the number of placed blocks.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}
