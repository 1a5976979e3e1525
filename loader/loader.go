// Package loader places an assembled image into a machine's memory.
package loader

import (
	"fmt"
	"os"

	"github.com/vm32/vm32/vm"
)

// LoadImage copies image verbatim into mem starting at base, zero-filling
// everything below base and leaving everything above the image untouched.
// It fails if the image would run past the end of memory.
func LoadImage(mem *vm.Memory, base uint32, image []byte) error {
	if uint64(base)+uint64(len(image)) > uint64(mem.Size()) {
		return fmt.Errorf("loader: image of %d bytes at base 0x%08X exceeds memory size %d", len(image), base, mem.Size())
	}
	buf := mem.Bytes()
	for i := uint32(0); i < base; i++ {
		buf[i] = 0
	}
	copy(buf[base:], image)
	return nil
}

// LoadFile reads path and loads it as an image at base via LoadImage.
func LoadFile(mem *vm.Memory, base uint32, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loader: reading image %q: %w", path, err)
	}
	return LoadImage(mem, base, data)
}
