// Package shaders provides the compute-shader permutations used by the vrs
// controller.
//
// Three permutations exist: the shading-rate mask compiled for 8x8 tiles, the
// same program compiled for 16x16 tiles, and the debug overlay. The WGSL
// sources are embedded in the binary; [Embedded] compiles them to SPIR-V with
// naga the first time each permutation is requested. Hosts that ship their
// own precompiled programs use [Static] instead.
package shaders

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/naga"
)

// Embedded WGSL sources. The mask source is a template: {{TILE_SIZE}} is
// replaced per permutation.

//go:embed wgsl/mask.wgsl
var maskShaderSource string

//go:embed wgsl/debug.wgsl
var debugShaderSource string

const tileSizeToken = "{{TILE_SIZE}}"

// Errors returned by the package.
var (
	// ErrUnsupportedTileSize is returned for tile sizes without a mask permutation.
	ErrUnsupportedTileSize = errors.New("shaders: unsupported shading-rate tile size")

	// ErrUnknownPermutation is returned for values outside the permutation set.
	ErrUnknownPermutation = errors.New("shaders: unknown permutation")

	// ErrMissingBytecode is returned when a library has no program for a permutation.
	ErrMissingBytecode = errors.New("shaders: missing bytecode")

	// ErrInvalidSPIRV is returned when bytecode is not a SPIR-V module.
	ErrInvalidSPIRV = errors.New("shaders: invalid SPIR-V")
)

// Permutation identifies one compiled variant of the shader set.
type Permutation uint8

// Permutations.
const (
	// Mask8x8 is the mask program for 8x8 shading-rate tiles.
	Mask8x8 Permutation = iota
	// Mask16x16 is the mask program for 16x16 shading-rate tiles.
	Mask16x16
	// Debug is the overlay program.
	Debug

	// Count is the number of permutations.
	Count
)

// String returns the permutation name.
func (p Permutation) String() string {
	switch p {
	case Mask8x8:
		return "mask8x8"
	case Mask16x16:
		return "mask16x16"
	case Debug:
		return "debug"
	}
	return "Permutation(" + strconv.Itoa(int(p)) + ")"
}

// TileSize returns the tile size a mask permutation was compiled for, or 0
// for the debug overlay.
func (p Permutation) TileSize() uint32 {
	switch p {
	case Mask8x8:
		return 8
	case Mask16x16:
		return 16
	}
	return 0
}

// All returns every permutation in table order.
func All() []Permutation {
	return []Permutation{Mask8x8, Mask16x16, Debug}
}

// ForTileSize selects the mask permutation for a hardware tile size.
// It is total: every size other than 8 and 16 yields ErrUnsupportedTileSize.
func ForTileSize(tileSize uint32) (Permutation, error) {
	switch tileSize {
	case 8:
		return Mask8x8, nil
	case 16:
		return Mask16x16, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedTileSize, tileSize)
}

// Source returns the WGSL source of a permutation.
func Source(p Permutation) (string, error) {
	switch p {
	case Mask8x8, Mask16x16:
		return strings.ReplaceAll(maskShaderSource, tileSizeToken, strconv.Itoa(int(p.TileSize()))), nil
	case Debug:
		return debugShaderSource, nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownPermutation, p)
}

// Library provides compiled programs by permutation.
type Library interface {
	// Bytecode returns the compiled program. Callers must not modify it.
	Bytecode(p Permutation) ([]byte, error)
}

// embeddedLibrary compiles the embedded sources on first use.
type embeddedLibrary struct {
	once [Count]sync.Once
	code [Count][]byte
	err  [Count]error
}

var embedded embeddedLibrary

// Embedded returns the library backed by the embedded WGSL sources.
// Each permutation is compiled once per process; the result is shared.
func Embedded() Library {
	return &embedded
}

func (l *embeddedLibrary) Bytecode(p Permutation) ([]byte, error) {
	if p >= Count {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPermutation, p)
	}
	l.once[p].Do(func() {
		l.code[p], l.err[p] = Compile(p)
	})
	return l.code[p], l.err[p]
}

// Compile compiles a permutation's WGSL source to SPIR-V.
func Compile(p Permutation) ([]byte, error) {
	src, err := Source(p)
	if err != nil {
		return nil, err
	}
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("shaders: compile %s: %w", p, err)
	}
	return spirv, nil
}

// Static is a library of caller-supplied programs.
type Static map[Permutation][]byte

// Bytecode returns the stored program or ErrMissingBytecode.
func (s Static) Bytecode(p Permutation) ([]byte, error) {
	if p >= Count {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPermutation, p)
	}
	code, ok := s[p]
	if !ok || len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingBytecode, p)
	}
	return code, nil
}

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// Words converts SPIR-V bytes into little-endian 32-bit words.
func Words(code []byte) ([]uint32, error) {
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != SPIRVMagic {
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, words[0])
	}
	return words, nil
}

// FileName returns the file name a permutation's SPIR-V is stored under.
func FileName(p Permutation) string {
	return p.String() + ".spv"
}

// LoadDir reads precompiled programs named by FileName from dir.
// Missing files are skipped; the result reports ErrMissingBytecode for them.
func LoadDir(dir string) (Static, error) {
	lib := make(Static)
	for _, p := range All() {
		code, err := os.ReadFile(filepath.Join(dir, FileName(p)))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("shaders: %w", err)
		}
		if _, err := Words(code); err != nil {
			return nil, fmt.Errorf("shaders: %s: %w", FileName(p), err)
		}
		lib[p] = code
	}
	if len(lib) == 0 {
		return nil, fmt.Errorf("%w: no programs in %s", ErrMissingBytecode, dir)
	}
	return lib, nil
}
