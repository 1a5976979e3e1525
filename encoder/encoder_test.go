package encoder

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vm32/vm32/isa"
	"github.com/vm32/vm32/parser"
	"github.com/vm32/vm32/vm"
)

func assemble(t *testing.T, src string, startAddr uint32) ([]byte, []DebugRecord) {
	t.Helper()
	p := parser.NewParser(src, "t.casm")
	prog, err := p.Parse()
	require.NoError(t, err, "parse errors: %v", p.Errors())

	st, err := parser.Layout(prog, startAddr)
	require.NoError(t, err)

	image, debug, err := NewEncoder(st).Emit(prog, startAddr)
	require.NoError(t, err)
	return image, debug
}

func TestEmitSimpleAddEncodesLiteralsInOrder(t *testing.T) {
	image, _ := assemble(t, "add 7, 9, %R1\n", 0)
	require.Len(t, image, 12)

	word := binary.BigEndian.Uint32(image[0:4])
	dec := vm.Decode(word)
	assert.Equal(t, isa.Add, dec.Opcode)
	assert.Equal(t, vm.SpecLiteral, dec.Specs[0])
	assert.Equal(t, vm.SpecLiteral, dec.Specs[1])
	assert.EqualValues(t, 1, dec.Specs[2])

	assert.EqualValues(t, 7, binary.BigEndian.Uint32(image[4:8]))
	assert.EqualValues(t, 9, binary.BigEndian.Uint32(image[8:12]))
}

func TestEmitNoOperandInstruction(t *testing.T) {
	image, _ := assemble(t, "dup\n", 0)
	require.Len(t, image, 4)
	dec := vm.Decode(binary.BigEndian.Uint32(image))
	assert.Equal(t, isa.Dup, dec.Opcode)
}

func TestEmitBranchToLabel(t *testing.T) {
	image, _ := assemble(t, "jmp target\ntarget:\nhalt\n", 0)
	require.Len(t, image, 12)
	dec := vm.Decode(binary.BigEndian.Uint32(image[0:4]))
	assert.Equal(t, isa.Jmp, dec.Opcode)
	assert.Equal(t, vm.SpecLiteral, dec.Specs[0])
	assert.EqualValues(t, 8, binary.BigEndian.Uint32(image[4:8]))
}

func TestEmitDatumDirectives(t *testing.T) {
	image, _ := assemble(t, ".word 0xdeadbeef\n.byte 0xff\n", 0)
	require.Len(t, image, 5)
	assert.EqualValues(t, 0xdeadbeef, binary.BigEndian.Uint32(image[0:4]))
	assert.EqualValues(t, 0xff, image[4])
}

func TestEmitDebugRecords(t *testing.T) {
	_, debug := assemble(t, "nop\nhalt\n", 0x100)
	require.Len(t, debug, 2)
	assert.EqualValues(t, 0x100, debug[0].Address)
	assert.EqualValues(t, 0, debug[0].Line)
	assert.EqualValues(t, 0x104, debug[1].Address)
	assert.EqualValues(t, 1, debug[1].Line)
}

func TestEncodeDebugInfoWireFormat(t *testing.T) {
	buf := EncodeDebugInfo([]DebugRecord{{Address: 0x200, Line: 3}})
	require.Len(t, buf, 8)
	assert.EqualValues(t, 0x200, binary.BigEndian.Uint32(buf[0:4]))
	assert.EqualValues(t, 3, binary.BigEndian.Uint32(buf[4:8]))
}
