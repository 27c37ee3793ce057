package loader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRawReturnsBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	data, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestLoadRawMissingFile(t *testing.T) {
	_, err := LoadRaw("/nonexistent/path/does/not/exist")
	assert.Error(t, err)
}

func buildMinimalELF32(t *testing.T, segData []byte, vaddr, entry uint32) []byte {
	t.Helper()
	const headerSize = 52
	const phSize = 32

	header := make([]byte, headerSize)
	copy(header[0:4], headerMagic[:])
	header[4] = elfClass32
	header[5] = elfDataLSB
	header[6] = evCurrent
	binary.LittleEndian.PutUint16(header[16:18], etExec)
	binary.LittleEndian.PutUint16(header[18:20], emRISCV)
	binary.LittleEndian.PutUint32(header[24:28], entry)
	binary.LittleEndian.PutUint32(header[28:32], headerSize) // phoff
	binary.LittleEndian.PutUint16(header[42:44], phSize)     // phentsize
	binary.LittleEndian.PutUint16(header[44:46], 1)          // phnum

	ph := make([]byte, phSize)
	binary.LittleEndian.PutUint32(ph[0:4], ptLoad)
	binary.LittleEndian.PutUint32(ph[4:8], headerSize+phSize) // offset
	binary.LittleEndian.PutUint32(ph[8:12], vaddr)
	binary.LittleEndian.PutUint32(ph[16:20], uint32(len(segData)))
	binary.LittleEndian.PutUint32(ph[20:24], uint32(len(segData)))

	return append(append(header, ph...), segData...)
}

func TestParseELF32LoadsSegment(t *testing.T) {
	data := buildMinimalELF32(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, 0x80000000, 0x80000000)
	entry, segments, err := ParseELF32(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), entry)
	require.Len(t, segments, 1)
	assert.Equal(t, uint32(0x80000000), segments[0].VAddr)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, segments[0].Data)
}

func TestParseELF32RejectsBadMagic(t *testing.T) {
	_, _, err := ParseELF32([]byte("not an elf file at all, but long enough to cover a full ELF32 header"))
	assert.ErrorIs(t, err, ErrInvalidELFFormat)
}

func TestParseELF32RejectsShort(t *testing.T) {
	_, _, err := ParseELF32([]byte{0x7F, 0x45})
	assert.ErrorIs(t, err, ErrTooShortBinary)
}
