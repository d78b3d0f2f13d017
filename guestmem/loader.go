package guestmem

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags mirrors the teacher's loader.SegmentFlags (execute/write/read
// bits carried over from the ELF program header flags).
type SegmentFlags uint32

const (
	SegmentFlagExecute SegmentFlags = 1 << iota
	SegmentFlagWrite
	SegmentFlagRead
)

// DefaultStackTop is a conventional high address for a 32-bit ARM Linux
// user-space stack.
const DefaultStackTop = 0x7f000000

// DefaultStackSize is the default stack reservation.
const DefaultStackSize = 1 * 1024 * 1024

// Segment is one loadable ELF segment, narrowed to 32-bit addresses.
type Segment struct {
	VirtAddr uint32
	Data     []byte
	MemSize  uint32
	Flags    SegmentFlags
}

// Program is a loaded ARM/Thumb ELF image ready to be mapped into a
// FlatMemory.
type Program struct {
	EntryPoint uint32
	ThumbEntry bool // true if the entry point's low bit marked Thumb mode
	Segments   []Segment
	InitialSP  uint32
}

// Load parses a 32-bit ARM ELF binary, adapted from the teacher's
// loader.Load (which does the 64-bit AArch64 equivalent): same PT_LOAD
// walk and flag translation, narrowed to ELFCLASS32/EM_ARM and with the
// ARM convention that bit 0 of the entry point selects Thumb mode.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("guestmem: failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("guestmem: not a 32-bit ELF file")
	}
	if f.Machine != elf.EM_ARM {
		return nil, fmt.Errorf("guestmem: not an ARM ELF file (machine type: %v)", f.Machine)
	}

	entry := uint32(f.Entry)
	prog := &Program{
		EntryPoint: entry &^ 1,
		ThumbEntry: entry&1 != 0,
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("guestmem: failed to read segment at %#x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("guestmem: short read for segment at %#x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// MapInto writes every loadable segment of prog into mem, zero-filling
// any BSS tail (MemSize > len(Data)).
func (p *Program) MapInto(mem *FlatMemory) {
	for _, seg := range p.Segments {
		mem.WriteBytes(seg.VirtAddr, seg.Data)
		if seg.MemSize > uint32(len(seg.Data)) {
			mem.WriteBytes(seg.VirtAddr+uint32(len(seg.Data)), make([]byte, seg.MemSize-uint32(len(seg.Data))))
		}
	}
}
