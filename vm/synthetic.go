package vm

import (
	"encoding/binary"

	"github.com/oichkatzele/rvos/config"
)

// SyntheticELF builds a minimal, valid little-endian ELF64 executable
// image: an ELF header, one PT_LOAD program header covering size bytes
// at virtual address loadVA with R|W|X permissions, and size bytes of
// payload. debug/elf parses this exactly like a real riscv64 binary; no
// RISC-V toolchain is available to this hosted port to produce real
// compiled user programs (SPEC_FULL.md §0's "No real RISC-V execution"),
// so every Program registered in this kernel's catalog is paired with one
// of these synthetic images instead of cross-compiled machine code. The
// image's bytes are never executed; only from_elf's layout and
// permission derivation run against them (vm.FromELF).
func SyntheticELF(loadVA int, size int) []byte {
	if size <= 0 {
		size = config.PGSIZE
	}
	const ehsize = 64
	const phsize = 56
	total := ehsize + phsize + size
	b := make([]byte, total)

	copy(b[0:4], []byte{0x7f, 'E', 'L', 'F'})
	b[4] = 2 // ELFCLASS64
	b[5] = 1 // little endian
	b[6] = 1 // EI_VERSION
	b[7] = 0 // ELFOSABI_NONE

	binary.LittleEndian.PutUint16(b[16:18], 2)      // e_type = ET_EXEC
	binary.LittleEndian.PutUint16(b[18:20], 0xf3)   // e_machine = EM_RISCV
	binary.LittleEndian.PutUint32(b[20:24], 1)      // e_version
	binary.LittleEndian.PutUint64(b[24:32], uint64(loadVA)) // e_entry
	binary.LittleEndian.PutUint64(b[32:40], ehsize)  // e_phoff
	binary.LittleEndian.PutUint64(b[40:48], 0)       // e_shoff
	binary.LittleEndian.PutUint32(b[48:52], 0)       // e_flags
	binary.LittleEndian.PutUint16(b[52:54], ehsize)  // e_ehsize
	binary.LittleEndian.PutUint16(b[54:56], phsize)  // e_phentsize
	binary.LittleEndian.PutUint16(b[56:58], 1)       // e_phnum
	binary.LittleEndian.PutUint16(b[58:60], 0)       // e_shentsize
	binary.LittleEndian.PutUint16(b[60:62], 0)       // e_shnum
	binary.LittleEndian.PutUint16(b[62:64], 0)       // e_shstrndx

	ph := b[ehsize : ehsize+phsize]
	binary.LittleEndian.PutUint32(ph[0:4], 1)                    // p_type = PT_LOAD
	binary.LittleEndian.PutUint32(ph[4:8], 7)                     // p_flags = R|W|X
	binary.LittleEndian.PutUint64(ph[8:16], uint64(ehsize+phsize)) // p_offset
	binary.LittleEndian.PutUint64(ph[16:24], uint64(loadVA))      // p_vaddr
	binary.LittleEndian.PutUint64(ph[24:32], uint64(loadVA))      // p_paddr
	binary.LittleEndian.PutUint64(ph[32:40], uint64(size))        // p_filesz
	binary.LittleEndian.PutUint64(ph[40:48], uint64(size))        // p_memsz
	binary.LittleEndian.PutUint64(ph[48:56], uint64(config.PGSIZE)) // p_align

	return b
}
