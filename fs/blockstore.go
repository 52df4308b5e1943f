package fs

import (
	"sync"

	"github.com/oichkatzele/rvos/defs"
)

// BSIZE is the size of a single disk block in bytes, matching biscuit's
// own fs.BSIZE (fs/blk.go).
const BSIZE = 4096

// inode is the on-disk-ish record for one file: an ordered list of block
// numbers plus the file's logical length. BlockStore keeps inodes and
// blocks in host memory rather than behind a real block device, since the
// block device driver is itself an external collaborator spec.md places
// outside THE CORE (§1).
type inode struct {
	blocks []int // indices into BlockStore.blocks; grows on demand
	size   int
}

// BlockStore is a single-directory, inode-numbered filesystem backed by a
// slice of fixed-size blocks, implementing the fs.Store interface spec.md
// §1 names. Block allocation is a free list, kept as a stack of free block
// indices and guarded by a single mutex, grounded on biscuit's mem.Physmem_t free-list
// pattern (mem/mem.go _phys_new/_phys_put) applied to data blocks instead
// of physical page frames.
type BlockStore struct {
	mu sync.Mutex

	blocks  []*[BSIZE]byte
	freeBlk []int // free block indices

	inodes  []*inode // index 0 unused; valid ids start at 1
	names   map[string]InodeID
	nlinks  map[InodeID]int
}

// NewBlockStore creates an empty store with room for up to capacityBlocks
// data blocks.
func NewBlockStore(capacityBlocks int) *BlockStore {
	bs := &BlockStore{
		blocks: make([]*[BSIZE]byte, capacityBlocks),
		names:  map[string]InodeID{},
		nlinks: map[InodeID]int{},
	}
	bs.inodes = append(bs.inodes, nil) // inode 0 is reserved/invalid
	for i := range bs.blocks {
		bs.blocks[i] = &[BSIZE]byte{}
		bs.freeBlk = append(bs.freeBlk, i)
	}
	return bs
}

func (bs *BlockStore) allocBlock() (int, bool) {
	if len(bs.freeBlk) == 0 {
		return 0, false
	}
	n := len(bs.freeBlk) - 1
	idx := bs.freeBlk[n]
	bs.freeBlk = bs.freeBlk[:n]
	return idx, true
}

func (bs *BlockStore) freeBlock(idx int) {
	for i := range bs.blocks[idx] {
		bs.blocks[idx][i] = 0
	}
	bs.freeBlk = append(bs.freeBlk, idx)
}

// Ls lists every bound name.
func (bs *BlockStore) Ls() []string {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	out := make([]string, 0, len(bs.names))
	for n := range bs.names {
		out = append(out, n)
	}
	return out
}

// FindNode resolves name to an inode id.
func (bs *BlockStore) FindNode(name string) (InodeID, bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	id, ok := bs.names[name]
	return id, ok
}

// CreateInode creates a fresh, empty inode bound to name.
func (bs *BlockStore) CreateInode(name string) (InodeID, bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if _, exists := bs.names[name]; exists {
		return 0, false
	}
	bs.inodes = append(bs.inodes, &inode{})
	id := InodeID(len(bs.inodes) - 1)
	bs.names[name] = id
	bs.nlinks[id] = 1
	return id, true
}

func (bs *BlockStore) get(ino InodeID) *inode {
	if int(ino) <= 0 || int(ino) >= len(bs.inodes) {
		return nil
	}
	return bs.inodes[ino]
}

// ReadAt reads into buf at the given offset, returning the count actually
// read (short on EOF, matching OSInode.read's per-slice semantics in
// spec.md §4.3).
func (bs *BlockStore) ReadAt(ino InodeID, offset int, buf []byte) int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	in := bs.get(ino)
	if in == nil || offset >= in.size {
		return 0
	}
	n := len(buf)
	if offset+n > in.size {
		n = in.size - offset
	}
	read := 0
	for read < n {
		blkIdx := (offset + read) / BSIZE
		blkOff := (offset + read) % BSIZE
		take := BSIZE - blkOff
		if take > n-read {
			take = n - read
		}
		copy(buf[read:read+take], bs.blocks[in.blocks[blkIdx]][blkOff:blkOff+take])
		read += take
	}
	return read
}

// WriteAt writes buf at the given offset, growing the inode (and
// allocating new blocks) on demand, and returns the number of bytes
// written. It never short-writes unless the store is out of blocks,
// mirroring spec.md §4.3's invariant that OSInode.write always completes
// in full ("the underlying inode grows on demand").
func (bs *BlockStore) WriteAt(ino InodeID, offset int, buf []byte) int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	in := bs.get(ino)
	if in == nil {
		return 0
	}
	written := 0
	for written < len(buf) {
		blkIdx := (offset + written) / BSIZE
		blkOff := (offset + written) % BSIZE
		for blkIdx >= len(in.blocks) {
			idx, ok := bs.allocBlock()
			if !ok {
				return written
			}
			in.blocks = append(in.blocks, idx)
		}
		take := BSIZE - blkOff
		if take > len(buf)-written {
			take = len(buf) - written
		}
		copy(bs.blocks[in.blocks[blkIdx]][blkOff:blkOff+take], buf[written:written+take])
		written += take
	}
	if offset+written > in.size {
		in.size = offset + written
	}
	return written
}

// Clear truncates ino to zero length, freeing its blocks.
func (bs *BlockStore) Clear(ino InodeID) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	in := bs.get(ino)
	if in == nil {
		return
	}
	for _, b := range in.blocks {
		bs.freeBlock(b)
	}
	in.blocks = nil
	in.size = 0
}

// Link binds newName to oldName's inode.
func (bs *BlockStore) Link(newName, oldName string) defs.Err_t {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	id, ok := bs.names[oldName]
	if !ok {
		return defs.EFAULT
	}
	if _, exists := bs.names[newName]; exists {
		return defs.EFAULT
	}
	bs.names[newName] = id
	bs.nlinks[id]++
	return 0
}

// Unlink removes name from the directory, decrementing the target
// inode's hard-link count. Blocks are freed once the last name is gone.
func (bs *BlockStore) Unlink(name string) defs.Err_t {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	id, ok := bs.names[name]
	if !ok {
		return defs.EFAULT
	}
	delete(bs.names, name)
	bs.nlinks[id]--
	if bs.nlinks[id] <= 0 {
		in := bs.get(id)
		if in != nil {
			for _, b := range in.blocks {
				bs.freeBlock(b)
			}
		}
		bs.inodes[id] = nil
		delete(bs.nlinks, id)
	}
	return 0
}

// CalcHardLinks reports the number of names currently bound to ino.
func (bs *BlockStore) CalcHardLinks(ino InodeID) int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.nlinks[ino]
}
