package ir

import "github.com/sdvcn/vox/internal/arena"

// BlockFlags packs the four bits §3 assigns a basic block.
type BlockFlags uint8

const (
	// BlockSealed marks a block whose predecessor set is final: no
	// further AddBlockTarget may name it as a successor, and every
	// phi it held when sealed has had its operands completed.
	BlockSealed BlockFlags = 1 << iota
	// BlockFinished marks a block that already has a terminator
	// instruction at its tail.
	BlockFinished
	BlockLoopHeader
	BlockVisited
)

func (f BlockFlags) Has(bit BlockFlags) bool { return f&bit != 0 }

// Block is a basic block: §3's "first/last instruction handles,
// prev/next block handles (forming a doubly linked list for layout
// order), a first-phi handle, successor and predecessor small
// vectors, and bit flags."
type Block struct {
	FirstInst Index
	LastInst  Index
	PrevBlock Index
	NextBlock Index
	FirstPhi  Index

	Succs arena.Span // []Index, KindBlock
	Preds arena.Span // []Index, KindBlock

	Flags BlockFlags
}

func (b *Block) Sealed() bool   { return b.Flags.Has(BlockSealed) }
func (b *Block) Finished() bool { return b.Flags.Has(BlockFinished) }

// EntryBlock and ExitBlock are the two basic blocks every Func
// allocates up front (§3: "Index 0 of the basic-block arena is always
// the entry block; index 1 is always the exit block"). Since this
// repository's block arena is 1-based like every other arena, the
// entry and exit blocks are the first two entities Func.NewFunc
// allocates, at payloads 1 and 2 respectively.
const (
	EntryBlockPayload = 1
	ExitBlockPayload  = 2
)
