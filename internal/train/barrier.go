package train

import "sync/atomic"

// Barrier tells the alignment goroutines that monolingual training is over.
// It is written once per epoch by the coordinator and polled by every aligner.
type Barrier struct {
	done atomic.Bool
}

func (b *Barrier) Released() bool { return b.done.Load() }
func (b *Barrier) Release()       { b.done.Store(true) }
func (b *Barrier) Reset()         { b.done.Store(false) }
