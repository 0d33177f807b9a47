// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package peer

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// backpressure caps the number of inbound calls a Peer has in flight at
// once: the reader goroutine acquires one slot before spawning a dispatch
// future for a call, and releases it once that future's result has been
// handed to the writer. Sends and calls routed to a svcmap.RelayMap never
// touch it: local calls are backpressured, fire-and-forget and relayed
// traffic are not.
type backpressure struct {
	sem *semaphore.Weighted
}

// newBackpressure builds a limiter admitting up to n concurrent in-flight
// calls. n <= 0 means unlimited.
func newBackpressure(n int64) *backpressure {
	if n <= 0 {
		return &backpressure{}
	}
	return &backpressure{sem: semaphore.NewWeighted(n)}
}

func (b *backpressure) acquire(ctx context.Context) error {
	if b.sem == nil {
		return nil
	}
	return b.sem.Acquire(ctx, 1)
}

func (b *backpressure) release() {
	if b.sem == nil {
		return
	}
	b.sem.Release(1)
}
