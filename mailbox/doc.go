// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mailbox provides the minimal actor-mailbox abstraction the
// remote peer runtime is built against: a typed Address that can be sent a
// fire-and-forget message or called for a correlated result, plus a small
// in-process Mailbox actor implementing it.
//
// The peer and service-map packages depend only on the Address interface;
// Mailbox is one concrete, swappable implementation, provided so this
// module runs end to end without requiring an external actor framework.
package mailbox
