// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package svcmap implements the two service-map variants a Peer dispatches
// incoming frames to: LocalServiceMap, which deserializes frames into typed
// messages for a registered mailbox.Address, and RelayMap, which forwards
// raw frames to a downstream peer without deserializing them.
package svcmap
