// Package domain contains the core domain types for the ledger context.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Block is the minimal view of a ledger block the engine cares about.
type Block struct {
	Number uint64
	Hash   common.Hash
	Time   time.Time
}

// ConnectionState represents the height tracker's connection state.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns a human-readable connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}
