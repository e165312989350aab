// SPDX-License-Identifier: MIT
//
// Package transport streams rendered spectrogram columns to clients.
package transport

import "spectro/pkg/argb"

// Transport defines a generic interface for sending rendered data.
// Implementations should be thread-safe and must not keep references to
// slices inside data after Send returns.
type Transport interface {
	Send(data any) error
	Close() error
}

// Column is one rendered spectrogram column, lowest frequency first.
type Column struct {
	Seq    uint64       `json:"seq"`
	Colors []argb.Color `json:"colors"`
}

// ColumnSource is what a Pump reads from; spectrogram.Renderer satisfies it.
type ColumnSource interface {
	// LatestColumnSeq copies the newest column into dst and returns its
	// length and sequence number. A sequence of 0 means nothing was rendered.
	LatestColumnSeq(dst []argb.Color) (n int, seq uint64)
	Rows() int
}
