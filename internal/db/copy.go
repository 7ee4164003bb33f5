package db

import (
	"github.com/jackc/pgx/v5"
)

// ChannelSource implements pgx.CopyFromSource by reading COPY value rows
// from a channel. This provides natural backpressure between the Parquet
// reader and the COPY writer.
type ChannelSource struct {
	ch      <-chan []any
	current []any
	rows    int64
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource(ch <-chan []any) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	s.rows++
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource) Values() ([]any, error) {
	return s.current, nil
}

// Err always returns nil; producers report their errors separately.
func (s *ChannelSource) Err() error {
	return nil
}

// Rows returns how many rows have been handed to COPY so far.
func (s *ChannelSource) Rows() int64 {
	return s.rows
}

// Compile-time check that ChannelSource satisfies the interface.
var _ pgx.CopyFromSource = (*ChannelSource)(nil)
