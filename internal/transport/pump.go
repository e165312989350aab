// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"spectro/internal/log"
	"spectro/pkg/argb"
)

// DefaultInterval is roughly one frame at 60 Hz.
const DefaultInterval = 16 * time.Millisecond

// Pump periodically copies the newest column out of a ColumnSource and sends
// it to every transport. A tick with no new column sends nothing.
// It runs in a separate goroutine managed by Start and Stop.
type Pump struct {
	source     ColumnSource
	transports []Transport
	interval   time.Duration
	logger     *log.Logger

	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	lastSeq uint64
	column  []argb.Color // Reused for every send.
}

// NewPump creates a pump. An interval <= 0 defaults to DefaultInterval.
func NewPump(interval time.Duration, source ColumnSource, transports ...Transport) (*Pump, error) {
	if source == nil {
		return nil, errors.New("pump: column source cannot be nil")
	}
	if len(transports) == 0 {
		return nil, errors.New("pump: no transports")
	}

	logger := log.New("pump")
	if interval <= 0 {
		interval = DefaultInterval
		logger.Warnf("Invalid interval provided, defaulting to %s", interval)
	}

	return &Pump{
		source:     source,
		transports: transports,
		interval:   interval,
		logger:     logger,
		column:     make([]argb.Color, source.Rows()),
	}, nil
}

// Start launches the pump goroutine. Calling Start while running is a no-op.
func (p *Pump) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		p.logger.Warnf("Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.logger.Debugf("Pump started (Interval: %s, transports: %d)", p.interval, len(p.transports))
		for {
			select {
			case <-ticker.C:
				p.Tick()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine to exit and waits for it. Stopping a pump that
// is not running is a no-op.
func (p *Pump) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	close(p.doneChan)
	p.ticker.Stop()
	p.ticker = nil
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Debugf("Pump stopped")
}

// Tick sends the newest column if one arrived since the last tick and
// reports whether it sent.
func (p *Pump) Tick() bool {
	n, seq := p.source.LatestColumnSeq(p.column)
	if seq == 0 || seq == p.lastSeq {
		return false
	}
	p.lastSeq = seq

	col := Column{Seq: seq, Colors: p.column[:n]}
	for _, t := range p.transports {
		if err := t.Send(col); err != nil {
			p.logger.Warnf("send column %d via %T: %v", seq, t, err)
		}
	}
	return true
}

// Close stops the pump and closes every transport.
func (p *Pump) Close() error {
	p.Stop()
	var errs []error
	for _, t := range p.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", t, err))
		}
	}
	return errors.Join(errs...)
}
