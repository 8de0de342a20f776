// Package provision turns batches of scanned QR payloads into NetworkManager
// connections, one payload at a time.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shazow/wifiqr/wifi"
)

// State is how far a single payload got.
type State int

const (
	StateFailed State = iota
	StateParsed
	StateDeviceResolved
	StateAdded
	StateActivated
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateDeviceResolved:
		return "device resolved"
	case StateAdded:
		return "added"
	case StateActivated:
		return "activated"
	default:
		return "failed"
	}
}

// Options configures a Provisioner.
type Options struct {
	// Interface is the network interface to activate connections on.
	Interface string
	// DryRun only parses payloads. The backend is never called and may be nil.
	DryRun bool
	// Combined stores and activates with one call when the backend supports it.
	Combined bool
	// DeleteOnFailure removes a stored connection when its activation fails.
	// Off by default: a failed activation leaves the stored profile in place.
	DeleteOnFailure bool
	// WaitTimeout, if set, waits for each activation to complete when the
	// backend supports it.
	WaitTimeout time.Duration
}

// Result is the outcome of one payload.
type Result struct {
	Index      int
	SSID       string
	State      State
	Device     wifi.DeviceHandle
	Connection wifi.ConnectionHandle
	Active     wifi.ActiveConnectionHandle
	// Deleted is set when the stored connection was removed after a failure.
	Deleted bool
	Err     error
}

// OK reports whether the payload went as far as it was asked to.
func (r Result) OK() bool {
	return r.Err == nil
}

// Provisioner drives a wifi.Backend through parse, resolve, add and activate.
type Provisioner struct {
	backend wifi.Backend
	opts    Options
	logger  *slog.Logger
}

// New creates a Provisioner.
func New(backend wifi.Backend, opts Options, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		backend: backend,
		opts:    opts,
		logger:  logger,
	}
}

// Run processes payloads in order. A failing payload is logged and skipped;
// it never stops the batch. Cancelling ctx stops before the next payload.
func (p *Provisioner) Run(ctx context.Context, payloads []string) []Result {
	results := make([]Result, 0, len(payloads))
	for i, payload := range payloads {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("batch interrupted", "remaining", len(payloads)-i, "error", err)
			break
		}
		r := p.Provision(payload)
		r.Index = i + 1
		if r.Err != nil {
			p.logger.Error("skipping scan result", "index", r.Index, "state", r.State, "error", r.Err)
		} else {
			p.logger.Info("scan result processed", "index", r.Index, "ssid", r.SSID, "state", r.State, "active", r.Active)
		}
		results = append(results, r)
	}
	return results
}

// Provision handles a single payload.
func (p *Provisioner) Provision(payload string) Result {
	var r Result
	profile, err := wifi.ParsePayload(payload)
	if err != nil {
		r.Err = fmt.Errorf("parse: %w", err)
		return r
	}
	r.SSID = profile.ID()
	r.State = StateParsed
	if p.opts.DryRun {
		return r
	}
	if p.backend == nil {
		r.Err = fmt.Errorf("no network backend: %w", wifi.ErrNotAvailable)
		return r
	}

	// Resolving first means an unknown interface never leaves a stored
	// profile behind.
	r.Device, err = p.backend.ResolveDevice(p.opts.Interface)
	if err != nil {
		r.Err = err
		return r
	}
	r.State = StateDeviceResolved

	if combined, ok := p.backend.(wifi.AddActivator); ok && p.opts.Combined {
		r.Connection, r.Active, err = combined.AddAndActivate(profile, p.opts.Interface)
		if err != nil {
			r.Err = err
			if r.Connection != "" {
				r.State = StateAdded
			}
			return r
		}
		r.State = StateActivated
		return p.wait(r)
	}

	r.Connection, err = p.backend.Add(profile)
	if err != nil {
		r.Err = err
		return r
	}
	r.State = StateAdded

	r.Active, err = p.backend.Activate(r.Connection, p.opts.Interface)
	if err != nil {
		r.Err = err
		return p.cleanup(r)
	}
	r.State = StateActivated
	return p.wait(r)
}

func (p *Provisioner) wait(r Result) Result {
	waiter, ok := p.backend.(wifi.Waiter)
	if p.opts.WaitTimeout <= 0 || !ok {
		return r
	}
	if err := waiter.WaitActivated(r.Active, p.opts.WaitTimeout); err != nil {
		r.Err = err
		return p.cleanup(r)
	}
	return r
}

// cleanup deletes the stored connection of a failed result when asked to.
func (p *Provisioner) cleanup(r Result) Result {
	if !p.opts.DeleteOnFailure || r.Connection == "" {
		return r
	}
	if err := p.backend.Delete(r.Connection); err != nil {
		p.logger.Warn("failed to delete connection", "connection", r.Connection, "error", err)
		r.Err = errors.Join(r.Err, fmt.Errorf("cleanup: %w", err))
		return r
	}
	p.logger.Debug("deleted connection after failure", "connection", r.Connection)
	r.Deleted = true
	return r
}
