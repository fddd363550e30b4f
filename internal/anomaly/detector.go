// Package anomaly flags suspicious third-party access patterns on share codes.
//
// The detector is a pure function of the recent history for one share code,
// the code itself, the caller's address and the evaluation time. History must
// be read before the event under evaluation is stored.
package anomaly

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Policy holds the detector thresholds.
type Policy struct {
	BurstWindow          time.Duration
	BurstLimit           int
	AddressWindow        time.Duration
	MaxDistinctAddresses int
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		BurstWindow:          time.Minute,
		BurstLimit:           5,
		AddressWindow:        time.Hour,
		MaxDistinctAddresses: 5,
	}
}

// Lookback is how far back history has to reach for p to be fully evaluated.
func (p Policy) Lookback() time.Duration {
	return max(p.BurstWindow, p.AddressWindow)
}

// Verdict is the detector's output for one access.
type Verdict struct {
	Suspicious bool
	Reasons    []string
}

// Reason joins all triggered reasons into one string.
func (v Verdict) Reason() string {
	return strings.Join(v.Reasons, "; ")
}

// Detector evaluates accesses against a Policy.
type Detector struct {
	policy Policy
}

// NewDetector creates a detector. Zero fields in p fall back to DefaultPolicy.
func NewDetector(p Policy) *Detector {
	d := DefaultPolicy()
	if p.BurstWindow > 0 {
		d.BurstWindow = p.BurstWindow
	}
	if p.BurstLimit > 0 {
		d.BurstLimit = p.BurstLimit
	}
	if p.AddressWindow > 0 {
		d.AddressWindow = p.AddressWindow
	}
	if p.MaxDistinctAddresses > 0 {
		d.MaxDistinctAddresses = p.MaxDistinctAddresses
	}
	return &Detector{policy: d}
}

// Policy returns the effective thresholds.
func (d *Detector) Policy() Policy {
	return d.policy
}

// Check evaluates one access. history holds prior events for the same share
// code; events outside the policy windows or at/after now are ignored.
func (d *Detector) Check(history []models.DocumentAccessEvent, share *models.ShareCode, clientAddress string, now time.Time) Verdict {
	var v Verdict

	burstFrom := now.Add(-d.policy.BurstWindow)
	addrFrom := now.Add(-d.policy.AddressWindow)

	burst := 0
	addrs := make(map[string]struct{})
	if clientAddress != "" {
		addrs[clientAddress] = struct{}{}
	}

	for i := range history {
		e := &history[i]
		if share != nil && e.ShareCodeID != share.ID {
			continue
		}
		if e.OccurredAt.After(now) {
			continue
		}
		if e.OccurredAt.After(burstFrom) {
			burst++
		}
		if e.OccurredAt.After(addrFrom) && e.ClientAddress != "" {
			addrs[e.ClientAddress] = struct{}{}
		}
	}

	if burst >= d.policy.BurstLimit {
		v.Reasons = append(v.Reasons, fmt.Sprintf("high access velocity: %d accesses within %s", burst+1, d.policy.BurstWindow))
	}
	if len(addrs) > d.policy.MaxDistinctAddresses {
		v.Reasons = append(v.Reasons, fmt.Sprintf("access from %d distinct addresses within %s", len(addrs), d.policy.AddressWindow))
	}
	if share != nil && !now.Before(share.ExpiresAt) {
		v.Reasons = append(v.Reasons, "access after code expiry")
	}

	v.Suspicious = len(v.Reasons) > 0
	return v
}
