package core

import (
	"fmt"
	"time"
)

// ClaimState is either Ready or Locked with the remaining cooldown
type ClaimState struct {
	Remaining time.Duration
}

// Ready reports whether a claim is allowed
func (s ClaimState) Ready() bool {
	return s.Remaining <= 0
}

// String renders the state the way the countdown label shows it
func (s ClaimState) String() string {
	if s.Ready() {
		return "ready"
	}
	return "locked " + FormatRemaining(s.Remaining)
}

// StateFor builds the state for a remaining duration
func StateFor(remaining time.Duration) ClaimState {
	if remaining <= 0 {
		return ClaimState{}
	}
	return ClaimState{Remaining: remaining}
}

// Evaluate computes the claim state from the last recorded claim.
// found is false when the address never claimed on this device.
func Evaluate(lastClaim time.Time, found bool, now time.Time, cooldown time.Duration) ClaimState {
	if !found {
		return ClaimState{}
	}
	return StateFor(lastClaim.Add(cooldown).Sub(now))
}

// FormatRemaining renders d as "Hh Mm Ss", flooring each unit
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	seconds := (d % time.Minute) / time.Second
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
