package detect

import "math"

// UpdateTracks runs one frame of identity association. It matches each
// detection against the previous frame's objects by nearest centroid
// within the same class, reusing matched identities and minting new ones
// for the rest, and returns the enriched detections plus the state to
// carry into the next frame.
//
// Association is greedy in the detections' input order: earlier
// detections get first pick of the nearest unclaimed same-class previous
// object. There is no maximum-distance gate, so when an object leaves the
// frame while another of the same class appears elsewhere, the identity
// can jump across the frame. Known limitation; callers needing gating
// must filter upstream.
//
// The returned state holds only this frame's objects. A previous object
// not claimed this frame is forgotten immediately; if it reappears later
// it receives a fresh identity.
//
// Speed is the centroid displacement in pixels divided by elapsedSeconds.
// An elapsedSeconds of 0 (first frame, or unknown timing) disables speed
// output for the frame.
func UpdateTracks(state TrackingState, detections []Detection, elapsedSeconds float64) ([]TrackedDetection, TrackingState) {
	nextIdentity := state.NextIdentity
	if nextIdentity < 1 {
		nextIdentity = 1
	}

	claimed := make([]bool, len(state.Previous))
	tracked := make([]TrackedDetection, 0, len(detections))
	current := make([]TrackedObject, 0, len(detections))

	for _, d := range detections {
		cx, cy := d.Box.Center()

		// Step 1: find the nearest unclaimed previous object of the same class.
		best := -1
		bestDist2 := math.MaxFloat64
		for i, prev := range state.Previous {
			if claimed[i] || prev.Class != d.Class {
				continue
			}
			dx := cx - prev.CX
			dy := cy - prev.CY
			dist2 := dx*dx + dy*dy
			if dist2 < bestDist2 {
				bestDist2 = dist2
				best = i
			}
		}

		td := TrackedDetection{Detection: d}
		if best >= 0 {
			// Step 2: matched. Reuse the identity and derive speed from the
			// centroid displacement.
			claimed[best] = true
			td.Identity = state.Previous[best].Identity
			if elapsedSeconds > 0 {
				td.SpeedPxS = math.Sqrt(bestDist2) / elapsedSeconds
			}
		} else {
			// Step 3: unmatched. Mint a fresh identity; identities are never
			// reused within a session.
			td.Identity = nextIdentity
			nextIdentity++
		}

		tracked = append(tracked, td)
		current = append(current, TrackedObject{
			Identity: td.Identity,
			Class:    d.Class,
			CX:       cx,
			CY:       cy,
		})
	}

	return tracked, TrackingState{Previous: current, NextIdentity: nextIdentity}
}

// ResetTracking clears the previous-frame object set so the next frame
// starts fresh. When resetIdentityCounter is true the identity counter
// also restarts at 1; otherwise minted identities keep increasing across
// the reset and are never reused.
func ResetTracking(state TrackingState, resetIdentityCounter bool) TrackingState {
	nextIdentity := state.NextIdentity
	if resetIdentityCounter || nextIdentity < 1 {
		nextIdentity = 1
	}
	return TrackingState{NextIdentity: nextIdentity}
}
