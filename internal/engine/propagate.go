package engine

import (
	"math"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/ir"
)

// frame is one entry of the traversal stack.
type frame struct {
	node int
	next int
}

// Propagate computes the state of every gear and the transmission event of
// every traversed edge, starting at gear 0 with the given speed and torque.
//
// The graph must come from compiler.BuildGraph over the same gears. Events
// are returned in traversal order. Gears the root never reaches keep nil
// speed, torque and efficiency.
func Propagate(g *ir.Graph, gears []ir.GearSpec, rootRPM, rootTorque float64) ([]ir.GearState, []ir.TransmissionEvent) {
	states := make([]ir.GearState, len(gears))
	for i, gear := range gears {
		states[i] = ir.GearState{
			Index:  i,
			Type:   gear.Type,
			Teeth:  gear.Teeth,
			Radius: gear.Radius,
			Module: Module(gear.Radius, gear.Teeth),
		}
	}
	if len(gears) == 0 {
		return states, nil
	}

	states[0].Speed = ptr(rootRPM)
	states[0].Torque = ptr(rootTorque)

	var events []ir.TransmissionEvent
	stack := []frame{{node: 0}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succ := g.Successors[top.node]

		if top.next == len(succ) {
			stack = stack[:len(stack)-1]
			continue
		}

		u := top.node
		v := succ[top.next]
		top.next++

		if states[v].Reached() {
			continue
		}

		ev := transmit(gears[u], gears[v], *states[u].Speed, *states[u].Torque)
		events = append(events, ev)

		states[v].Speed = ptr(ev.Speed)
		states[v].Torque = ptr(ev.Torque)
		states[v].Efficiency = ptr(ev.Efficiency)

		stack = append(stack, frame{node: v})
	}

	return states, events
}

// transmit computes the edge from driver u to driven v.
func transmit(u, v ir.GearSpec, speed, torque float64) ir.TransmissionEvent {
	radiusRatio := 1.0
	if u.Radius != 0 {
		radiusRatio = v.Radius / u.Radius
	}

	outSpeed := speed * radiusRatio
	outTorque := torque
	if radiusRatio != 0 {
		outTorque = torque / radiusRatio
	}

	efficiency := 1.0
	if powerIn := torque * speed; powerIn != 0 {
		efficiency = (outTorque * outSpeed) / powerIn
	}

	gearRatio := 0.0
	if u.Teeth != 0 {
		gearRatio = float64(v.Teeth) / float64(u.Teeth)
	}

	return ir.TransmissionEvent{
		From:        u.Index,
		To:          v.Index,
		GearRatio:   gearRatio,
		RadiusRatio: radiusRatio,
		Speed:       outSpeed,
		Torque:      outTorque,
		Efficiency:  efficiency,
	}
}

// checkFinite rejects a propagation whose values left the float64 range,
// e.g. a radius ratio of 1e300/1e-300. The first offending edge in
// traversal order is reported against its driven gear.
func checkFinite(events []ir.TransmissionEvent) error {
	for _, ev := range events {
		for _, v := range []struct {
			name  string
			value float64
		}{
			{"radius ratio", ev.RadiusRatio},
			{"speed", ev.Speed},
			{"torque", ev.Torque},
			{"efficiency", ev.Efficiency},
		} {
			if math.IsInf(v.value, 0) || math.IsNaN(v.value) {
				return compiler.NewInvalidValueError(ev.To,
					"gear %d: %s from gear %d is not finite (%g)", ev.To, v.name, ev.From, v.value)
			}
		}
	}
	return nil
}

// Module returns radius / teeth, or 0 for a gear with no teeth.
func Module(radius float64, teeth int) float64 {
	if teeth == 0 {
		return 0
	}
	return radius / float64(teeth)
}

// FinalGear returns the highest-index gear that has a speed.
// ok is false when no gear was reached.
func FinalGear(states []ir.GearState) (final ir.FinalGear, ok bool) {
	for i := len(states) - 1; i >= 0; i-- {
		s := states[i]
		if !s.Reached() {
			continue
		}
		final = ir.FinalGear{Index: s.Index, Speed: *s.Speed}
		if s.Torque != nil {
			final.Torque = *s.Torque
		}
		return final, true
	}
	return ir.FinalGear{}, false
}

func ptr(f float64) *float64 {
	return &f
}
