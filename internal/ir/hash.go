package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTrain prefixes train hashes. The version suffix allows a future
// change of the hashed fields.
const DomainTrain = "gearmatrix/train/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TrainHash computes a content-addressed identity for a train.
// The name is excluded: two identically built trains share a hash.
func TrainHash(t TrainSpec) (string, error) {
	gears := make([]any, len(t.Gears))
	for i, g := range t.Gears {
		conns := g.Connections
		if conns == nil {
			conns = []int{}
		}
		gears[i] = map[string]any{
			"index":       g.Index,
			"type":        g.Type,
			"teeth":       g.Teeth,
			"radius":      g.Radius,
			"connections": conns,
		}
	}
	obj := map[string]any{
		"units": map[string]any{
			"length": t.Units.Length,
			"torque": t.Units.Torque,
		},
		"root_rpm":    t.RootRPM,
		"root_torque": t.RootTorque,
		"gears":       gears,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("TrainHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrain, canonical), nil
}
