package ir

// GearSpec is one gear as submitted by a caller.
// Radius is in the train's length unit until the train is normalised.
type GearSpec struct {
	Index       int      `json:"index"`
	Type        GearType `json:"type"`
	Teeth       int      `json:"teeth"`
	Radius      float64  `json:"radius"`
	Connections []int    `json:"connections"` // directed edges: this gear drives these
}

// Units names the length and torque units a train is expressed in.
type Units struct {
	Length string `json:"length"`
	Torque string `json:"torque"`
}

// TrainSpec is a complete calculation request.
type TrainSpec struct {
	Name       string     `json:"name"`
	Units      Units      `json:"units"`
	RootRPM    float64    `json:"root_rpm"`
	RootTorque float64    `json:"root_torque"` // in Units.Torque until normalised
	Gears      []GearSpec `json:"gears"`
}

// Graph holds successor lists indexed by gear index.
// Successors keep declaration order with duplicates removed.
type Graph struct {
	Successors [][]int `json:"successors"`
}

// Len returns the number of gears in the graph.
func (g *Graph) Len() int {
	return len(g.Successors)
}

// Edges returns every edge in gear-index then declaration order.
func (g *Graph) Edges() [][2]int {
	var edges [][2]int
	for u, succ := range g.Successors {
		for _, v := range succ {
			edges = append(edges, [2]int{u, v})
		}
	}
	return edges
}
