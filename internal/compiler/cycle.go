package compiler

// dfs node colours. grey marks a node that is on the active DFS stack.
const (
	white uint8 = iota
	grey
	black
)

// frame is one entry of the explicit DFS stack: a node and the position of
// the next successor to examine.
type frame struct {
	node int
	next int
}

// findCycle returns a cycle in the successor lists, or nil if there is none.
//
// The search is an iterative depth-first traversal started from every
// unvisited node in index order, so components unreachable from gear 0 are
// checked too. An edge into a grey node is a back edge and closes a cycle.
//
// The returned path starts and ends on the same node: [0 1 0].
// A self-connection yields [n n].
func findCycle(successors [][]int) []int {
	color := make([]uint8, len(successors))

	for start := range successors {
		if color[start] != white {
			continue
		}

		color[start] = grey
		stack := []frame{{node: start}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := successors[top.node]

			if top.next == len(succ) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}

			w := succ[top.next]
			top.next++

			switch color[w] {
			case grey:
				return cyclePath(stack, w)
			case white:
				color[w] = grey
				stack = append(stack, frame{node: w})
			}
		}
	}

	return nil
}

// cyclePath extracts the stack segment from w to the top and closes it.
func cyclePath(stack []frame, w int) []int {
	start := 0
	for i, f := range stack {
		if f.node == w {
			start = i
			break
		}
	}

	path := make([]int, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.node)
	}
	return append(path, w)
}
