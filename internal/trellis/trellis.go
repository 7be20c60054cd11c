// Package trellis holds binary-input finite-state machines and a log-domain
// forward-backward (BCJR) engine running over them.
package trellis

import (
	"errors"
	"fmt"

	"github.com/Observe-l/fecsim/fec"
)

// ErrInvalidTopology reports inconsistent transition tables.
var ErrInvalidTopology = errors.New("trellis: invalid topology")

// Trellis is an immutable binary-input state machine. Every state has two
// outgoing branches (input 0 and 1) and two incoming ones. Each branch
// carries a label selecting its branch metric.
//
// Tables are indexed as:
//
//	next[b*S+s], label[b*S+s]   successor and label of input b from state s
//	prev[s*2+k], input[s*2+k]   k-th predecessor of s and the input leading to s
type Trellis struct {
	states int
	labels int
	next   []int
	label  []int
	prev   []int
	input  []int
	dist   []int // shortest number of steps to state 0, -1 if unreachable
}

// New validates the tables against each other and precomputes the distance
// of every state to state 0. It is safe to share the result between
// goroutines.
func New(states, labels int, next, label, prev, input []int) (*Trellis, error) {
	if states <= 0 || labels <= 0 {
		return nil, fmt.Errorf("%w: %d states, %d labels", ErrInvalidTopology, states, labels)
	}
	for name, tab := range map[string][]int{"next": next, "label": label, "prev": prev, "input": input} {
		if len(tab) != 2*states {
			return nil, fmt.Errorf("%w: %s table has %d entries, want %d", ErrInvalidTopology, name, len(tab), 2*states)
		}
	}
	for i := 0; i < 2*states; i++ {
		if next[i] < 0 || next[i] >= states || prev[i] < 0 || prev[i] >= states {
			return nil, fmt.Errorf("%w: state out of range at %d", ErrInvalidTopology, i)
		}
		if label[i] < 0 || label[i] >= labels {
			return nil, fmt.Errorf("%w: label %d out of range", ErrInvalidTopology, label[i])
		}
		if input[i] != 0 && input[i] != 1 {
			return nil, fmt.Errorf("%w: input %d is not binary", ErrInvalidTopology, input[i])
		}
	}
	// the inverse table must describe exactly the branches of the forward one
	for s := 0; s < states; s++ {
		for k := 0; k < 2; k++ {
			p, b := prev[s*2+k], input[s*2+k]
			if next[b*states+p] != s {
				return nil, fmt.Errorf("%w: predecessor %d of state %d does not lead to it with input %d",
					ErrInvalidTopology, p, s, b)
			}
		}
	}
	t := &Trellis{
		states: states,
		labels: labels,
		next:   append([]int(nil), next...),
		label:  append([]int(nil), label...),
		prev:   append([]int(nil), prev...),
		input:  append([]int(nil), input...),
	}
	t.dist = t.distances()
	return t, nil
}

// distances runs a breadth-first search from state 0 over the inverse table.
func (t *Trellis) distances() []int {
	dist := make([]int, t.states)
	for i := range dist {
		dist[i] = -1
	}
	dist[0] = 0
	queue := []int{0}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for k := 0; k < 2; k++ {
			p := t.prev[s*2+k]
			if dist[p] < 0 {
				dist[p] = dist[s] + 1
				queue = append(queue, p)
			}
		}
	}
	return dist
}

func (t *Trellis) States() int { return t.states }
func (t *Trellis) Labels() int { return t.labels }

// Next returns the successor of state s on input b.
func (t *Trellis) Next(s int, b uint8) int { return t.next[int(b)*t.states+s] }

// Label returns the label of the branch leaving s on input b.
func (t *Trellis) Label(s int, b uint8) int { return t.label[int(b)*t.states+s] }

// Prev returns the k-th predecessor of s (k is 0 or 1) and its input.
func (t *Trellis) Prev(s, k int) (int, uint8) {
	return t.prev[s*2+k], uint8(t.input[s*2+k])
}

// Distance returns the minimum number of steps from s to state 0.
func (t *Trellis) Distance(s int) int { return t.dist[s] }

// MaxDistance is the tail length needed to terminate from any state.
func (t *Trellis) MaxDistance() int {
	m := 0
	for _, d := range t.dist {
		if d < 0 {
			return -1
		}
		if d > m {
			m = d
		}
	}
	return m
}

// tailBit picks the input that brings s closest to state 0, preferring 0.
func (t *Trellis) tailBit(s int) uint8 {
	want := t.dist[s] - 1
	if want < 0 {
		want = 0
	}
	for b := uint8(0); b < 2; b++ {
		if t.dist[t.Next(s, b)] == want {
			return b
		}
	}
	return 0
}

// Encode walks the trellis from state 0 over bits and then tail terminating
// steps, writing one branch label per step into labels.
func (t *Trellis) Encode(bits []uint8, tail int, labels []int) error {
	if len(labels) != len(bits)+tail {
		return fmt.Errorf("trellis: %d labels for %d steps: %w", len(labels), len(bits)+tail, fec.ErrShapeMismatch)
	}
	s := 0
	for i, b := range bits {
		b &= 1
		labels[i] = t.Label(s, b)
		s = t.Next(s, b)
	}
	for i := len(bits); i < len(labels); i++ {
		b := t.tailBit(s)
		labels[i] = t.Label(s, b)
		s = t.Next(s, b)
	}
	if tail > 0 && s != 0 {
		return fmt.Errorf("%w: tail of %d steps ends in state %d", ErrInvalidTopology, tail, s)
	}
	return nil
}
