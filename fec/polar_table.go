package fec

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ReadReliabilityTable reads a reliability table of two columns: position
// and rank, a larger rank meaning a more reliable position. Lines starting
// with '#' are ignored. The result lists positions from most to least
// reliable, ready for FrozenBitsFromOrder.
func ReadReliabilityTable(r io.Reader) ([]int, error) {
	type row struct {
		idx  int
		rank int
	}
	rows := make([]row, 0, 1024)
	s := bufio.NewScanner(r)
	for line := 1; s.Scan(); line++ {
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.Fields(text)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: want position and rank, got %q", line, text)
		}
		i, err1 := strconv.Atoi(parts[0])
		v, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("line %d: bad number in %q", line, text)
		}
		rows = append(rows, row{idx: i, rank: v})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].rank > rows[j].rank })
	order := make([]int, len(rows))
	for i := range rows {
		order[i] = rows[i].idx
	}
	return order, nil
}

// WriteReliabilityTable writes order (most reliable first) in the format
// read by ReadReliabilityTable, one "position rank" pair per line sorted by
// position.
func WriteReliabilityTable(w io.Writer, order []int) error {
	rank := make([]int, len(order))
	for i, idx := range order {
		if idx < 0 || idx >= len(order) {
			return fmt.Errorf("polar: position %d out of range for %d positions: %w", idx, len(order), ErrInvalidLength)
		}
		rank[idx] = len(order) - 1 - i
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# position rank (N=%d, larger rank is more reliable)\n", len(order))
	for idx, r := range rank {
		fmt.Fprintf(bw, "%d %d\n", idx, r)
	}
	return bw.Flush()
}
