// Command gen_reliability writes a polar reliability table built from the
// BEC Bhattacharyya construction, in the format read by fecsim's
// polar_table option.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Observe-l/fecsim/fec"
)

func main() {
	nbits := flag.Int("n", 1024, "codeword length in bits (power of two)")
	eps := flag.Float64("eps", 0.5, "design erasure probability of the BEC construction")
	k := flag.Int("k", 0, "if set, print the information set size check for this K after writing")
	out := flag.String("o", "", "output file path (default: tables/reliability_<n>.txt)")
	flag.Parse()

	if err := run(*nbits, *eps, *k, *out); err != nil {
		fmt.Fprintln(os.Stderr, "gen_reliability:", err)
		os.Exit(1)
	}
}

func run(n int, eps float64, k int, out string) error {
	order, err := fec.ReliabilityOrderBEC(n, eps)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := fec.WriteReliabilityTable(&buf, order); err != nil {
		return err
	}
	if k > 0 {
		// round-trip through the reader so the file is known to load
		back, err := fec.ReadReliabilityTable(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return fmt.Errorf("table does not read back: %w", err)
		}
		frozen, err := fec.FrozenBitsFromOrder(back, n, k, false)
		if err != nil {
			return err
		}
		free := 0
		for _, f := range frozen {
			if !f {
				free++
			}
		}
		fmt.Printf("K=%d: %d information positions\n", k, free)
	}

	if out == "" {
		out = filepath.Join("tables", fmt.Sprintf("reliability_%d.txt", n))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d positions)\n", out, len(order))
	return nil
}
