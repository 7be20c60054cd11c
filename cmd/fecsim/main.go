package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Observe-l/fecsim/codec"
	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/internal/sim"
	"github.com/Observe-l/fecsim/lane"
)

type point struct {
	sigma   float64
	res     lane.Result
	timings fec.StageTotals
	elapsed time.Duration
}

func main() {
	cfgPath := flag.String("config", "fecsim.yaml", "simulation config (YAML or JSON)")
	sigmaList := flag.String("sigma", "", "comma-separated noise deviations to sweep (default: the config's)")
	trials := flag.Int("trials", 1000, "frame batches per lane and point")
	maxFE := flag.Int("max-fe", 100, "stop a point after this many frame errors (0: never)")
	lanes := flag.Int("lanes", 0, "override the number of lanes")
	csvPath := flag.String("csv", "", "optional CSV output path (appended)")
	showTimings := flag.Bool("timings", false, "print decoder stage timings as JSON")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. :9100")
	verbose := flag.Bool("v", false, "log lane setup to stderr")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	c, err := buildCodec(cfg.Codec)
	if err != nil {
		fatalf("codec: %v", err)
	}
	if *lanes > 0 {
		cfg.Lane.Lanes = *lanes
	}
	if *verbose {
		cfg.Lane.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if cfg.Lane.Metrics, err = fec.NewPromStageHook(reg, "fecsim"); err != nil {
			fatalf("metrics: %v", err)
		}
		go func() {
			if err := http.ListenAndServe(*metricsAddr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})); err != nil {
				log.Printf("[warn] metrics server: %v", err)
			}
		}()
	}
	sigmas := []float64{cfg.Lane.Channel.Sigma}
	if *sigmaList != "" {
		if sigmas, err = parseList(*sigmaList); err != nil {
			fatalf("sigma: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var out *csvOut
	if *csvPath != "" {
		if out, err = openCSV(*csvPath); err != nil {
			fatalf("csv: %v", err)
		}
		defer out.Close()
	}

	fmt.Printf("codec=%s K=%d N=%d frames=%d lanes=%d modem=%s channel=%s\n",
		c.Name(), c.K(), c.N(), c.Frames(), max(cfg.Lane.Lanes, 1), cfg.Lane.Modem.Kind, cfg.Lane.Channel.Kind)
	data := c.K() - sim.CRCSize(cfg.Lane.CRC)
	for _, sigma := range sigmas {
		p := cfg.Lane
		p.Channel.Sigma = sigma
		pt, err := simulate(ctx, p, c, *trials, *maxFE)
		if err != nil {
			fatalf("sigma=%v: %v", sigma, err)
		}
		ber := float64(pt.res.BitErrors) / float64(max(pt.res.Frames*data, 1))
		fer := float64(pt.res.FrameErrors) / float64(max(pt.res.Frames, 1))
		fmt.Printf("sigma=%.4f frames=%d fe=%d be=%d ber=%.3e fer=%.3e crc_fail=%d time=%v\n",
			sigma, pt.res.Frames, pt.res.FrameErrors, pt.res.BitErrors, ber, fer, pt.res.CRCFailures, pt.elapsed.Round(time.Millisecond))
		if *showTimings {
			b, err := pt.timings.JSON()
			if err != nil {
				fatalf("timings: %v", err)
			}
			fmt.Printf("timings %s\n", b)
		}
		if out != nil {
			out.write(c, cfg.Lane.Seed, pt, ber, fer)
		}
		if ctx.Err() != nil {
			break
		}
	}
}

// simulate runs one point: every lane runs up to trials batches, and all
// lanes stop once maxFE frame errors were seen overall.
func simulate(ctx context.Context, p lane.Params, c codec.Codec, trials, maxFE int) (point, error) {
	pt := point{sigma: p.Channel.Sigma}
	// one monitor per lane: check handlers touch lane state
	var (
		mu   sync.Mutex
		mons = map[int]*sim.Monitor{}
	)
	pool, err := lane.NewPool(ctx, p, c, func(id int) lane.Monitor {
		m := sim.NewMonitor()
		mu.Lock()
		mons[id] = m
		mu.Unlock()
		return m
	})
	if err != nil {
		return pt, err
	}
	defer pool.Release()

	var frameErrors, crcFailures atomic.Int64
	start := time.Now()
	err = pool.Run(ctx, func(ctx context.Context, l *lane.Lane) error {
		mon := mons[l.ID]
		for i := 0; i < trials; i++ {
			if ctx.Err() != nil || (maxFE > 0 && frameErrors.Load() >= int64(maxFE)) {
				return nil
			}
			res, err := l.RunFrame()
			if err != nil {
				return err
			}
			frameErrors.Add(int64(res.FrameErrors))
			crcFailures.Add(int64(res.CRCFailures))
			mon.Check()
		}
		return nil
	})
	pt.elapsed = time.Since(start)
	if err != nil {
		return pt, err
	}
	for _, l := range pool.Lanes() {
		f, fe, be := mons[l.ID].Counts()
		pt.res.Frames += f
		pt.res.FrameErrors += fe
		pt.res.BitErrors += be
	}
	pt.res.CRCFailures = int(crcFailures.Load())
	pt.timings = pool.Timings()
	return pt, nil
}

func parseList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return out, nil
}

type csvOut struct {
	f io.Closer
	w *csv.Writer
}

func openCSV(path string) (*csvOut, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	out := &csvOut{f: f, w: csv.NewWriter(f)}
	// header if file empty
	if fi, err := f.Stat(); err == nil && fi.Size() == 0 {
		_ = out.w.Write([]string{"codec", "K", "N", "sigma", "frames", "frame_errors", "bit_errors", "ber", "fer", "decode_ms", "seed"})
		out.w.Flush()
	}
	return out, nil
}

func (o *csvOut) write(c codec.Codec, seed int64, pt point, ber, fer float64) {
	_ = o.w.Write([]string{
		c.Name(),
		strconv.Itoa(c.K()),
		strconv.Itoa(c.N()),
		fmt.Sprintf("%.6f", pt.sigma),
		strconv.Itoa(pt.res.Frames),
		strconv.Itoa(pt.res.FrameErrors),
		strconv.Itoa(pt.res.BitErrors),
		fmt.Sprintf("%.6e", ber),
		fmt.Sprintf("%.6e", fer),
		fmt.Sprintf("%.3f", float64(pt.timings.Decode.Microseconds())/1000.0),
		strconv.FormatInt(seed, 10),
	})
	o.w.Flush()
}

func (o *csvOut) Close() error {
	o.w.Flush()
	return o.f.Close()
}

func fatalf(f string, a ...any) { fmt.Fprintf(os.Stderr, f+"\n", a...); os.Exit(1) }
