package fec

import (
	"time"

	"github.com/francoispqt/gojay"
)

// Stage identifies one step of DecodeFrames.
type Stage int

const (
	StageLoad Stage = iota
	StageDecode
	StageStore
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageDecode:
		return "decode"
	case StageStore:
		return "store"
	}
	return "unknown"
}

// StageHook receives the elapsed time of each decoding stage.
type StageHook interface {
	ObserveStage(s Stage, d time.Duration)
}

// StageTotals accumulates stage durations. It is not safe for concurrent use;
// each lane owns its own.
type StageTotals struct {
	Load   time.Duration
	Decode time.Duration
	Store  time.Duration
	Calls  int
}

// ObserveStage implements StageHook. Calls counts load stages.
func (t *StageTotals) ObserveStage(s Stage, d time.Duration) {
	switch s {
	case StageLoad:
		t.Load += d
		t.Calls++
	case StageDecode:
		t.Decode += d
	case StageStore:
		t.Store += d
	}
}

// Total returns the sum of the three stages.
func (t *StageTotals) Total() time.Duration { return t.Load + t.Decode + t.Store }

// Snapshot returns a copy of the current totals.
func (t *StageTotals) Snapshot() StageTotals { return *t }

// Reset clears the totals.
func (t *StageTotals) Reset() { *t = StageTotals{} }

// Add merges o into t, used to aggregate lanes after a run.
func (t *StageTotals) Add(o StageTotals) {
	t.Load += o.Load
	t.Decode += o.Decode
	t.Store += o.Store
	t.Calls += o.Calls
}

// MarshalJSONObject implements gojay.MarshalerJSONObject.
func (t *StageTotals) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Int64Key("load_ns", int64(t.Load))
	enc.Int64Key("decode_ns", int64(t.Decode))
	enc.Int64Key("store_ns", int64(t.Store))
	enc.Int64Key("total_ns", int64(t.Total()))
	enc.IntKey("calls", t.Calls)
	if t.Calls > 0 {
		enc.Int64Key("avg_decode_ns", int64(t.Decode)/int64(t.Calls))
	}
}

// IsNil implements gojay.MarshalerJSONObject.
func (t *StageTotals) IsNil() bool { return t == nil }

// JSON encodes a performance report of the totals.
func (t *StageTotals) JSON() ([]byte, error) {
	return gojay.MarshalJSONObject(t)
}

type stageHooks []StageHook

func (hs stageHooks) ObserveStage(s Stage, d time.Duration) {
	for _, h := range hs {
		h.ObserveStage(s, d)
	}
}

// StageHooks fans one observation out to several hooks. Nil hooks are
// skipped; with no hook left the result is nil.
func StageHooks(hooks ...StageHook) StageHook {
	var hs stageHooks
	for _, h := range hooks {
		if h != nil {
			hs = append(hs, h)
		}
	}
	switch len(hs) {
	case 0:
		return nil
	case 1:
		return hs[0]
	}
	return hs
}
