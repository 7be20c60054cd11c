package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Observe-l/fecsim/codec"
	"github.com/Observe-l/fecsim/fec"
	"github.com/Observe-l/fecsim/lane"
)

type uncodedParams struct {
	K      int `json:"k" yaml:"k"`
	Frames int `json:"frames,omitempty" yaml:"frames,omitempty"`
}

type codecConfig struct {
	Type       string                 `json:"type" yaml:"type"` // polar, repetition, raptorq or uncoded
	Polar      codec.PolarParams      `json:"polar" yaml:"polar"`
	Repetition codec.RepetitionParams `json:"repetition" yaml:"repetition"`
	RaptorQ    codec.RaptorQParams    `json:"raptorq" yaml:"raptorq"`
	Uncoded    uncodedParams          `json:"uncoded" yaml:"uncoded"`
	// PolarTable is a reliability table file (see cmd/gen_reliability)
	// used when the polar section has no explicit mask.
	PolarTable string `json:"polar_table,omitempty" yaml:"polar_table,omitempty"`
}

// config is the simulation file. JSON files are read as YAML.
type config struct {
	Codec codecConfig `json:"codec" yaml:"codec"`
	Lane  lane.Params `json:"lane" yaml:"lane"`
}

func loadConfig(path string) (*config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Lane.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func buildCodec(cc codecConfig) (codec.Codec, error) {
	switch cc.Type {
	case "polar", "":
		if cc.PolarTable != "" && cc.Polar.Frozen == nil {
			order, err := loadReliability(cc.PolarTable)
			if err != nil {
				return nil, err
			}
			cc.Polar.Reliability = order
		}
		return codec.NewPolar(cc.Polar)
	case "repetition":
		return codec.NewRepetition(cc.Repetition)
	case "raptorq":
		return codec.NewRaptorQ(cc.RaptorQ)
	case "uncoded":
		return codec.NewUncoded(cc.Uncoded.K, cc.Uncoded.Frames)
	}
	return nil, fmt.Errorf("unknown codec %q", cc.Type)
}

func loadReliability(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	order, err := fec.ReadReliabilityTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return order, nil
}
