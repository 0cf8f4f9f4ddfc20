// Package main replays a scene file through a bucket without a GL context
// and logs the dispatch order of every frame.
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/config"
	"github.com/Faultbox/drawbucket/internal/engine/bucket"
	"github.com/Faultbox/drawbucket/internal/logger"
	"github.com/Faultbox/drawbucket/internal/scenefile"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("dump failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.Demo.Scene == "" {
		return errors.New("no scene given, use -scene or demo.scene")
	}
	scene, err := scenefile.Load(cfg.Demo.Scene)
	if err != nil {
		return err
	}

	opts, err := cfg.BucketOptions()
	if err != nil {
		return err
	}
	b := bucket.New(opts)

	p, err := scenefile.NewPlayer(scene, b)
	if err != nil {
		return err
	}

	log := logger.Named("dump")
	log.Info("replaying scene",
		zap.String("scene", cfg.Demo.Scene),
		zap.Int("frames", p.Frames()),
		zap.Stringer("order", b.Order()),
		zap.Int("priority_bits", b.PriorityBits()),
	)

	err = p.Run(func(frame int, calls []scenefile.Call) {
		log.Info("frame",
			zap.Int("frame", frame),
			zap.Int("draws", len(calls)),
			zap.Strings("order", scenefile.Order(calls)),
		)
		for _, c := range calls {
			log.Debug("draw",
				zap.String("unit", c.Unit),
				zap.Uint32("program", c.Program),
				zap.Uint32("copy", c.Copy),
				zap.Uint32("layout", c.Layout),
				zap.Uint32("first", c.Range.First),
				zap.Uint32("count", c.Range.Count),
				zap.Uint32("instances", c.Instances),
				zap.Uint32("base_instance", c.BaseInstance),
				zap.Int32("vertex_base", c.VertexBase),
				zap.Stringer("variant", c.Variant),
			)
		}
	})
	if err != nil {
		return err
	}

	st := b.Stats()
	log.Info("done",
		zap.Uint64("sweeps", st.Sweeps),
		zap.Uint64("sorts", st.Sorts),
		zap.Uint64("draws", st.Draws),
		zap.Uint64("erased", st.Erased),
	)
	return nil
}
