package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdvcn/vox/internal/trace"
)

// setupTracing inspects the --trace* persistent flags and builds the
// Tracer they name. When --trace is empty (the default) it returns a
// nil Tracer and a no-op cleanup: trace.Begin and every Tracer field
// in internal/analysis, internal/irgen and internal/driver treat a
// nil Tracer exactly like trace.Nop, so tracing costs nothing when
// disabled this way. The returned cleanup stops any heartbeat
// goroutine, flushes and closes the tracer; it is always safe to call.
func setupTracing(cmd *cobra.Command) (trace.Tracer, func(), error) {
	root := cmd.Root()

	path, _ := root.PersistentFlags().GetString("trace")
	levelStr, _ := root.PersistentFlags().GetString("trace-level")
	modeStr, _ := root.PersistentFlags().GetString("trace-mode")
	ringSize, _ := root.PersistentFlags().GetInt("trace-ring-size")
	heartbeatInterval, _ := root.PersistentFlags().GetDuration("trace-heartbeat")

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, fmt.Errorf("trace-level: %w", err)
	}
	if level == trace.LevelOff || path == "" {
		return nil, func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, nil, fmt.Errorf("trace-mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: path,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create tracer: %w", err)
	}

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	cleanup := func() {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		_ = tracer.Flush()
		_ = tracer.Close()
	}

	return tracer, cleanup, nil
}
