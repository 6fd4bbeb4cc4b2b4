// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package ottasksys

import (
	"time"

	"go.uber.org/zap"
)

func (in *Instrumented) logRunStart(numTotalTasks int) {
	in.logger.Debug("Starting run",
		zap.String("strategy", in.Name()),
		zap.String("component", "ottasksys"),
		zap.Int("tasks", numTotalTasks))
}

func (in *Instrumented) logRunEnd(numTotalTasks int, duration time.Duration, err error) {
	if err != nil {
		in.logger.Error("Run failed",
			zap.String("strategy", in.Name()),
			zap.String("component", "ottasksys"),
			zap.Int("tasks", numTotalTasks),
			zap.Duration("duration", duration),
			zap.Error(err))
		return
	}
	in.logger.Debug("Run completed",
		zap.String("strategy", in.Name()),
		zap.String("component", "ottasksys"),
		zap.Int("tasks", numTotalTasks),
		zap.Duration("duration", duration))
}

func (in *Instrumented) logRunExit(numTotalTasks int, duration time.Duration) {
	in.logger.Warn("Run exited its goroutine",
		zap.String("strategy", in.Name()),
		zap.String("component", "ottasksys"),
		zap.Int("tasks", numTotalTasks),
		zap.Duration("duration", duration))
}
