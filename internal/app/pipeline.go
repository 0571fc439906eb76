package app

import (
	"context"
	"time"

	"gocv.io/x/gocv"
)

// captureLoop reads frames at the idle rate until motion is seen, then at the
// active rate until the scene has been still for IdleTimeout. Only frames read
// in active mode are handed to the analysis loop, and only the newest one is
// kept if analysis falls behind.
func (a *App) captureLoop(ctx context.Context, frames *Mailbox[*gocv.Mat]) {
	defer frames.Close()

	active := false
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.IdleFPS))
	defer ticker.Stop()

	setRate := func(fps int) {
		a.camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			continue
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.log.WithError(err).Debug("Error reading frame")
			continue
		}

		if a.config.Preview != nil {
			if err := a.config.Preview.Publish(frame); err != nil {
				a.log.WithError(err).Debug("Preview update failed")
			}
		}

		motion := a.motion.Detect(frame)
		switch {
		case motion.Moving:
			lastMotion = time.Now()
			if !active {
				active = true
				setRate(a.config.ActiveFPS)
				a.log.WithField("changed", motion.Changed).Debug("Switched to active mode")
			}
		case active && time.Since(lastMotion) > a.config.IdleTimeout:
			active = false
			setRate(a.config.IdleFPS)
			a.log.Debug("Switched to idle mode")
		}

		if !active {
			frame.Close()
			continue
		}

		frames.Put(frame)
	}
}

// analysisLoop runs pose estimation on the newest frame and feeds the result
// to the coach, which notifies its observers.
func (a *App) analysisLoop(ctx context.Context, frames *Mailbox[*gocv.Mat]) {
	for {
		frame, ok := frames.Take(ctx)
		if !ok {
			return
		}

		landmarks, err := a.detector.Detect(frame)
		frame.Close()
		if err != nil {
			a.log.WithError(err).Warn("Pose detection failed")
			continue
		}

		a.coach.ProcessFrame(landmarks)
	}
}

func (a *App) dropFrame(frame *gocv.Mat) {
	frame.Close()
	if a.config.Drops != nil {
		a.config.Drops.FrameDropped()
	}
}
