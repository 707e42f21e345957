package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openffb/wheelbridge/bridge"
	"github.com/openffb/wheelbridge/config"
	"github.com/openffb/wheelbridge/device"
	"github.com/openffb/wheelbridge/device/hidwheel"
	"github.com/openffb/wheelbridge/device/uhid"
	"github.com/openffb/wheelbridge/ffb"
	"github.com/openffb/wheelbridge/internal/log"
)

// Run is the bridge command: open both devices and translate until
// interrupted.
type Run struct {
	config.Snapshot `embed:""`
}

// Run is called by kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	snap := r.Snapshot
	if err := snap.Validate(); err != nil {
		return err
	}
	store := config.NewStore(&snap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return startBridge(ctx, store, logger, rawLogger)
}

func startBridge(ctx context.Context, store *config.Store, logger *slog.Logger, rawLogger log.RawLogger) error {
	snap := store.Load()

	phys, err := hidwheel.Open(snap.Wheel, logger)
	if err != nil {
		return fmt.Errorf("open wheel: %w", err)
	}
	defer func() { _ = phys.Close() }()

	if err := phys.Initialize(snap); err != nil {
		logger.Warn("wheel initialization failed", "error", err)
	}

	virt, err := uhid.Create(snap.Emulated, logger)
	if err != nil {
		return fmt.Errorf("create virtual wheel: %w", err)
	}
	defer func() { _ = virt.Close() }()

	reopen := device.PhysicalOpener(func() (device.Physical, error) {
		w, err := hidwheel.Open(store.Load().Wheel, logger)
		if err != nil {
			return nil, err
		}
		if err := w.Initialize(store.Load()); err != nil {
			logger.Warn("wheel re-initialization failed", "error", err)
		}
		return w, nil
	})

	engine := ffb.NewEngine(store, logger)
	b := bridge.New(store, engine, phys, virt, reopen, logger, rawLogger)

	logger.Info("bridge running",
		"updateRateHz", snap.FFB.UpdateRateHz,
		"ffb", snap.FFB.Enabled)

	if err := b.Run(ctx); err != nil {
		if errors.Is(err, bridge.ErrDeviceLost) {
			logger.Error("wheel disconnected and could not be recovered, exiting")
		}
		return err
	}
	return nil
}
