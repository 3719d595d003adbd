package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/vitals/internal/infrastructure/config"
	"github.com/felixgeelhaar/vitals/internal/infrastructure/wiring"
)

// now anchors analysis timeframes.
var now = time.Now

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, NewCLIError("invalid configuration", "Run 'vitals config show' with a corrected file or environment", err)
	}
	return cfg, nil
}

func loadServices(ctx context.Context, cfg *config.Config, logOut io.Writer) (*wiring.AppServices, error) {
	logger, err := config.NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, NewCLIError("invalid log configuration", "Use log.level debug|info|warn|error and log.format text|json", err)
	}
	services, err := wiring.BuildAppServices(ctx, cfg, logger)
	if err != nil {
		return nil, MapError(fmt.Errorf("failed to build services: %w", err))
	}
	return services.WithClock(now), nil
}
