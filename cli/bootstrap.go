package cli

import (
	"github.com/SteveKibs/cake-backend-app/config"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
)

// bootstrap loads the configuration and applies the process-wide settings
// every command shares.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format)
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	return cfg, nil
}
