package main

import (
	"flag"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Dhruhi111/Tivaan-Vision/internal/client"
	"github.com/Dhruhi111/Tivaan-Vision/internal/config"
	"github.com/Dhruhi111/Tivaan-Vision/internal/console"
	httphandler "github.com/Dhruhi111/Tivaan-Vision/internal/http"
	"github.com/Dhruhi111/Tivaan-Vision/internal/page"
	"github.com/Dhruhi111/Tivaan-Vision/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	doc, err := loadPage(cfg.Page.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Page.Path).Msg("failed to load console page")
	}

	detect := client.NewDetectionClient(cfg.Detection.URL, log)
	sensor := client.NewSensorClient(cfg.Sensor.URL, log)
	cons := console.New(doc, detect, sensor, log)

	bound := cons.Attach()
	log.Info().
		Int("controls", bound).
		Str("detection_url", cfg.Detection.URL).
		Str("sensor_url", cfg.Sensor.URL).
		Msg("console attached")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	r.Use(cors.New(corsConfig))

	handler := httphandler.NewHandler(cons, cfg, log)
	handler.Register(r)

	log.Info().Str("addr", cfg.Server.Addr).Msg("starting vision console")
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func loadPage(path string) (*page.Document, error) {
	if path == "" {
		return page.Load(strings.NewReader(web.ConsolePage))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return page.Load(f)
}
