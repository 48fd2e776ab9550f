package injector

import (
	"github.com/lk2023060901/prospect-finder/internal/conf"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
	"github.com/lk2023060901/prospect-finder/internal/server"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	HTTPServer *server.HTTPServer
	Pipeline   *biz.PipelineUseCase
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	httpServer *server.HTTPServer,
	pipeline *biz.PipelineUseCase,
) *App {
	return &App{
		Config:     config,
		Logger:     log,
		HTTPServer: httpServer,
		Pipeline:   pipeline,
	}
}
