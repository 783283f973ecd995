package router

import (
	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/container"
	"github.com/oksasatya/morningforge/internal/domain/entitlement"
	"github.com/oksasatya/morningforge/internal/infrastructure/gcs"
	openaiinfra "github.com/oksasatya/morningforge/internal/infrastructure/openai"
	"github.com/oksasatya/morningforge/internal/infrastructure/search"
	handlers "github.com/oksasatya/morningforge/internal/interface/http"
	"github.com/oksasatya/morningforge/internal/router/modules"
)

// Services are the application services built from the container.
type Services struct {
	Accounts   *application.AccountService
	Routines   *application.RoutineService
	Streaks    *application.StreakService
	Settings   *application.SettingsService
	Generation *application.GenerationService
	Data       *application.DataService
}

// BuildServices wires application services from the container's
// infrastructure. Optional backends (Elasticsearch, GCS, OpenAI, RabbitMQ)
// are left nil when not configured and the services degrade accordingly.
func BuildServices(clock application.Clock) Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	st := container.GetStores()

	var notifier application.Notifier
	if pub := container.GetRabbitPub(); pub != nil {
		notifier = application.NewEmailNotifier(pub, cfg, logger)
	}

	var index application.RoutineIndex
	if es := container.GetES(); es != nil && cfg.ESRoutinesIndex != "" {
		index = search.NewRoutineIndex(es, cfg.ESRoutinesIndex, logger)
	}

	var generator application.RoutineGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = openaiinfra.NewRoutineGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	}

	var uploader application.ObjectUploader
	if c := container.GetGCS(); c != nil && cfg.GCSBucket != "" {
		uploader = gcs.NewUploader(c, cfg.GCSBucket)
	}

	return Services{
		Accounts: application.NewAccountService(
			st.Accounts,
			st.Sessions,
			entitlement.NewEvaluator(cfg.TrialLength),
			container.GetJWT(),
			clock,
			cfg.SessionTTL,
			notifier,
			logger,
		),
		Routines:   application.NewRoutineService(st.Buckets, index, clock, logger),
		Streaks:    application.NewStreakService(st.Buckets, clock),
		Settings:   application.NewSettingsService(st.Buckets),
		Generation: application.NewGenerationService(generator, st.Buckets, logger),
		Data:       application.NewDataService(st.Buckets, index, uploader, clock, logger),
	}
}

// InitModules registers every feature module with the registry. Call once
// during startup.
func InitModules(r *Registry, svc Services) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	accountHandler := handlers.NewAccountHandler(svc.Accounts, svc.Data, logger, cfg.CookieDomain, cfg.CookieSecure)
	routineHandler := handlers.NewRoutineHandler(svc.Routines, svc.Generation, logger)
	progressHandler := handlers.NewProgressHandler(svc.Streaks, svc.Settings, logger)

	r.Add(modules.NewAccountModule(accountHandler, svc.Accounts, jwt, rdb, cfg.DebugTogglePro))
	r.Add(modules.NewRoutineModule(routineHandler, svc.Accounts, jwt, rdb))
	r.Add(modules.NewProgressModule(progressHandler, svc.Accounts, jwt, rdb))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb, container.GetStores().Accounts))
	}
}
