// Package cmds holds the receptionist subcommands and the wiring they share.
package cmds

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/sudo-god/AI-Receptionist/pkg/agent"
	"github.com/sudo-god/AI-Receptionist/pkg/config"
	"github.com/sudo-god/AI-Receptionist/pkg/events"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/engine/factory"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/middleware"
	"github.com/sudo-god/AI-Receptionist/pkg/inference/tools"
	"github.com/sudo-god/AI-Receptionist/pkg/mail"
	"github.com/sudo-god/AI-Receptionist/pkg/store"
	"github.com/sudo-god/AI-Receptionist/pkg/supervisor"
	"github.com/sudo-god/AI-Receptionist/pkg/toolbox"
)

// App owns every long-lived collaborator of the process.
type App struct {
	Config     *config.Config
	Store      store.Store
	Sender     mail.Sender
	Events     *events.EventRouter
	Supervisor *supervisor.Supervisor
}

type appOptions struct {
	model  engine.Engine
	helper engine.Engine
	store  store.Store
	sender mail.Sender
}

type AppOption func(*appOptions)

// WithEngines replaces the configured provider engines.
func WithEngines(model, helper engine.Engine) AppOption {
	return func(o *appOptions) {
		o.model = model
		o.helper = helper
	}
}

func WithStore(s store.Store) AppOption {
	return func(o *appOptions) { o.store = s }
}

func WithSender(s mail.Sender) AppOption {
	return func(o *appOptions) { o.sender = s }
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetString("config"))
}

// NewStore opens the configured persistence backend.
func NewStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using the in-memory store, nothing survives a restart")
		return store.NewMemoryStore(), nil
	case config.DriverMongo:
		return store.NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errors.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func newSender(ctx context.Context, cfg *config.Config) (mail.Sender, error) {
	if !cfg.Google.Enabled {
		log.Info().Msg("google is disabled, emails and calendar events are only logged")
		return mail.LogSender{}, nil
	}
	g, err := mail.NewGoogle(ctx, cfg.Google.GoogleConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up google")
	}
	return g, nil
}

func newEngines(cfg *config.Config) (engine.Engine, engine.Engine, error) {
	f := factory.NewStandardEngineFactory()
	model, err := f.CreateEngine(cfg.Model.Settings())
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create model engine")
	}
	helper, err := f.CreateEngine(cfg.Model.HelperSettings())
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create helper engine")
	}
	return model, helper, nil
}

func withMiddleware(e engine.Engine, name string, window int) engine.Engine {
	return middleware.NewEngineWithMiddleware(e,
		middleware.NewLoggingMiddleware(log.Logger, name),
		middleware.NewHistoryWindowMiddleware(window),
	)
}

func NewApp(ctx context.Context, cfg *config.Config, options ...AppOption) (*App, error) {
	o := &appOptions{}
	for _, opt := range options {
		opt(o)
	}

	var err error
	if o.model == nil || o.helper == nil {
		o.model, o.helper, err = newEngines(cfg)
		if err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		o.store, err = NewStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	if o.sender == nil {
		o.sender, err = newSender(ctx, cfg)
		if err != nil {
			_ = o.store.Close(ctx)
			return nil, err
		}
	}

	router, err := events.NewEventRouter(events.WithLogger(events.NewWatermillLogger(log.Logger)))
	if err != nil {
		_ = o.store.Close(ctx)
		return nil, errors.Wrap(err, "failed to create event router")
	}
	router.AddHandler("log-events", events.LogEvent)
	sink := router.Sink()

	window := cfg.Agent.HistoryWindow
	model := withMiddleware(o.model, "model", window)
	helper := withMiddleware(o.helper, "helper", window)

	tb := toolbox.New(o.store, o.sender,
		toolbox.WithBusinessInfo(o.store),
		toolbox.WithTimeZone(cfg.Google.TimeZone),
		toolbox.WithEventDuration(cfg.Google.EventDuration),
	)
	receptionistTools, err := tools.NewRegistryFromTools(tb.ReceptionistTools()...)
	if err != nil {
		return nil, err
	}
	knowledgeTools, err := tools.NewRegistryFromTools(tb.KnowledgeBaseTools()...)
	if err != nil {
		return nil, err
	}

	runnerOptions := []agent.RunnerOption{
		agent.WithMaxClarificationAttempts(cfg.Agent.MaxClarificationAttempts),
		agent.WithEventSink(sink),
	}
	agents := []*agent.Agent{
		agent.New(agent.ReceptionistAgent,
			"Creates, reads, updates and deletes clients. Checks slot availability. Books jobs and inquiries. Sends emails.",
			agent.NewPlanner(model, receptionistTools, agent.WithPriority(toolbox.ReceptionistPriority...)),
			agent.NewRunner(receptionistTools, helper, runnerOptions...),
			agent.NewSynthesizer(model)),
		agent.New(agent.KnowledgeBaseAgent,
			"Answers questions about the business such as opening hours, services, pricing and policies.",
			agent.NewPlanner(model, knowledgeTools, agent.WithSystemPrompt(agent.KnowledgeBasePrompt)),
			agent.NewRunner(knowledgeTools, helper, runnerOptions...),
			agent.NewSynthesizer(model)),
	}

	return &App{
		Config: cfg,
		Store:  o.store,
		Sender: o.sender,
		Events: router,
		Supervisor: supervisor.New(o.store,
			supervisor.NewRouter(model, cfg.Agent.DefaultAgent, agents...),
			agents,
			supervisor.WithEventSink(sink)),
	}, nil
}

func (a *App) Close(ctx context.Context) error {
	if err := a.Events.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close event router")
	}
	return a.Store.Close(ctx)
}
