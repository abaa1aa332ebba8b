package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz"
	"github.com/acpoke/acpoke-bridge/internal/biz/usecase"
	"github.com/acpoke/acpoke-bridge/internal/conf"
	"github.com/acpoke/acpoke-bridge/internal/data"
	"github.com/acpoke/acpoke-bridge/onebot"
)

// app holds the wired pipeline
type app struct {
	repos  *data.Repositories
	poke   *usecase.PokeUsecase
	logger *zap.Logger
}

// newApp wires repositories and usecases from config
func newApp(cfg *conf.Config, logger *zap.Logger) (*app, error) {
	client := onebot.NewClient(cfg.Adapter.Scheme, cfg.Adapter.Host, cfg.Adapter.Port, cfg.Adapter.Timeout())

	repos, err := data.NewRepositories(client, cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	shapes, err := usecase.BuildShapes(cfg.Poke.Shapes, cfg.Poke.CommandName)
	if err != nil {
		repos.Close()
		return nil, err
	}

	ucs := biz.NewUsecases(biz.Repos{
		Directory:  repos.Directory,
		Membership: repos.Membership,
		Contacts:   repos.Contacts,
		Gesture:    repos.Gesture,
		Action:     repos.Action,
		Message:    repos.Message,
	}, biz.Options{
		SelfAliases:     cfg.Poke.SelfAliases,
		CooldownWindow:  cfg.Poke.CooldownWindow(),
		Shapes:          shapes,
		DispatchTimeout: cfg.Adapter.Timeout(),
		Poke:            cfg.ToPokeConfig(),
	}, logger)

	logger.Info("poke pipeline ready",
		zap.String("adapter", client.BaseURL()),
		zap.Strings("shapes", ucs.Dispatch.Shapes()),
		zap.Duration("cooldown", ucs.Cooldown.Window()),
		zap.String("db", cfg.Storage.DBPath),
		zap.Bool("enabled", cfg.Plugin.Enabled))

	return &app{repos: repos, poke: ucs.Poke, logger: logger}, nil
}

// Close releases storage
func (a *app) Close() error {
	return a.repos.Close()
}
