package biz

import (
	"time"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
	"github.com/acpoke/acpoke-bridge/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Resolver *usecase.ResolverUsecase
	Cooldown *usecase.CooldownUsecase
	Dispatch *usecase.DispatchUsecase
	Recorder *usecase.RecorderUsecase
	Poke     *usecase.PokeUsecase
}

// Repos are the collaborators the usecases depend on
type Repos struct {
	Directory  repo.DirectoryRepo
	Membership repo.MembershipRepo
	Contacts   repo.ContactRepo
	Gesture    repo.GestureRepo
	Action     repo.ActionRepo
	Message    repo.MessageRepo
}

// Options tunes the pipeline
type Options struct {
	SelfAliases     []string
	CooldownWindow  time.Duration
	Shapes          []usecase.Shape
	DispatchTimeout time.Duration
	Poke            usecase.PokeConfig
}

// NewUsecases wires the poke pipeline
func NewUsecases(repos Repos, opts Options, logger *zap.Logger) *Usecases {
	resolverUC := usecase.NewResolverUsecase(repos.Directory, repos.Membership, repos.Contacts, opts.SelfAliases, logger.Named("resolver"))
	cooldownUC := usecase.NewCooldownUsecase(opts.CooldownWindow)
	dispatchUC := usecase.NewDispatchUsecase(repos.Gesture, opts.Shapes, opts.DispatchTimeout, logger.Named("dispatch"))
	recorderUC := usecase.NewRecorderUsecase(repos.Action, repos.Message, opts.Poke.Debug, logger.Named("recorder"))

	return &Usecases{
		Resolver: resolverUC,
		Cooldown: cooldownUC,
		Dispatch: dispatchUC,
		Recorder: recorderUC,
		Poke:     usecase.NewPokeUsecase(resolverUC, cooldownUC, dispatchUC, recorderUC, opts.Poke, logger.Named("poke")),
	}
}
