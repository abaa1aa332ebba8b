package usecase

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
)

// DefaultSelfAliases are the tokens that mean "the person talking to the bot"
var DefaultSelfAliases = []string{"我", "我自己", "自己", "me", "myself"}

var (
	responseUserIDRegex  = regexp.MustCompile(`user_id\s*:\s*(\d+)`)
	responseGroupIDRegex = regexp.MustCompile(`group_id\s*:\s*(\d+)`)
)

// resolveStrategy is one way of turning a token into a user ID.
// It returns the user ID and, when the strategy knows better, a group override.
type resolveStrategy struct {
	name    string
	resolve func(ctx context.Context, req *domain.ResolutionRequest, groupID string) (userID, groupID2 string)
}

// ResolverUsecase resolves loosely specified targets to concrete identities
type ResolverUsecase struct {
	directory  repo.DirectoryRepo
	membership repo.MembershipRepo
	contacts   repo.ContactRepo
	aliases    map[string]struct{}
	strategies []resolveStrategy
	logger     *zap.Logger
}

// NewResolverUsecase creates a new resolver usecase.
// Any collaborator may be nil; its strategy is then skipped.
func NewResolverUsecase(
	directory repo.DirectoryRepo,
	membership repo.MembershipRepo,
	contacts repo.ContactRepo,
	selfAliases []string,
	logger *zap.Logger,
) *ResolverUsecase {
	if len(selfAliases) == 0 {
		selfAliases = DefaultSelfAliases
	}
	aliases := make(map[string]struct{}, len(selfAliases))
	for _, a := range selfAliases {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			aliases[a] = struct{}{}
		}
	}

	uc := &ResolverUsecase{
		directory:  directory,
		membership: membership,
		contacts:   contacts,
		aliases:    aliases,
		logger:     logger,
	}
	uc.strategies = []resolveStrategy{
		{name: "self_alias", resolve: uc.bySelfAlias},
		{name: "numeric", resolve: uc.byNumericToken},
		{name: "directory", resolve: uc.byDirectory},
		{name: "group_member", resolve: uc.byGroupMember},
		{name: "contact", resolve: uc.byContact},
		{name: "response_text", resolve: uc.byResponseText},
	}
	return uc
}

// Resolve resolves the request to a target or returns domain.ErrNoTargetIdentity
func (uc *ResolverUsecase) Resolve(ctx context.Context, req *domain.ResolutionRequest) (*domain.ResolvedTarget, error) {
	req.Token = strings.TrimSpace(req.Token)
	groupID := ResolveGroupID(req)

	for _, s := range uc.strategies {
		userID, override := s.resolve(ctx, req, groupID)
		if userID == "" {
			continue
		}
		if override != "" {
			groupID = override
		}
		uc.logger.Debug("target resolved",
			zap.String("strategy", s.name),
			zap.String("token", req.Token),
			zap.String("user_id", userID),
			zap.String("group_id", groupID))
		return &domain.ResolvedTarget{UserID: userID, GroupID: groupID}, nil
	}

	uc.logger.Info("target unresolved", zap.String("token", req.Token), zap.String("group_id", groupID))
	return nil, domain.ErrNoTargetIdentity
}

// ResolveGroupID picks the group: explicit hint, then message, then session, then fallback.
// Non-numeric sources count as absent.
func ResolveGroupID(req *domain.ResolutionRequest) string {
	for _, g := range []string{
		req.GroupHint,
		req.Context.MessageGroupID,
		req.Context.SessionGroupID,
		req.Context.FallbackGroupID,
	} {
		if g = domain.NormalizeID(g); domain.IsDigits(g) {
			return g
		}
	}
	return ""
}

// IsSelfAlias reports whether token refers to the sender
func (uc *ResolverUsecase) IsSelfAlias(token string) bool {
	_, ok := uc.aliases[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

func (uc *ResolverUsecase) bySelfAlias(_ context.Context, req *domain.ResolutionRequest, _ string) (string, string) {
	if req.Token == "" || !uc.IsSelfAlias(req.Token) {
		return "", ""
	}
	sender := domain.NormalizeID(req.Context.SenderID)
	if !domain.IsDigits(sender) {
		return "", ""
	}
	return sender, ""
}

func (uc *ResolverUsecase) byNumericToken(_ context.Context, req *domain.ResolutionRequest, _ string) (string, string) {
	if domain.IsDigits(req.Token) {
		return req.Token, ""
	}
	return "", ""
}

func (uc *ResolverUsecase) byDirectory(ctx context.Context, req *domain.ResolutionRequest, _ string) (string, string) {
	if uc.directory == nil || req.Token == "" {
		return "", ""
	}
	personID, err := uc.directory.FindPersonIDByName(ctx, req.Token)
	if err != nil {
		uc.logger.Error("person directory lookup failed", zap.String("name", req.Token), zap.Error(err))
		return "", ""
	}
	if personID == "" {
		return "", ""
	}
	userID, err := uc.directory.GetPersonValue(ctx, personID, "user_id")
	if err != nil {
		uc.logger.Error("person value lookup failed", zap.String("person_id", personID), zap.Error(err))
		return "", ""
	}
	if !domain.IsDigits(userID) {
		uc.logger.Warn("person has no numeric user_id", zap.String("person_id", personID), zap.String("user_id", userID))
		return "", ""
	}
	return userID, ""
}

func (uc *ResolverUsecase) byGroupMember(ctx context.Context, req *domain.ResolutionRequest, groupID string) (string, string) {
	if uc.membership == nil || req.Token == "" || groupID == "" {
		return "", ""
	}
	members, err := uc.membership.ListGroupMembers(ctx, groupID)
	if err != nil {
		uc.logger.Warn("group member lookup failed", zap.String("group_id", groupID), zap.Error(err))
		return "", ""
	}
	// Exact names beat substrings
	for _, m := range members {
		if strings.EqualFold(m.Nickname, req.Token) || strings.EqualFold(m.Card, req.Token) {
			return m.UserID, ""
		}
	}
	for _, m := range members {
		if m.Matches(req.Token) {
			return m.UserID, ""
		}
	}
	return "", ""
}

func (uc *ResolverUsecase) byContact(ctx context.Context, req *domain.ResolutionRequest, _ string) (string, string) {
	if uc.contacts == nil || req.Token == "" {
		return "", ""
	}
	contacts, err := uc.contacts.ListContacts(ctx)
	if err != nil {
		uc.logger.Warn("contact lookup failed", zap.Error(err))
		return "", ""
	}
	for _, c := range contacts {
		if strings.EqualFold(c.Nickname, req.Token) || strings.EqualFold(c.Remark, req.Token) {
			return c.UserID, ""
		}
	}
	for _, c := range contacts {
		if c.Matches(req.Token) {
			return c.UserID, ""
		}
	}
	return "", ""
}

func (uc *ResolverUsecase) byResponseText(_ context.Context, req *domain.ResolutionRequest, _ string) (string, string) {
	if req.ResponseText == "" {
		return "", ""
	}
	m := responseUserIDRegex.FindStringSubmatch(req.ResponseText)
	if m == nil {
		return "", ""
	}
	group := ""
	if g := responseGroupIDRegex.FindStringSubmatch(req.ResponseText); g != nil {
		group = g[1]
	}
	return m[1], group
}
