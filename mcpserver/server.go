package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
	"github.com/acpoke/acpoke-bridge/internal/biz/usecase"
)

// PokeMCPServer exposes the poke action as MCP tools
type PokeMCPServer struct {
	server     *mcp.Server
	pokeUC     *usecase.PokeUsecase
	actionRepo repo.ActionRepo
	logger     *zap.Logger
}

// NewServer creates a new poke MCP server
func NewServer(pokeUC *usecase.PokeUsecase, actionRepo repo.ActionRepo, version string, logger *zap.Logger) *PokeMCPServer {
	if version == "" {
		version = "v1.0.0"
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "acpoke-tools",
		Version: version,
	}, nil)

	s := &PokeMCPServer{
		server:     server,
		pokeUC:     pokeUC,
		actionRepo: actionRepo,
		logger:     logger,
	}

	// Register tools
	s.registerTools()

	return s
}

// registerTools registers all poke-related MCP tools
func (s *PokeMCPServer) registerTools() {
	info := domain.PokeActionInfo()

	// Tool: poke - Send a poke gesture
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        info.Name,
		Description: pokeToolDescription(info),
	}, s.handlePoke)

	// Tool: poke_action_info - Describe the poke action
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "poke_action_info",
		Description: "Describe the poke action: parameters, when to use it, and activation keywords.",
	}, s.handleActionInfo)

	// Tool: recent_pokes - Recent action records
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_pokes",
		Description: "List recent pokes the bot made, newest first. Use this to avoid poking the same person again too soon.",
	}, s.handleRecentPokes)
}

func pokeToolDescription(info domain.ActionInfo) string {
	desc := info.Description + "。"
	for _, r := range info.Requirements {
		desc += "\n- " + r
	}
	return desc
}

// PokeInput is the input for the poke tool
type PokeInput struct {
	UserID          string `json:"user_id" jsonschema:"Name, alias (我/自己/me) or QQ number of the person to poke"`
	GroupID         string `json:"group_id,omitempty" jsonschema:"Group ID. Inferred from the chat when empty"`
	ReplyID         string `json:"reply_id,omitempty" jsonschema:"Message ID to reply to"`
	PokeMode        string `json:"poke_mode,omitempty" jsonschema:"主动 or 被动. Recorded only"`
	Reason          string `json:"reason,omitempty" jsonschema:"Why the poke is sent. Recorded"`
	ResponseText    string `json:"response_text,omitempty" jsonschema:"Model output that may carry user_id: N and group_id: N markers"`
	ChatID          string `json:"chat_id,omitempty" jsonschema:"Chat session ID used for cooldown"`
	SenderID        string `json:"sender_id,omitempty" jsonschema:"QQ number of the person who triggered the action"`
	SenderName      string `json:"sender_name,omitempty" jsonschema:"Display name of the person who triggered the action"`
	MessageGroupID  string `json:"message_group_id,omitempty" jsonschema:"Group of the triggering message"`
	SessionGroupID  string `json:"session_group_id,omitempty" jsonschema:"Group of the current chat session"`
	FallbackGroupID string `json:"fallback_group_id,omitempty" jsonschema:"Group used when no other group is known"`
}

// PokeOutput is the output for the poke tool
type PokeOutput struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
	GroupID string `json:"group_id,omitempty"`
}

func (s *PokeMCPServer) handlePoke(ctx context.Context, req *mcp.CallToolRequest, input PokeInput) (*mcp.CallToolResult, PokeOutput, error) {
	result := s.pokeUC.Execute(ctx, &usecase.PokeRequest{
		Target:       input.UserID,
		GroupID:      input.GroupID,
		ReplyID:      input.ReplyID,
		PokeMode:     input.PokeMode,
		Reason:       input.Reason,
		ResponseText: input.ResponseText,
		Context: domain.InvocationContext{
			ChatID:          input.ChatID,
			SenderID:        input.SenderID,
			SenderName:      input.SenderName,
			MessageGroupID:  input.MessageGroupID,
			SessionGroupID:  input.SessionGroupID,
			FallbackGroupID: input.FallbackGroupID,
		},
	})

	ok, msg := result.OK()
	out := PokeOutput{OK: ok, Status: string(result.Status), Message: msg}
	if result.Target != nil {
		out.UserID = result.Target.UserID
		out.GroupID = result.Target.GroupID
	}
	s.logger.Debug("poke tool called", zap.String("user_id", input.UserID), zap.String("status", out.Status))
	return nil, out, nil
}

// ActionInfoInput is empty - no input needed
type ActionInfoInput struct{}

func (s *PokeMCPServer) handleActionInfo(ctx context.Context, req *mcp.CallToolRequest, input ActionInfoInput) (*mcp.CallToolResult, domain.ActionInfo, error) {
	return nil, domain.PokeActionInfo(), nil
}

// RecentPokesInput specifies which records to list
type RecentPokesInput struct {
	ChatID string `json:"chat_id,omitempty" jsonschema:"Chat session ID. All chats when empty"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of records (default 10)"`
}

// PokeRecord is one recent poke
type PokeRecord struct {
	ChatID    string `json:"chat_id"`
	UserID    string `json:"user_id"`
	GroupID   string `json:"group_id,omitempty"`
	Reason    string `json:"reason"`
	PokeMode  string `json:"poke_mode,omitempty"`
	Display   string `json:"display"`
	CreatedAt string `json:"created_at"`
}

// RecentPokesOutput contains recent pokes
type RecentPokesOutput struct {
	Pokes []PokeRecord `json:"pokes"`
	Error string       `json:"error,omitempty"`
}

func (s *PokeMCPServer) handleRecentPokes(ctx context.Context, req *mcp.CallToolRequest, input RecentPokesInput) (*mcp.CallToolResult, RecentPokesOutput, error) {
	if s.actionRepo == nil {
		return nil, RecentPokesOutput{Pokes: []PokeRecord{}, Error: "action store not initialized"}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	records, err := s.actionRepo.ListRecentActions(ctx, input.ChatID, limit)
	if err != nil {
		return nil, RecentPokesOutput{Pokes: []PokeRecord{}, Error: err.Error()}, nil
	}

	pokes := make([]PokeRecord, 0, len(records))
	for _, r := range records {
		if r.ActionName != "poke" {
			continue
		}
		pokes = append(pokes, PokeRecord{
			ChatID:    r.ChatID,
			UserID:    r.Data["user_id"],
			GroupID:   r.Data["group_id"],
			Reason:    r.Reason,
			PokeMode:  r.Data["poke_mode"],
			Display:   r.Display,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil, RecentPokesOutput{Pokes: pokes}, nil
}

// Run starts the MCP server with stdio transport
func (s *PokeMCPServer) Run(ctx context.Context) error {
	s.logger.Info("MCP server running on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Server returns the underlying MCP server
func (s *PokeMCPServer) Server() *mcp.Server {
	return s.server
}
