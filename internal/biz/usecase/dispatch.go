package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
)

// DefaultCommandName is the adapter command used by the command shapes
const DefaultCommandName = "SEND_POKE"

// DefaultDispatchTimeout bounds a single candidate submission
const DefaultDispatchTimeout = 5 * time.Second

// DefaultShapeOrder is the candidate order when none is configured
var DefaultShapeOrder = []string{ShapeQQID, ShapeTargetID, ShapeDirect, ShapeMessage}

// Built-in payload shape names
const (
	ShapeQQID     = "qq_id"
	ShapeTargetID = "target_id"
	ShapeDirect   = "direct"
	ShapeMessage  = "message"
)

// Shape turns a resolved target into one candidate request.
// Build must be a pure function of its inputs.
type Shape struct {
	Name  string
	Build func(target domain.ResolvedTarget, extra domain.DispatchExtra) (path string, body map[string]any)
}

// CommandPath maps an adapter command name such as SEND_POKE to its action path
func CommandPath(command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultCommandName
	}
	return "/" + strings.ToLower(strings.TrimPrefix(command, "/"))
}

// commandShape posts {<idField>: user, group_id?} to the generic command path
func commandShape(name, idField, command string) Shape {
	path := CommandPath(command)
	return Shape{
		Name: name,
		Build: func(target domain.ResolvedTarget, _ domain.DispatchExtra) (string, map[string]any) {
			body := map[string]any{idField: target.UserID}
			if target.InGroup() {
				body["group_id"] = target.GroupID
			}
			return path, body
		},
	}
}

// directShape uses the group or friend poke path; the two are not interchangeable
func directShape() Shape {
	return Shape{
		Name: ShapeDirect,
		Build: func(target domain.ResolvedTarget, _ domain.DispatchExtra) (string, map[string]any) {
			if target.InGroup() {
				return "/group_poke", map[string]any{"group_id": target.GroupID, "user_id": target.UserID}
			}
			return "/friend_poke", map[string]any{"user_id": target.UserID}
		},
	}
}

// messageShape sends a message carrying an optional reply segment and a poke segment
func messageShape() Shape {
	return Shape{
		Name: ShapeMessage,
		Build: func(target domain.ResolvedTarget, extra domain.DispatchExtra) (string, map[string]any) {
			segments := make([]map[string]any, 0, 2)
			if extra.ReplyID != "" {
				segments = append(segments, map[string]any{
					"type": "reply",
					"data": map[string]any{"id": extra.ReplyID},
				})
			}
			segments = append(segments, map[string]any{
				"type": "poke",
				"data": map[string]any{"qq": target.UserID},
			})

			body := map[string]any{"message": segments}
			if target.InGroup() {
				body["message_type"] = "group"
				body["group_id"] = target.GroupID
			} else {
				body["message_type"] = "private"
				body["user_id"] = target.UserID
			}
			return "/send_msg", body
		},
	}
}

// BuildShapes returns the named shapes in order
func BuildShapes(names []string, command string) ([]Shape, error) {
	if len(names) == 0 {
		names = DefaultShapeOrder
	}
	shapes := make([]Shape, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case ShapeQQID:
			shapes = append(shapes, commandShape(ShapeQQID, "qq_id", command))
		case ShapeTargetID:
			shapes = append(shapes, commandShape(ShapeTargetID, "target_id", command))
		case ShapeDirect:
			shapes = append(shapes, directShape())
		case ShapeMessage:
			shapes = append(shapes, messageShape())
		default:
			return nil, fmt.Errorf("unknown payload shape: %s", name)
		}
	}
	if len(shapes) == 0 {
		return nil, fmt.Errorf("no payload shapes configured")
	}
	return shapes, nil
}

// DispatchUsecase delivers pokes through the first candidate shape that succeeds
type DispatchUsecase struct {
	gesture repo.GestureRepo
	shapes  []Shape
	timeout time.Duration
	logger  *zap.Logger
}

// NewDispatchUsecase creates a new dispatch usecase
func NewDispatchUsecase(gesture repo.GestureRepo, shapes []Shape, timeout time.Duration, logger *zap.Logger) *DispatchUsecase {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &DispatchUsecase{
		gesture: gesture,
		shapes:  shapes,
		timeout: timeout,
		logger:  logger,
	}
}

// Shapes returns the candidate shape names in order
func (uc *DispatchUsecase) Shapes() []string {
	names := make([]string, len(uc.shapes))
	for i, s := range uc.shapes {
		names[i] = s.Name
	}
	return names
}

// Dispatch tries each candidate in order and stops at the first acknowledged one
func (uc *DispatchUsecase) Dispatch(ctx context.Context, target domain.ResolvedTarget, extra domain.DispatchExtra) domain.DispatchOutcome {
	var out domain.DispatchOutcome

	for _, shape := range uc.shapes {
		if err := ctx.Err(); err != nil {
			out.Err = fmt.Errorf("dispatch aborted: %w", err)
			return out
		}

		path, body := shape.Build(target, extra)
		out.Candidate = shape.Name
		out.Attempts++

		resp, err := uc.submit(ctx, path, body)
		if err != nil {
			uc.logger.Warn("candidate failed",
				zap.String("shape", shape.Name),
				zap.String("path", path),
				zap.Any("body", body),
				zap.Error(err))
			out.Err = err
			continue
		}

		uc.logger.Debug("candidate acknowledged", zap.String("shape", shape.Name), zap.String("path", path))
		out.Success = true
		out.Body = resp.Raw
		out.Err = nil
		return out
	}

	if out.Err == nil {
		out.Err = fmt.Errorf("no payload shapes configured")
	}
	return out
}

func (uc *DispatchUsecase) submit(ctx context.Context, path string, body map[string]any) (*repo.AdapterResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	resp, err := uc.gesture.Submit(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if !resp.Succeeded() {
		return nil, &domain.AdapterRejectedError{
			Path:    path,
			Status:  resp.Status,
			RetCode: resp.Code(),
			Msg:     resp.Message(),
		}
	}
	return resp, nil
}
