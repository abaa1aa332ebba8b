package data

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/acpoke/acpoke-bridge/internal/biz/domain"
	"github.com/acpoke/acpoke-bridge/internal/biz/repo"
	"github.com/acpoke/acpoke-bridge/onebot"
)

// gestureRepo implements the delivery endpoint over the OneBot HTTP adapter
type gestureRepo struct {
	client *onebot.Client
}

// NewGestureRepo creates a new gesture repository
func NewGestureRepo(client *onebot.Client) repo.GestureRepo {
	return &gestureRepo{client: client}
}

// Submit posts one candidate payload
func (r *gestureRepo) Submit(ctx context.Context, path string, body map[string]any) (*repo.AdapterResponse, error) {
	resp, err := r.client.Call(ctx, path, body)
	if err != nil {
		return nil, toTransportError(path, err)
	}
	return &repo.AdapterResponse{
		Status:  resp.Status,
		RetCode: resp.RetCode,
		Msg:     resp.Msg,
		Wording: resp.Wording,
		Data:    resp.Data,
		Raw:     resp.Raw,
	}, nil
}

func toTransportError(path string, err error) error {
	te := &domain.TransportError{Path: path, Err: err}

	var statusErr *onebot.StatusError
	if errors.As(err, &statusErr) {
		te.StatusCode = statusErr.StatusCode
	}
	// Strip the URL wrapper so logs carry the cause only
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		te.Err = fmt.Errorf("timeout: %w", urlErr.Err)
	}
	return te
}

// membershipRepo implements group membership lookups
type membershipRepo struct {
	client *onebot.Client
}

// NewMembershipRepo creates a new membership repository
func NewMembershipRepo(client *onebot.Client) repo.MembershipRepo {
	return &membershipRepo{client: client}
}

// ListGroupMembers gets the members of a group
func (r *membershipRepo) ListGroupMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	members, err := r.client.GetGroupMemberList(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group %s members: %w", groupID, err)
	}

	result := make([]domain.Member, 0, len(members))
	for _, m := range members {
		if m.UserID == "" {
			continue
		}
		result = append(result, domain.Member{
			UserID:   m.UserID.String(),
			Nickname: m.Nickname,
			Card:     m.Card,
		})
	}
	return result, nil
}

// contactRepo implements friend lookups
type contactRepo struct {
	client *onebot.Client
}

// NewContactRepo creates a new contact repository
func NewContactRepo(client *onebot.Client) repo.ContactRepo {
	return &contactRepo{client: client}
}

// ListContacts gets the bot's friends
func (r *contactRepo) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	friends, err := r.client.GetFriendList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	result := make([]domain.Contact, 0, len(friends))
	for _, f := range friends {
		if f.UserID == "" {
			continue
		}
		result = append(result, domain.Contact{
			UserID:   f.UserID.String(),
			Nickname: f.Nickname,
			Remark:   f.Remark,
		})
	}
	return result, nil
}

// messageRepo implements plain-text chat messages
type messageRepo struct {
	client *onebot.Client
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(client *onebot.Client) repo.MessageRepo {
	return &messageRepo{client: client}
}

// SendText sends text to a group or user
func (r *messageRepo) SendText(ctx context.Context, chat domain.ChatTarget, text string) error {
	if chat.IsGroup() {
		return r.client.SendGroupText(ctx, chat.GroupID, text)
	}
	if chat.UserID == "" {
		return fmt.Errorf("send text: no chat target")
	}
	return r.client.SendPrivateText(ctx, chat.UserID, text)
}
