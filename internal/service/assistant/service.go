package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
	apperrors "github.com/clinicore/decision-api/pkg/errors"
)

const defaultLanguage = "en"

type Service struct {
	chats repository.ChatRepository
}

func NewService(chats repository.ChatRepository) *Service {
	return &Service{chats: chats}
}

// Respond classifies the message, records the user turn and the
// assistant turn in the chat store, and returns the reply. The topic
// name of the matched branch is returned for metric labelling.
func (s *Service) Respond(ctx context.Context, userID uuid.UUID, req *model.ChatRequest) (*model.ChatResponse, string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, "", apperrors.InvalidInput("message is required")
	}

	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	topicName, reply := Reply(req.Message)

	now := time.Now()
	turns := []*model.ChatTurn{
		{
			ID:        uuid.New(),
			UserID:    userID,
			SessionID: req.SessionID,
			Role:      model.ChatRoleUser,
			Text:      req.Message,
			Language:  language,
			Timestamp: now,
		},
		{
			ID:        uuid.New(),
			UserID:    userID,
			SessionID: req.SessionID,
			Role:      model.ChatRoleAssistant,
			Text:      reply,
			Language:  language,
			Timestamp: now,
		},
	}

	for _, turn := range turns {
		if err := s.chats.AppendTurn(ctx, turn); err != nil {
			return nil, "", apperrors.Unavailable("chat store", fmt.Errorf("failed to append chat turn: %w", err))
		}
	}

	return &model.ChatResponse{
		Response:   reply,
		SessionID:  req.SessionID,
		Confidence: replyConfidence,
	}, topicName, nil
}

// History returns the session's turns ordered by timestamp ascending;
// on equal timestamps the user turn precedes its paired reply. An
// unknown session yields an empty slice, not an error.
func (s *Service) History(ctx context.Context, sessionID string) ([]*model.ChatTurn, error) {
	turns, err := s.chats.ListTurns(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Unavailable("chat store", fmt.Errorf("failed to list chat turns: %w", err))
	}
	if turns == nil {
		turns = []*model.ChatTurn{}
	}

	sort.SliceStable(turns, func(i, j int) bool {
		if turns[i].Timestamp.Equal(turns[j].Timestamp) {
			return roleRank(turns[i].Role) < roleRank(turns[j].Role)
		}
		return turns[i].Timestamp.Before(turns[j].Timestamp)
	})

	return turns, nil
}

func roleRank(role model.ChatRole) int {
	if role == model.ChatRoleUser {
		return 0
	}
	return 1
}
