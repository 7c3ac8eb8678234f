package chat

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/domain"
)

const lookMessageText = "Aqui estão suas recomendações de looks:"

// Apply folds one polled AI payload into the transcript. Payloads stamped
// with a conversation id other than the session's current one are stale
// deliveries for an abandoned chat and are discarded untouched.
//
// Look batches run a two-state protocol: with no in-progress look message
// (idle) a batch opens a new message expecting remaining+1 batches; while
// accumulating, a batch appends to the tracked message. A remaining count
// of zero completes the message and drops every in-flight indicator. A Q&A
// payload always ends accumulation: a batch arriving after it starts a
// fresh message instead of appending to a superseded one. The same guard
// covers the user talking between batches, because Send clears the
// tracked message id.
func (s *Session) Apply(p domain.Payload) {
	s.mu.Lock()

	if p.ChatID != "" && p.ChatID != s.chatID {
		s.mu.Unlock()
		s.logger.Debug("discarding stale payload",
			zap.String("payload_chat_id", p.ChatID),
			zap.String("chat_id", s.chatID),
		)
		return
	}

	if p.IsLook() {
		s.applyLook(p)
	} else {
		s.applyQA(p)
	}

	s.mu.Unlock()
	s.notify()
}

// applyLook merges one look batch. Caller holds the lock.
func (s *Session) applyLook(p domain.Payload) {
	batch := p.Look()
	remaining := batch.RemainingCount()
	s.remainingLooks = remaining

	last := s.lastMessage()
	lastIsLook := last != nil && last.Kind == domain.KindLook

	if !lastIsLook || s.currentLookMessageID == "" {
		id := uuid.New().String()
		s.currentLookMessageID = id
		s.messages = append(s.messages, domain.Message{
			ID:                id,
			Text:              lookMessageText,
			Sender:            domain.SenderBot,
			Timestamp:         time.Now(),
			Kind:              domain.KindLook,
			Looks:             []domain.LookBatch{batch},
			ExpectedLookCount: remaining + 1,
		})
	} else {
		for i := range s.messages {
			if s.messages[i].ID == s.currentLookMessageID {
				s.messages[i].Looks = append(s.messages[i].Looks, batch)
				break
			}
		}
	}

	if remaining > 0 {
		s.generatingLooks = true
		s.waitingForAI = true
		s.typing = true
	} else {
		s.generatingLooks = false
		s.waitingForAI = false
		s.typing = false
		s.currentLookMessageID = ""
	}

	s.quickReplies = nil
}

// applyQA appends a bot question and its quick replies. Caller holds the
// lock.
func (s *Session) applyQA(p domain.Payload) {
	s.currentLookMessageID = ""

	s.messages = append(s.messages, domain.Message{
		ID:        uuid.New().String(),
		Text:      p.Question,
		Sender:    domain.SenderBot,
		Timestamp: time.Now(),
		Kind:      domain.KindText,
	})

	if len(p.Answers) > 0 {
		s.quickReplies = makeQuickReplies(p.Answers)
	} else {
		s.quickReplies = nil
	}

	s.typing = false
	s.waitingForAI = false
}

func (s *Session) lastMessage() *domain.Message {
	if len(s.messages) == 0 {
		return nil
	}
	return &s.messages[len(s.messages)-1]
}
