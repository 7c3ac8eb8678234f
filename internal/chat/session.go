// Package chat implements the client-side conversation core: the session
// owning the transcript and derived UI flags, the reconciler that folds
// asynchronous AI payloads into it, and the poller that feeds them in.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/domain"
)

// Dispatcher is the outbound side of the server API used by the session.
type Dispatcher interface {
	SendMessage(ctx context.Context, message, chatID string, filesURL []string) error
}

// Checker is the poll side of the server API used by the Poller.
type Checker interface {
	CheckResponse(ctx context.Context, chatID string) (*domain.Payload, bool, error)
}

// starterReplies seed the quick replies of a fresh session, mirroring the
// occasions the assistant knows how to dress for.
var starterReplies = []string{"Casual", "Formal", "Esporte", "Festa", "Outros"}

const sendErrorText = "Desculpe, encontrei um erro. Por favor, tente novamente."

// StagedImage is one attachment going through the upload lifecycle before
// it can accompany a send.
type StagedImage struct {
	ID        string
	Name      string
	URL       string
	Uploading bool
	Err       error
}

// ready reports whether the image can accompany a send.
func (i StagedImage) ready() bool {
	return i.URL != "" && i.Err == nil && !i.Uploading
}

// State is a copy of everything the UI renders, taken under the session
// lock so a frame never sees a half-applied payload.
type State struct {
	ChatID          string
	Messages        []domain.Message
	QuickReplies    []domain.QuickReply
	StagedImages    []StagedImage
	Typing          bool
	WaitingForAI    bool
	GeneratingLooks bool
	RemainingLooks  int
}

// Session owns one conversation: the transcript, the conversation id used
// to correlate asynchronous AI deliveries, attachment staging, and the
// flags the UI derives its indicators from.
type Session struct {
	mu sync.Mutex

	chatID       string
	messages     []domain.Message
	quickReplies []domain.QuickReply
	staged       []StagedImage

	typing          bool
	waitingForAI    bool
	generatingLooks bool
	remainingLooks  int

	// id of the look message the next arriving batch should append to;
	// empty means the next batch starts a new message.
	currentLookMessageID string

	dispatcher Dispatcher
	logger     *zap.Logger

	// updates coalesces change notifications for the UI.
	updates chan struct{}
}

// NewSession creates a session with a fresh conversation id.
func NewSession(dispatcher Dispatcher, logger *zap.Logger) *Session {
	s := &Session{
		chatID:     uuid.New().String(),
		dispatcher: dispatcher,
		logger:     logger,
		updates:    make(chan struct{}, 1),
	}
	s.quickReplies = makeQuickReplies(starterReplies)
	return s
}

// ChatID returns the current conversation id.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// Updates returns a channel that receives a tick whenever the session
// changes. Notifications coalesce; consumers re-read Snapshot.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Snapshot copies the renderable state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ChatID:          s.chatID,
		Messages:        make([]domain.Message, len(s.messages)),
		QuickReplies:    make([]domain.QuickReply, len(s.quickReplies)),
		StagedImages:    make([]StagedImage, len(s.staged)),
		Typing:          s.typing,
		WaitingForAI:    s.waitingForAI,
		GeneratingLooks: s.generatingLooks,
		RemainingLooks:  s.remainingLooks,
	}
	copy(st.Messages, s.messages)
	copy(st.QuickReplies, s.quickReplies)
	copy(st.StagedImages, s.staged)
	return st
}

// Send validates and dispatches one user turn. The user message is
// appended optimistically before the network call; staged images that
// finished uploading ride along as URLs. Image-only sends are rejected:
// attachments need accompanying text.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()

	var imageURLs []string
	for _, img := range s.staged {
		if img.ready() {
			imageURLs = append(imageURLs, img.URL)
		}
	}

	if text == "" {
		s.mu.Unlock()
		if len(imageURLs) > 0 {
			return domain.ErrImageRequiresText
		}
		return domain.ErrEmptyMessage
	}

	chatID := s.chatID
	s.quickReplies = nil
	s.currentLookMessageID = ""
	s.staged = nil
	s.typing = true
	s.waitingForAI = true

	s.messages = append(s.messages, domain.Message{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
		Kind:      domain.KindText,
		Images:    imageURLs,
	})
	s.mu.Unlock()
	s.notify()

	if err := s.dispatcher.SendMessage(ctx, text, chatID, imageURLs); err != nil {
		s.logger.Error("dispatch failed", zap.Error(err), zap.String("chat_id", chatID))
		s.failSend()
		return err
	}
	return nil
}

// failSend resets every in-flight indicator and surfaces the error as a
// bot message, the only user-visible failure besides upload errors.
func (s *Session) failSend() {
	s.mu.Lock()
	s.typing = false
	s.waitingForAI = false
	s.generatingLooks = false
	s.remainingLooks = 0
	s.currentLookMessageID = ""
	s.messages = append(s.messages, domain.Message{
		ID:        uuid.New().String(),
		Text:      sendErrorText,
		Sender:    domain.SenderBot,
		Timestamp: time.Now(),
		Kind:      domain.KindText,
	})
	s.mu.Unlock()
	s.notify()
}

// Clear wipes the conversation and mints a new conversation id. Any
// payload still in flight for the old id no longer matches and will be
// discarded by Apply.
func (s *Session) Clear() {
	s.mu.Lock()
	s.chatID = uuid.New().String()
	s.messages = nil
	s.quickReplies = makeQuickReplies(starterReplies)
	s.staged = nil
	s.typing = false
	s.waitingForAI = false
	s.generatingLooks = false
	s.remainingLooks = 0
	s.currentLookMessageID = ""
	s.mu.Unlock()
	s.notify()
}

// StageImage registers an attachment as uploading.
func (s *Session) StageImage(name string) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.staged = append(s.staged, StagedImage{ID: id, Name: name, Uploading: true})
	s.mu.Unlock()
	s.notify()
	return id
}

// FinishImage marks a staged image as uploaded.
func (s *Session) FinishImage(id, url string) {
	s.updateImage(id, func(img *StagedImage) {
		img.URL = url
		img.Uploading = false
	})
}

// FailImage marks a staged image as failed; it will not accompany sends.
func (s *Session) FailImage(id string, err error) {
	s.updateImage(id, func(img *StagedImage) {
		img.Err = err
		img.Uploading = false
	})
}

// RemoveImage drops a staged image.
func (s *Session) RemoveImage(id string) {
	s.mu.Lock()
	kept := s.staged[:0]
	for _, img := range s.staged {
		if img.ID != id {
			kept = append(kept, img)
		}
	}
	s.staged = kept
	s.mu.Unlock()
	s.notify()
}

func (s *Session) updateImage(id string, fn func(*StagedImage)) {
	s.mu.Lock()
	for i := range s.staged {
		if s.staged[i].ID == id {
			fn(&s.staged[i])
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// notify coalesces a change signal; never blocks.
func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func makeQuickReplies(texts []string) []domain.QuickReply {
	replies := make([]domain.QuickReply, 0, len(texts))
	for _, t := range texts {
		replies = append(replies, domain.QuickReply{ID: uuid.New().String(), Text: t})
	}
	return replies
}
