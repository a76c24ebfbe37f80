package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pharmaclic/internal/model"
)

const systemInstruction = `You are "Pharmabot", an expert pharmacology assistant for PHARMACLIC, a pharmacy management system.
Help the pharmacist with questions about medicines, interactions, COFEPRIS regulations (Mexico) and store management.
Answer concisely and professionally, using Markdown.
For inventory questions use the JSON context provided.
WARNING: always remember you are an AI and not a physician. Always suggest consulting a specialist for diagnoses.`

const greeting = "Hello, I am Pharmabot. I can answer questions about medicines, interactions or your inventory."

// Fixed answers shown instead of model output.
const (
	MissingKeyAnswer  = "Error: assistant API key not found. Configure GEMINI_API_KEY."
	RemoteErrorAnswer = "Sorry, there was an error contacting the AI assistant. Check your connection or try again later."
	EmptyAnswer       = "No response could be generated."
)

var ErrEmptyQuestion = errors.New("question is required")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// InventorySource is the read side of the store the summary is built from.
type InventorySource interface {
	Snapshot() model.StoreData
}

type Service interface {
	Ask(ctx context.Context, userID, question string) (Message, error)
	History(userID string) []Message
	Reset(userID string)
}

type service struct {
	source InventorySource
	gen    Generator
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string][]Message
}

func NewService(source InventorySource, gen Generator) Service {
	return &service{
		source:   source,
		gen:      gen,
		now:      time.Now,
		sessions: make(map[string][]Message),
	}
}

func (s *service) prompt(question string) (string, error) {
	summary := BuildSummary(s.source.Snapshot().Products, s.now())
	ctxJSON, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Inventory context (summary): %s\n\nUser question: %s", ctxJSON, question), nil
}

// Ask always returns the assistant message to show. When the model could not
// be used the message carries a fixed answer and the error explains why.
func (s *service) Ask(ctx context.Context, userID, question string) (Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Message{}, ErrEmptyQuestion
	}
	s.append(userID, Message{Role: RoleUser, Content: question, At: s.now()})

	answer, err := s.answer(ctx, question)
	reply := Message{Role: RoleAssistant, Content: answer, At: s.now()}
	s.append(userID, reply)
	return reply, err
}

func (s *service) answer(ctx context.Context, question string) (string, error) {
	prompt, err := s.prompt(question)
	if err != nil {
		return RemoteErrorAnswer, fmt.Errorf("%w: %v", ErrRemoteAssistantUnavailable, err)
	}
	text, err := s.gen.Generate(ctx, systemInstruction, prompt)
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, ErrMissingAPIKey):
		return MissingKeyAnswer, fmt.Errorf("%w: %v", ErrRemoteAssistantUnavailable, err)
	case errors.Is(err, ErrEmptyAnswer):
		return EmptyAnswer, nil
	case errors.Is(err, ErrRemoteAssistantUnavailable):
		return RemoteErrorAnswer, err
	default:
		return RemoteErrorAnswer, fmt.Errorf("%w: %v", ErrRemoteAssistantUnavailable, err)
	}
}

func (s *service) append(userID string, m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; !ok {
		s.sessions[userID] = []Message{{Role: RoleAssistant, Content: greeting, At: m.At}}
	}
	s.sessions[userID] = append(s.sessions[userID], m)
}

// History returns the session's messages, starting with the greeting.
func (s *service) History(userID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.sessions[userID]
	if !ok {
		return []Message{{Role: RoleAssistant, Content: greeting, At: s.now()}}
	}
	return append([]Message(nil), msgs...)
}

func (s *service) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
