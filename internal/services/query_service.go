package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"brainbin/internal/embedding"
	"brainbin/internal/llm"
	"brainbin/internal/logger"
	"brainbin/internal/models"
	"brainbin/internal/repositories"
	"brainbin/internal/sanitize"
	"brainbin/internal/services/dto"
	"brainbin/pkg/apperrors"
)

const (
	// Candidates below this cosine similarity are treated as noise.
	similarityThreshold = 0.4
	// How many candidates are scored and how many survive into context.
	searchLimit   = 10
	contextLimit  = 5
	historyWindow = 5
	noAnswerReply = "I don't have information about this in my knowledge base. Please try asking about the content of your uploaded documents."
)

// QueryService answers questions over the user's documents: embed the
// question, rank chunks by cosine similarity, feed the best ones to the
// answerer with the recent conversation.
type QueryService struct {
	documents repositories.DocumentRepository
	chunks    repositories.ChunkRepository
	chat      repositories.ChatRepository
	inference *Inference
	answerer  llm.Answerer
}

func NewQueryService(
	documents repositories.DocumentRepository,
	chunks repositories.ChunkRepository,
	chat repositories.ChatRepository,
	inference *Inference,
	answerer llm.Answerer,
) *QueryService {
	return &QueryService{
		documents: documents,
		chunks:    chunks,
		chat:      chat,
		inference: inference,
		answerer:  answerer,
	}
}

type scoredChunk struct {
	chunk      models.DocumentChunk
	similarity float64
}

// Query runs the full retrieval pipeline for one question.
func (s *QueryService) Query(ctx context.Context, userID uuid.UUID, req dto.QueryRequest) (*dto.QueryResponse, error) {
	question := sanitize.Text(req.Question)
	if question == "" {
		return nil, apperrors.NewBadRequestError("Question cannot be empty")
	}

	count, err := s.documents.CountActiveByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "query", "Failed to check knowledge base", http.StatusInternalServerError)
	}
	if count == 0 {
		return nil, apperrors.ErrKnowledgeBaseEmpty()
	}

	questionVec, err := s.inference.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	candidates, err := s.search(userID, questionVec)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &dto.QueryResponse{
			Success: true,
			Answer:  noAnswerReply,
			Sources: []string{},
		}, nil
	}

	contextStr, sources := buildContext(candidates)
	conversation, err := s.recentConversation(userID)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to load conversation history", "error", err)
	}

	answer, err := s.answerer.Answer(ctx, llm.AnswerRequest{
		Question:     question,
		Context:      contextStr,
		Conversation: conversation,
	})
	if err != nil {
		if errors.Is(err, llm.ErrRateLimited) {
			return nil, apperrors.ErrRateLimited("I'm getting too many requests right now. Please wait a moment and try again.")
		}
		return nil, apperrors.ErrAnswerGeneration(err)
	}

	s.saveHistory(ctx, userID, question, answer, sources)

	return &dto.QueryResponse{
		Success:    true,
		Answer:     answer,
		Sources:    sources,
		ChunksUsed: len(candidates),
	}, nil
}

// ClearContext wipes the user's conversation history.
func (s *QueryService) ClearContext(userID uuid.UUID) error {
	if err := s.chat.DeleteByUser(userID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "query", "Failed to clear conversation", http.StatusInternalServerError)
	}
	return nil
}

// History returns the user's recent exchanges, newest first.
func (s *QueryService) History(userID uuid.UUID, limit int) ([]models.ChatHistory, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	entries, err := s.chat.FindRecentByUser(userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "query", "Failed to load history", http.StatusInternalServerError)
	}
	return entries, nil
}

// search scores every chunk of the user's active documents against the
// question vector and keeps the best matches above the threshold.
func (s *QueryService) search(userID uuid.UUID, questionVec []float32) ([]scoredChunk, error) {
	rows, err := s.chunks.FindByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "query", "Failed to search chunks", http.StatusInternalServerError)
	}

	scored := make([]scoredChunk, 0, len(rows))
	for _, row := range rows {
		var vec []float32
		if err := json.Unmarshal(row.Embedding, &vec); err != nil {
			logger.GetLogger().Warn("Skipping chunk with unreadable embedding", "chunk_id", row.ID, "error", err)
			continue
		}
		sim := embedding.CosineSimilarity(questionVec, vec)
		if sim > similarityThreshold {
			scored = append(scored, scoredChunk{chunk: row, similarity: sim})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})
	if len(scored) > searchLimit {
		scored = scored[:searchLimit]
	}
	if len(scored) > contextLimit {
		scored = scored[:contextLimit]
	}
	return scored, nil
}

// buildContext renders the chunks with source attributions and collects
// the distinct source filenames.
func buildContext(chunks []scoredChunk) (string, []string) {
	var sb strings.Builder
	seen := make(map[string]bool)
	var sources []string

	for i, sc := range chunks {
		source := "Unknown"
		if s, ok := sc.chunk.Metadata["source"].(string); ok && s != "" {
			source = s
		}
		if !seen[source] {
			seen[source] = true
			sources = append(sources, source)
		}
		fmt.Fprintf(&sb, "[Source %d: %s (relevance %.2f)]\n%s\n\n", i+1, source, sc.similarity, sc.chunk.Content)
	}
	return sb.String(), sources
}

func (s *QueryService) recentConversation(userID uuid.UUID) ([]llm.Exchange, error) {
	entries, err := s.chat.FindRecentByUser(userID, historyWindow)
	if err != nil {
		return nil, err
	}

	// Stored newest first; the prompt wants chronological order.
	exchanges := make([]llm.Exchange, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		exchanges = append(exchanges, llm.Exchange{
			Question: entries[i].Question,
			Answer:   entries[i].Answer,
		})
	}
	return exchanges, nil
}

func (s *QueryService) saveHistory(ctx context.Context, userID uuid.UUID, question, answer string, sources []string) {
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		sourcesJSON = []byte("[]")
	}
	entry := &models.ChatHistory{
		UserID:   userID,
		Question: question,
		Answer:   answer,
		Sources:  datatypes.JSON(sourcesJSON),
	}
	if err := s.chat.Create(entry); err != nil {
		logger.CtxWarn(ctx, "Failed to save chat history", "error", err)
	}
}
