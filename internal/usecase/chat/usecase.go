package chat

import (
	"context"
	"fmt"

	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Usecase sequences one chat turn: gate, retrieval, context assembly,
// generation. External failures degrade to empty values at the boundary that
// sees them; no collaborator error branches the sequence itself.
type Usecase struct {
	knowledgeBase KnowledgeBaseConnector
	modelRuntime  ModelRuntimeConnector
	topK          int
	logger        *zap.Logger
}

// NewUsecase creates a new chat use case
func NewUsecase(
	knowledgeBase KnowledgeBaseConnector,
	modelRuntime ModelRuntimeConnector,
	topK int,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		knowledgeBase: knowledgeBase,
		modelRuntime:  modelRuntime,
		topK:          topK,
		logger:        logger,
	}
}

// Answer handles one user turn. The gate runs first so no expensive call is
// made for a prompt that cannot be classified; an admitted prompt always
// reaches generation, with whatever context retrieval could provide.
func (uc *Usecase) Answer(ctx context.Context, req entity.AnswerRequest) (string, error) {
	classification := uc.Classify(ctx, req.Prompt, req.ModelID)
	if !classification.Category.Valid() {
		ctxzap.Info(ctx, "prompt rejected by gate", zap.String("classifier_output", classification.Raw))
		return entity.RejectionMessage, nil
	}

	ctxzap.Debug(ctx, "prompt admitted by gate", zap.String("category", string(classification.Category)))

	passages := uc.RetrievePassages(ctx, req.Prompt)
	contextBlock := BuildContext(passages)

	fullPrompt := fmt.Sprintf("Context: %s\n\nUser: %s\n\n", contextBlock, req.Prompt)

	answer, err := uc.Generate(ctx, entity.ModelRequest{
		ModelID:     req.ModelID,
		Prompt:      fullPrompt,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   entity.DefaultMaxTokens,
	})
	if err != nil {
		return "", entity.ErrGenerationFailed
	}

	ctxzap.Info(ctx, "answer generated",
		zap.Int("passage_count", len(passages)),
		zap.Int("context_length", len(contextBlock)),
		zap.Int("answer_length", len(answer)),
	)

	return answer, nil
}

// RetrievePassages queries the knowledge base and normalizes the result.
// Retrieval failure degrades to "no context" rather than aborting the turn.
func (uc *Usecase) RetrievePassages(ctx context.Context, query string) []entity.Passage {
	raw, err := uc.knowledgeBase.Retrieve(ctx, query, uc.topK)
	if err != nil {
		ctxzap.Warn(ctx, "retrieval failed, continuing without context", zap.Error(err))
		return nil
	}

	return NormalizeBatch(raw)
}
