//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/4everinbeta/ragchat/internal/models"
	"github.com/4everinbeta/ragchat/pkg/utils"
)

var (
	ortInit    sync.Once
	ortInitErr error
)

// ONNXEmbedder runs a local sentence-embedding model (an all-MiniLM-L6-v2 export by default)
// through ONNX Runtime. It requires CGO and the onnxruntime shared library.
type ONNXEmbedder struct {
	model      string
	dimensions int
	maxTokens  int
	tokenizer  Tokenizer
	cache      *Cache

	mu      sync.Mutex // guards session and the bound tensors
	session *ort.AdvancedSession
	inputs  [3]*ort.Tensor[int64] // input_ids, attention_mask, token_type_ids
	output  *ort.Tensor[float32]
}

// NewONNXEmbedder loads the model at modelPath. The ONNX environment is initialised on first use.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens, cacheSize int) (*ONNXEmbedder, error) {
	ortInit.Do(func() { ortInitErr = ort.InitializeEnvironment() })
	if ortInitErr != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", ortInitErr)
	}

	e := &ONNXEmbedder{
		model:      strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath)),
		dimensions: dimensions,
		maxTokens:  maxTokens,
		tokenizer:  &SimpleTokenizer{},
		cache:      NewCache(cacheSize),
	}

	shape := ort.NewShape(1, int64(maxTokens))
	for i := range e.inputs {
		t, err := ort.NewTensor(shape, make([]int64, maxTokens))
		if err != nil {
			e.destroyTensors()
			return nil, fmt.Errorf("failed to create input tensor %d: %w", i, err)
		}
		e.inputs[i] = t
	}
	out, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	e.output = out

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{e.inputs[0], e.inputs[1], e.inputs[2]},
		[]ort.ArbitraryTensor{e.output},
		nil,
	)
	if err != nil {
		e.destroyTensors()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	e.session = session
	return e, nil
}

// Embed returns the L2-normalised embedding for text, using the cache when available.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, fmt.Errorf("onnx embedder is closed")
	}

	ids, mask, types := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.inputs[0].GetData(), ids)
	copy(e.inputs[1].GetData(), mask)
	copy(e.inputs[2].GetData(), types)
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	vec := make(models.Vector, e.dimensions)
	copy(vec, e.output.GetData())
	utils.NormalizeL2(vec)
	e.cache.Set(text, vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]models.Vector, error) {
	out := make([]models.Vector, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int { return e.dimensions }

// Model returns the model file's base name.
func (e *ONNXEmbedder) Model() string { return e.model }

// Close destroys the session and tensors.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	e.destroyTensors()
	return err
}

func (e *ONNXEmbedder) destroyTensors() {
	for i, t := range e.inputs {
		if t != nil {
			_ = t.Destroy()
			e.inputs[i] = nil
		}
	}
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
}
