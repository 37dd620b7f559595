package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AnshRaj112/aura-backend/internal/logger"
	"github.com/AnshRaj112/aura-backend/internal/models"
)

const analysisCacheTTL = 12 * time.Hour

// Generator produces the raw model response for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var _ models.Analyzer = (*AnalysisService)(nil)

// AnalysisService asks a generative model for {mood, summary, advice}. Any
// failure degrades to models.FallbackAnalysis.
type AnalysisService struct {
	gen     Generator
	cache   *CacheService
	log     *logger.Logger
	timeout time.Duration
}

// NewAnalysisService creates the analysis client. gen may be nil (no API key
// configured), in which case every call returns the fallback. cache may be nil.
func NewAnalysisService(gen Generator, cache *CacheService, log *logger.Logger, timeout time.Duration) *AnalysisService {
	return &AnalysisService{gen: gen, cache: cache, log: log, timeout: timeout}
}

func (s *AnalysisService) AnalyzeEntry(ctx context.Context, content string) models.AnalysisResult {
	if s.gen == nil {
		s.log.Warn("analysis provider not configured, using fallback")
		return models.FallbackAnalysis
	}

	key := CacheKey("analysis", contentDigest(content))
	if s.cache != nil {
		var cached models.AnalysisResult
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.gen.Generate(ctx, analysisPrompt(content))
	if err != nil {
		s.log.Warn("analysis request failed", "error", err)
		return models.FallbackAnalysis
	}

	result, err := ParseAnalysis(text)
	if err != nil {
		s.log.Warn("analysis response rejected", "error", err)
		return models.FallbackAnalysis
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, analysisCacheTTL); err != nil {
			s.log.Debug("analysis cache write failed", "error", err)
		}
	}
	return result
}

// Forget drops the cached analysis of content, so a deleted entry's text does
// not outlive it in the cache.
func (s *AnalysisService) Forget(ctx context.Context, content string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, CacheKey("analysis", contentDigest(content)))
}

func analysisPrompt(content string) string {
	return "Analyze this journal entry and provide a mood (one word), a short summary (1 sentence), " +
		"and a piece of encouraging advice based on the content: \n\n " + content
}

var analysisKeys = []string{"mood", "summary", "advice"}

// ParseAnalysis accepts only a JSON object with exactly the string keys mood,
// summary and advice.
func ParseAnalysis(text string) (models.AnalysisResult, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(text))))
	if err := dec.Decode(&fields); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("malformed analysis response: %w", err)
	}
	if dec.More() {
		return models.AnalysisResult{}, errors.New("trailing data after analysis object")
	}
	if fields == nil {
		return models.AnalysisResult{}, errors.New("analysis response is not an object")
	}
	if len(fields) != len(analysisKeys) {
		return models.AnalysisResult{}, fmt.Errorf("analysis response has %d keys, want %d", len(fields), len(analysisKeys))
	}

	values := make(map[string]string, len(analysisKeys))
	for _, k := range analysisKeys {
		raw, ok := fields[k]
		if !ok {
			return models.AnalysisResult{}, fmt.Errorf("analysis response missing %q", k)
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return models.AnalysisResult{}, fmt.Errorf("analysis field %q is not a string", k)
		}
		values[k] = v
	}

	return models.AnalysisResult{
		Mood:    values["mood"],
		Summary: values["summary"],
		Advice:  values["advice"],
	}, nil
}

// contentDigest ignores surrounding whitespace, which saved entries drop.
func contentDigest(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}
