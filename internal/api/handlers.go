package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cognicore/stdtext/pkg/stdtext"
	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/token"
)

type rewriteRequest struct {
	Text   string `json:"text" binding:"required"`
	Polish *bool  `json:"polish"`
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

type wordsRequest struct {
	Words []string `json:"words" binding:"required"`
}

type rewriteResponse struct {
	ID       string           `json:"id"`
	Input    string           `json:"input"`
	Rewrite  string           `json:"rewrite"`
	Polished string           `json:"polished,omitempty"`
	Examples []examplePayload `json:"examples,omitempty"`
}

type debugResponse struct {
	ID            string                  `json:"id"`
	Input         string                  `json:"input"`
	Rewrite       string                  `json:"rewrite"`
	Stages        []stagePayload          `json:"stages"`
	Counts        map[string]countPayload `json:"counts"`
	Entities      map[string]string       `json:"entities"`
	Abbreviations map[string]string       `json:"abbreviations"`
}

type spellingResponse struct {
	Original  string                 `json:"original"`
	Corrected string                 `json:"corrected"`
	Tokens    []spellingTokenPayload `json:"tokens"`
}

type examplesResponse struct {
	Examples []examplePayload `json:"examples"`
}

type healthResponse struct {
	Status string       `json:"status"`
	Model  modelPayload `json:"model"`
}

type examplePayload struct {
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

type stagePayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type countPayload struct {
	Noun string `json:"noun"`
	Qty  int    `json:"qty"`
	Unit string `json:"unit,omitempty"`
}

type spellingTokenPayload struct {
	Token       string   `json:"token"`
	Correction  string   `json:"correction"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type modelPayload struct {
	Fitted  bool   `json:"fitted"`
	Records int    `json:"records"`
	BuiltAt string `json:"built_at,omitempty"`
	Backend string `json:"backend,omitempty"`
}

func toModelPayload(info stdtext.ModelInfo) modelPayload {
	p := modelPayload{Fitted: info.Fitted, Records: info.Records, Backend: info.Backend}
	if info.Fitted {
		p.BuiltAt = info.BuiltAt.Format(time.RFC3339Nano)
	}
	return p
}

func toExamplePayloads(examples []stdtext.Example) []examplePayload {
	out := make([]examplePayload, 0, len(examples))
	for _, ex := range examples {
		out = append(out, examplePayload{Text: ex.Text, Distance: ex.Distance})
	}
	return out
}

func toCountPayloads(counts map[string]token.CountRecord) map[string]countPayload {
	out := make(map[string]countPayload, len(counts))
	for key, rec := range counts {
		out[key] = countPayload{Noun: rec.Noun, Qty: rec.Qty, Unit: rec.Unit}
	}
	return out
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status: "ok",
		Model:  toModelPayload(s.rewriter.ModelInfo()),
	})
}

func (s *Server) rewrite(c *gin.Context) {
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "text is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		sendError(c, http.StatusBadRequest, "text is required")
		return
	}

	res := s.rewriter.Rewrite(req.Text)
	resp := rewriteResponse{
		ID:       requestID(c),
		Input:    res.Input,
		Rewrite:  res.Output,
		Examples: toExamplePayloads(res.Examples),
	}
	if s.polisher != nil && (req.Polish == nil || *req.Polish) {
		resp.Polished = s.polisher.Polish(c.Request.Context(), req.Text, res.Output)
	}
	c.JSON(http.StatusOK, resp)
}

// rewriteDebug exposes the per-stage trace and the extraction mappings.
// It never polishes, so the trace always explains exactly the returned line.
func (s *Server) rewriteDebug(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "text is required")
		return
	}

	res := s.rewriter.Rewrite(req.Text)
	stages := make([]stagePayload, 0, len(res.Stages))
	for _, st := range res.Stages {
		stages = append(stages, stagePayload{Name: st.Name, Text: st.Text})
	}
	c.JSON(http.StatusOK, debugResponse{
		ID:            requestID(c),
		Input:         res.Input,
		Rewrite:       res.Output,
		Stages:        stages,
		Counts:        toCountPayloads(res.Counts),
		Entities:      res.Entities,
		Abbreviations: res.Abbreviations,
	})
}

func (s *Server) spelling(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "text is required")
		return
	}

	res := s.rewriter.CheckSpelling(req.Text)
	tokens := make([]spellingTokenPayload, 0, len(res.Tokens))
	for _, t := range res.Tokens {
		tokens = append(tokens, spellingTokenPayload{
			Token:       t.Token,
			Correction:  t.Correction,
			Suggestions: t.Suggestions,
		})
	}
	c.JSON(http.StatusOK, spellingResponse{
		Original:  res.Original,
		Corrected: res.Corrected,
		Tokens:    tokens,
	})
}

func (s *Server) examples(c *gin.Context) {
	text := c.Query("text")
	if strings.TrimSpace(text) == "" {
		sendError(c, http.StatusBadRequest, "text query parameter is required")
		return
	}
	k := 0
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			sendError(c, http.StatusBadRequest, "k must be a non-negative integer")
			return
		}
		k = n
	}

	c.JSON(http.StatusOK, examplesResponse{
		Examples: toExamplePayloads(s.rewriter.NearestExamples(text, k)),
	})
}

func (s *Server) model(c *gin.Context) {
	c.JSON(http.StatusOK, toModelPayload(s.rewriter.ModelInfo()))
}

func (s *Server) rebuildModel(c *gin.Context) {
	info, err := s.rewriter.Rebuild(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, toModelPayload(info))
	case errors.Is(err, internalerr.ErrRebuildInProgress):
		sendError(c, http.StatusConflict, "a rebuild is already running")
	case info.Fitted:
		// The fresh model is live; only persisting the snapshot failed.
		sendError(c, http.StatusInternalServerError, err.Error())
	default:
		sendError(c, http.StatusBadGateway, "refitting the model failed: "+err.Error())
	}
}

func (s *Server) listWords(c *gin.Context) {
	words, err := s.rewriter.Words(c.Request.Context())
	if err != nil {
		wordStoreError(c, err)
		return
	}
	if words == nil {
		words = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

func (s *Server) addWords(c *gin.Context) {
	var req wordsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Words) == 0 {
		sendError(c, http.StatusBadRequest, "words are required")
		return
	}
	if err := s.rewriter.AddWords(c.Request.Context(), req.Words); err != nil {
		wordStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": len(req.Words)})
}

func (s *Server) removeWords(c *gin.Context) {
	var req wordsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Words) == 0 {
		sendError(c, http.StatusBadRequest, "words are required")
		return
	}
	if err := s.rewriter.RemoveWords(c.Request.Context(), req.Words); err != nil {
		wordStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": len(req.Words)})
}

func wordStoreError(c *gin.Context, err error) {
	if errors.Is(err, internalerr.ErrStoreUnavailable) {
		sendError(c, http.StatusServiceUnavailable, "no dictionary word store configured")
		return
	}
	sendError(c, http.StatusInternalServerError, err.Error())
}
