package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/app"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/arguments"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/article"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/highlight"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
)

func (s *Server) createSession(c *gin.Context) {
	sess := s.Sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.Sessions.Delete(c.Param("id")); err != nil {
		abort(c, http.StatusNotFound, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type articlesRequest struct {
	Topics []string `json:"topics"`
	K      int      `json:"k"`
	Date   string   `json:"date"`
}

type articlesResponse struct {
	Topics    []string           `json:"topics"`
	Date      string             `json:"date,omitempty"`
	Documents []article.Document `json:"documents"`
	Reason    string             `json:"reason,omitempty"`
}

func (s *Server) fetchArticles(c *gin.Context) {
	sess, ok := s.sessionOf(c)
	if !ok {
		return
	}
	var req articlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if req.K < 0 {
		abort(c, http.StatusBadRequest, errors.New("k must not be negative"))
		return
	}
	topics := app.ParseTopics(strings.Join(req.Topics, ","))
	tr := s.Pipeline.Trending(c.Request.Context(), topics, req.K, req.Date)
	sess.SetDocuments(tr.Topics, tr.Documents)
	docs := tr.Documents
	if docs == nil {
		docs = []article.Document{}
	}
	c.JSON(http.StatusOK, articlesResponse{Topics: tr.Topics, Date: tr.Date.Format("2006-01-02"), Documents: docs, Reason: tr.Reason})
}

func (s *Server) listArticles(c *gin.Context) {
	sess, ok := s.sessionOf(c)
	if !ok {
		return
	}
	topics, docs := sess.Documents()
	if docs == nil {
		docs = []article.Document{}
	}
	c.JSON(http.StatusOK, articlesResponse{Topics: topics, Documents: docs})
}

func (s *Server) analyze(c *gin.Context) {
	sess, doc, ok := s.documentOf(c)
	if !ok {
		return
	}
	an := s.Pipeline.Analyze(c.Request.Context(), doc)
	if err := sess.SetAnalysis(doc.ID, an); err != nil {
		// the ranked list was replaced while analyzing
		abort(c, http.StatusConflict, err)
		return
	}
	c.JSON(http.StatusOK, an)
}

func (s *Server) render(c *gin.Context) {
	sess, doc, ok := s.documentOf(c)
	if !ok {
		return
	}
	markup := highlight.FormatHeaders(doc.Text)
	if an, err := sess.Analysis(doc.ID); err == nil {
		markup = an.Markup
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}

func (s *Server) sentenceContext(c *gin.Context) {
	sess, doc, ok := s.documentOf(c)
	if !ok {
		return
	}
	an, ok := analysisOf(c, sess, doc.ID)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || idx < 0 || idx >= len(an.Records) {
		abort(c, http.StatusNotFound, errors.New("sentence index out of range"))
		return
	}
	before, err := intQuery(c, "before", 1)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	after, err := intQuery(c, "after", 1)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	text := segment.Context(an.Records, idx, before, after)
	c.JSON(http.StatusOK, gin.H{
		"record":  an.Records[idx],
		"context": text,
		"markup":  highlight.InContext(text, an.Records[idx].Text),
	})
}

type selectionRequest struct {
	Indices []int `json:"indices"`
}

func (s *Server) selectSentences(c *gin.Context) {
	sess, doc, ok := s.documentOf(c)
	if !ok {
		return
	}
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if _, ok := analysisOf(c, sess, doc.ID); !ok {
		return
	}
	if err := sess.Select(doc.ID, req.Indices); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	idx, _ := sess.Selected(doc.ID)
	c.JSON(http.StatusOK, gin.H{"indices": idx})
}

type rewrite struct {
	Index    int    `json:"index"`
	Original string `json:"original"`
	Neutral  string `json:"neutral"`
}

func (s *Server) neutralize(c *gin.Context) {
	sess, doc, ok := s.documentOf(c)
	if !ok {
		return
	}
	if _, ok := analysisOf(c, sess, doc.ID); !ok {
		return
	}
	idx, recs := sess.Selected(doc.ID)
	if len(recs) == 0 {
		abort(c, http.StatusBadRequest, errors.New("no sentences selected"))
		return
	}
	texts := make([]string, len(recs))
	for i, r := range recs {
		texts[i] = r.Text
	}
	rewrites := s.Pipeline.Neutralize(c.Request.Context(), texts)
	sess.AddRewrites(doc.ID, rewrites)
	out := make([]rewrite, len(recs))
	for i, r := range recs {
		out[i] = rewrite{Index: idx[i], Original: r.Text, Neutral: rewrites[r.Text]}
	}
	c.JSON(http.StatusOK, gin.H{"rewrites": out})
}

func (s *Server) missingArguments(c *gin.Context) {
	_, doc, ok := s.documentOf(c)
	if !ok {
		return
	}
	bySection, summary := s.Pipeline.MissingArguments(c.Request.Context(), doc)
	if bySection == nil {
		bySection = []arguments.SectionArguments{}
	}
	if summary == nil {
		summary = []arguments.Argument{}
	}
	c.JSON(http.StatusOK, gin.H{"by_section": bySection, "summary": summary})
}
