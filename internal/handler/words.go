package handler // handler defines http handlers

import (
	"net/http" // http defines status code constants

	"github.com/labstack/echo/v4" // echo framework supplies request context
	"go.uber.org/zap"             // zap records failed store calls

	"github.com/iliyamo/wordbook/internal/model"      // model holds the WordEntry type
	"github.com/iliyamo/wordbook/internal/repository" // repository exposes the WordStore gateway
)

// WordHandler serves the /words routes on top of a WordStore.
type WordHandler struct {
	Store repository.WordStore // Store is the datastore gateway, owned by main
	Log   *zap.Logger          // Log receives one entry per failed store call
}

// NewWordHandler constructs a WordHandler and panics if store is nil.
func NewWordHandler(store repository.WordStore, log *zap.Logger) *WordHandler {
	if store == nil { // a handler without a store cannot serve anything
		panic("nil store passed to NewWordHandler")
	}
	if log == nil { // fall back to a no-op logger
		log = zap.NewNop()
	}
	return &WordHandler{Store: store, Log: log}
}

// wordRequest is the PUT /words payload.  Form and JSON bodies bind to the
// same fields; a missing field stays empty.
type wordRequest struct {
	Word       string `form:"word" json:"word"`
	Definition string `form:"definition" json:"definition"`
}

// PutWord handles PUT /words and stores one word/definition pair.
func (h *WordHandler) PutWord(c echo.Context) error {
	var body wordRequest
	if err := c.Bind(&body); err != nil { // bind form or JSON body
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "invalid request body",
			Kind:  repository.KindValidation.String(),
		})
	}
	entry, err := h.Store.Insert(c.Request().Context(), model.WordEntry{
		Word:       body.Word,
		Definition: body.Definition,
	})
	if err != nil {
		return h.respondError(c, "insert word", err)
	}
	return c.JSON(http.StatusOK, entry) // respond with the stored record
}

// ListWords handles GET /words and returns every entry ordered by word.
func (h *WordHandler) ListWords(c echo.Context) error {
	entries, err := h.Store.ListAll(c.Request().Context(), model.FieldWord)
	if err != nil {
		return h.respondError(c, "list words", err)
	}
	if entries == nil { // always encode an array
		entries = []model.WordEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
