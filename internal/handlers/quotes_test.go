package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/cravencooling/fsm/internal/db"
	"github.com/cravencooling/fsm/internal/models"
)

func TestQuoteHandler_Create(t *testing.T) {
	t.Run("totals and numbering", func(t *testing.T) {
		quotes := new(MockQuoteCollection)
		handler := NewQuoteHandler(quotes)

		quotes.On("CountQuotes", mock.Anything, bson.M{}).Return(int64(7), nil)
		quotes.On("InsertQuote", mock.Anything, mock.MatchedBy(func(quote models.Quote) bool {
			return quote.QuoteNumber == "QUO-00008" &&
				quote.Status == "draft" &&
				quote.Subtotal == 250 &&
				quote.VAT == 50 &&
				quote.Total == 300
		})).Return(nil)

		req := postJSON("/api/quotes", models.QuoteRequest{
			CustomerID: "cust1",
			Lines: []models.Line{
				{Description: "Labour", Quantity: 2, UnitPrice: 50, Type: "labour"},
				{Description: "Compressor", UnitPrice: 150, Type: "parts"}, // qty omitted, counts as 1
			},
		})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var quote models.Quote
		require.NoError(t, json.NewDecoder(w.Body).Decode(&quote))
		assert.Equal(t, "QUO-00008", quote.QuoteNumber)
		assert.Equal(t, 300.0, quote.Total)
		quotes.AssertExpectations(t)
	})

	t.Run("valid-until default is 30 days", func(t *testing.T) {
		quotes := new(MockQuoteCollection)
		handler := NewQuoteHandler(quotes)

		quotes.On("CountQuotes", mock.Anything, bson.M{}).Return(int64(0), nil)
		quotes.On("InsertQuote", mock.Anything, mock.MatchedBy(func(quote models.Quote) bool {
			expected := time.Now().UTC().Add(30 * 24 * time.Hour)
			return quote.ValidUntil.Sub(expected).Abs() < time.Minute && quote.Lines != nil
		})).Return(nil)

		req := postJSON("/api/quotes", models.QuoteRequest{CustomerID: "cust1"})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		quotes.AssertExpectations(t)
	})

	t.Run("missing customer", func(t *testing.T) {
		quotes := new(MockQuoteCollection)
		handler := NewQuoteHandler(quotes)

		req := postJSON("/api/quotes", models.QuoteRequest{})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		quotes.AssertNotCalled(t, "InsertQuote", mock.Anything, mock.Anything)
	})
}

func TestQuoteHandler_UpdateStatus(t *testing.T) {
	t.Run("sets status from query", func(t *testing.T) {
		quotes := new(MockQuoteCollection)
		handler := NewQuoteHandler(quotes)

		quotes.On("UpdateQuote", mock.Anything, "q1", bson.M{"status": "accepted"}).Return(nil)

		req := httptest.NewRequest("PUT", "/api/quotes/q1/status?status=accepted", nil)
		req.SetPathValue("id", "q1")
		w := httptest.NewRecorder()
		handler.UpdateStatus(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		quotes.AssertExpectations(t)
	})

	t.Run("missing status", func(t *testing.T) {
		quotes := new(MockQuoteCollection)
		handler := NewQuoteHandler(quotes)

		req := httptest.NewRequest("PUT", "/api/quotes/q1/status", nil)
		req.SetPathValue("id", "q1")
		w := httptest.NewRecorder()
		handler.UpdateStatus(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown quote", func(t *testing.T) {
		quotes := new(MockQuoteCollection)
		handler := NewQuoteHandler(quotes)

		quotes.On("UpdateQuote", mock.Anything, "missing", mock.Anything).Return(db.ErrNotFound)

		req := httptest.NewRequest("PUT", "/api/quotes/missing/status?status=sent", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()
		handler.UpdateStatus(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
