package main

import (
	"context"
	"events-platform/apperrors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func requestWithURLParam(name, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	req := httptest.NewRequest("GET", "/", nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestURLID(t *testing.T) {
	id, err := urlID(requestWithURLParam("userId", "12"), "userId")
	assert.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = urlID(requestWithURLParam("userId", "abc"), "userId")
	assert.True(t, apperrors.IsValidation(err))

	_, err = urlID(requestWithURLParam("userId", "0"), "userId")
	assert.True(t, apperrors.IsValidation(err))

	_, err = urlID(requestWithURLParam("userId", "-3"), "userId")
	assert.True(t, apperrors.IsValidation(err))
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?size=25", nil)

	v, err := queryInt(req, "size", 10)
	assert.NoError(t, err)
	assert.Equal(t, 25, v)

	v, err = queryInt(req, "from", 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, v)

	req = httptest.NewRequest("GET", "/?size=lots", nil)
	_, err = queryInt(req, "size", 10)
	assert.True(t, apperrors.IsValidation(err))
}

func TestQueryInt64s(t *testing.T) {
	req := httptest.NewRequest("GET", "/?users=1,2,%203", nil)

	ids, err := queryInt64s(req, "users")
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = queryInt64s(req, "categories")
	assert.NoError(t, err)
	assert.Nil(t, ids)

	req = httptest.NewRequest("GET", "/?users=1,x", nil)
	_, err = queryInt64s(req, "users")
	assert.True(t, apperrors.IsValidation(err))
}

func TestQueryBool(t *testing.T) {
	req := httptest.NewRequest("GET", "/?paid=true", nil)

	v, err := queryBool(req, "paid")
	assert.NoError(t, err)
	assert.NotNil(t, v)
	assert.True(t, *v)

	v, err = queryBool(req, "onlyAvailable")
	assert.NoError(t, err)
	assert.Nil(t, v)

	req = httptest.NewRequest("GET", "/?paid=maybe", nil)
	_, err = queryBool(req, "paid")
	assert.True(t, apperrors.IsValidation(err))
}

func TestQueryTime(t *testing.T) {
	req := httptest.NewRequest("GET", "/?rangeStart=2024-06-01+12:00:00", nil)

	v, err := queryTime(req, "rangeStart")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), v)

	v, err = queryTime(req, "rangeEnd")
	assert.NoError(t, err)
	assert.True(t, v.IsZero())

	req = httptest.NewRequest("GET", "/?rangeStart=2024-06-01T12:00:00Z", nil)
	_, err = queryTime(req, "rangeStart")
	assert.True(t, apperrors.IsValidation(err))
}
