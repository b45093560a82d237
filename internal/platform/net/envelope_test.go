package net

import (
	"context"
	"net/http"
	"testing"

	perr "walletsync/internal/platform/errors"
)

func TestFailureCarriesCodeAndField(t *testing.T) {
	err := perr.WithField(perr.Newf(perr.ErrorCodeValidation, "order_id is a required field"), "order_id")
	status, env := Failure(err, "rid-1")
	if status != http.StatusBadRequest || env.StatusCode != status || env.Status != "Bad Request" {
		t.Fatalf("status %d %+v", status, env)
	}
	if env.Code != perr.ErrorCodeValidation || env.Field != "order_id" || env.RequestID != "rid-1" || env.Data != nil {
		t.Fatalf("envelope %+v", env)
	}

	status, env = Failure(perr.Unavailablef("wallet api down"), "")
	if status != http.StatusServiceUnavailable || env.Error != "wallet api down" {
		t.Fatalf("status %d %+v", status, env)
	}
}

func TestSuccess(t *testing.T) {
	env := Success(http.StatusOK, map[string]string{"state": "VERIFIED"}, "rid-2")
	if env.Status != "OK" || env.Code != 0 || env.Error != "" || env.RequestID != "rid-2" {
		t.Fatalf("envelope %+v", env)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" || Operator(ctx) != "" {
		t.Fatalf("empty ctx must yield empty values")
	}
	ctx = WithOperator(WithRequestID(ctx, "rid-3"), "ops")
	if RequestID(ctx) != "rid-3" || Operator(ctx) != "ops" {
		t.Fatalf("got %q %q", RequestID(ctx), Operator(ctx))
	}
	if WithOperator(ctx, "") != ctx || WithRequestID(ctx, "") != ctx {
		t.Fatalf("empty values must not rewrap ctx")
	}
}
