package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("bad input"), want: KindValidation},
		{name: "auth", err: Auth("login"), want: KindAuth},
		{name: "authorization", err: Authorization("not yours"), want: KindAuthorization},
		{name: "not found", err: NotFound("missing"), want: KindNotFound},
		{name: "upstream", err: Upstream("spotify", 502, errors.New("boom")), want: KindUpstream},
		{name: "configuration", err: Configuration("no env"), want: KindConfiguration},
		{name: "wrapped", err: fmt.Errorf("outer: %w", NotFound("inner")), want: KindNotFound},
		{name: "unclassified", err: errors.New("plain"), want: KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(Validation("入力が不正です")); got != "入力が不正です" {
		t.Errorf("MessageOf = %q", got)
	}
	if got := MessageOf(fmt.Errorf("wrap: %w", Auth("ログインが必要です"))); got != "ログインが必要です" {
		t.Errorf("MessageOf wrapped = %q", got)
	}
	if got := MessageOf(errors.New("database exploded")); got != "internal server error" {
		t.Errorf("MessageOf unclassified = %q", got)
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("fetching: %w", NotFound("gone"))
	if !Is(err, KindNotFound) {
		t.Error("Is(wrapped not found) = false")
	}
	if Is(err, KindValidation) {
		t.Error("Is matched the wrong kind")
	}
	if Is(errors.New("plain"), KindUpstream) {
		t.Error("Is matched an unclassified error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("spotify call failed", 0, cause)
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}
