package web

import (
	"errors"
	"net/http"
	"testing"

	"github.com/ototana/ototana/internal/apperr"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: apperr.Validation("bad"), want: http.StatusBadRequest},
		{name: "auth", err: apperr.Auth("who"), want: http.StatusUnauthorized},
		{name: "authorization", err: apperr.Authorization("no"), want: http.StatusForbidden},
		{name: "not found", err: apperr.NotFound("gone"), want: http.StatusNotFound},
		{
			name: "upstream passes status through",
			err:  apperr.Upstream("spotify", http.StatusTooManyRequests, errors.New("429")),
			want: http.StatusTooManyRequests,
		},
		{
			name: "upstream without status",
			err:  apperr.Upstream("spotify", 0, errors.New("boom")),
			want: http.StatusInternalServerError,
		},
		{name: "unclassified", err: errors.New("plain"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusOf(tt.err); got != tt.want {
				t.Errorf("statusOf = %d, want %d", got, tt.want)
			}
		})
	}
}
