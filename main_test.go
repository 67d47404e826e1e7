package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rook-computer/flightdeck/internal/deck"
)

func TestShutdownError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"clean", nil, nil},
		{"signal", context.Canceled, nil},
		{"wrapped signal", fmt.Errorf("start: %w", context.Canceled), nil},
		{"no decks", deck.ErrNoDevices, deck.ErrNoDevices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shutdownError(tt.in); !errors.Is(got, tt.want) || (tt.want == nil && got != nil) {
				t.Fatalf("shutdownError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
