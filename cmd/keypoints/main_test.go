package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nvr-ai/go-vision/common"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"canceled", common.E(common.KindCanceled, "run", context.Canceled), 130},
		{"invalid argument", common.Errorf(common.KindInvalidArgument, "run", "bad seed"), 2},
		{"not found", common.Errorf(common.KindNotFound, "run", "missing"), 1},
		{"foreign error", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
