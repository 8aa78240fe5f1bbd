package lobby

import (
	"context"

	"github.com/polyfall-game/polyfall/game/message"
)

type mockSocketRunner struct {
	RunFunc func(ctx context.Context, in <-chan message.Message, requests <-chan message.Socket) <-chan message.Message
}

func (m mockSocketRunner) Run(ctx context.Context, in <-chan message.Message, requests <-chan message.Socket) <-chan message.Message {
	return m.RunFunc(ctx, in, requests)
}

type mockGameRunner struct {
	RunFunc func(ctx context.Context, in <-chan message.Message) <-chan message.Message
}

func (m mockGameRunner) Run(ctx context.Context, in <-chan message.Message) <-chan message.Message {
	return m.RunFunc(ctx, in)
}
