package casino

import (
	"context"
	"fmt"

	"dice-settle/internal/event"
)

type Broadcaster interface {
	BroadcastJSON(v interface{})
}

type Subscriber interface {
	Subscribe(event string, handler event.Handler)
}

type message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func RegisterConsumers(bus Subscriber, service *Service, audit Auditor, ws Broadcaster) {

	bus.Subscribe(event.EventBetSettled, func(payload interface{}) {
		res := payload.(*Result)

		service.CacheResult(context.Background(), res)

		audit.Log(res.Player.String(), "casino_settle",
			fmt.Sprintf("bet=%s outcome=%d roll=%d payout=%d", res.Bet, res.Outcome, res.Roll, res.Payout))

		ws.BroadcastJSON(message{Type: event.EventBetSettled, Data: res})
	})

	bus.Subscribe(event.EventBetPlaced, func(payload interface{}) {
		bet := payload.(*Bet)

		audit.Log(bet.Player.String(), "casino_place",
			fmt.Sprintf("bet=%s seed=%d amount=%d roll=%d", bet.Address, bet.Seed, bet.Amount, bet.Roll))

		ws.BroadcastJSON(message{Type: event.EventBetPlaced, Data: bet})
	})

	bus.Subscribe(event.EventBetRefunded, func(payload interface{}) {
		bet := payload.(*Bet)

		audit.Log(bet.Player.String(), "casino_refund",
			fmt.Sprintf("bet=%s amount=%d", bet.Address, bet.Amount))

		ws.BroadcastJSON(message{Type: event.EventBetRefunded, Data: bet})
	})

	bus.Subscribe(event.EventVaultOpened, func(payload interface{}) {
		v := payload.(*Vault)
		audit.Log(v.Owner.String(), "vault_open", fmt.Sprintf("vault=%s bump=%d", v.Address, v.Bump))
	})
}
