package event

const (
	EventVaultOpened        = "casino.vault_opened"
	EventBetPlaced          = "casino.bet_placed"
	EventBetSettled         = "casino.settled"
	EventBetRefunded        = "casino.refunded"
	EventSettlementRejected = "casino.rejected"
)
