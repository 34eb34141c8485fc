package model

// All lists every table in migration order (parents first).
func All() []interface{} {
	return []interface{}{
		&User{},
		&ChatRoom{},
		&Message{},
		&TradeAgreement{},
		&SwapCoinTransaction{},
	}
}
