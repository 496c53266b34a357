package progression

// Currency is the code of an in-app balance
type Currency string

// Known currencies
const (
	CurrencySilverCoin Currency = "silverCoin"
	CurrencyRoyalPoint Currency = "royalPoint"
)

// KnownCurrencies lists every currency a player holds a balance in
var KnownCurrencies = []Currency{
	CurrencySilverCoin,
	CurrencyRoyalPoint,
}

// IsKnownCurrency reports whether code names a known currency
func IsKnownCurrency(code Currency) bool {
	for _, c := range KnownCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

func zeroBalances() map[Currency]int64 {
	balances := make(map[Currency]int64, len(KnownCurrencies))
	for _, c := range KnownCurrencies {
		balances[c] = 0
	}
	return balances
}
