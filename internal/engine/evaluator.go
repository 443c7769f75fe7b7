package engine

import (
	"github.com/shopspring/decimal"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

// evaluate decides whether the quote satisfies the order's trigger
// condition and, if so, at what price the order executes. Market orders
// fill at the crossing side of the quote; every other kind fills at the
// order's own price, not at whatever the quote has moved to.
func evaluate(order Order, q Quote) (bool, decimal.Decimal) {
	switch order.Kind {
	case MarketOrder:
		if order.Side == Buy {
			return true, q.Ask
		}
		return true, q.Bid

	case LimitOrder:
		if order.Side == Buy {
			return q.Ask.LessThanOrEqual(order.Price), order.Price
		}
		return q.Bid.GreaterThanOrEqual(order.Price), order.Price

	case StopOrder:
		if order.Side == Buy {
			return q.Ask.GreaterThanOrEqual(order.Price), order.Price
		}
		return q.Bid.LessThanOrEqual(order.Price), order.Price

	case ConditionalOrder:
		if order.Condition == nil {
			return false, decimal.Zero
		}
		return order.Condition.Holds(q.YTM), order.Price
	}

	return false, decimal.Zero
}
