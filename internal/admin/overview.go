package admin

import (
	"context"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Overview is the dashboard summary.
type Overview struct {
	TotalProducts int             `json:"totalProducts"`
	TotalStock    int             `json:"totalStock"`
	PendingOrders int             `json:"pendingOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	Currency      string          `json:"currency"`
}

// Overview counts products and stock units, and the orders still Pending or Processing.
// Revenue sums the total amount of every listed order.
func (c *Console) Overview(ctx context.Context) (Overview, error) {
	var (
		products []domain.Product
		orders   []domain.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = c.ListOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	ov := Overview{TotalProducts: len(products), TotalRevenue: decimal.Zero, Currency: domain.Currency}
	for _, p := range products {
		ov.TotalStock += p.Quantity
	}
	for _, o := range orders {
		if o.Status == domain.OrderStatusPending || o.Status == domain.OrderStatusProcessing {
			ov.PendingOrders++
		}
		ov.TotalRevenue = ov.TotalRevenue.Add(o.TotalAmount)
	}
	return ov, nil
}
