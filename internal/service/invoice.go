package service

import (
	"sort"
	"time"

	"go-retail-backoffice/internal/model"
)

// InvoiceItem is one order line decomposed into base and GST components.
// The unit price on the order is tax-inclusive; amounts are rounded per
// unit first and then multiplied, which affects penny-level results.
type InvoiceItem struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	HsnSac         string  `json:"hsnSac"`
	GstRate        float64 `json:"gstRate"` // percent
	Qty            int     `json:"qty"`
	UnitPriceIncl  float64 `json:"unitPriceIncl"`
	UnitGstAmount  float64 `json:"unitGstAmount"`
	UnitPriceExcl  float64 `json:"unitPriceExcl"`
	LineBaseAmount float64 `json:"lineBaseAmount"`
	LineGstAmount  float64 `json:"lineGstAmount"`
	LineTotal      float64 `json:"lineTotal"`
}

type InvoiceTotals struct {
	BaseAmount float64 `json:"baseAmount"`
	GstAmount  float64 `json:"gstAmount"`
	Discount   float64 `json:"discount"`
	GrandTotal float64 `json:"grandTotal"` // base + gst - discount
}

type GstBucket struct {
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

type InvoiceShop struct {
	Name string `json:"name"`
}

type InvoiceHeader struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	CustomerPhone string  `json:"customerPhone,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	Discount      float64 `json:"discount"`
}

// Invoice is a derived view over one order; it is never persisted.
type Invoice struct {
	Shop       InvoiceShop   `json:"shop"`
	Invoice    InvoiceHeader `json:"invoice"`
	Items      []InvoiceItem `json:"items"`
	Totals     InvoiceTotals `json:"totals"`
	GstBreakup []GstBucket   `json:"gstBreakup"`
}

// GenerateInvoice decomposes a fully populated order into a tax invoice.
// Pure transformation: the order and its products are not mutated.
func GenerateInvoice(order *model.Order, shopName string) *Invoice {
	items := make([]InvoiceItem, 0, len(order.Items))
	for _, it := range order.Items {
		rate := 0.0
		name := ""
		hsnSac := ""
		if it.Product != nil {
			rate = it.Product.GST
			name = it.Product.Name
			hsnSac = it.Product.HsnSac
		}

		unitGst := round2(it.Price * rate / 100)
		unitBase := round2(it.Price - unitGst)

		items = append(items, InvoiceItem{
			ProductID:      it.ProductID.String(),
			Name:           name,
			HsnSac:         hsnSac,
			GstRate:        rate,
			Qty:            it.Qty,
			UnitPriceIncl:  round2(it.Price),
			UnitGstAmount:  unitGst,
			UnitPriceExcl:  unitBase,
			LineBaseAmount: round2(unitBase * float64(it.Qty)),
			LineGstAmount:  round2(unitGst * float64(it.Qty)),
			LineTotal:      round2(it.Price * float64(it.Qty)),
		})
	}

	baseAmount := 0.0
	gstAmount := 0.0
	buckets := map[float64]float64{}
	for _, it := range items {
		baseAmount += it.LineBaseAmount
		gstAmount += it.LineGstAmount
		buckets[it.GstRate] = round2(buckets[it.GstRate] + it.LineGstAmount)
	}
	baseAmount = round2(baseAmount)
	gstAmount = round2(gstAmount)
	discount := round2(order.Discount)

	rates := make([]float64, 0, len(buckets))
	for rate := range buckets {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)
	breakup := make([]GstBucket, 0, len(rates))
	for _, rate := range rates {
		breakup = append(breakup, GstBucket{Rate: rate, Amount: round2(buckets[rate])})
	}

	return &Invoice{
		Shop: InvoiceShop{Name: shopName},
		Invoice: InvoiceHeader{
			ID:            order.ID.String(),
			Date:          order.Date.UTC().Format(time.RFC3339),
			CustomerPhone: order.CustomerPhone,
			PaymentMethod: string(order.PaymentMethod),
			Notes:         order.Notes,
			Discount:      discount,
		},
		Items: items,
		Totals: InvoiceTotals{
			BaseAmount: baseAmount,
			GstAmount:  gstAmount,
			Discount:   discount,
			GrandTotal: round2(baseAmount + gstAmount - discount),
		},
		GstBreakup: breakup,
	}
}
