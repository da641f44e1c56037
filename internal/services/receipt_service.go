package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
)

// ReceiptService generates PDF order receipts on demand
type ReceiptService interface {
	GenerateReceipt(order *models.Order) ([]byte, error)
}

type receiptService struct {
	customerRepo repository.CustomerRepository
	logger       *logrus.Entry
}

// NewReceiptService creates a receipt service
func NewReceiptService(customerRepo repository.CustomerRepository, logger *logrus.Logger) ReceiptService {
	return &receiptService{
		customerRepo: customerRepo,
		logger:       logger.WithField("component", "receipt_service"),
	}
}

// GenerateReceipt renders the order into a PDF document
func (s *receiptService) GenerateReceipt(order *models.Order) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	s.addHeader(m, order)
	s.addOrderDetails(m, order)
	s.addItemsTable(m, order)
	s.addTotals(m, order)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func (s *receiptService) addHeader(m core.Maroto, order *models.Order) {
	m.AddRow(30,
		col.New(6).Add(
			text.New("Payhula", props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New("RECEIPT", props.Text{
				Size:  20,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("# %s", order.OrderNumber), props.Text{
				Size:  10,
				Top:   8,
				Align: align.Right,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func (s *receiptService) addOrderDetails(m core.Maroto, order *models.Order) {
	var customerLine string
	if customer, err := s.customerRepo.GetByID(order.CustomerID, order.StoreID); err == nil {
		customerLine = fmt.Sprintf("Customer: %s <%s>", customer.Name, customer.Email)
	}

	m.AddRow(20,
		col.New(6).Add(
			text.New(fmt.Sprintf("Date: %s", order.CreatedAt.Format("Jan 02, 2006")), props.Text{
				Size:  10,
				Align: align.Left,
			}),
			text.New(customerLine, props.Text{
				Size:  10,
				Top:   5,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Payment: %s", order.PaymentStatus), props.Text{
				Size:  10,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("Type: %s", order.PaymentType), props.Text{
				Size:  10,
				Top:   5,
				Align: align.Right,
			}),
		),
	)
}

func (s *receiptService) addItemsTable(m core.Maroto, order *models.Order) {
	m.AddRow(10,
		col.New(6).Add(text.New("Item", props.Text{Size: 10, Style: fontstyle.Bold})),
		col.New(2).Add(text.New("Qty", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New("Unit", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
		col.New(2).Add(text.New("Total", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right})),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range order.Items {
		m.AddRow(8,
			col.New(6).Add(text.New(item.ProductName, props.Text{Size: 9})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(formatAmount(item.UnitPrice, order.Currency), props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(formatAmount(item.TotalPrice, order.Currency), props.Text{Size: 9, Align: align.Right})),
		)
	}
}

func (s *receiptService) addTotals(m core.Maroto, order *models.Order) {
	m.AddRow(5, line.NewCol(12))
	m.AddRow(10,
		col.New(8),
		col.New(4).Add(
			text.New(fmt.Sprintf("Total: %s", formatAmount(order.TotalAmount, order.Currency)), props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
		),
	)

	if order.PaymentType == models.PaymentTypePercentage {
		m.AddRow(8,
			col.New(8),
			col.New(4).Add(
				text.New(fmt.Sprintf("Paid now: %s", formatAmount(order.PercentagePaid, order.Currency)), props.Text{
					Size:  9,
					Align: align.Right,
				}),
			),
		)
		m.AddRow(8,
			col.New(8),
			col.New(4).Add(
				text.New(fmt.Sprintf("Remaining: %s", formatAmount(order.RemainingAmount, order.Currency)), props.Text{
					Size:  9,
					Align: align.Right,
				}),
			),
		)
	}
}

func formatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%.0f %s", amount, currency)
}
