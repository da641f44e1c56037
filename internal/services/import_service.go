package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/models"
)

// ImportRowError reports one rejected row of a CSV import
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a product import: the operation succeeds
// partially, good rows are kept and bad rows reported
type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportService ingests product catalogs from CSV
type ImportService interface {
	ImportProducts(ctx context.Context, storeID string, r io.Reader) (*ImportResult, error)
}

type importService struct {
	products ProductService
	logger   *logrus.Entry
}

// NewImportService creates an import service
func NewImportService(products ProductService, logger *logrus.Logger) ImportService {
	return &importService{
		products: products,
		logger:   logger.WithField("component", "import_service"),
	}
}

// Expected header: name,product_type,price,currency,stock_quantity,total_editions,requires_shipping,insurance_fee

// ImportProducts reads the CSV and creates one product per valid row.
// Row failures never abort the import; they are collected and returned.
func (s *importService) ImportProducts(ctx context.Context, storeID string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewValidationError("file", "empty or unreadable CSV")
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "product_type", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, NewValidationError("file", fmt.Sprintf("missing required column %q", required))
		}
	}

	result := &ImportResult{}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: row, Message: err.Error()})
			continue
		}

		product, err := s.parseRow(storeID, cols, record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: row, Message: err.Error()})
			continue
		}

		if err := s.products.CreateProduct(ctx, product); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: row, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	s.logger.WithFields(logrus.Fields{
		"store_id": storeID,
		"imported": result.Imported,
		"failed":   result.Failed,
	}).Info("Product import finished")

	return result, nil
}

func (s *importService) parseRow(storeID string, cols map[string]int, record []string) (*models.Product, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	price, err := strconv.ParseFloat(get("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", get("price"))
	}

	product := &models.Product{
		StoreID:     storeID,
		Name:        get("name"),
		ProductType: models.ProductType(get("product_type")),
		Price:       price,
		Currency:    get("currency"),
		IsActive:    true,
	}

	if v := get("stock_quantity"); v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid stock_quantity %q", v)
		}
		product.StockQuantity = qty
	}
	if v := get("total_editions"); v != "" {
		editions, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid total_editions %q", v)
		}
		product.TotalEditions = editions
	}
	if v := get("requires_shipping"); v != "" {
		requires, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid requires_shipping %q", v)
		}
		product.RequiresShipping = requires
	}
	if v := get("insurance_fee"); v != "" {
		fee, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid insurance_fee %q", v)
		}
		product.InsuranceFee = fee
	}

	return product, nil
}
