package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductCreator interface {
	CreateProduct(ctx context.Context, in domain.ProductInput, image *backend.Image) (domain.Product, error)
}

// CSVImporter reads product rows and creates them through the admin API.
//
// Expected header: productName,description,price,rating,stockAvailable,category,sizes,imagePath.
// Sizes are separated by semicolons. A row with only sizes filled continues the
// product above it.
type CSVImporter struct {
	reader  *csv.Reader
	creator ProductCreator
	logger  logrus.FieldLogger
}

func NewCSVImporter(r io.Reader, creator ProductCreator, logger logrus.FieldLogger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &CSVImporter{
		reader:  csvr,
		creator: creator,
		logger:  logger.WithField("component", "importer"),
	}
}

type csvRow struct {
	line  int
	input domain.ProductInput
}

// Run creates one product per row and stops at the first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["productName"]; !ok {
		return 0, errors.New("read headers: productName column is required")
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		name := pick(record, index, "productName")
		if name == "" {
			if current != nil {
				current.input.Sizes = append(current.input.Sizes, splitSizes(pick(record, index, "sizes"))...)
			}
			continue
		}

		if current != nil {
			if err := i.save(ctx, current); err != nil {
				return imported, err
			}
			imported++
		}
		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		current = row
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if err := row.input.Validate(); err != nil {
		return fmt.Errorf("row %d: %w", row.line, err)
	}
	p, err := i.creator.CreateProduct(ctx, row.input, nil)
	if err != nil {
		return fmt.Errorf("row %d: create %q: %w", row.line, row.input.Name, err)
	}
	i.logger.WithFields(logrus.Fields{"line": row.line, "id": p.ID}).Debug("product created")
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	in := domain.ProductInput{
		Name:        pick(record, index, "productName"),
		Description: pick(record, index, "description"),
		Category:    domain.CanonicalCategory(pick(record, index, "category")),
		ImagePath:   pick(record, index, "imagePath"),
		Sizes:       splitSizes(pick(record, index, "sizes")),
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid price %q", line, pick(record, index, "price"))
	}
	in.Price = price

	if raw := pick(record, index, "stockAvailable"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid stockAvailable %q", line, raw)
		}
		in.Stock = stock
	}
	if raw := pick(record, index, "rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid rating %q", line, raw)
		}
		in.Rating = &rating
	}
	return &csvRow{line: line, input: in}, nil
}

func splitSizes(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
