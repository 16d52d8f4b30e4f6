package ingest

import (
	"fmt"
	"strings"

	"github.com/sells-group/supplier-cli/internal/model"
)

// CleaningError reports a conversion failure on a row that already passed
// validation. It should not happen; when it does, the parser and validator
// disagree and the defect must surface loudly instead of defaulting.
type CleaningError struct {
	Supplier string
	Err      error
}

func (e *CleaningError) Error() string {
	return fmt.Sprintf("ingest: cleaning record for supplier %q: %v", e.Supplier, e.Err)
}

func (e *CleaningError) Unwrap() error { return e.Err }

// Clean converts validated rows into canonical supplier records with
// performance and category unset. Quantity and delay are truncated to
// integers, not rounded.
func Clean(rows []RawRow) ([]model.Supplier, error) {
	suppliers := make([]model.Supplier, 0, len(rows))

	for _, row := range rows {
		name := strings.TrimSpace(row[FieldName])

		quantity, err := parseNumber(row[FieldQuantity])
		if err != nil {
			return nil, &CleaningError{Supplier: name, Err: err}
		}
		quality, err := parseNumber(row[FieldQuality])
		if err != nil {
			return nil, &CleaningError{Supplier: name, Err: err}
		}
		delay, err := parseNumber(row[FieldDelay])
		if err != nil {
			return nil, &CleaningError{Supplier: name, Err: err}
		}
		price, err := parseNumber(row[FieldPrice])
		if err != nil {
			return nil, &CleaningError{Supplier: name, Err: err}
		}
		deliveryDate, err := parseDate(row[FieldDeliveryDate])
		if err != nil {
			return nil, &CleaningError{Supplier: name, Err: err}
		}

		suppliers = append(suppliers, model.Supplier{
			Name:          name,
			Product:       strings.TrimSpace(row[FieldProduct]),
			Quantity:      int(quantity),
			Quality:       quality,
			DeliveryDelay: int(delay),
			Price:         price,
			DeliveryDate:  deliveryDate,
		})
	}

	return suppliers, nil
}
