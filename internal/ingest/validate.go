package ingest

import (
	"fmt"
	"strings"
)

// ValidationError describes everything wrong with one spreadsheet row.
// Row is the 1-based line number in the uploaded file, header included,
// so it matches what the user sees in their spreadsheet program.
type ValidationError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// requiredFields lists the normalized headers every row must carry,
// in the order errors are reported.
var requiredFields = []string{
	FieldName,
	FieldProduct,
	FieldQuantity,
	FieldQuality,
	FieldDelay,
	FieldPrice,
	FieldDeliveryDate,
}

// Normalized column names of the upload format.
const (
	FieldName         = "fournisseur"
	FieldProduct      = "produit"
	FieldQuantity     = "quantite"
	FieldQuality      = "qualite"
	FieldDelay        = "delai"
	FieldPrice        = "prix"
	FieldDeliveryDate = "date_livraison"
)

// Validate checks every row and accumulates every problem. It never stops at
// the first bad row or the first bad field: callers show users the complete
// error set. An empty result means the whole batch is acceptable.
//
// A field is missing when its cell is blank; the literal "0" is a present
// value (a zero quantity fails the positivity rule, not the presence rule).
// Type and range rules run only on present fields. The result is never
// capped here; display capping is the caller's concern.
func Validate(rows []RawRow) []ValidationError {
	var errs []ValidationError

	for i, row := range rows {
		var msgs []string

		for _, field := range requiredFields {
			if strings.TrimSpace(row[field]) == "" {
				msgs = append(msgs, fmt.Sprintf("missing field '%s'", field))
			}
		}

		if v := strings.TrimSpace(row[FieldQuantity]); v != "" {
			if n, err := parseNumber(v); err != nil || n <= 0 {
				msgs = append(msgs, "Quantity must be a positive number")
			}
		}
		if v := strings.TrimSpace(row[FieldQuality]); v != "" {
			if n, err := parseNumber(v); err != nil || n < 0 || n > 10 {
				msgs = append(msgs, "Quality must be a number between 0 and 10")
			}
		}
		if v := strings.TrimSpace(row[FieldDelay]); v != "" {
			if n, err := parseNumber(v); err != nil || n < 0 {
				msgs = append(msgs, "Delay must be a positive number")
			}
		}
		if v := strings.TrimSpace(row[FieldPrice]); v != "" {
			if n, err := parseNumber(v); err != nil || n <= 0 {
				msgs = append(msgs, "Price must be a positive number")
			}
		}
		if v := strings.TrimSpace(row[FieldDeliveryDate]); v != "" {
			if _, err := parseDate(v); err != nil {
				msgs = append(msgs, "Invalid delivery date")
			}
		}

		if len(msgs) > 0 {
			// +2 maps the zero-based data index back to the spreadsheet
			// line number, accounting for the header line.
			errs = append(errs, ValidationError{
				Row:     i + 2,
				Message: strings.Join(msgs, ", "),
			})
		}
	}

	return errs
}
