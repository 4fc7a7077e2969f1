package loader

import (
	"fmt"

	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// ValidateTable checks that t has rows and every expected column
func ValidateTable(t domain.Table, expected []string) error {
	if t.Empty() {
		return apperrors.NewAppValidationError("table is empty after loading")
	}

	var missing []string
	for _, name := range expected {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewAppValidationError(fmt.Sprintf("missing columns: %v", missing)).
			WithContext("missing", missing).
			WithContext("present", t.ColumnNames())
	}
	return nil
}
