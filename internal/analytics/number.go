package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

// Number is a statistic that may be undefined. NaN and infinities
// marshal as null.
type Number float64

// NaN returns an undefined Number
func NaN() Number { return Number(math.NaN()) }

// Valid reports whether n is a finite value
func (n Number) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(n))
}

// record renders n for a sheet cell; undefined values are empty cells
func (n Number) record() any {
	if !n.Valid() {
		return nil
	}
	return float64(n)
}

// ColumnNotFound is the error returned for a column missing from the table
func ColumnNotFound(col string) error {
	return apperrors.NewAppError(apperrors.ErrTypeNotFound, fmt.Sprintf("column not found: %s", col), nil).
		WithContext("column", col)
}

func column(t domain.Table, name string) (domain.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return domain.Column{}, ColumnNotFound(name)
	}
	return col, nil
}

// ToFloat coerces a cell to a number. Strings are parsed after trimming
// spaces; sequences, timestamps and absent cells do not coerce.
func ToFloat(v domain.Value) (float64, bool) {
	switch v.Kind() {
	case domain.KindFloat, domain.KindInt:
		return v.Float64()
	case domain.KindBool:
		if b, _ := v.BoolValue(); b {
			return 1, true
		}
		return 0, true
	case domain.KindString:
		s, _ := v.Str()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// numericValues returns the coercible cells of col
func numericValues(col domain.Column) []float64 {
	out := make([]float64, 0, len(col.Values))
	for _, v := range col.Values {
		if f, ok := ToFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

// NumericColumn returns the cells of col that coerce to numbers, in row
// order
func NumericColumn(t domain.Table, col string) ([]float64, error) {
	c, err := column(t, col)
	if err != nil {
		return nil, err
	}
	return numericValues(c), nil
}

// NumericPairs returns the rows where both x and y coerce to numbers
func NumericPairs(t domain.Table, x, y string) ([]float64, []float64, error) {
	cx, err := column(t, x)
	if err != nil {
		return nil, nil, err
	}
	cy, err := column(t, y)
	if err != nil {
		return nil, nil, err
	}

	var xs, ys []float64
	for i := range cx.Values {
		fx, okx := ToFloat(cx.Values[i])
		fy, oky := ToFloat(cy.Values[i])
		if okx && oky {
			xs = append(xs, fx)
			ys = append(ys, fy)
		}
	}
	return xs, ys, nil
}
