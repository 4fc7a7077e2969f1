// Package analytics computes univariate and bivariate descriptive
// statistics over domain tables.
//
// Every function takes the table and the column names to describe and
// never modifies the table. Numeric summaries coerce cells to float64:
// ints, floats and booleans are used as they are, strings are parsed and
// anything else is ignored. Undefined statistics are NaN and marshal to
// JSON as null.
//
// Each summary type can be exported as a sheet through its Header and
// Records methods. A column missing from the table yields an AppError of
// type NOT_FOUND.
package analytics
