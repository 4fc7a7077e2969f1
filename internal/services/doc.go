// Package services holds the logic behind the HTTP handlers and the
// processor command.
//
// # Services
//
//	- PrepareService: loads the raw recipes, validates the expected
//	  columns, runs the conversion pipeline and adds the description
//	  features. It can also reload a processed workbook.
//	- ExploreService: owns the table being explored and answers column
//	  listings, univariate and bivariate summaries and chart rendering.
//	- HealthService: reports liveness and what dataset is loaded.
//
// Services take a context on every query and return application errors
// from internal/errors, or ErrDatasetNotLoaded, which handlers translate
// into RFC 7807 responses.
package services
