// Package http implements the HTTP exploration API over a prepared recipes
// table. Handlers are a thin layer between chi routing and the services
// package: they parse and validate query parameters, call a service and
// render the result.
//
// # Routes
//
//	GET /healthz                                  dataset and runtime status
//	GET /metrics                                  Prometheus scrape endpoint
//	GET /api/v1/version                           build information
//	GET /api/v1/dataset                           what is loaded
//	GET /api/v1/columns                           name, type and absent count
//	GET /api/v1/columns/{column}/summary          ?kind=numeric|categorical&top_k=
//	GET /api/v1/columns/{column}/elements         ?top_k=
//	GET /api/v1/bivariate                         ?x=&y=&kind=numnum|numcat|catcat&top_k=&normalize=
//	GET /api/v1/charts/{kind}/{column}.png        ?other=&bins=&max_x=&top_k=&normalize=&title=
//
// Successful JSON responses are wrapped as
//
//	{"status": "success", "data": ..., "count": ...}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/dataset/column-not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "column \"calories\" not found",
//	    "instance": "/api/v1/columns/calories/summary",
//	    "trace_id": "..."
//	}
//
// Queries made before a dataset is installed answer 409 with type
// /errors/dataset/not-loaded.
package http
