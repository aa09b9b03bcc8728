/*
Package monitoring provides Prometheus metrics for sheetguard.

# Overview

Metrics live on a dedicated registry rather than the global one, so several
evaluators (one per scanned document) and tests can coexist in one process.

# Metrics

  - sheetguard_stylesheets_scanned_total
  - sheetguard_stylesheets_inaccessible_total
  - sheetguard_repairs_total{outcome}
  - sheetguard_repairs_pending
  - sheetguard_fix_batches_total{result}
  - sheetguard_fix_duration_seconds
  - sheetguard_http_requests_total{method,path,status}
  - sheetguard_http_request_duration_seconds{method,path}

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
