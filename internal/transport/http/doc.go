// Package http contains the chi HTTP handlers for the dashboard API:
// report views, CSV and slide-deck downloads, refresh, mapping
// suggestions, and health/metrics endpoints.
package http
