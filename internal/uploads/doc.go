// Package uploads stores files uploaded through the chat front end.
//
// Every upload lands directly in the configured uploads directory under its
// client-supplied name, reduced to a single path element. The directory is
// created on first use and same-named files are overwritten.
package uploads
