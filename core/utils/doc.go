// Package utils holds small formatting helpers shared by the queue progress
// lines and the cycle reports.
package utils
