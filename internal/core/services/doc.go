// Package services contains the core orchestration logic, wired
// together from the driven ports and exposed through the driving ones.
package services
