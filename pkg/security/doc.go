// Package security aggregates static-analysis findings into merged line
// ranges and a weighted risk score, and exports them as SARIF.
package security
