// Package domain models municipal agricultural production statistics as
// served by the dashboard's backend API.
//
// # Data Source
//
// Figures originate from the IBGE "Produção Agrícola Municipal" (PAM)
// tables, published through the SIDRA API and re-exposed by the backend at
// /data/?ano=<year>&cultura=<id>. Each row is flattened to two columns
// before it reaches this service.
//
// # SIDRA Conventions
//
// Region label ("D1N"):
//
//	"<region name> - <state abbreviation>"  →  e.g. "Sudoeste Piauiense - PI"
//	Labels without the " - " separator are accepted and geocoded as-is.
//
// Production value ("V"):
//
//	Quantity produced in tonnes, as a decimal string without grouping:
//	"2994156" = 2,994,156 t.
//	"-" is the SIDRA sentinel for "no production recorded".
//	"..." and "X" (not available / suppressed) also appear; any value that
//	does not start with an integer is treated as missing. Only the leading
//	integer counts: "12.9" is 12 and "1e3" is 1.
//	JSON null decodes to the empty string and is treated as missing.
//
// # Ranking
//
// Only records with a positive value are ranked. Ties keep the order in
// which the backend returned them. The top ten entries are split into five
// color tiers used by both the map markers and the legend:
//
//	rank 1      → tier A
//	ranks 2–3   → tier B
//	ranks 4–5   → tier C
//	ranks 6–7   → tier D
//	ranks 8–10  → tier E
//
// # Number Formatting
//
// Display strings use Brazilian Portuguese grouping ("2.994.156"),
// produced by [FormatNumber] and [FormatValue].
package domain
