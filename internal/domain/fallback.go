package domain

// DefaultCulture is offered when the culture list cannot be fetched.
var DefaultCulture = CultureOption{ID: "2713", Label: "Soja (em grão)"}

// ExampleRecords returns the fixed dataset shown when the backend is
// unreachable. Each call returns a fresh slice.
func ExampleRecords() []ProductionRecord {
	return []ProductionRecord{
		{Region: "Sudoeste Piauiense - PI", Value: "2994156"},
		{Region: "Sul Maranhense - MA", Value: "2232684"},
		{Region: "Ocidental do Tocantins - TO", Value: "2059044"},
		{Region: "Sudeste Paraense - PA", Value: "1988378"},
		{Region: "Oriental do Tocantins - TO", Value: "1726342"},
		{Region: "Leste Rondoniense - RO", Value: "1429058"},
		{Region: "Oeste Maranhense - MA", Value: "613242"},
		{Region: "Leste Maranhense - MA", Value: "538388"},
		{Region: "Baixo Amazonas - PA", Value: "387808"},
		{Region: "Norte de Roraima - RR", Value: "320335"},
	}
}
