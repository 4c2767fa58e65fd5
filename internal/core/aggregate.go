package core

// Aggregate folds finalized order records into an ImportResult.
// The records keep their file order.
func Aggregate(orders []OrderRecord) ImportResult {
	result := ImportResult{
		Success:   true,
		TotalRows: len(orders),
		Orders:    orders,
	}
	if result.Orders == nil {
		result.Orders = []OrderRecord{}
	}

	for i := range orders {
		if orders[i].Valid() {
			result.ValidRows++
		} else {
			result.ErrorRows++
		}
	}
	return result
}

// failedResult builds the result of an import aborted by err.
func failedResult(err *ImportError) ImportResult {
	result := ImportResult{
		Success: false,
		Message: err.Message,
		Orders:  []OrderRecord{},
	}
	// A rejected header counts as the one failing row; no data row is read.
	if err.Kind == KindHeaderMismatch {
		result.ErrorRows = 1
	}
	return result
}
