package entity

// MonthOutcome is the result of fetching one month page. It is one of
// MonthRows, MonthEmpty or MonthTransportError.
type MonthOutcome interface {
	monthOutcome()
}

// MonthRows is returned when the data table exists. Rows may be empty.
type MonthRows struct {
	Rows []DailyRecord
}

// MonthEmpty is returned when the page has no data table.
type MonthEmpty struct{}

// MonthTransportError is returned when the page could not be retrieved.
type MonthTransportError struct {
	Err error
}

func (MonthRows) monthOutcome()           {}
func (MonthEmpty) monthOutcome()          {}
func (MonthTransportError) monthOutcome() {}

// Error returns the preserved transport error message.
func (o MonthTransportError) Error() string {
	if o.Err == nil {
		return "transport error"
	}
	return o.Err.Error()
}
